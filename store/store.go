package store

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/BaSui01/memcurator/config"
	"github.com/BaSui01/memcurator/curation"
	"github.com/BaSui01/memcurator/internal/database"
	"github.com/BaSui01/memcurator/types"
)

// =============================================================================
// 📚 DocumentStore
// =============================================================================

// DefaultListLimit List 未指定 limit 时的页大小
const DefaultListLimit = 50

// MaxListLimit List 单页上限
const MaxListLimit = 500

// DocumentStore 通过 GORM 持久化整理文档
type DocumentStore struct {
	pool   *database.PoolManager
	logger *zap.Logger
}

// Open 打开数据库并建表
func Open(cfg config.DatabaseConfig, logger *zap.Logger) (*DocumentStore, error) {
	pool, err := database.Open(cfg, logger)
	if err != nil {
		return nil, types.WrapError(err, types.ErrStore, "open document store")
	}
	s, err := New(pool, logger)
	if err != nil {
		_ = pool.Close()
		return nil, err
	}
	return s, nil
}

// New 基于已有连接池创建存储，并执行 AutoMigrate
func New(pool *database.PoolManager, logger *zap.Logger) (*DocumentStore, error) {
	if pool == nil {
		return nil, types.NewError(types.ErrStore, "pool is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := pool.DB().AutoMigrate(&DocumentRecord{}, &TriggerRecord{}); err != nil {
		return nil, types.WrapError(err, types.ErrStore, "migrate document tables")
	}
	return &DocumentStore{
		pool:   pool,
		logger: logger.With(zap.String("component", "document_store")),
	}, nil
}

// Pool 返回底层连接池
func (s *DocumentStore) Pool() *database.PoolManager { return s.pool }

// Save 保存文档；同 ID 覆盖并替换触发短语
func (s *DocumentStore) Save(ctx context.Context, doc *curation.Document) error {
	if doc == nil || doc.ID == "" {
		return types.NewError(types.ErrInvalidInput, "document id is required")
	}
	rec, err := toRecord(doc)
	if err != nil {
		return types.WrapError(err, types.ErrStore, "encode document")
	}
	triggers := rec.Triggers
	rec.Triggers = nil

	err = s.pool.WithTransactionRetry(ctx, 3, func(tx *gorm.DB) error {
		if err := tx.Where("document_id = ?", rec.ID).Delete(&TriggerRecord{}).Error; err != nil {
			return err
		}
		if err := tx.Omit("Triggers").Save(rec).Error; err != nil {
			return err
		}
		if len(triggers) > 0 {
			return tx.Create(&triggers).Error
		}
		return nil
	})
	if err != nil {
		return types.WrapError(err, types.ErrStore, "save document "+doc.ID).WithRetryable(true)
	}

	s.logger.Debug("document saved",
		zap.String("document_id", doc.ID),
		zap.Int("triggers", len(triggers)),
	)
	return nil
}

// Get 按 ID 读取文档
func (s *DocumentStore) Get(ctx context.Context, id string) (*curation.Document, error) {
	var rec DocumentRecord
	err := s.pool.DB().WithContext(ctx).Where("id = ?", id).Take(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, types.NewError(types.ErrNotFound, fmt.Sprintf("document %s not found", id))
	}
	if err != nil {
		return nil, types.WrapError(err, types.ErrStore, "get document "+id)
	}
	doc, err := rec.toDocument()
	if err != nil {
		return nil, types.WrapError(err, types.ErrStore, "decode document "+id)
	}
	return doc, nil
}

// List 按创建时间倒序分页
func (s *DocumentStore) List(ctx context.Context, limit, offset int) ([]*curation.Document, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}
	if offset < 0 {
		offset = 0
	}

	var recs []DocumentRecord
	err := s.pool.DB().WithContext(ctx).
		Order("created_at DESC").Order("id").
		Limit(limit).Offset(offset).
		Find(&recs).Error
	if err != nil {
		return nil, types.WrapError(err, types.ErrStore, "list documents")
	}
	return decodeAll(recs)
}

// Count 返回文档总数
func (s *DocumentStore) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := s.pool.DB().WithContext(ctx).Model(&DocumentRecord{}).Count(&n).Error; err != nil {
		return 0, types.WrapError(err, types.ErrStore, "count documents")
	}
	return n, nil
}

// Delete 删除文档及其触发短语
func (s *DocumentStore) Delete(ctx context.Context, id string) error {
	var affected int64
	err := s.pool.WithTransaction(ctx, func(tx *gorm.DB) error {
		if err := tx.Where("document_id = ?", id).Delete(&TriggerRecord{}).Error; err != nil {
			return err
		}
		res := tx.Where("id = ?", id).Delete(&DocumentRecord{})
		affected = res.RowsAffected
		return res.Error
	})
	if err != nil {
		return types.WrapError(err, types.ErrStore, "delete document "+id)
	}
	if affected == 0 {
		return types.NewError(types.ErrNotFound, fmt.Sprintf("document %s not found", id))
	}
	return nil
}

// FindByTrigger 返回带有该触发短语的文档（大小写不敏感，精确匹配）
func (s *DocumentStore) FindByTrigger(ctx context.Context, phrase string) ([]*curation.Document, error) {
	phrase = normalizePhrase(phrase)
	if phrase == "" {
		return nil, types.NewError(types.ErrInvalidInput, "trigger phrase is required")
	}

	var recs []DocumentRecord
	err := s.pool.DB().WithContext(ctx).
		Where("id IN (?)", s.pool.DB().Model(&TriggerRecord{}).Select("document_id").Where("phrase = ?", phrase)).
		Order("created_at DESC").Order("id").
		Find(&recs).Error
	if err != nil {
		return nil, types.WrapError(err, types.ErrStore, "find by trigger")
	}
	return decodeAll(recs)
}

// Close 关闭连接池
func (s *DocumentStore) Close() error {
	return s.pool.Close()
}

func decodeAll(recs []DocumentRecord) ([]*curation.Document, error) {
	docs := make([]*curation.Document, 0, len(recs))
	for i := range recs {
		doc, err := recs[i].toDocument()
		if err != nil {
			return nil, types.WrapError(err, types.ErrStore, "decode document")
		}
		docs = append(docs, doc)
	}
	return docs, nil
}
