package store

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/BaSui01/memcurator/curation"
)

// DocumentRecord 整理文档的持久化行
type DocumentRecord struct {
	ID           string          `gorm:"primaryKey;size:64"`
	Title        string          `gorm:"size:512;not null;default:''"`
	Task         string          `gorm:"type:text"`
	Markdown     string          `gorm:"type:text"`
	QualityScore int             `gorm:"not null;default:0"`
	LowQuality   bool            `gorm:"not null;default:false"`
	MessageCount int             `gorm:"not null;default:0"`
	TokenCount   int             `gorm:"not null;default:0"`
	Payload      string          `gorm:"type:text"`
	CreatedAt    time.Time       `gorm:"index;not null"`
	UpdatedAt    time.Time       `gorm:"not null"`
	Triggers     []TriggerRecord `gorm:"foreignKey:DocumentID;constraint:OnDelete:CASCADE"`
}

// TableName GORM 表名
func (DocumentRecord) TableName() string { return "curated_documents" }

// TriggerRecord 文档的单条触发短语，用于反查
type TriggerRecord struct {
	ID         uint   `gorm:"primaryKey"`
	DocumentID string `gorm:"size:64;index;not null"`
	Phrase     string `gorm:"size:255;index;not null"`
	Position   int    `gorm:"not null;default:0"`
}

// TableName GORM 表名
func (TriggerRecord) TableName() string { return "document_triggers" }

// normalizePhrase 触发短语按小写去空白存储与查询
func normalizePhrase(p string) string {
	return strings.ToLower(strings.TrimSpace(p))
}

func toRecord(doc *curation.Document) (*DocumentRecord, error) {
	payload, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encode document %s: %w", doc.ID, err)
	}

	rec := &DocumentRecord{
		ID:           doc.ID,
		Title:        truncate(doc.Title, 512),
		Task:         doc.Summary.Task,
		Markdown:     doc.Markdown,
		QualityScore: doc.QualityScore,
		LowQuality:   doc.LowQuality,
		MessageCount: doc.MessageCount,
		TokenCount:   doc.TokenCount,
		Payload:      string(payload),
		CreatedAt:    doc.CreatedAt.UTC(),
	}

	seen := make(map[string]bool, len(doc.Summary.TriggerPhrases))
	for i, p := range doc.Summary.TriggerPhrases {
		phrase := truncate(normalizePhrase(p), 255)
		if phrase == "" || seen[phrase] {
			continue
		}
		seen[phrase] = true
		rec.Triggers = append(rec.Triggers, TriggerRecord{
			DocumentID: doc.ID,
			Phrase:     phrase,
			Position:   i,
		})
	}
	return rec, nil
}

func (r *DocumentRecord) toDocument() (*curation.Document, error) {
	var doc curation.Document
	if err := json.Unmarshal([]byte(r.Payload), &doc); err != nil {
		return nil, fmt.Errorf("decode document %s: %w", r.ID, err)
	}
	return &doc, nil
}

// truncate 按 rune 截断，避免截断多字节字符
func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max])
}
