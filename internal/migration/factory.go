package migration

import (
	"fmt"

	"go.uber.org/zap"

	appconfig "github.com/BaSui01/memcurator/config"
)

// NewMigratorFromDatabaseConfig 由应用的 database 配置段创建迁移器
func NewMigratorFromDatabaseConfig(dbCfg appconfig.DatabaseConfig, logger *zap.Logger) (*DefaultMigrator, error) {
	dbType, dbURL, err := URLFromDatabaseConfig(dbCfg)
	if err != nil {
		return nil, err
	}
	return NewMigrator(&Config{DatabaseType: dbType, DatabaseURL: dbURL, Logger: logger})
}

// URLFromDatabaseConfig 解析数据库类型并拼出连接串；sqlite 返回 ErrManagedByGORM
func URLFromDatabaseConfig(dbCfg appconfig.DatabaseConfig) (DatabaseType, string, error) {
	dbType, err := ParseDatabaseType(dbCfg.Driver)
	if err != nil {
		return "", "", fmt.Errorf("invalid database type: %w", err)
	}
	if _, err := lookupDialect(dbType); err != nil {
		return dbType, "", err
	}
	sslMode := dbCfg.SSLMode
	if dbType == DatabaseTypeMySQL {
		sslMode = ""
	}
	return dbType, BuildDatabaseURL(dbType, dbCfg.Host, dbCfg.Port, dbCfg.Name, dbCfg.User, dbCfg.Password, sslMode), nil
}

// NewMigratorFromURL 由命令行给出的类型与连接串创建迁移器
func NewMigratorFromURL(dbType, dbURL string, logger *zap.Logger) (*DefaultMigrator, error) {
	dt, err := ParseDatabaseType(dbType)
	if err != nil {
		return nil, err
	}
	return NewMigrator(&Config{DatabaseType: dt, DatabaseURL: dbURL, Logger: logger})
}
