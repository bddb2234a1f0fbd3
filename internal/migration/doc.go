// 版权所有 2024 AgentFlow Authors. 版权所有。
// 此源代码的使用由 MIT 许可规范,该许可可以是
// 在LICENSE文件中找到。

/*
包 migration 为整理文档库提供版本化 Schema 迁移，覆盖 PostgreSQL
与 MySQL，基于 golang-migrate 实现。SQLite 的表结构由 store 包通过
GORM AutoMigrate 创建，迁移器对其返回 ErrManagedByGORM。

# 概述

本包通过 embed.FS 内嵌 curated_documents 与 document_triggers 两张表的
SQL 迁移文件，结合
golang-migrate 引擎实现版本化的 Schema 变更管理。支持正向迁移、
回滚、按步执行、跳转到指定版本以及强制设置版本号等操作。

# 核心接口与类型

  - Migrator：迁移器接口，定义 Up/Down/DownAll/Steps/Goto/Force/
    Version/Status/Info/Close 等完整操作集。
  - DefaultMigrator：Migrator 的默认实现，封装 golang-migrate 实例
    与数据库连接管理。
  - Config：迁移配置，包含数据库类型、连接 URL、迁移表名（默认
    memcurator_schema_migrations）、锁超时与 zap 日志。
  - DatabaseType：数据库类型枚举（postgres/mysql/sqlite）。
  - MigrationFile：AvailableMigrations 列出的内嵌迁移。
  - MigrationStatus / MigrationInfo：迁移状态与摘要信息。
  - CLI：命令行交互层，封装 Migrator 提供格式化输出。

# 主要能力

  - 方言表：每种 DatabaseType 对应 sql 驱动、内嵌目录与 golang-migrate
    驱动构造函数，新增方言只需追加一项。
  - 工厂函数：NewMigratorFromDatabaseConfig / NewMigratorFromURL
    分别从配置段与命令行参数创建迁移器，URLFromDatabaseConfig 解析连接 URL。
  - CLI 集成：CLI 类型提供 RunUp/RunDown/RunStatus/RunInfo 等
    面向终端的格式化操作，由 memcurator migrate 子命令调用。
  - 辅助工具：ParseDatabaseType 解析类型字符串，BuildDatabaseURL
    按方言拼接连接 URL。
*/
package migration
