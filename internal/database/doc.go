// 版权所有 2024 AgentFlow Authors. 版权所有。
// 此源代码的使用由 MIT 许可规范,该许可可以是
// 在LICENSE文件中找到。

/*
包 database 负责打开整理文档库所用的数据库，并管理 GORM 连接池、
健康检查、查询指标与事务重试。

# 概述

Open 根据 config.DatabaseConfig 选择 GORM 方言：sqlite（纯 Go 的
glebarez 驱动）、postgres 或 mysql，随后交给 PoolManager 统一管理
连接生命周期。store 包在此之上实现文档持久化。

# 核心类型

  - PoolManager：连接池管理器，提供 DB()、Ping()、GetStats()、
    RecordStats()、Close() 与事务方法。
  - PoolConfig：连接池配置，FromDatabaseConfig 由应用配置构造。
  - Metrics：连接数与查询耗时的指标接收方。

# 主要能力

  - 方言选择：NormalizeDriver 接受 pg/postgresql/mariadb/sqlite3 等别名，
    DSN 按驱动拼接连接串。
  - 健康检查：后台定时探活，成功时推送连接数指标，Close 时停止。
  - 查询指标：SetMetrics 为 create/query/update/delete 注册耗时回调。
  - 事务管理：WithTransactionRetry 对死锁、序列化失败、sqlite 忙锁
    等错误做指数退避重试。
  - 关闭语义：Close 之后 Ping 与事务方法返回 ErrPoolClosed。
*/
package database
