// Copyright (c) AgentFlow Authors.
// Licensed under the MIT License.

/*
Package main 提供 memcurator 命令行与服务端入口。

# 概述

cmd/memcurator 基于 cobra 组织子命令：一次性整理会话记录、提取触发短语、
生成锚点 ID，以及启动 HTTP API 与执行数据库迁移。配置按
默认值 → YAML（--config）→ MEMCURATOR_* 环境变量 的顺序加载。

# 核心类型

  - Server     — 组装整理器、文档库、向量索引、缓存与中间件，并管理关闭钩子
  - Middleware — HTTP 中间件函数签名 func(http.Handler) http.Handler

# 子命令

  - curate   — 转录 JSON → Markdown / JSON 记忆文档，--save 写入数据库
  - triggers — 文本 → 触发短语，--stats 输出提取诊断
  - anchor   — 标题 + 分类 → 唯一锚点 ID（--existing 去重）
  - serve    — 启动 HTTP API（/v1/*、/health、/ready、/metrics）
  - migrate  — postgres / mysql 模式迁移（golang-migrate）
  - health   — 探测运行中服务的 /health
  - version  — 构建信息（Version、BuildTime、GitCommit 通过 ldflags 注入）

# 中间件链

Recovery → RequestID → SecurityHeaders → RequestLogger → OTelTracing →
Metrics → CORS → RateLimiter（按 IP）→ Auth（X-API-Key 或 Bearer JWT）。
一次性命令的日志写到 stderr，stdout 只输出结果。
*/
package main
