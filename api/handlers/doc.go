// Copyright (c) AgentFlow Authors.
// Licensed under the MIT License.

/*
Package handlers 提供 memcurator HTTP API 的请求处理器实现。

# 核心类型

  - CurationHandler — 整理、触发短语、锚点、文档与检索端点
  - HealthHandler   — 存活与就绪检查（/health, /ready, /version）
  - Response        — 统一 JSON 响应结构（success + data + error + timestamp）
  - ErrorInfo       — 结构化错误信息，含 code、message、retryable 标记
  - ResponseWriter  — 包装 http.ResponseWriter 以捕获状态码与字节数
  - HealthCheck     — 可插拔健康检查接口，PingCheck 适配数据库与 Redis

# 主要能力

  - 统一响应格式：WriteSuccess / WriteError / WriteErrorFrom
  - types.ErrorCode 到 HTTP 状态码的映射（types.HTTPStatusFor）
  - 请求体限制与严格 JSON 解码（DecodeJSONBody、ReadBody）
  - 文档库与向量索引是可选依赖，未配置时对应路由不注册
  - 持久化或索引失败不影响整理结果，以 warnings 字段返回
*/
package handlers
