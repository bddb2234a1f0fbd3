// Package api 定义 memcurator HTTP API 的请求与响应类型。
//
// # API 概览
//
//   - POST /v1/curate          会话记录（JSON 数组）整理为记忆文档
//   - POST /v1/triggers        从文本提取触发短语及诊断统计
//   - POST /v1/anchors         生成不与已有 ID 冲突的锚点 ID
//   - GET  /v1/documents       分页列出文档，?trigger= 按触发短语过滤
//   - GET  /v1/documents/{id}  读取文档，?format=markdown 返回原文
//   - DELETE /v1/documents/{id}
//   - POST /v1/search          在向量索引中检索章节
//   - GET  /health, /ready, /version, /metrics
//
// 所有 JSON 响应都包在 handlers.Response 中：
//
//	{"success": true, "data": {...}, "timestamp": "...", "request_id": "..."}
//
// # 认证
//
// 配置了 auth.api_keys 时需携带 X-API-Key 头；配置了 auth.jwt 时需携带
// Authorization: Bearer <token>。健康检查与指标端点不需要认证。
package api
