// Copyright (c) AgentFlow Authors.
// Licensed under the MIT License.

/*
Package curation 把一次会话记录整理成可寻址的记忆文档。

# 流程

Curator.Curate 依次执行：

  - 内容过滤：每次调用新建 filter.Pipeline，统计量只属于本次运行
  - 语义摘要：summary.Summarizer 分类消息、提取文件变更、决策与结果
  - 触发短语：在摘要阶段对完整文本提取
  - 渲染：每个章节从本文档独享的 anchor.Registry 取得锚点 ID，
    以 <!-- anchor:ID --> 注释与 <a id> 标签嵌入 Markdown

# 缓存

ResultCache 以会话文本与过滤配置的 SHA-256 为键缓存 Document。
LRUCache 为进程内实现（golang-lru），RedisCache 基于 internal/cache。
缓存错误只记录告警，不会让整理失败。

# 并发

Curator 可被多个 goroutine 共享；每个文档使用独立的过滤器实例与锚点
注册表。CurateBatch 用 errgroup 限制并发并保持结果顺序。
*/
package curation
