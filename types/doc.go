// Copyright (c) AgentFlow Authors.
// Licensed under the MIT License.

/*
Package types 提供 memcurator 各层共享的类型定义。

# 概述

types 是最底层的公共包，不依赖任何内部包，为 curation、indexing、store、
api 等上层模块提供统一的类型契约。转录消息、语义摘要、文件变更记录、
错误码均定义于此，以避免循环依赖。

# 核心类型

  - Message           — 转录消息（prompt / content 二选一，role、timestamp、files）
  - Observation       — 工具侧观察记录（files + text）
  - SemanticType      — 消息语义分类（intent / plan / implementation ...）
  - FileChangeRecord  — 按路径合并的文件变更
  - Decision          — 问题与选择
  - Summary           — 会话级语义摘要
  - Error / ErrorCode — 结构化错误体系，含 HTTP 状态码与 Retryable 标记
  - TokenCounter      — 最小 Token 计数接口

# 主要能力

  - 转录解析：DecodeTranscript（非数组输入返回 ErrInvalidInput）
  - Token 估算：EstimateTokenizer（中英文字符分别计算）
*/
package types
