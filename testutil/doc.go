// Copyright 2026 AgentFlow Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license.

/*
Package testutil 提供 memcurator 测试的共享工具和辅助函数。

# 核心能力

  - 上下文辅助: TestContext / TestContextWithTimeout / CancelledContext
  - 日志辅助: Logger（zaptest）/ ObservedLogger（断言 Warn 降级日志）
  - 断言工具: AssertMessagesEqual / AssertJSONEqual / AssertEventuallyTrue
  - 数据工具: MustJSON / TranscriptJSON / CopyMessages / FixedClock

# 子包

  - testutil/fixtures: 预置会话记录（OAuth 实现会话、决策会话、噪声会话等）
  - testutil/mocks: MockMetrics（整理指标记录器）、MockEmbedder（嵌入服务，
    支持错误注入与调用计数）
*/
package testutil
