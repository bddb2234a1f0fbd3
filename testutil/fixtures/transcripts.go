// =============================================================================
// 📦 测试数据工厂 - 会话记录
// =============================================================================
// 提供预定义的会话记录，覆盖过滤、摘要与触发短语各阶段
// =============================================================================
package fixtures

import (
	"fmt"

	"github.com/BaSui01/memcurator/types"
)

// OAuthSession 一次完整的实现会话：意图、计划、实现、结果
func OAuthSession() []types.Message {
	return []types.Message{
		types.NewUserMessage("I want to implement OAuth login"),
		types.NewAssistantMessage("I'll create auth.js for OAuth"),
		types.NewAssistantMessage("Created auth.js with OAuth login flow"),
		types.NewAssistantMessage("Completed: OAuth working"),
	}
}

// DecisionSession 包含一次问答式决策
func DecisionSession() []types.Message {
	return []types.Message{
		types.NewUserMessage("Should we store sessions in Redis or Postgres?"),
		types.NewAssistantMessage("Decided to use Redis for session storage because it supports TTL natively"),
		types.NewAssistantMessage("Modified session/store.go to add the Redis client"),
		types.NewAssistantMessage("Done: sessions persisted in Redis"),
	}
}

// NoisySession 混合噪声、包装标记与重复内容
func NoisySession() []types.Message {
	return []types.Message{
		types.NewUserMessage("<command-name>/clear</command-name>"),
		types.NewUserMessage("Refactor the token bucket limiter in ratelimit/bucket.go"),
		types.NewAssistantMessage("(no content)"),
		types.NewAssistantMessage("..."),
		types.NewAssistantMessage("[Request interrupted by user]"),
		types.NewAssistantMessage("Updated ratelimit/bucket.go to refill tokens lazily"),
		types.NewAssistantMessage("Updated ratelimit/bucket.go to refill tokens lazily"),
		types.NewUserMessage("ok"),
	}
}

// EmptySession 全部被过滤的会话
func EmptySession() []types.Message {
	return []types.Message{
		types.NewUserMessage(""),
		types.NewAssistantMessage("(no content)"),
		types.NewAssistantMessage("[placeholder]"),
	}
}

// ObservedSession 带工具侧文件记录的会话
func ObservedSession() []types.Message {
	return []types.Message{
		types.NewUserMessage("Add request logging to the HTTP handler"),
		{Role: types.RoleTool, Content: "Edited repo/handler.go", Files: []string{"repo/handler.go"}},
		types.NewAssistantMessage("Finished: handler now logs every request"),
	}
}

// LargeSession 生成 n 条互不相同的实现消息
func LargeSession(n int) []types.Message {
	msgs := make([]types.Message, 0, n+1)
	msgs = append(msgs, types.NewUserMessage("Implement the export pipeline for reports"))
	for i := 0; i < n; i++ {
		msgs = append(msgs, types.NewAssistantMessage(
			fmt.Sprintf("Created exporter_%03d.go with stage %d of the report export pipeline", i, i)))
	}
	return msgs
}

// Sessions 返回多份互不相同的会话，用于批处理测试
func Sessions() [][]types.Message {
	return [][]types.Message{
		OAuthSession(),
		DecisionSession(),
		NoisySession(),
		ObservedSession(),
		EmptySession(),
	}
}
