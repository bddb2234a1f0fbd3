// =============================================================================
// 🧪 测试辅助函数
// =============================================================================
package testutil

import (
	"context"
	"encoding/json"
	"slices"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"

	"github.com/BaSui01/memcurator/types"
)

const pollInterval = 10 * time.Millisecond

// TestContext 返回 30 秒超时、随测试结束取消的上下文
func TestContext(t *testing.T) context.Context {
	return TestContextWithTimeout(t, 30*time.Second)
}

// TestContextWithTimeout 返回自定义超时的测试上下文
func TestContextWithTimeout(t *testing.T, timeout time.Duration) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	t.Cleanup(cancel)
	return ctx
}

// CancelledContext 返回已取消的上下文
func CancelledContext() context.Context {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	return ctx
}

// Logger 返回只输出 Warn 及以上级别到 t.Log 的 logger
func Logger(t *testing.T) *zap.Logger {
	return zaptest.NewLogger(t, zaptest.Level(zap.WarnLevel))
}

// ObservedLogger 返回可检查日志条目的 logger
func ObservedLogger() (*zap.Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zap.DebugLevel)
	return zap.New(core), logs
}

// messageView 只保留比较时关心的字段
type messageView struct {
	Role  types.Role
	Text  string
	Files []string
}

func view(msgs []types.Message) []messageView {
	out := make([]messageView, len(msgs))
	for i, m := range msgs {
		out[i] = messageView{Role: m.Role, Text: m.Text()}
		if len(m.Files) > 0 {
			out[i].Files = m.Files
		}
	}
	return out
}

// AssertMessagesEqual 比较角色、文本与文件列表
func AssertMessagesEqual(t *testing.T, expected, actual []types.Message) {
	t.Helper()
	assert.Equal(t, view(expected), view(actual))
}

// AssertJSONEqual 比较两个值的 JSON 编码
func AssertJSONEqual(t *testing.T, expected, actual any) {
	t.Helper()
	assert.JSONEq(t, MustJSON(expected), MustJSON(actual))
}

// AssertEventuallyTrue 轮询 condition 直到为真或超时
func AssertEventuallyTrue(t *testing.T, condition func() bool, timeout time.Duration) {
	t.Helper()
	require.Eventually(t, condition, timeout, pollInterval)
}

// WaitFor 轮询 condition，超时返回 false
func WaitFor(condition func() bool, timeout time.Duration) bool {
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()
	deadline := time.After(timeout)
	for !condition() {
		select {
		case <-deadline:
			return condition()
		case <-ticker.C:
		}
	}
	return true
}

// FixedClock 返回固定时间的时钟
func FixedClock(ts time.Time) func() time.Time {
	return func() time.Time { return ts }
}

// MustJSON 编码失败时 panic
func MustJSON(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return string(data)
}

// TranscriptJSON 将消息编码为 DecodeTranscript 可读的 JSON 数组
func TranscriptJSON(msgs []types.Message) []byte {
	return []byte(MustJSON(msgs))
}

// CopyMessages 深拷贝消息切片
func CopyMessages(messages []types.Message) []types.Message {
	if messages == nil {
		return nil
	}
	copied := slices.Clone(messages)
	for i := range copied {
		copied[i].Files = slices.Clone(messages[i].Files)
	}
	return copied
}
