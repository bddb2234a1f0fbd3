package testutil

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/BaSui01/memcurator/types"
)

func TestWaitFor(t *testing.T) {
	var n atomic.Int32
	assert.True(t, WaitFor(func() bool { return n.Add(1) >= 3 }, time.Second))
	assert.False(t, WaitFor(func() bool { return false }, 30*time.Millisecond))
}

func TestCopyMessages(t *testing.T) {
	orig := []types.Message{{Role: types.RoleUser, Prompt: "fix auth.js", Files: []string{"auth.js"}}}
	cp := CopyMessages(orig)
	cp[0].Files[0] = "other.js"

	assert.Equal(t, "auth.js", orig[0].Files[0])
	assert.Nil(t, CopyMessages(nil))
	AssertMessagesEqual(t, orig, CopyMessages(orig))
}

func TestCancelledContext(t *testing.T) {
	assert.Error(t, CancelledContext().Err())
	assert.NoError(t, TestContext(t).Err())
}
