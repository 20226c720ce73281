package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeKVs(t *testing.T) {
	in := []interface{}{"user_id", "u1", "id_token", "abc.def.ghi", "Authorization", "Bearer x", "user_email", "alice@example.com", "dangling"}
	out := sanitizeKVs(in)

	assert.Equal(t, []interface{}{
		"user_id", "u1",
		"id_token", "[REDACTED]",
		"Authorization", "[REDACTED]",
		"user_email", "[REDACTED]",
		"dangling",
	}, out)
}

func TestNewNop(t *testing.T) {
	l := NewNop().With("component", "test")
	assert.NotPanics(t, func() {
		l.Info("hello", "k", "v")
		l.Error("boom", "token", "secret")
	})
}
