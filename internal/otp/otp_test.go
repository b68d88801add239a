package otp

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateCode_Range(t *testing.T) {
	for i := 0; i < 1000; i++ {
		code, err := GenerateCode()
		require.NoError(t, err)
		require.GreaterOrEqual(t, code, 1000)
		require.LessOrEqual(t, code, 9999)
	}
}

func TestGenerateCode_NotConstant(t *testing.T) {
	seen := make(map[int]bool)
	for i := 0; i < 50; i++ {
		code, err := GenerateCode()
		require.NoError(t, err)
		seen[code] = true
	}
	assert.Greater(t, len(seen), 1)
}

func TestRecord_Expired(t *testing.T) {
	now := time.Now()
	r := &Record{ID: 1, UserID: uuid.New(), Code: 1234, CreatedAt: now}

	assert.False(t, r.Expired(now))
	assert.False(t, r.Expired(now.Add(Validity-time.Second)))
	assert.True(t, r.Expired(now.Add(Validity+time.Second)))
}
