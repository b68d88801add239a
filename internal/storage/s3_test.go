package storage

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewKey(t *testing.T) {
	key := NewKey()

	now := time.Now()
	prefix := fmt.Sprintf("blogs/%d/%02d/%02d/", now.Year(), now.Month(), now.Day())
	assert.True(t, strings.HasPrefix(key, prefix), "key %q should start with %q", key, prefix)

	// keys must be unique per upload
	assert.NotEqual(t, key, NewKey())
}
