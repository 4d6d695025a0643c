package cache

import (
	"errors"
	"strings"
	"testing"

	"github.com/redis/go-redis/v9"
)

func TestScriptCacheKey(t *testing.T) {
	k1 := ScriptCacheKey("elections")
	k2 := ScriptCacheKey("elections")
	k3 := ScriptCacheKey("economy")

	if k1 != k2 {
		t.Errorf("same query produced different keys: %q vs %q", k1, k2)
	}
	if k1 == k3 {
		t.Errorf("different queries produced the same key: %q", k1)
	}
	if !strings.HasPrefix(k1, ScriptCacheKeyPrefix) {
		t.Errorf("key %q missing prefix %q", k1, ScriptCacheKeyPrefix)
	}
	if strings.Contains(k1, "elections") {
		t.Errorf("key %q leaks the raw query", k1)
	}
}

func TestIsMiss(t *testing.T) {
	if !IsMiss(redis.Nil) {
		t.Error("redis.Nil should count as a miss")
	}
	if IsMiss(errors.New("connection refused")) {
		t.Error("a connection error is not a miss")
	}
	if IsMiss(nil) {
		t.Error("nil is not a miss")
	}
}
