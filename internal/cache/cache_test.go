package cache

import (
	"strings"
	"testing"
)

func TestKey(t *testing.T) {
	k1 := Key("ch01", "content a")
	k2 := Key("ch01", "content b")
	k3 := Key("ch02", "content a")

	if !strings.HasPrefix(k1, "translation:ch01:") {
		t.Errorf("key format: %q", k1)
	}
	if k1 == k2 {
		t.Error("different content must produce different keys")
	}
	if k1 == k3 {
		t.Error("different chapters must produce different keys")
	}
	if k1 != Key("ch01", "content a") {
		t.Error("key must be deterministic")
	}
}
