package ctxutil

import (
	"context"
	"testing"
)

func TestSessionID(t *testing.T) {
	if _, ok := GetSessionID(context.Background()); ok {
		t.Fatal("GetSessionID() on empty context should be false")
	}

	ctx := WithSessionID(context.Background(), "abc")
	if got, ok := GetSessionID(ctx); !ok || got != "abc" {
		t.Errorf("GetSessionID() = %q, %v; want abc, true", got, ok)
	}
	if _, ok := GetRequestID(ctx); ok {
		t.Error("GetRequestID() should not see the session id")
	}

	if _, ok := GetSessionID(WithSessionID(context.Background(), "")); ok {
		t.Error("empty session id should be reported as missing")
	}
}

func TestRequestID(t *testing.T) {
	ctx := WithRequestID(context.Background(), "req-1")
	if got, ok := GetRequestID(ctx); !ok || got != "req-1" {
		t.Errorf("GetRequestID() = %q, %v; want req-1, true", got, ok)
	}
}
