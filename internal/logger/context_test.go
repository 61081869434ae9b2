package logger

import (
	"context"
	"testing"

	"go.uber.org/zap"
)

func TestFromContext_ReturnsStoredLogger(t *testing.T) {
	l := zap.NewExample()
	ctx := ContextWithLogger(context.Background(), l)

	if FromContext(ctx) != l {
		t.Error("stored logger not returned")
	}
}

func TestFromContext_DefaultsToNop(t *testing.T) {
	l := FromContext(context.Background())
	if l == nil {
		t.Fatal("expected a usable nop logger")
	}
	l.Info("must not panic")
}

func TestFromContextOr_PrefersStoredLogger(t *testing.T) {
	stored := zap.NewExample()
	fallback := zap.NewExample()

	if FromContextOr(context.Background(), fallback) != fallback {
		t.Error("fallback not used on an empty context")
	}

	ctx := ContextWithLogger(context.Background(), stored)
	if FromContextOr(ctx, fallback) != stored {
		t.Error("stored logger not preferred over the fallback")
	}
}
