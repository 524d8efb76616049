package ctxlog

import (
	"context"
	"log/slog"
	"testing"
)

func TestFromContext(t *testing.T) {
	if got := FromContext(context.Background()); got != Discard() {
		t.Fatal("expected discard logger without a stored logger")
	}

	logger := slog.New(slog.DiscardHandler)
	ctx := WithLogger(context.Background(), logger)
	if got := FromContext(ctx); got != logger {
		t.Fatal("expected the stored logger")
	}
	if got, ok := Lookup(ctx); !ok || got != logger {
		t.Fatal("expected lookup to find the stored logger")
	}
}

func TestWithLoggerIgnoresNil(t *testing.T) {
	ctx := WithLogger(context.Background(), nil)
	if _, ok := Lookup(ctx); ok {
		t.Fatal("nil logger should not be stored")
	}
}
