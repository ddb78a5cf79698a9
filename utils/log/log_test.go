package log_test

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/jrife/txnkv/utils/log"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestLoggerMissing(t *testing.T) {
	if logger := log.Logger(context.Background()); logger != nil {
		t.Fatalf("expected no logger, got %#v", logger)
	}

	if log.FromContext(context.Background()) == nil {
		t.Fatalf("expected FromContext to fall back to the global logger")
	}
}

func TestLogger(t *testing.T) {
	logger := zap.NewNop()
	ctx := log.WithLogger(context.Background(), logger)

	if log.Logger(ctx) != logger {
		t.Fatalf("expected the attached logger")
	}
}

func TestFields(t *testing.T) {
	base := log.WithFields(context.Background(), zap.String("a", "1"))
	left := log.WithFields(base, zap.String("b", "2"))
	right := log.WithFields(base, zap.String("c", "3"))

	keys := func(fields []zap.Field) []string {
		k := []string{}

		for _, field := range fields {
			k = append(k, field.Key)
		}

		return k
	}

	if diff := cmp.Diff([]string{"a", "b"}, keys(log.Fields(left))); diff != "" {
		t.Fatal(diff)
	}

	if diff := cmp.Diff([]string{"a", "c"}, keys(log.Fields(right))); diff != "" {
		t.Fatal(diff)
	}
}

func TestFromContext(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	ctx := log.WithLogger(context.Background(), zap.New(core))
	ctx = log.WithFields(ctx, zap.String("session", "s1"))

	log.FromContext(ctx).Info("hello")

	entries := logs.All()

	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}

	if diff := cmp.Diff(map[string]interface{}{"session": "s1"}, entries[0].ContextMap()); diff != "" {
		t.Fatal(diff)
	}
}
