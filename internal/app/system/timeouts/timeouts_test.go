package timeouts

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestConfigure_IgnoresZeroValues(t *testing.T) {
	t.Cleanup(Reset)

	Configure(Config{Short: 7 * time.Second, Long: -1})

	got := Current()
	if got.Short != 7*time.Second {
		t.Errorf("Short = %v, want 7s", got.Short)
	}
	if got.Ping != DefaultPing || got.Medium != DefaultMedium || got.Long != DefaultLong {
		t.Errorf("unexpected config %+v", got)
	}
}

func TestReset(t *testing.T) {
	Configure(Config{Ping: time.Second, Short: time.Second, Medium: time.Second, Long: time.Second})
	Reset()

	if Ping() != DefaultPing || Short() != DefaultShort || Medium() != DefaultMedium || Long() != DefaultLong {
		t.Errorf("Reset did not restore defaults: %+v", Current())
	}
}

func TestFields(t *testing.T) {
	if n := len(Fields()); n != 4 {
		t.Errorf("Fields() returned %d fields, want 4", n)
	}
}

func TestWithTimeout_LogsDeadline(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	log := zap.New(core)

	ctx, cancel := WithTimeout(context.Background(), time.Millisecond, log, "slow op")
	<-ctx.Done()
	cancel()

	if logs.Len() != 1 {
		t.Fatalf("expected 1 warning, got %d", logs.Len())
	}
	if op := logs.All()[0].ContextMap()["operation"]; op != "slow op" {
		t.Errorf("operation = %v, want slow op", op)
	}
}

func TestWithTimeout_NoLogOnCancel(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)

	_, cancel := WithTimeout(context.Background(), time.Minute, zap.New(core), "fast op")
	cancel()

	if logs.Len() != 0 {
		t.Errorf("expected no warnings, got %d", logs.Len())
	}
}
