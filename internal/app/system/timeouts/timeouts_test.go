package timeouts

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestConfigureKeepsZeroValues(t *testing.T) {
	defer Reset()

	Configure(Config{Short: 7 * time.Second})
	got := Current()
	if got.Short != 7*time.Second {
		t.Errorf("Short = %v, want 7s", got.Short)
	}
	if got.Ping != DefaultPing || got.Medium != DefaultMedium || got.Long != DefaultLong {
		t.Errorf("zero fields changed defaults: %+v", got)
	}

	Reset()
	if Short() != DefaultShort {
		t.Errorf("Reset: Short = %v", Short())
	}
}

func TestWithTimeoutLogsDeadline(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	log := zap.New(core)

	ctx, cancel := WithTimeout(context.Background(), time.Millisecond, log, "slow op")
	<-ctx.Done()
	cancel()
	if logs.Len() != 1 {
		t.Fatalf("expected 1 warning, got %d", logs.Len())
	}

	_, cancel = WithTimeout(context.Background(), time.Minute, log, "fast op")
	cancel()
	if logs.Len() != 1 {
		t.Errorf("early cancel should not warn, got %d entries", logs.Len())
	}
}
