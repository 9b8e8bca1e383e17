package ratelimit_test

import (
	"testing"
	"time"

	"github.com/dalemusser/clubhub/internal/app/system/ratelimit"
	"github.com/dalemusser/clubhub/internal/testutil"
)

func TestMongoStore(t *testing.T) {
	db := testutil.SetupMongoDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	s := ratelimit.NewMongoStore(db, time.Minute, 2)
	if err := s.EnsureIndexes(ctx); err != nil {
		t.Fatalf("EnsureIndexes: %v", err)
	}

	key := ratelimit.Key(ratelimit.BucketPresSubmit, "192.0.2.1")
	other := ratelimit.Key(ratelimit.BucketPresSubmit, "192.0.2.2")

	for i := 0; i < 2; i++ {
		limited, err := s.IsLimited(ctx, key)
		if err != nil {
			t.Fatalf("IsLimited: %v", err)
		}
		if limited {
			t.Fatalf("limited after %d failures", i)
		}
		if err := s.RecordFailure(ctx, key); err != nil {
			t.Fatalf("RecordFailure: %v", err)
		}
	}

	if limited, _ := s.IsLimited(ctx, key); !limited {
		t.Error("expected limit after 2 failures")
	}
	if limited, _ := s.IsLimited(ctx, other); limited {
		t.Error("other client must not be limited")
	}

	if err := s.Clear(ctx, key); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if limited, _ := s.IsLimited(ctx, key); limited {
		t.Error("Clear should lift the limit")
	}
}
