package memory

import (
	"context"
	"testing"

	"hiring-contest-service/internal/app"
)

func TestAttemptStoreLifecycle(t *testing.T) {
	store := NewAttemptStore()
	job := sampleJob()
	starts := 0
	start := func() *app.Attempt {
		starts++
		return app.StartAttempt(job, "cand-1", nil, nil, nil)
	}

	attempt, created, err := store.GetOrCreate(context.Background(), job.ID, "cand-1", start)
	if err != nil || !created || attempt == nil {
		t.Fatalf("expected new attempt, got %v %v %v", attempt, created, err)
	}
	again, created, err := store.GetOrCreate(context.Background(), job.ID, "cand-1", start)
	if err != nil || created || again != attempt {
		t.Fatalf("expected existing attempt, got created=%v err=%v", created, err)
	}
	if starts != 1 {
		t.Fatalf("expected one start, got %d", starts)
	}
	if _, ok := store.Get(job.ID, "cand-1"); !ok {
		t.Fatalf("expected attempt present")
	}
	if _, ok := store.Get(job.ID, "cand-2"); ok {
		t.Fatalf("attempts are per candidate")
	}

	store.Delete(job.ID, "cand-1")
	if _, ok := store.Get(job.ID, "cand-1"); ok {
		t.Fatalf("expected attempt removed")
	}
	if store.Len() != 0 {
		t.Fatalf("expected empty store, got %d", store.Len())
	}
}
