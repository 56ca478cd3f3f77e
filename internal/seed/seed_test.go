package seed

import (
	"context"
	"sync"
	"testing"

	"hirejacks/server/internal/docstore"
	"hirejacks/server/internal/model"
)

func TestEnsureSeedsEmptyCollection(t *testing.T) {
	ctx := context.Background()
	store := docstore.NewMemory()

	if err := EnsureJobs(ctx, store); err != nil {
		t.Fatalf("ensure error: %v", err)
	}
	count, err := store.Count(ctx, docstore.CollectionJobs)
	if err != nil {
		t.Fatalf("count error: %v", err)
	}
	if count != int64(len(Jobs())) {
		t.Fatalf("expected %d seeded jobs, got %d", len(Jobs()), count)
	}
}

func TestEnsureIsIdempotent(t *testing.T) {
	ctx := context.Background()
	store := docstore.NewMemory()

	if err := EnsureCompanies(ctx, store); err != nil {
		t.Fatalf("first ensure error: %v", err)
	}
	if err := EnsureCompanies(ctx, store); err != nil {
		t.Fatalf("second ensure error: %v", err)
	}
	count, err := store.Count(ctx, docstore.CollectionCompanies)
	if err != nil {
		t.Fatalf("count error: %v", err)
	}
	if count != int64(len(Companies())) {
		t.Fatalf("expected %d companies after double ensure, got %d", len(Companies()), count)
	}
}

func TestEnsureConcurrentFirstReads(t *testing.T) {
	ctx := context.Background()
	store := docstore.NewMemory()

	// Several first reads race; the count check runs inside the transaction,
	// so every racer past the first must retry, observe the winner's inserts,
	// and no-op instead of seeding again.
	const readers = 8
	start := make(chan struct{})
	var wg sync.WaitGroup
	errs := make(chan error, readers)
	for i := 0; i < readers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			errs <- EnsureJobs(ctx, store)
		}()
	}
	close(start)
	wg.Wait()
	close(errs)

	for err := range errs {
		if err != nil {
			t.Fatalf("ensure error: %v", err)
		}
	}

	docs, err := store.List(ctx, docstore.CollectionJobs)
	if err != nil {
		t.Fatalf("list error: %v", err)
	}
	if len(docs) != len(Jobs()) {
		t.Fatalf("expected %d jobs after concurrent first reads, got %d", len(Jobs()), len(docs))
	}
	titles := make(map[string]int)
	for _, doc := range docs {
		var job model.Job
		if err := doc.Decode(&job); err != nil {
			t.Fatalf("decode error: %v", err)
		}
		titles[job.Title]++
	}
	for _, job := range Jobs() {
		if titles[job.Title] != 1 {
			t.Fatalf("expected title %q exactly once, got %d", job.Title, titles[job.Title])
		}
	}
}

func TestEnsureSkipsNonEmptyCollection(t *testing.T) {
	ctx := context.Background()
	store := docstore.NewMemory()

	// A single pre-existing record counts as already seeded, even though it
	// is smaller than the canonical set.
	if _, err := store.Insert(ctx, docstore.CollectionEvents, Events()[0]); err != nil {
		t.Fatalf("insert error: %v", err)
	}
	if err := EnsureEvents(ctx, store); err != nil {
		t.Fatalf("ensure error: %v", err)
	}
	count, err := store.Count(ctx, docstore.CollectionEvents)
	if err != nil {
		t.Fatalf("count error: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected non-empty collection to be left alone, got %d docs", count)
	}
}

func TestCanonicalDataShape(t *testing.T) {
	if len(Jobs()) != 6 {
		t.Fatalf("expected 6 canonical jobs, got %d", len(Jobs()))
	}
	for _, job := range Jobs() {
		if job.Applications != 0 {
			t.Fatalf("seeded job %q must start with zero applications", job.Title)
		}
	}
	if len(Companies()) != 5 {
		t.Fatalf("expected 5 canonical companies, got %d", len(Companies()))
	}
	if len(Events()) != 3 {
		t.Fatalf("expected 3 canonical events, got %d", len(Events()))
	}
	if len(News()) != 6 {
		t.Fatalf("expected 6 canonical news items, got %d", len(News()))
	}
}
