package service

import (
	"context"
	"encoding/json"
	"testing"

	"hirejacks/server/internal/docstore"
	"hirejacks/server/internal/model"
	"hirejacks/server/internal/seed"
)

func TestGetJobsSeedsOnFirstRead(t *testing.T) {
	ctx := context.Background()
	svc := New(docstore.NewMemory())

	first, err := svc.GetJobs(ctx)
	if err != nil {
		t.Fatalf("first read error: %v", err)
	}
	second, err := svc.GetJobs(ctx)
	if err != nil {
		t.Fatalf("second read error: %v", err)
	}

	canonical := seed.Jobs()
	if len(first) != len(canonical) || len(second) != len(canonical) {
		t.Fatalf("expected %d jobs on both reads, got %d then %d", len(canonical), len(first), len(second))
	}

	// Each canonical title appears exactly once after two consecutive reads.
	titles := make(map[string]int)
	for _, job := range second {
		titles[job.Title]++
	}
	for _, job := range canonical {
		if titles[job.Title] != 1 {
			t.Fatalf("expected title %q exactly once, got %d", job.Title, titles[job.Title])
		}
	}
	for _, job := range second {
		if job.ID == "" {
			t.Fatalf("expected store-assigned id on %q", job.Title)
		}
	}
}

func TestAddJobStartsWithZeroApplications(t *testing.T) {
	ctx := context.Background()
	svc := New(docstore.NewMemory())

	job, err := svc.AddJob(ctx, NewJob{Title: "QA Engineer", Company: "Testers Inc.", Status: model.JobStatusActive, Location: "Remote", Type: model.JobTypeFullTime})
	if err != nil {
		t.Fatalf("add error: %v", err)
	}
	if job.Applications != 0 {
		t.Fatalf("expected zero applications, got %d", job.Applications)
	}
	if job.ID == "" {
		t.Fatalf("expected assigned id")
	}
}

func TestUpdateJobLeavesCounterAlone(t *testing.T) {
	ctx := context.Background()
	store := docstore.NewMemory()
	svc := New(store)

	job, err := svc.AddJob(ctx, NewJob{Title: "QA Engineer", Company: "Testers Inc.", Status: model.JobStatusActive, Location: "Remote", Type: model.JobTypeFullTime})
	if err != nil {
		t.Fatalf("add error: %v", err)
	}
	if _, err := svc.GetOrCreateUser(ctx, Identity{UID: "s", Email: "s@example.com"}, SignupExtra{}); err != nil {
		t.Fatalf("bootstrap error: %v", err)
	}
	if _, err := svc.ApplyForJob(ctx, job.ID, "s"); err != nil {
		t.Fatalf("apply error: %v", err)
	}

	paused := model.JobStatusPaused
	if err := svc.UpdateJob(ctx, job.ID, JobUpdate{Status: &paused}); err != nil {
		t.Fatalf("update error: %v", err)
	}

	updated := getJob(t, ctx, store, job.ID)
	if updated.Status != model.JobStatusPaused {
		t.Fatalf("expected paused status, got %s", updated.Status)
	}
	if updated.Applications != 1 {
		t.Fatalf("expected admin edit to leave counter at 1, got %d", updated.Applications)
	}
	if updated.Title != "QA Engineer" {
		t.Fatalf("expected unchanged title, got %s", updated.Title)
	}
}

func TestStoredJobBodyOmitsID(t *testing.T) {
	ctx := context.Background()
	store := docstore.NewMemory()
	svc := New(store)

	job, err := svc.AddJob(ctx, NewJob{Title: "QA Engineer", Company: "Testers Inc.", Status: model.JobStatusActive, Location: "Remote", Type: model.JobTypeFullTime})
	if err != nil {
		t.Fatalf("add error: %v", err)
	}
	if _, err := svc.GetOrCreateUser(ctx, Identity{UID: "s", Email: "s@example.com"}, SignupExtra{}); err != nil {
		t.Fatalf("bootstrap error: %v", err)
	}
	if _, err := svc.ApplyForJob(ctx, job.ID, "s"); err != nil {
		t.Fatalf("apply error: %v", err)
	}
	title := "QA Lead"
	if err := svc.UpdateJob(ctx, job.ID, JobUpdate{Title: &title}); err != nil {
		t.Fatalf("update error: %v", err)
	}

	// The document ID lives in the key, not the stored body; listing paths
	// fill it in from doc.ID on read.
	doc, err := store.Get(ctx, docstore.CollectionJobs, job.ID)
	if err != nil {
		t.Fatalf("get error: %v", err)
	}
	var body map[string]any
	if err := json.Unmarshal(doc.Data, &body); err != nil {
		t.Fatalf("unmarshal error: %v", err)
	}
	if _, ok := body["id"]; ok {
		t.Fatalf("expected stored body without id field, got %v", body)
	}
}

func TestUpdateJobMissing(t *testing.T) {
	ctx := context.Background()
	svc := New(docstore.NewMemory())

	title := "X"
	if err := svc.UpdateJob(ctx, "no-such-job", JobUpdate{Title: &title}); err != ErrJobNotFound {
		t.Fatalf("expected ErrJobNotFound, got %v", err)
	}
}

func TestDeleteJob(t *testing.T) {
	ctx := context.Background()
	store := docstore.NewMemory()
	svc := New(store)

	job, err := svc.AddJob(ctx, NewJob{Title: "QA Engineer", Company: "Testers Inc.", Status: model.JobStatusActive, Location: "Remote", Type: model.JobTypeFullTime})
	if err != nil {
		t.Fatalf("add error: %v", err)
	}
	if err := svc.DeleteJob(ctx, job.ID); err != nil {
		t.Fatalf("delete error: %v", err)
	}
	if _, err := store.Get(ctx, docstore.CollectionJobs, job.ID); err == nil {
		t.Fatalf("expected job to be gone")
	}
}
