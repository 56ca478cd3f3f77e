package service

import (
	"context"
	"errors"

	"hirejacks/server/internal/docstore"
	"hirejacks/server/internal/model"
	"hirejacks/server/internal/seed"
)

// GetJobs seeds the jobs collection on first read, then returns every job.
// Seed failures surface instead of returning partial data.
func (s *Service) GetJobs(ctx context.Context) ([]model.Job, error) {
	if err := seed.EnsureJobs(ctx, s.store); err != nil {
		return nil, err
	}
	docs, err := s.store.List(ctx, docstore.CollectionJobs)
	if err != nil {
		return nil, err
	}
	jobs := make([]model.Job, 0, len(docs))
	for _, doc := range docs {
		var job model.Job
		if err := doc.Decode(&job); err != nil {
			return nil, err
		}
		job.ID = doc.ID
		jobs = append(jobs, job)
	}
	return jobs, nil
}

// NewJob is an admin-authored posting; the application counter is not
// settable and starts at zero.
type NewJob struct {
	Title    string          `json:"title"`
	Company  string          `json:"company"`
	Status   model.JobStatus `json:"status"`
	Location string          `json:"location"`
	Type     model.JobType   `json:"type"`
}

func (s *Service) AddJob(ctx context.Context, input NewJob) (*model.Job, error) {
	job := model.Job{
		Title:        input.Title,
		Company:      input.Company,
		Status:       input.Status,
		Applications: 0,
		Location:     input.Location,
		Type:         input.Type,
	}
	id, err := s.store.Insert(ctx, docstore.CollectionJobs, job)
	if err != nil {
		return nil, err
	}
	job.ID = id
	return &job, nil
}

// JobUpdate carries partial admin edits; the applications counter is owned by
// the apply transaction and cannot be edited here.
type JobUpdate struct {
	Title    *string          `json:"title"`
	Company  *string          `json:"company"`
	Status   *model.JobStatus `json:"status"`
	Location *string          `json:"location"`
	Type     *model.JobType   `json:"type"`
}

func (s *Service) UpdateJob(ctx context.Context, jobID string, update JobUpdate) error {
	return s.store.RunTransaction(ctx, func(ctx context.Context, tx docstore.Tx) error {
		doc, err := tx.Get(ctx, docstore.CollectionJobs, jobID)
		if errors.Is(err, docstore.ErrNotFound) {
			return ErrJobNotFound
		}
		if err != nil {
			return err
		}
		var job model.Job
		if err := doc.Decode(&job); err != nil {
			return err
		}
		applyString(&job.Title, update.Title)
		applyString(&job.Company, update.Company)
		applyString(&job.Location, update.Location)
		if update.Status != nil {
			job.Status = *update.Status
		}
		if update.Type != nil {
			job.Type = *update.Type
		}
		return tx.Set(ctx, docstore.CollectionJobs, jobID, job)
	})
}

func (s *Service) DeleteJob(ctx context.Context, jobID string) error {
	return s.store.Delete(ctx, docstore.CollectionJobs, jobID)
}
