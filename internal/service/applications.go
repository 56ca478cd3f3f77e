package service

import (
	"context"
	"errors"
	"sort"
	"time"

	"hirejacks/server/internal/docstore"
	"hirejacks/server/internal/metrics"
	"hirejacks/server/internal/model"
)

// ApplyResult is the envelope the job-listing UI consumes.
type ApplyResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// ApplyForJob runs the only multi-entity write in the system as a single
// transaction: insert the application record, bump the job's counter, append
// the job to the student's applied list. All three commit together or not at
// all. Concurrent duplicates lose the conflict retry and land on the
// already-applied check. The returned error, when non-nil, is one of the
// sentinels or a store failure; the result message is always user-facing.
func (s *Service) ApplyForJob(ctx context.Context, jobID, studentID string) (ApplyResult, error) {
	err := s.store.RunTransaction(ctx, func(ctx context.Context, tx docstore.Tx) error {
		userDoc, err := tx.Get(ctx, docstore.CollectionUsers, studentID)
		if errors.Is(err, docstore.ErrNotFound) {
			return ErrUserNotFound
		}
		if err != nil {
			return err
		}
		jobDoc, err := tx.Get(ctx, docstore.CollectionJobs, jobID)
		if errors.Is(err, docstore.ErrNotFound) {
			return ErrJobNotFound
		}
		if err != nil {
			return err
		}
		var user model.User
		if err := userDoc.Decode(&user); err != nil {
			return err
		}
		var job model.Job
		if err := jobDoc.Decode(&job); err != nil {
			return err
		}
		for _, applied := range user.AppliedJobIDs {
			if applied == jobID {
				return ErrAlreadyApplied
			}
		}

		studentName := user.DisplayName
		if studentName == "" {
			studentName = "Unknown Student"
		}
		application := model.Application{
			StudentID:   studentID,
			StudentName: studentName,
			JobID:       jobID,
			JobTitle:    job.Title,
			CompanyName: job.Company,
			AppliedAt:   time.Now().UTC(),
		}
		if _, err := tx.Insert(ctx, docstore.CollectionApplications, application); err != nil {
			return err
		}

		job.Applications++
		if err := tx.Set(ctx, docstore.CollectionJobs, jobID, job); err != nil {
			return err
		}

		user.AppliedJobIDs = append(user.AppliedJobIDs, jobID)
		return tx.Set(ctx, docstore.CollectionUsers, studentID, user)
	})

	switch {
	case err == nil:
		metrics.ApplicationsSubmitted.Inc()
		return ApplyResult{Success: true, Message: "Application submitted successfully!"}, nil
	case errors.Is(err, ErrAlreadyApplied):
		metrics.ApplicationsRejected.WithLabelValues("already_applied").Inc()
		return ApplyResult{Message: "You have already applied for this job."}, err
	case errors.Is(err, ErrJobNotFound):
		metrics.ApplicationsRejected.WithLabelValues("job_not_found").Inc()
		return ApplyResult{Message: "Job not found."}, err
	case errors.Is(err, ErrUserNotFound):
		metrics.ApplicationsRejected.WithLabelValues("user_not_found").Inc()
		return ApplyResult{Message: "User not found."}, err
	default:
		metrics.ApplicationsRejected.WithLabelValues("store_error").Inc()
		return ApplyResult{Message: "An unexpected error occurred."}, err
	}
}

// GetApplications lists all applications, newest first. A failing store
// degrades to an empty list so the admin view renders.
func (s *Service) GetApplications(ctx context.Context) ([]model.Application, error) {
	docs, err := s.store.List(ctx, docstore.CollectionApplications)
	if err != nil {
		return []model.Application{}, nil
	}
	applications := make([]model.Application, 0, len(docs))
	for _, doc := range docs {
		var application model.Application
		if err := doc.Decode(&application); err != nil {
			continue
		}
		application.ID = doc.ID
		applications = append(applications, application)
	}
	sort.SliceStable(applications, func(i, j int) bool {
		return applications[i].AppliedAt.After(applications[j].AppliedAt)
	})
	return applications, nil
}
