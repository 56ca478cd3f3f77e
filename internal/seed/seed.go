// Package seed holds the canonical records the listing collections are
// populated with on first read, and the ensure step that writes them.
package seed

import (
	"context"
	"errors"
	"fmt"

	"hirejacks/server/internal/docstore"
	"hirejacks/server/internal/metrics"
	"hirejacks/server/internal/model"
)

var ErrSeedFailed = errors.New("seeding failed")

// Jobs are seeded with a zero application counter so the counter always
// matches the number of application records.
func Jobs() []model.Job {
	return []model.Job{
		{Title: "Frontend Developer", Company: "Tech Solutions Inc.", Location: "Remote", Type: model.JobTypeFullTime, Status: model.JobStatusActive},
		{Title: "UX/UI Designer", Company: "Creative Minds LLC", Location: "New York, NY", Type: model.JobTypeInternship, Status: model.JobStatusActive},
		{Title: "Data Analyst", Company: "Analytics Corp", Location: "San Francisco, CA", Type: model.JobTypePartTime, Status: model.JobStatusPaused},
		{Title: "Backend Engineer", Company: "ServerSide Systems", Location: "Austin, TX", Type: model.JobTypeFullTime, Status: model.JobStatusActive},
		{Title: "Product Manager", Company: "Innovate Co.", Location: "Remote", Type: model.JobTypeFullTime, Status: model.JobStatusClosed},
		{Title: "Marketing Intern", Company: "Growth Gurus", Location: "Boston, MA", Type: model.JobTypeInternship, Status: model.JobStatusActive},
	}
}

func Companies() []model.Company {
	return []model.Company{
		{Name: "Tech Solutions Inc.", JobsPosted: 5, Industry: "Technology"},
		{Name: "Creative Minds LLC", JobsPosted: 2, Industry: "Design"},
		{Name: "Analytics Corp", JobsPosted: 3, Industry: "Data Science"},
		{Name: "ServerSide Systems", JobsPosted: 8, Industry: "Software"},
		{Name: "Innovate Co.", JobsPosted: 1, Industry: "Product"},
	}
}

func Events() []model.UpcomingEvent {
	return []model.UpcomingEvent{
		{Title: "Virtual Career Fair", Date: "October 25, 2024", Type: model.EventTypeFair},
		{Title: "Resume Workshop", Date: "November 2, 2024", Type: model.EventTypeWorkshop},
		{Title: "Interview Prep Session", Date: "November 10, 2024", Type: model.EventTypeSession},
	}
}

func News() []model.NewsItem {
	return []model.NewsItem{
		{
			Title:       "The Future of Remote Work: Trends for 2025",
			Category:    "Career Advice",
			Description: "Explore the evolving landscape of remote work and how to position yourself for success in a distributed workforce.",
			ImageURL:    "https://placehold.co/600x400.png",
			AIHint:      "remote work",
		},
		{
			Title:       "Networking in the Digital Age: A Guide for Students",
			Category:    "Networking",
			Description: "Learn effective strategies for building your professional network online, from LinkedIn to virtual events.",
			ImageURL:    "https://placehold.co/600x400.png",
			AIHint:      "networking conference",
		},
		{
			Title:       "Top 10 In-Demand Tech Skills for New Grads",
			Category:    "Tech",
			Description: "Discover the most sought-after technical skills in the job market today and how you can learn them.",
			ImageURL:    "https://placehold.co/600x400.png",
			AIHint:      "coding programming",
		},
		{
			Title:       "Mastering the Behavioral Interview",
			Category:    "Interviewing",
			Description: "Get expert tips on how to ace behavioral interview questions using the STAR method.",
			ImageURL:    "https://placehold.co/600x400.png",
			AIHint:      "job interview",
		},
		{
			Title:       "Building a Standout Portfolio",
			Category:    "Career Advice",
			Description: "A strong portfolio can make all the difference. Learn what to include and how to present your work.",
			ImageURL:    "https://placehold.co/600x400.png",
			AIHint:      "design portfolio",
		},
		{
			Title:       "Salary Negotiation for Your First Job",
			Category:    "Salary",
			Description: "Don't leave money on the table. Here's how to approach salary negotiations with confidence.",
			ImageURL:    "https://placehold.co/600x400.png",
			AIHint:      "negotiation business",
		},
	}
}

// Ensure populates collection with records if it is empty. The count and the
// inserts run in one transaction: a failed seed leaves the collection empty
// rather than partially filled, and concurrent first reads serialize — the
// loser retries, sees a non-zero count, and no-ops. A non-zero count means
// already seeded, regardless of size.
func Ensure(ctx context.Context, store docstore.Store, collection string, records []any) error {
	seeded := false
	err := store.RunTransaction(ctx, func(ctx context.Context, tx docstore.Tx) error {
		seeded = false
		count, err := tx.Count(ctx, collection)
		if err != nil {
			return err
		}
		if count > 0 {
			return nil
		}
		for _, record := range records {
			if _, err := tx.Insert(ctx, collection, record); err != nil {
				return err
			}
		}
		seeded = true
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrSeedFailed, collection, err)
	}
	if seeded {
		metrics.CollectionsSeeded.WithLabelValues(collection).Inc()
	}
	return nil
}

func EnsureJobs(ctx context.Context, store docstore.Store) error {
	return Ensure(ctx, store, docstore.CollectionJobs, asAny(Jobs()))
}

func EnsureCompanies(ctx context.Context, store docstore.Store) error {
	return Ensure(ctx, store, docstore.CollectionCompanies, asAny(Companies()))
}

func EnsureEvents(ctx context.Context, store docstore.Store) error {
	return Ensure(ctx, store, docstore.CollectionEvents, asAny(Events()))
}

func EnsureNews(ctx context.Context, store docstore.Store) error {
	return Ensure(ctx, store, docstore.CollectionNews, asAny(News()))
}

func asAny[T any](records []T) []any {
	out := make([]any, len(records))
	for i := range records {
		out[i] = records[i]
	}
	return out
}
