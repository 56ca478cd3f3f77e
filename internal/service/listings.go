package service

import (
	"context"
	"sort"
	"time"

	"hirejacks/server/internal/docstore"
	"hirejacks/server/internal/model"
	"hirejacks/server/internal/seed"
)

// GetCompanies seeds on first read and propagates seed failures, like GetJobs.
func (s *Service) GetCompanies(ctx context.Context) ([]model.Company, error) {
	if err := seed.EnsureCompanies(ctx, s.store); err != nil {
		return nil, err
	}
	docs, err := s.store.List(ctx, docstore.CollectionCompanies)
	if err != nil {
		return nil, err
	}
	companies := make([]model.Company, 0, len(docs))
	for _, doc := range docs {
		var company model.Company
		if err := doc.Decode(&company); err != nil {
			return nil, err
		}
		company.ID = doc.ID
		companies = append(companies, company)
	}
	return companies, nil
}

type NewCompany struct {
	Name     string `json:"name"`
	Industry string `json:"industry"`
}

func (s *Service) AddCompany(ctx context.Context, input NewCompany) (*model.Company, error) {
	company := model.Company{Name: input.Name, JobsPosted: 0, Industry: input.Industry}
	id, err := s.store.Insert(ctx, docstore.CollectionCompanies, company)
	if err != nil {
		return nil, err
	}
	company.ID = id
	return &company, nil
}

type CompanyUpdate struct {
	Name     *string `json:"name"`
	Industry *string `json:"industry"`
}

func (s *Service) UpdateCompany(ctx context.Context, companyID string, update CompanyUpdate) error {
	return s.store.RunTransaction(ctx, func(ctx context.Context, tx docstore.Tx) error {
		doc, err := tx.Get(ctx, docstore.CollectionCompanies, companyID)
		if err != nil {
			return err
		}
		var company model.Company
		if err := doc.Decode(&company); err != nil {
			return err
		}
		applyString(&company.Name, update.Name)
		applyString(&company.Industry, update.Industry)
		return tx.Set(ctx, docstore.CollectionCompanies, companyID, company)
	})
}

// GetUpcomingEvents falls back to the canonical events when the store is
// unreachable, so the dashboard never renders empty.
func (s *Service) GetUpcomingEvents(ctx context.Context) ([]model.UpcomingEvent, error) {
	if err := seed.EnsureEvents(ctx, s.store); err != nil {
		return seed.Events(), nil
	}
	docs, err := s.store.List(ctx, docstore.CollectionEvents)
	if err != nil {
		return seed.Events(), nil
	}
	events := make([]model.UpcomingEvent, 0, len(docs))
	for _, doc := range docs {
		var event model.UpcomingEvent
		if err := doc.Decode(&event); err != nil {
			continue
		}
		event.ID = doc.ID
		events = append(events, event)
	}
	return events, nil
}

// GetNewsItems degrades to the canonical articles on store failure.
func (s *Service) GetNewsItems(ctx context.Context) ([]model.NewsItem, error) {
	if err := seed.EnsureNews(ctx, s.store); err != nil {
		return seed.News(), nil
	}
	docs, err := s.store.List(ctx, docstore.CollectionNews)
	if err != nil {
		return seed.News(), nil
	}
	items := make([]model.NewsItem, 0, len(docs))
	for _, doc := range docs {
		var item model.NewsItem
		if err := doc.Decode(&item); err != nil {
			continue
		}
		item.ID = doc.ID
		items = append(items, item)
	}
	return items, nil
}

// GetNotifications lists notifications newest first. Records without a
// timestamp and store failures are both tolerated; the feed degrades to
// whatever can be shown.
func (s *Service) GetNotifications(ctx context.Context) ([]model.Notification, error) {
	docs, err := s.store.List(ctx, docstore.CollectionNotifications)
	if err != nil {
		return []model.Notification{}, nil
	}
	notifications := make([]model.Notification, 0, len(docs))
	for _, doc := range docs {
		var notification model.Notification
		if err := doc.Decode(&notification); err != nil {
			continue
		}
		if notification.CreatedAt.IsZero() {
			continue
		}
		notification.ID = doc.ID
		notifications = append(notifications, notification)
	}
	sort.SliceStable(notifications, func(i, j int) bool {
		return notifications[i].CreatedAt.After(notifications[j].CreatedAt)
	})
	return notifications, nil
}

type NewNotification struct {
	Title   string `json:"title"`
	Message string `json:"message"`
}

func (s *Service) AddNotification(ctx context.Context, input NewNotification) (*model.Notification, error) {
	notification := model.Notification{
		Title:     input.Title,
		Message:   input.Message,
		CreatedAt: time.Now().UTC(),
	}
	id, err := s.store.Insert(ctx, docstore.CollectionNotifications, notification)
	if err != nil {
		return nil, err
	}
	notification.ID = id
	return &notification, nil
}
