// Package service implements the portal's operations over the document store:
// role bootstrap on sign-in, the apply-for-job transaction, seed-on-read
// listings, and the admin write paths.
package service

import (
	"errors"

	"hirejacks/server/internal/docstore"
)

var (
	ErrUserNotFound   = errors.New("user not found")
	ErrJobNotFound    = errors.New("job not found")
	ErrAlreadyApplied = errors.New("already applied")
)

type Service struct {
	store docstore.Store
}

func New(store docstore.Store) *Service {
	return &Service{store: store}
}
