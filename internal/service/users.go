package service

import (
	"context"
	"errors"
	"fmt"

	"hirejacks/server/internal/docstore"
	"hirejacks/server/internal/model"
)

// Identity is the descriptor handed over by the auth provider after it has
// verified the user.
type Identity struct {
	UID         string
	Email       string
	DisplayName string
	PhotoURL    string
}

// SignupExtra carries optional fields collected on the sign-up form. It does
// not influence role assignment; only being the first user does.
type SignupExtra struct {
	PhoneNumber string
	CompanyName string
	Designation string
}

// GetOrCreateUser returns the stored user for the identity, creating it on
// first sign-in. The first user ever created gets the admin role, everyone
// after that is a student. Count and create run in one transaction so two
// concurrent first sign-ins cannot both become admin.
func (s *Service) GetOrCreateUser(ctx context.Context, identity Identity, extra SignupExtra) (*model.User, error) {
	if identity.UID == "" {
		return nil, fmt.Errorf("identity uid required")
	}
	var user model.User
	err := s.store.RunTransaction(ctx, func(ctx context.Context, tx docstore.Tx) error {
		doc, err := tx.Get(ctx, docstore.CollectionUsers, identity.UID)
		if err == nil {
			return doc.Decode(&user)
		}
		if !errors.Is(err, docstore.ErrNotFound) {
			return err
		}
		count, err := tx.Count(ctx, docstore.CollectionUsers)
		if err != nil {
			return err
		}
		role := model.RoleStudent
		if count == 0 {
			role = model.RoleAdmin
		}
		user = model.User{
			UID:           identity.UID,
			Email:         identity.Email,
			DisplayName:   identity.DisplayName,
			PhotoURL:      identity.PhotoURL,
			Role:          role,
			PhoneNumber:   extra.PhoneNumber,
			CompanyName:   extra.CompanyName,
			Designation:   extra.Designation,
			AppliedJobIDs: []string{},
		}
		return tx.Set(ctx, docstore.CollectionUsers, identity.UID, user)
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetUserProfile returns nil without error when the user does not exist.
func (s *Service) GetUserProfile(ctx context.Context, uid string) (*model.User, error) {
	doc, err := s.store.Get(ctx, docstore.CollectionUsers, uid)
	if errors.Is(err, docstore.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var user model.User
	if err := doc.Decode(&user); err != nil {
		return nil, err
	}
	return &user, nil
}

// ProfileUpdate holds the editable profile fields; nil means leave unchanged.
type ProfileUpdate struct {
	DisplayName *string `json:"displayName"`
	PhotoURL    *string `json:"photoURL"`
	PhoneNumber *string `json:"phoneNumber"`
	Address     *string `json:"address"`
	CGPA        *string `json:"cgpa"`
	Experience  *string `json:"experience"`
	ResumeText  *string `json:"resumeText"`
	CompanyName *string `json:"companyName"`
	Designation *string `json:"designation"`
}

// UpdateUserProfile merges the update into the stored record inside a
// transaction, so it cannot clobber a concurrent apply's change to
// appliedJobIds.
func (s *Service) UpdateUserProfile(ctx context.Context, uid string, update ProfileUpdate) error {
	return s.store.RunTransaction(ctx, func(ctx context.Context, tx docstore.Tx) error {
		doc, err := tx.Get(ctx, docstore.CollectionUsers, uid)
		if errors.Is(err, docstore.ErrNotFound) {
			return ErrUserNotFound
		}
		if err != nil {
			return err
		}
		var user model.User
		if err := doc.Decode(&user); err != nil {
			return err
		}
		applyString(&user.DisplayName, update.DisplayName)
		applyString(&user.PhotoURL, update.PhotoURL)
		applyString(&user.PhoneNumber, update.PhoneNumber)
		applyString(&user.Address, update.Address)
		applyString(&user.CGPA, update.CGPA)
		applyString(&user.Experience, update.Experience)
		applyString(&user.ResumeText, update.ResumeText)
		applyString(&user.CompanyName, update.CompanyName)
		applyString(&user.Designation, update.Designation)
		return tx.Set(ctx, docstore.CollectionUsers, uid, user)
	})
}

func applyString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}
