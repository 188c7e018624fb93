package user

import (
	"context"
	"errors"

	"devloop/pkg/apperr"
)

// Directory answers role-scoped existence checks for the booking and
// availability services.
type Directory struct {
	Repo Repository
}

func NewDirectory(repo Repository) *Directory {
	return &Directory{Repo: repo}
}

func (d *Directory) MentorExists(ctx context.Context, id string) error {
	return d.hasRole(ctx, id, RoleMentor)
}

func (d *Directory) MenteeExists(ctx context.Context, id string) error {
	return d.hasRole(ctx, id, RoleMentee)
}

func (d *Directory) hasRole(ctx context.Context, id, role string) error {
	u, err := d.Repo.FindByID(ctx, id)
	if errors.Is(err, apperr.ErrNotFound) {
		return apperr.NotFound(role, id)
	}
	if err != nil {
		return err
	}
	if u.Role != role {
		return apperr.NotFound(role, id)
	}
	return nil
}
