package user

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"devloop/pkg/apperr"
	"devloop/pkg/authsession"
	"devloop/pkg/generator"
)

var (
	ErrUserExists         = fmt.Errorf("user %w", apperr.ErrConflict)
	ErrUserNotFound       = fmt.Errorf("%w: user not found", apperr.ErrUnauthorized)
	ErrInvalidCredentials = fmt.Errorf("%w: invalid credentials", apperr.ErrUnauthorized)
	ErrWrongPassword      = fmt.Errorf("%w: current password does not match", apperr.ErrInvalidInput)
	ErrEmptyImage         = fmt.Errorf("%w: image data is required", apperr.ErrInvalidInput)
)

type ServiceInterface interface {
	Register(ctx context.Context, name, email, password, role string) (*User, error)
	Login(ctx context.Context, email, password string) (*User, error)
	Logout(ctx context.Context, userID string) error
	GetByID(ctx context.Context, id string) (*User, error)
	List(ctx context.Context, role string) ([]*User, error)
	UpdateProfile(ctx context.Context, id, requesterID string, patch ProfilePatch) (*User, error)
	UpdatePassword(ctx context.Context, id, requesterID, current, next string) error
	UpdateProfileImage(ctx context.Context, id, requesterID, data string) (*User, error)
	Delete(ctx context.Context, id, requesterID string) error
}

type Service struct {
	Repo    Repository
	Session authsession.Repository
	NewID   generator.IDFunc
	now     func() time.Time
}

func NewService(repo Repository, session authsession.Repository) *Service {
	return &Service{Repo: repo, Session: session, NewID: generator.NewID, now: time.Now}
}

func (s *Service) Register(ctx context.Context, name, email, password, role string) (*User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	exist, err := s.Repo.FindByEmail(ctx, email)
	if exist != nil && err == nil {
		return nil, ErrUserExists
	}
	if err != nil && !errors.Is(err, apperr.ErrNotFound) {
		return nil, err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hashing password error: %w", err)
	}

	userID, err := s.NewID()
	if err != nil {
		return nil, fmt.Errorf("UserID gen error: %w", err)
	}

	user := &User{
		ID:        userID,
		Name:      strings.TrimSpace(name),
		Email:     email,
		Role:      role,
		Skills:    []string{},
		Password:  string(hashedPassword),
		CreatedAt: s.now().UTC(),
	}

	if err := s.Repo.Create(ctx, user); err != nil {
		return nil, err
	}

	if err := s.openSession(ctx, user.ID); err != nil {
		return nil, err
	}

	return user, nil
}

func (s *Service) Login(ctx context.Context, email, password string) (*User, error) {
	user, err := s.Repo.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	if err := s.openSession(ctx, user.ID); err != nil {
		return nil, err
	}

	return user, nil
}

func (s *Service) Logout(ctx context.Context, userID string) error {
	return s.Session.Invalidate(ctx, userID)
}

func (s *Service) GetByID(ctx context.Context, id string) (*User, error) {
	return s.Repo.FindByID(ctx, id)
}

func (s *Service) List(ctx context.Context, role string) ([]*User, error) {
	return s.Repo.List(ctx, role)
}

func (s *Service) UpdateProfile(ctx context.Context, id, requesterID string, patch ProfilePatch) (*User, error) {
	user, err := s.owned(ctx, id, requesterID)
	if err != nil {
		return nil, err
	}

	if patch.Name != nil {
		user.Name = strings.TrimSpace(*patch.Name)
	}
	if patch.Bio != nil {
		user.Bio = *patch.Bio
	}
	if patch.Title != nil {
		user.Title = *patch.Title
	}
	if patch.Experience != nil {
		user.Experience = *patch.Experience
	}
	user.Skills = patch.Skills
	if user.Skills == nil {
		user.Skills = []string{}
	}

	if err := s.Repo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *Service) UpdatePassword(ctx context.Context, id, requesterID, current, next string) error {
	user, err := s.owned(ctx, id, requesterID)
	if err != nil {
		return err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(current)); err != nil {
		return ErrWrongPassword
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(next), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hashing password error: %w", err)
	}
	user.Password = string(hashed)

	return s.Repo.Update(ctx, user)
}

func (s *Service) UpdateProfileImage(ctx context.Context, id, requesterID, data string) (*User, error) {
	if strings.TrimSpace(data) == "" {
		return nil, ErrEmptyImage
	}
	user, err := s.owned(ctx, id, requesterID)
	if err != nil {
		return nil, err
	}
	user.ProfileImage = data
	if err := s.Repo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *Service) Delete(ctx context.Context, id, requesterID string) error {
	if _, err := s.owned(ctx, id, requesterID); err != nil {
		return err
	}
	if err := s.Repo.Delete(ctx, id); err != nil {
		return err
	}
	return s.Session.Invalidate(ctx, id)
}

func (s *Service) owned(ctx context.Context, id, requesterID string) (*User, error) {
	if err := apperr.RequireOwner(requesterID, id); err != nil {
		return nil, err
	}
	return s.Repo.FindByID(ctx, id)
}

func (s *Service) openSession(ctx context.Context, userID string) error {
	sessionID, err := s.NewID()
	if err != nil {
		return fmt.Errorf("SessionID gen error: %w", err)
	}
	if _, err := s.Session.Create(ctx, userID, sessionID); err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	return nil
}
