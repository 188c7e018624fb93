package user

import (
	"context"
	"time"
)

const (
	RoleMentor = "mentor"
	RoleMentee = "mentee"
)

type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"username"`
	Email        string    `json:"email"`
	Role         string    `json:"role"`
	Bio          string    `json:"bio"`
	Title        string    `json:"title"`
	Experience   string    `json:"experience"`
	Skills       []string  `json:"skills"`
	ProfileImage string    `json:"profileImage,omitempty"`
	Password     string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}

func (u *User) IsMentor() bool { return u.Role == RoleMentor }

// ProfilePatch carries the editable profile fields. Nil pointers are
// left untouched; nil Skills resets the list to empty.
type ProfilePatch struct {
	Name       *string
	Bio        *string
	Title      *string
	Experience *string
	Skills     []string
}

type Repository interface {
	Create(ctx context.Context, user *User) error
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByID(ctx context.Context, id string) (*User, error)
	List(ctx context.Context, role string) ([]*User, error)
	Update(ctx context.Context, user *User) error
	Delete(ctx context.Context, id string) error
}
