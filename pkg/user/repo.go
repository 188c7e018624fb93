package user

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"devloop/pkg/apperr"
)

const userColumns = "id, name, email, role, bio, title, experience, skills, profile_image, password, created_at"

type SQLRepo struct {
	DB *sql.DB
}

func NewSQLRepo(db *sql.DB) *SQLRepo {
	return &SQLRepo{DB: db}
}

func (r *SQLRepo) Create(ctx context.Context, user *User) error {
	skills, err := encodeSkills(user.Skills)
	if err != nil {
		return err
	}
	_, err = r.DB.ExecContext(ctx,
		"INSERT INTO users ("+userColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
		user.ID, user.Name, user.Email, user.Role, user.Bio, user.Title, user.Experience,
		skills, user.ProfileImage, user.Password, user.CreatedAt,
	)
	return err
}

func (r *SQLRepo) FindByEmail(ctx context.Context, email string) (*User, error) {
	row := r.DB.QueryRowContext(ctx, "SELECT "+userColumns+" FROM users WHERE email = ?", email)
	u, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("user", email)
	}
	return u, err
}

func (r *SQLRepo) FindByID(ctx context.Context, id string) (*User, error) {
	row := r.DB.QueryRowContext(ctx, "SELECT "+userColumns+" FROM users WHERE id = ?", id)
	u, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("user", id)
	}
	return u, err
}

func (r *SQLRepo) List(ctx context.Context, role string) ([]*User, error) {
	query := "SELECT " + userColumns + " FROM users"
	var args []any
	if role != "" {
		query += " WHERE role = ?"
		args = append(args, role)
	}
	query += " ORDER BY created_at, id"

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := make([]*User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (r *SQLRepo) Update(ctx context.Context, user *User) error {
	skills, err := encodeSkills(user.Skills)
	if err != nil {
		return err
	}
	res, err := r.DB.ExecContext(ctx, `
		UPDATE users SET name = ?, bio = ?, title = ?, experience = ?, skills = ?,
			profile_image = ?, password = ?
		WHERE id = ?`,
		user.Name, user.Bio, user.Title, user.Experience, skills,
		user.ProfileImage, user.Password, user.ID,
	)
	if err != nil {
		return err
	}
	return expectOneRow(res, user.ID)
}

func (r *SQLRepo) Delete(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM users WHERE id = ?", id)
	if err != nil {
		return err
	}
	return expectOneRow(res, id)
}

type scanner interface {
	Scan(dest ...any) error
}

func scanUser(s scanner) (*User, error) {
	var u User
	var skills string
	err := s.Scan(&u.ID, &u.Name, &u.Email, &u.Role, &u.Bio, &u.Title, &u.Experience,
		&skills, &u.ProfileImage, &u.Password, &u.CreatedAt)
	if err != nil {
		return nil, err
	}
	if skills != "" {
		if err := json.Unmarshal([]byte(skills), &u.Skills); err != nil {
			return nil, fmt.Errorf("decode skills of user %s: %w", u.ID, err)
		}
	}
	if u.Skills == nil {
		u.Skills = []string{}
	}
	return &u, nil
}

func encodeSkills(skills []string) (string, error) {
	if skills == nil {
		skills = []string{}
	}
	b, err := json.Marshal(skills)
	if err != nil {
		return "", fmt.Errorf("encode skills: %w", err)
	}
	return string(b), nil
}

func expectOneRow(res sql.Result, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return apperr.NotFound("user", id)
	}
	return nil
}
