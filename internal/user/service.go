package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"social-blog/internal/auth/credentials"
	"social-blog/internal/db"
	"social-blog/internal/validate"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrNotFound           = errors.New("user not found")
)

type Service struct {
	db *db.DB
}

func NewService(db *db.DB) *Service {
	return &Service{db: db}
}

// Register validates and stores a new account. Validation failures come back
// as validate.Errors with every problem listed at once.
func (s *Service) Register(
	ctx context.Context,
	username string,
	email string,
	password string,
) (*User, error) {

	username = strings.ToLower(strings.TrimSpace(username))
	email = strings.ToLower(strings.TrimSpace(email))

	var verrs validate.Errors

	if username == "" {
		verrs = append(verrs, "You must provide a username.")
	}
	if username != "" && !validate.Var(username, "alphanum") {
		verrs = append(verrs, "Username must be alphanumeric.")
	}
	if !validate.Var(email, "email") {
		verrs = append(verrs, "You must provide a valid email address.")
	}
	if password == "" {
		verrs = append(verrs, "You must provide a password.")
	}
	if len(password) > 0 && len(password) < 8 {
		verrs = append(verrs, "Password must be at least 8 characters.")
	}
	if len(password) > 50 {
		verrs = append(verrs, "Password is too long.")
	}
	if len(username) > 0 && len(username) < 3 {
		verrs = append(verrs, "Username must be at least 3 characters.")
	}
	if len(username) > 30 {
		verrs = append(verrs, "Username is too long.")
	}

	// Uniqueness checks run only for fields that are otherwise valid.
	if len(username) >= 3 && len(username) <= 30 && validate.Var(username, "alphanum") {
		taken, err := s.DoesUsernameExist(ctx, username)
		if err != nil {
			return nil, err
		}
		if taken {
			verrs = append(verrs, "That username is not available.")
		}
	}
	if validate.Var(email, "email") {
		taken, err := s.DoesEmailExist(ctx, email)
		if err != nil {
			return nil, err
		}
		if taken {
			verrs = append(verrs, "That email is already being used.")
		}
	}

	if len(verrs) > 0 {
		return nil, verrs
	}

	hash, err := credentials.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("user: failed to hash password: %w", err)
	}

	u := &User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
	}

	err = s.db.QueryRowContext(ctx, `
		INSERT INTO users (username, email, password_hash)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`, username, email, hash).Scan(&u.ID, &u.CreatedAt)

	if err != nil {
		return nil, fmt.Errorf("user: failed to insert: %w", err)
	}

	return u, nil
}

// Login resolves a username/password pair to the stored account. It hides
// whether the username exists.
func (s *Service) Login(
	ctx context.Context,
	username string,
	password string,
) (*User, error) {

	username = strings.ToLower(strings.TrimSpace(username))

	var u User
	err := s.db.QueryRowContext(ctx, `
		SELECT id, username, email, password_hash, created_at
		FROM users
		WHERE username = $1
	`, username).Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("user: login query failed: %w", err)
	}

	if err := credentials.Verify(u.PasswordHash, password); err != nil {
		return nil, ErrInvalidCredentials
	}

	return &u, nil
}

func (s *Service) FindByUsername(ctx context.Context, username string) (*Summary, error) {
	var (
		sum   Summary
		email string
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT id, username, email
		FROM users
		WHERE username = $1
	`, username).Scan(&sum.ID, &sum.Username, &email)

	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("user: lookup failed: %w", err)
	}

	sum.AvatarURL = AvatarURL(email)
	return &sum, nil
}

func (s *Service) DoesUsernameExist(ctx context.Context, username string) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM users WHERE username = $1
		)
	`, strings.ToLower(strings.TrimSpace(username))).Scan(&exists)

	if err != nil {
		return false, fmt.Errorf("user: username lookup failed: %w", err)
	}
	return exists, nil
}

func (s *Service) DoesEmailExist(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM users WHERE email = $1
		)
	`, strings.ToLower(strings.TrimSpace(email))).Scan(&exists)

	if err != nil {
		return false, fmt.Errorf("user: email lookup failed: %w", err)
	}
	return exists, nil
}
