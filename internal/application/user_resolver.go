package application

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// UserRepository captures the persistence operations needed for user
// resolution and lookup.
type UserRepository interface {
	CreateUser(ctx context.Context, user User) (User, error)
	GetUser(ctx context.Context, id string) (User, error)
	GetUserByEmail(ctx context.Context, email string) (User, error)
}

// UserResolver resolves a user by email, creating the account on first
// reference. Commands share a single resolver instead of duplicating the
// create-if-absent logic per use case.
type UserResolver interface {
	ResolveOrCreate(ctx context.Context, email, name string) (User, error)
}

// EmailUserResolver implements UserResolver against a user repository.
type EmailUserResolver struct {
	users       UserRepository
	idGenerator func() string
	now         func() time.Time
}

// NewEmailUserResolver wires dependencies for upsert-by-email resolution.
func NewEmailUserResolver(users UserRepository, idGenerator func() string, now func() time.Time) *EmailUserResolver {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &EmailUserResolver{users: users, idGenerator: idGenerator, now: now}
}

// ResolveOrCreate returns the user registered under the email, creating
// one when absent. A blank name defaults to the local part of the email.
func (r *EmailUserResolver) ResolveOrCreate(ctx context.Context, email, name string) (User, error) {
	if r == nil || r.users == nil {
		return User{}, fmt.Errorf("user repository not configured")
	}

	normalized := strings.ToLower(strings.TrimSpace(email))

	existing, err := r.users.GetUserByEmail(ctx, normalized)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return User{}, err
	}

	displayName := strings.TrimSpace(name)
	if displayName == "" {
		displayName = localPart(normalized)
	}

	createdAt := r.now()
	return r.users.CreateUser(ctx, User{
		ID:        r.idGenerator(),
		Email:     normalized,
		Name:      displayName,
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	})
}

func localPart(email string) string {
	if at := strings.Index(email, "@"); at > 0 {
		return email[:at]
	}
	return email
}
