package database

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"

	"github.com/nfrund/neuralfeed/internal/domain"
)

// UserStore implements domain.UserRepository on SurrealDB.
type UserStore struct {
	client *Client[userRecord]
}

// NewUserStore creates a user repository backed by client.
func NewUserStore(client *Client[userRecord]) *UserStore {
	return &UserStore{client: client}
}

// Create inserts a new user. The unique index on email turns a duplicate
// into domain.ErrUserAlreadyExists.
func (s *UserStore) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	rec, err := s.client.Write(ctx, "CREATE $id CONTENT $data", map[string]any{
		"id":   surrealmodels.NewRecordID(tableUser, uuid.NewString()),
		"data": newUserRecord(user),
	})
	if err != nil {
		if isUniqueViolation(err) {
			return nil, domain.ErrUserAlreadyExists
		}
		return nil, WrapError(err, "failed to create user")
	}
	if rec == nil {
		return nil, NewDBError(ErrQueryFailed, "create returned no user")
	}
	return rec.toDomain(), nil
}

// FindByEmail returns domain.ErrNotFound when no user has the address.
func (s *UserStore) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	rec, err := s.client.QueryOne(ctx, "SELECT * FROM user WHERE email = $email", map[string]any{"email": email})
	if err != nil {
		return nil, WrapError(err, "failed to find user by email")
	}
	if rec == nil {
		return nil, domain.ErrNotFound
	}
	return rec.toDomain(), nil
}

// FindByID returns domain.ErrNotFound for an unknown id.
func (s *UserStore) FindByID(ctx context.Context, id string) (*domain.User, error) {
	if id == "" {
		return nil, domain.ErrNotFound
	}
	rec, err := s.client.QueryOne(ctx, "SELECT * FROM $id", map[string]any{
		"id": surrealmodels.NewRecordID(tableUser, id),
	})
	if err != nil {
		return nil, WrapError(err, "failed to find user by id")
	}
	if rec == nil {
		return nil, domain.ErrNotFound
	}
	return rec.toDomain(), nil
}

// ListExcept returns all users but id, newest first.
func (s *UserStore) ListExcept(ctx context.Context, id string) ([]*domain.User, error) {
	recs, err := s.client.Query(ctx, "SELECT * FROM user WHERE id != $id ORDER BY createdAt DESC", map[string]any{
		"id": surrealmodels.NewRecordID(tableUser, id),
	})
	if err != nil {
		return nil, WrapError(err, "failed to list users")
	}
	users := make([]*domain.User, 0, len(recs))
	for i := range recs {
		users = append(users, recs[i].toDomain())
	}
	return users, nil
}

func isUniqueViolation(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "already contains") || strings.Contains(msg, "already exists")
}
