package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/codmenta/Merify/database"
	apperrors "github.com/codmenta/Merify/errors"
	"github.com/codmenta/Merify/models"
)

const usersDocument = "users"

var ErrUserNotFound = errors.New("user not found")

type UserRepository interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
}

type documentUserRepository struct {
	store database.DocumentStore
}

func NewUserRepository(store database.DocumentStore) UserRepository {
	return &documentUserRepository{store: store}
}

// FindByEmail scans the user records; the document is keyed by an arbitrary
// id, not necessarily the email.
func (r *documentUserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var users map[string]models.User
	if err := r.store.Load(ctx, usersDocument, &users, map[string]models.User{}); err != nil {
		return nil, apperrors.Store("load users", err)
	}
	for _, u := range users {
		if strings.EqualFold(u.Email, email) {
			if u.Role == "" {
				u.Role = models.RoleCustomer
			}
			return &u, nil
		}
	}
	return nil, ErrUserNotFound
}
