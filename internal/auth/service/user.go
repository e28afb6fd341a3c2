package service

import (
	"context"

	"github.com/snippetlab/auth/internal/auth/domain"
	"github.com/snippetlab/auth/internal/auth/store"
)

type UserService struct {
	Store store.Store
}

// GetUserByID fetches a user by id.
func (s *UserService) GetUserByID(ctx context.Context, userID string) (domain.User, error) {
	return s.Store.Users().GetUserByID(ctx, userID)
}
