package auth

import (
	"context"

	"adbond/internal/domain"
)

// UserRepositoryInterface lists the user repository methods the auth service uses.
type UserRepositoryInterface interface {
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id string) (*domain.User, error)
	UpdatePassword(ctx context.Context, id, passwordHash string) error
}

type jwtService interface {
	GenerateToken(userID string, role string) (string, error)
}
