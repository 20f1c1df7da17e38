package entity

import (
	"context"

	"adbond/internal/domain"
	"adbond/internal/notification"
)

// EntityStore lists the repository methods registration and admin CRUD use.
type EntityStore interface {
	Create(ctx context.Context, e *domain.Entity) error
	GetByID(ctx context.Context, id string) (*domain.Entity, error)
	GetByEmail(ctx context.Context, email string) (*domain.Entity, error)
	Update(ctx context.Context, e *domain.Entity) error
	Delete(ctx context.Context, id string) error
	ListByStatus(ctx context.Context, status domain.VerificationStatus, page, limit int) ([]domain.Entity, int64, error)
}

type AdminNotifier interface {
	SendAdminNotification(ctx context.Context, e *domain.Entity) notification.Result
}
