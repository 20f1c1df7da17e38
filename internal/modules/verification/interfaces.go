package verification

import (
	"context"

	"adbond/internal/domain"
	"adbond/internal/notification"
)

type EntityStore interface {
	GetByID(ctx context.Context, id string) (*domain.Entity, error)
	FindByIDs(ctx context.Context, ids []string) ([]domain.Entity, error)
	TransitionStatus(ctx context.Context, id string, status domain.VerificationStatus, adminID, notes string) (*domain.Entity, bool, error)
	BulkSetVerificationStatus(ctx context.Context, ids []string, status domain.VerificationStatus, adminID, notes string) (updated []domain.Entity, transitioned []string, err error)
	MarkAccountCreated(ctx context.Context, id string) (bool, error)
	ClearAccountCreated(ctx context.Context, id string) error
}

type AccountProvisioner interface {
	Provision(ctx context.Context, e *domain.Entity) (*domain.User, string, error)
	Reissue(ctx context.Context, e *domain.Entity) (*domain.User, string, error)
}

type DecisionNotifier interface {
	SendWelcome(ctx context.Context, e *domain.Entity, u *domain.User, tempPassword string) notification.Result
	SendRejection(ctx context.Context, e *domain.Entity, notes string) notification.Result
}
