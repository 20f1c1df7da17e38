package entity

import (
	"context"
	"errors"
	"strings"

	"adbond/internal/domain"
	"adbond/internal/pkg/apperr"
	"adbond/internal/pkg/validator"

	"go.uber.org/zap"
)

var ErrEmailExists = apperr.Conflict("EMAIL_EXISTS", "An entity with this email is already registered")

type Service struct {
	store    EntityStore
	notifier AdminNotifier
	log      *zap.Logger
}

func NewService(store EntityStore, notifier AdminNotifier, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{store: store, notifier: notifier, log: log}
}

// Register validates a self-registration and stores it as pending. The admin
// alert is best effort and never fails the registration.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (*domain.Entity, error) {
	details := validator.Validate(req)

	if !req.ContactInfo.HasAny() {
		details = append(details, apperr.Detail{Field: "contact_info", Message: "at least one contact method is required"})
	}

	var md domain.Metadata
	entityType := domain.EntityType(req.EntityType)
	if entityType.Valid() {
		var err error
		md, err = domain.ParseMetadata(entityType, req.Metadata)
		if err != nil {
			details = append(details, metadataDetails(err)...)
		}
	}

	if len(details) > 0 {
		return nil, apperr.Validation("Validation failed", apperr.WithDetails(details...))
	}

	if err := s.ensureEmailFree(ctx, req.Email, ""); err != nil {
		return nil, err
	}

	e := &domain.Entity{
		EntityType:     entityType,
		Name:           strings.TrimSpace(req.Name),
		Email:          req.Email,
		SecondaryEmail: req.SecondaryEmail,
		Website:        req.Website,
		Description:    req.Description,
		ContactInfo:    req.ContactInfo,
		Metadata:       md,
	}
	if err := s.store.Create(ctx, e); err != nil {
		if errors.Is(err, ErrEmailExists) {
			return nil, ErrEmailExists
		}
		return nil, err
	}

	s.log.Info("entity registered",
		zap.String("entity_id", e.ID),
		zap.String("entity_type", string(e.EntityType)),
	)

	if s.notifier != nil {
		if res := s.notifier.SendAdminNotification(ctx, e); !res.Sent {
			s.log.Warn("admin notification not sent",
				zap.String("entity_id", e.ID),
				zap.String("failure", string(res.Kind)),
				zap.Error(res.Err),
			)
		}
	}

	return e, nil
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Entity, error) {
	return s.store.GetByID(ctx, id)
}

// Update applies profile changes. Type, status and trust fields are not editable here.
func (s *Service) Update(ctx context.Context, id string, req UpdateRequest) (*domain.Entity, error) {
	details := validator.Validate(req)

	e, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.ContactInfo != nil {
		if !req.ContactInfo.HasAny() {
			details = append(details, apperr.Detail{Field: "contact_info", Message: "at least one contact method is required"})
		}
		e.ContactInfo = *req.ContactInfo
	}
	if len(req.Metadata) > 0 {
		md, err := domain.ParseMetadata(e.EntityType, req.Metadata)
		if err != nil {
			details = append(details, metadataDetails(err)...)
		} else {
			e.Metadata = md
		}
	}
	if len(details) > 0 {
		return nil, apperr.Validation("Validation failed", apperr.WithDetails(details...))
	}

	if req.Email != nil && !strings.EqualFold(*req.Email, e.Email) {
		if err := s.ensureEmailFree(ctx, *req.Email, e.ID); err != nil {
			return nil, err
		}
		e.Email = *req.Email
	}
	if req.Name != nil {
		e.Name = strings.TrimSpace(*req.Name)
	}
	if req.SecondaryEmail != nil {
		e.SecondaryEmail = *req.SecondaryEmail
	}
	if req.Website != nil {
		e.Website = *req.Website
	}
	if req.Description != nil {
		e.Description = *req.Description
	}

	if err := s.store.Update(ctx, e); err != nil {
		if errors.Is(err, ErrEmailExists) {
			return nil, ErrEmailExists
		}
		return nil, err
	}
	return s.store.GetByID(ctx, id)
}

func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}
	s.log.Info("entity deleted", zap.String("entity_id", id))
	return nil
}

func (s *Service) ListPending(ctx context.Context, page, limit int) (*PendingList, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	entities, total, err := s.store.ListByStatus(ctx, domain.StatusPending, page, limit)
	if err != nil {
		return nil, err
	}
	return &PendingList{Entities: entities, Total: total, Page: page, Limit: limit}, nil
}

func (s *Service) ensureEmailFree(ctx context.Context, email, selfID string) error {
	existing, err := s.store.GetByEmail(ctx, email)
	switch {
	case err == nil:
		if existing.ID != selfID {
			return ErrEmailExists
		}
		return nil
	case apperr.IsKind(err, apperr.KindNotFound):
		return nil
	default:
		return err
	}
}

func metadataDetails(err error) []apperr.Detail {
	var missing *domain.MissingMetadataError
	if errors.As(err, &missing) {
		out := make([]apperr.Detail, 0, len(missing.Fields))
		for _, f := range missing.Fields {
			out = append(out, apperr.Detail{Field: "metadata." + f, Message: "is required for " + string(missing.EntityType)})
		}
		return out
	}
	return []apperr.Detail{{Field: "metadata", Message: err.Error()}}
}
