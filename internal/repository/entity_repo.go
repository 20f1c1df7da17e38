package repository

import (
	"context"
	"strings"
	"time"

	"adbond/internal/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type EntityRepository struct {
	db *gorm.DB
}

func NewEntityRepository(db *gorm.DB) *EntityRepository {
	return &EntityRepository{db: db}
}

func (r *EntityRepository) DB() *gorm.DB { return r.db }

// Create persists a new entity. Status always starts as pending.
func (r *EntityRepository) Create(ctx context.Context, e *domain.Entity) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	e.VerificationStatus = domain.StatusPending
	e.ApprovedBy = nil
	e.ApprovedAt = nil
	e.UserAccountCreated = false

	m, err := toEntityModel(e)
	if err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		return wrapWrite(err)
	}

	created, err := toDomainEntity(m)
	if err != nil {
		return err
	}
	*e = *created
	return nil
}

func (r *EntityRepository) GetByID(ctx context.Context, id string) (*domain.Entity, error) {
	var m entityModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		if isNotFound(err) {
			return nil, ErrEntityNotFound
		}
		return nil, err
	}
	return toDomainEntity(m)
}

func (r *EntityRepository) GetByEmail(ctx context.Context, email string) (*domain.Entity, error) {
	var m entityModel
	if err := r.db.WithContext(ctx).
		Where("LOWER(email) = ?", normalizeEmail(email)).
		First(&m).Error; err != nil {
		if isNotFound(err) {
			return nil, ErrEntityNotFound
		}
		return nil, err
	}
	return toDomainEntity(m)
}

// FindByIDs returns the entities that exist among ids, in no particular order.
func (r *EntityRepository) FindByIDs(ctx context.Context, ids []string) ([]domain.Entity, error) {
	if len(ids) == 0 {
		return []domain.Entity{}, nil
	}
	var rows []entityModel
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	return toDomainEntities(rows)
}

// SetVerificationStatus writes status unconditionally. Approval records
// adminID in approved_by; other transitions leave it untouched.
func (r *EntityRepository) SetVerificationStatus(
	ctx context.Context,
	id string,
	status domain.VerificationStatus,
	adminID, notes string,
) (*domain.Entity, error) {
	tx := r.db.WithContext(ctx).
		Model(&entityModel{}).
		Where("id = ?", id).
		Updates(statusUpdates(status, adminID, notes, time.Now().UTC()))
	if tx.Error != nil {
		return nil, tx.Error
	}
	if tx.RowsAffected == 0 {
		return nil, ErrEntityNotFound
	}
	return r.GetByID(ctx, id)
}

// TransitionStatus moves the entity into status with a single conditional
// UPDATE. won is true only for the call whose UPDATE matched, so concurrent
// decisions for the same target agree on one winner. A repeat decision
// still records non-empty notes.
func (r *EntityRepository) TransitionStatus(
	ctx context.Context,
	id string,
	status domain.VerificationStatus,
	adminID, notes string,
) (entity *domain.Entity, won bool, err error) {
	now := time.Now().UTC()
	tx := r.db.WithContext(ctx).
		Model(&entityModel{}).
		Where("id = ? AND verification_status <> ?", id, string(status)).
		Updates(statusUpdates(status, adminID, notes, now))
	if tx.Error != nil {
		return nil, false, tx.Error
	}
	won = tx.RowsAffected == 1

	if !won && strings.TrimSpace(notes) != "" {
		if err := r.db.WithContext(ctx).
			Model(&entityModel{}).
			Where("id = ? AND verification_status = ?", id, string(status)).
			Updates(map[string]any{"admin_notes": strings.TrimSpace(notes), "updated_at": now}).Error; err != nil {
			return nil, false, err
		}
	}

	entity, err = r.GetByID(ctx, id)
	if err != nil {
		return nil, false, err
	}
	return entity, won, nil
}

// BulkSetVerificationStatus applies status to every matching id in one
// statement. Unknown ids are skipped silently. transitioned lists the ids
// whose status actually changed.
func (r *EntityRepository) BulkSetVerificationStatus(
	ctx context.Context,
	ids []string,
	status domain.VerificationStatus,
	adminID, notes string,
) (updated []domain.Entity, transitioned []string, err error) {
	if len(ids) == 0 {
		return []domain.Entity{}, []string{}, nil
	}
	transitioned = []string{}
	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&entityModel{}).
			Where("id IN ? AND verification_status <> ?", ids, string(status)).
			Pluck("id", &transitioned).Error; err != nil {
			return err
		}
		return tx.Model(&entityModel{}).
			Where("id IN ?", ids).
			Updates(statusUpdates(status, adminID, notes, time.Now().UTC())).Error
	})
	if err != nil {
		return nil, nil, err
	}
	updated, err = r.FindByIDs(ctx, ids)
	if err != nil {
		return nil, nil, err
	}
	return updated, transitioned, nil
}

// MarkAccountCreated sets user_account_created. claimed is true only when
// this call flipped the flag from false, which makes it the provisioning guard.
func (r *EntityRepository) MarkAccountCreated(ctx context.Context, id string) (claimed bool, err error) {
	tx := r.db.WithContext(ctx).
		Model(&entityModel{}).
		Where("id = ? AND user_account_created = ?", id, false).
		Updates(map[string]any{"user_account_created": true, "updated_at": time.Now().UTC()})
	if tx.Error != nil {
		return false, tx.Error
	}
	if tx.RowsAffected == 1 {
		return true, nil
	}
	if _, err := r.GetByID(ctx, id); err != nil {
		return false, err
	}
	return false, nil
}

// ClearAccountCreated releases a claim taken by MarkAccountCreated.
func (r *EntityRepository) ClearAccountCreated(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).
		Model(&entityModel{}).
		Where("id = ?", id).
		Updates(map[string]any{"user_account_created": false, "updated_at": time.Now().UTC()}).Error
}

func (r *EntityRepository) ListByStatus(ctx context.Context, status domain.VerificationStatus, page, limit int) ([]domain.Entity, int64, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	offset := (page - 1) * limit

	q := r.db.WithContext(ctx).Model(&entityModel{}).Where("verification_status = ?", string(status))

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []entityModel
	if err := q.Order("created_at DESC").Limit(limit).Offset(offset).Find(&rows).Error; err != nil {
		return nil, 0, err
	}

	entities, err := toDomainEntities(rows)
	if err != nil {
		return nil, 0, err
	}
	return entities, total, nil
}

// Update writes profile fields. Classification and trust fields are never
// touched here.
func (r *EntityRepository) Update(ctx context.Context, e *domain.Entity) error {
	m, err := toEntityModel(e)
	if err != nil {
		return err
	}
	tx := r.db.WithContext(ctx).
		Model(&entityModel{}).
		Where("id = ?", e.ID).
		Select("name", "email", "secondary_email", "website", "description", "contact_info", "metadata", "updated_at").
		Updates(&entityModel{
			Name:           m.Name,
			Email:          m.Email,
			SecondaryEmail: m.SecondaryEmail,
			Website:        m.Website,
			Description:    m.Description,
			ContactInfo:    m.ContactInfo,
			Metadata:       m.Metadata,
			UpdatedAt:      time.Now().UTC(),
		})
	if tx.Error != nil {
		return wrapWrite(tx.Error)
	}
	if tx.RowsAffected == 0 {
		return ErrEntityNotFound
	}
	return nil
}

// Delete hard-deletes the entity; the linked user goes with it via ON DELETE CASCADE.
func (r *EntityRepository) Delete(ctx context.Context, id string) error {
	tx := r.db.WithContext(ctx).Where("id = ?", id).Delete(&entityModel{})
	if tx.Error != nil {
		return wrapWrite(tx.Error)
	}
	if tx.RowsAffected == 0 {
		return ErrEntityNotFound
	}
	return nil
}

func statusUpdates(status domain.VerificationStatus, adminID, notes string, now time.Time) map[string]any {
	updates := map[string]any{
		"verification_status": string(status),
		"updated_at":          now,
	}
	if status == domain.StatusApproved {
		updates["approved_by"] = nullableString(adminID)
		updates["approved_at"] = now
	}
	if strings.TrimSpace(notes) != "" {
		updates["admin_notes"] = strings.TrimSpace(notes)
	}
	return updates
}

func toDomainEntities(rows []entityModel) ([]domain.Entity, error) {
	out := make([]domain.Entity, 0, len(rows))
	for _, m := range rows {
		e, err := toDomainEntity(m)
		if err != nil {
			return nil, err
		}
		out = append(out, *e)
	}
	return out, nil
}
