package repository

import (
	"context"
	"time"

	"adbond/internal/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) DB() *gorm.DB { return r.db }

func (r *UserRepository) Create(ctx context.Context, u *domain.User) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	m := toUserModel(u)
	if err := r.db.WithContext(ctx).Omit("Entity").Create(&m).Error; err != nil {
		return wrapWrite(err)
	}
	*u = *toDomainUser(m)
	return nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	var m userModel
	tx := r.db.WithContext(ctx).
		Where("LOWER(email) = ?", normalizeEmail(email)).
		First(&m)
	if tx.Error != nil {
		if isNotFound(tx.Error) {
			return nil, ErrUserNotFound
		}
		return nil, tx.Error
	}
	return toDomainUser(m), nil
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	var m userModel
	tx := r.db.WithContext(ctx).Where("id = ?", id).First(&m)
	if tx.Error != nil {
		if isNotFound(tx.Error) {
			return nil, ErrUserNotFound
		}
		return nil, tx.Error
	}
	return toDomainUser(m), nil
}

func (r *UserRepository) GetByEntityID(ctx context.Context, entityID string) (*domain.User, error) {
	var m userModel
	tx := r.db.WithContext(ctx).Where("entity_id = ?", entityID).First(&m)
	if tx.Error != nil {
		if isNotFound(tx.Error) {
			return nil, ErrUserNotFound
		}
		return nil, tx.Error
	}
	return toDomainUser(m), nil
}

func (r *UserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&userModel{}).
		Where("LOWER(email) = ?", normalizeEmail(email)).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// UpdatePassword stores a new hash and clears the temporary-credential pair together.
func (r *UserRepository) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	tx := r.db.WithContext(ctx).
		Model(&userModel{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"password_hash":           passwordHash,
			"password_reset_required": false,
			"temp_password_expires":   nil,
			"updated_at":              time.Now().UTC(),
		})
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

// ResetTempCredential replaces a still-unused temporary password. Users who
// already set their own password are left alone.
func (r *UserRepository) ResetTempCredential(ctx context.Context, id, passwordHash string, expires time.Time) error {
	tx := r.db.WithContext(ctx).
		Model(&userModel{}).
		Where("id = ? AND password_reset_required = ?", id, true).
		Updates(map[string]any{
			"password_hash":         passwordHash,
			"temp_password_expires": expires.UTC(),
			"updated_at":            time.Now().UTC(),
		})
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return ErrCredentialInUse
	}
	return nil
}

// ListExpiredTempCredentials returns users whose temporary password expired
// before now without being replaced.
func (r *UserRepository) ListExpiredTempCredentials(ctx context.Context, now time.Time) ([]domain.User, error) {
	var rows []userModel
	if err := r.db.WithContext(ctx).
		Where("password_reset_required = ? AND temp_password_expires IS NOT NULL AND temp_password_expires <= ?", true, now.UTC()).
		Order("temp_password_expires ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]domain.User, 0, len(rows))
	for _, m := range rows {
		out = append(out, *toDomainUser(m))
	}
	return out, nil
}
