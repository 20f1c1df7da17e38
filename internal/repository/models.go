package repository

import (
	"encoding/json"
	"fmt"
	"time"

	"adbond/internal/domain"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type entityModel struct {
	ID                 string         `gorm:"column:id;primaryKey;type:varchar(36)"`
	EntityType         string         `gorm:"column:entity_type;type:varchar(20);not null;index"`
	Name               string         `gorm:"column:name;not null"`
	Email              string         `gorm:"column:email;not null;uniqueIndex"`
	SecondaryEmail     *string        `gorm:"column:secondary_email"`
	Website            *string        `gorm:"column:website"`
	Description        *string        `gorm:"column:description"`
	ContactInfo        datatypes.JSON `gorm:"column:contact_info"`
	Metadata           datatypes.JSON `gorm:"column:metadata"`
	VerificationStatus string         `gorm:"column:verification_status;type:varchar(20);not null;default:pending;index"`
	ApprovedBy         *string        `gorm:"column:approved_by;type:varchar(36)"`
	ApprovedAt         *time.Time     `gorm:"column:approved_at"`
	AdminNotes         *string        `gorm:"column:admin_notes"`
	UserAccountCreated bool           `gorm:"column:user_account_created;not null;default:false"`
	ReputationScore    float64        `gorm:"column:reputation_score;type:decimal(3,2);not null;default:0"`
	TotalReviews       int            `gorm:"column:total_reviews;not null;default:0"`
	CreatedAt          time.Time      `gorm:"column:created_at"`
	UpdatedAt          time.Time      `gorm:"column:updated_at"`
}

func (entityModel) TableName() string { return "entities" }

type userModel struct {
	ID                    string       `gorm:"column:id;primaryKey;type:varchar(36)"`
	Email                 string       `gorm:"column:email;not null;uniqueIndex"`
	PasswordHash          string       `gorm:"column:password_hash;not null"`
	Role                  string       `gorm:"column:role;type:varchar(20);not null"`
	FirstName             string       `gorm:"column:first_name"`
	LastName              string       `gorm:"column:last_name"`
	EntityID              *string      `gorm:"column:entity_id;type:varchar(36);uniqueIndex"`
	Entity                *entityModel `gorm:"foreignKey:EntityID;references:ID;constraint:OnDelete:CASCADE"`
	PasswordResetRequired bool         `gorm:"column:password_reset_required;not null;default:false"`
	TempPasswordExpires   *time.Time   `gorm:"column:temp_password_expires"`
	CreatedAt             time.Time    `gorm:"column:created_at"`
	UpdatedAt             time.Time    `gorm:"column:updated_at"`
}

func (userModel) TableName() string { return "users" }

// AutoMigrate creates or updates the tables backing the entity and user stores.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&entityModel{}, &userModel{})
}

func toDomainEntity(m entityModel) (*domain.Entity, error) {
	t := domain.EntityType(m.EntityType)

	var contact domain.ContactInfo
	if len(m.ContactInfo) > 0 {
		if err := json.Unmarshal(m.ContactInfo, &contact); err != nil {
			return nil, fmt.Errorf("decode contact_info for entity %s: %w", m.ID, err)
		}
	}
	md, err := domain.DecodeMetadata(t, m.Metadata)
	if err != nil {
		return nil, fmt.Errorf("decode metadata for entity %s: %w", m.ID, err)
	}

	return &domain.Entity{
		ID:                 m.ID,
		EntityType:         t,
		Name:               m.Name,
		Email:              m.Email,
		SecondaryEmail:     deref(m.SecondaryEmail),
		Website:            deref(m.Website),
		Description:        deref(m.Description),
		ContactInfo:        contact,
		Metadata:           md,
		VerificationStatus: domain.VerificationStatus(m.VerificationStatus),
		ApprovedBy:         m.ApprovedBy,
		ApprovedAt:         m.ApprovedAt,
		AdminNotes:         deref(m.AdminNotes),
		UserAccountCreated: m.UserAccountCreated,
		ReputationScore:    m.ReputationScore,
		TotalReviews:       m.TotalReviews,
		CreatedAt:          m.CreatedAt,
		UpdatedAt:          m.UpdatedAt,
	}, nil
}

func toEntityModel(e *domain.Entity) (entityModel, error) {
	contact, err := json.Marshal(e.ContactInfo)
	if err != nil {
		return entityModel{}, err
	}
	md := []byte("{}")
	if e.Metadata != nil {
		if md, err = json.Marshal(e.Metadata); err != nil {
			return entityModel{}, err
		}
	}

	return entityModel{
		ID:                 e.ID,
		EntityType:         string(e.EntityType),
		Name:               e.Name,
		Email:              normalizeEmail(e.Email),
		SecondaryEmail:     nullableString(e.SecondaryEmail),
		Website:            nullableString(e.Website),
		Description:        nullableString(e.Description),
		ContactInfo:        datatypes.JSON(contact),
		Metadata:           datatypes.JSON(md),
		VerificationStatus: string(e.VerificationStatus),
		ApprovedBy:         e.ApprovedBy,
		ApprovedAt:         e.ApprovedAt,
		AdminNotes:         nullableString(e.AdminNotes),
		UserAccountCreated: e.UserAccountCreated,
		ReputationScore:    e.ReputationScore,
		TotalReviews:       e.TotalReviews,
		CreatedAt:          e.CreatedAt,
		UpdatedAt:          e.UpdatedAt,
	}, nil
}

func toDomainUser(m userModel) *domain.User {
	return &domain.User{
		ID:                    m.ID,
		Email:                 m.Email,
		PasswordHash:          m.PasswordHash,
		Role:                  domain.UserRole(m.Role),
		FirstName:             m.FirstName,
		LastName:              m.LastName,
		EntityID:              m.EntityID,
		PasswordResetRequired: m.PasswordResetRequired,
		TempPasswordExpires:   m.TempPasswordExpires,
		CreatedAt:             m.CreatedAt,
		UpdatedAt:             m.UpdatedAt,
	}
}

func toUserModel(u *domain.User) userModel {
	return userModel{
		ID:                    u.ID,
		Email:                 normalizeEmail(u.Email),
		PasswordHash:          u.PasswordHash,
		Role:                  string(u.Role),
		FirstName:             u.FirstName,
		LastName:              u.LastName,
		EntityID:              u.EntityID,
		PasswordResetRequired: u.PasswordResetRequired,
		TempPasswordExpires:   u.TempPasswordExpires,
		CreatedAt:             u.CreatedAt,
		UpdatedAt:             u.UpdatedAt,
	}
}
