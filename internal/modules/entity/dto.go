package entity

import (
	"encoding/json"

	"adbond/internal/domain"
)

type RegisterRequest struct {
	EntityType     string             `json:"entity_type" validate:"required,oneof=advertiser affiliate network"`
	Name           string             `json:"name" validate:"required,min=2,max=255"`
	Email          string             `json:"email" validate:"required,email,max=255"`
	SecondaryEmail string             `json:"secondary_email,omitempty" validate:"omitempty,email,max=255"`
	Website        string             `json:"website,omitempty" validate:"omitempty,url,max=500"`
	Description    string             `json:"description,omitempty" validate:"omitempty,max=5000"`
	ContactInfo    domain.ContactInfo `json:"contact_info"`
	Metadata       json.RawMessage    `json:"metadata"`
}

// UpdateRequest carries profile fields only; nil means unchanged.
type UpdateRequest struct {
	Name           *string             `json:"name,omitempty" validate:"omitempty,min=2,max=255"`
	Email          *string             `json:"email,omitempty" validate:"omitempty,email,max=255"`
	SecondaryEmail *string             `json:"secondary_email,omitempty" validate:"omitempty,email,max=255"`
	Website        *string             `json:"website,omitempty" validate:"omitempty,url,max=500"`
	Description    *string             `json:"description,omitempty" validate:"omitempty,max=5000"`
	ContactInfo    *domain.ContactInfo `json:"contact_info,omitempty"`
	Metadata       json.RawMessage     `json:"metadata,omitempty"`
}

type PendingList struct {
	Entities []domain.Entity `json:"entities"`
	Total    int64           `json:"total"`
	Page     int             `json:"page"`
	Limit    int             `json:"limit"`
}
