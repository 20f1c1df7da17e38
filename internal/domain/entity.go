package domain

import (
	"strings"
	"time"
)

type EntityType string

const (
	EntityAdvertiser EntityType = "advertiser"
	EntityAffiliate  EntityType = "affiliate"
	EntityNetwork    EntityType = "network"
)

func (t EntityType) Valid() bool {
	switch t {
	case EntityAdvertiser, EntityAffiliate, EntityNetwork:
		return true
	}
	return false
}

type VerificationStatus string

const (
	StatusPending  VerificationStatus = "pending"
	StatusApproved VerificationStatus = "approved"
	StatusRejected VerificationStatus = "rejected"
	StatusOnHold   VerificationStatus = "on_hold"
)

func (s VerificationStatus) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected, StatusOnHold:
		return true
	}
	return false
}

// HasSideEffects reports whether a decision into s sends mail or provisions accounts.
func (s VerificationStatus) HasSideEffects() bool {
	return s == StatusApproved || s == StatusRejected
}

// CanTransition is the admin decision policy on top of the store, which
// itself accepts any transition. Approved entities already own an account,
// so sending them back to pending is refused.
func CanTransition(from, to VerificationStatus) bool {
	if !to.Valid() {
		return false
	}
	if from == StatusApproved && to == StatusPending {
		return false
	}
	return true
}

type ContactInfo struct {
	Phone    string `json:"phone,omitempty"`
	Telegram string `json:"telegram,omitempty"`
	Teams    string `json:"teams,omitempty"`
	LinkedIn string `json:"linkedin,omitempty"`
	Address  string `json:"address,omitempty"`
}

// HasAny reports whether at least one contact channel is filled in.
func (c ContactInfo) HasAny() bool {
	for _, v := range []string{c.Phone, c.Telegram, c.Teams, c.LinkedIn, c.Address} {
		if strings.TrimSpace(v) != "" {
			return true
		}
	}
	return false
}

type Entity struct {
	ID                 string             `json:"id"`
	EntityType         EntityType         `json:"entity_type"`
	Name               string             `json:"name"`
	Email              string             `json:"email"`
	SecondaryEmail     string             `json:"secondary_email,omitempty"`
	Website            string             `json:"website,omitempty"`
	Description        string             `json:"description,omitempty"`
	ContactInfo        ContactInfo        `json:"contact_info"`
	Metadata           Metadata           `json:"metadata"`
	VerificationStatus VerificationStatus `json:"verification_status"`
	ApprovedBy         *string            `json:"approved_by,omitempty"`
	ApprovedAt         *time.Time         `json:"approved_at,omitempty"`
	AdminNotes         string             `json:"admin_notes,omitempty"`
	UserAccountCreated bool               `json:"user_account_created"`
	ReputationScore    float64            `json:"reputation_score"`
	TotalReviews       int                `json:"total_reviews"`
	CreatedAt          time.Time          `json:"created_at"`
	UpdatedAt          time.Time          `json:"updated_at"`
}
