package verification

import "adbond/internal/domain"

type DecideRequest struct {
	VerificationStatus string `json:"verification_status" validate:"required,oneof=pending approved rejected on_hold"`
	AdminNotes         string `json:"admin_notes,omitempty" validate:"omitempty,max=2000"`
}

type BulkDecideRequest struct {
	EntityIDs          []string `json:"entity_ids" validate:"required,min=1,max=100,dive,required"`
	VerificationStatus string   `json:"verification_status" validate:"required,oneof=pending approved rejected on_hold"`
	AdminNotes         string   `json:"admin_notes,omitempty" validate:"omitempty,max=2000"`
}

// Decision is the outcome of one verification decision, side effects included.
type Decision struct {
	Entity         *domain.Entity            `json:"entity"`
	PreviousStatus domain.VerificationStatus `json:"previous_status"`
	Transitioned   bool                      `json:"transitioned"`
	AccountCreated bool                      `json:"account_created"`
	UserID         string                    `json:"user_id,omitempty"`
	EmailSent      bool                      `json:"email_sent"`
	Error          string                    `json:"error,omitempty"`
}

type SideEffects struct {
	PreviousStatus domain.VerificationStatus `json:"previous_status"`
	Transitioned   bool                      `json:"transitioned"`
	AccountCreated bool                      `json:"account_created"`
	UserID         string                    `json:"user_id,omitempty"`
	EmailSent      bool                      `json:"email_sent"`
	Error          string                    `json:"error,omitempty"`
}

func (d *Decision) SideEffects() SideEffects {
	return SideEffects{
		PreviousStatus: d.PreviousStatus,
		Transitioned:   d.Transitioned,
		AccountCreated: d.AccountCreated,
		UserID:         d.UserID,
		EmailSent:      d.EmailSent,
		Error:          d.Error,
	}
}

type DecideResponse struct {
	Entity      *domain.Entity `json:"entity"`
	SideEffects SideEffects    `json:"side_effects"`
}

type BulkResult struct {
	EntityID       string `json:"entity_id"`
	Success        bool   `json:"success"`
	Transitioned   bool   `json:"transitioned"`
	AccountCreated bool   `json:"account_created"`
	EmailSent      bool   `json:"email_sent"`
	Error          string `json:"error,omitempty"`
}

type BulkDecision struct {
	UpdatedEntities        []domain.Entity `json:"updated_entities"`
	AccountCreationResults []BulkResult    `json:"account_creation_results"`
}
