package verification

import (
	"context"
	"errors"
	"fmt"

	"adbond/internal/domain"
	"adbond/internal/pkg/apperr"

	"go.uber.org/zap"
)

const (
	CodeInvalidTransition = "INVALID_TRANSITION"
	CodeNotApproved       = "ENTITY_NOT_APPROVED"
)

type Service struct {
	store       EntityStore
	provisioner AccountProvisioner
	notifier    DecisionNotifier
	log         *zap.Logger
}

func NewService(store EntityStore, provisioner AccountProvisioner, notifier DecisionNotifier, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		store:       store,
		provisioner: provisioner,
		notifier:    notifier,
		log:         log,
	}
}

// Decide records an admin decision for one entity and runs its side effects.
// Side-effect failures are reported on the Decision; they never fail the
// call or roll back the status change.
func (s *Service) Decide(ctx context.Context, entityID string, status domain.VerificationStatus, adminID, notes string) (*Decision, error) {
	if !status.Valid() {
		return nil, invalidStatus(status)
	}

	current, err := s.store.GetByID(ctx, entityID)
	if err != nil {
		return nil, err
	}
	prev := current.VerificationStatus
	if !domain.CanTransition(prev, status) {
		return nil, invalidTransition(prev, status)
	}

	updated, won, err := s.store.TransitionStatus(ctx, entityID, status, adminID, notes)
	if err != nil {
		return nil, err
	}

	d := &Decision{Entity: updated, PreviousStatus: prev, Transitioned: won}

	s.log.Info("verification decision",
		zap.String("entity_id", entityID),
		zap.String("admin_id", adminID),
		zap.String("from", string(prev)),
		zap.String("to", string(status)),
		zap.Bool("transitioned", won),
	)

	switch {
	case status == domain.StatusApproved && (won || !updated.UserAccountCreated):
		s.provision(ctx, d)
	case status == domain.StatusRejected && won:
		s.sendRejection(ctx, d, notes)
	}

	return d, nil
}

// provision claims the account flag first, so only one caller per entity
// ever reaches the provisioner.
func (s *Service) provision(ctx context.Context, d *Decision) {
	e := d.Entity
	log := s.log.With(zap.String("entity_id", e.ID))

	claimed, err := s.store.MarkAccountCreated(ctx, e.ID)
	if err != nil {
		log.Error("claim account flag failed", zap.Error(err))
		d.Error = "account creation failed: " + err.Error()
		return
	}
	if !claimed {
		log.Info("account already provisioned, skipping")
		return
	}

	user, tempPassword, err := s.provisioner.Provision(ctx, e)
	if err != nil {
		if clearErr := s.store.ClearAccountCreated(ctx, e.ID); clearErr != nil {
			log.Error("release account flag failed", zap.Error(clearErr))
		}
		log.Error("account provisioning failed", zap.Error(err))
		d.Error = "account creation failed: " + err.Error()
		return
	}

	e.UserAccountCreated = true
	d.AccountCreated = true
	d.UserID = user.ID
	log.Info("account provisioned", zap.String("user_id", user.ID))

	res := s.notifier.SendWelcome(ctx, e, user, tempPassword)
	d.EmailSent = res.Sent
	if !res.Sent {
		log.Warn("welcome email not sent", zap.String("failure", string(res.Kind)), zap.Error(res.Err))
		d.Error = fmt.Sprintf("welcome email failed (%s)", res.Kind)
	}
}

func (s *Service) sendRejection(ctx context.Context, d *Decision, notes string) {
	res := s.notifier.SendRejection(ctx, d.Entity, notes)
	d.EmailSent = res.Sent
	if !res.Sent {
		s.log.Warn("rejection email not sent",
			zap.String("entity_id", d.Entity.ID),
			zap.String("failure", string(res.Kind)),
			zap.Error(res.Err),
		)
		d.Error = fmt.Sprintf("rejection email failed (%s)", res.Kind)
	}
}

// ReissueCredentials sends a fresh temporary password to an approved entity
// whose account still waits for its first login. An approved entity without
// an account is provisioned instead.
func (s *Service) ReissueCredentials(ctx context.Context, entityID, adminID string) (*Decision, error) {
	e, err := s.store.GetByID(ctx, entityID)
	if err != nil {
		return nil, err
	}
	if e.VerificationStatus != domain.StatusApproved {
		return nil, apperr.New(apperr.KindValidation, CodeNotApproved,
			fmt.Sprintf("credentials can only be issued for approved entities, entity is %s", e.VerificationStatus))
	}

	d := &Decision{Entity: e, PreviousStatus: e.VerificationStatus}
	log := s.log.With(zap.String("entity_id", e.ID), zap.String("admin_id", adminID))

	if !e.UserAccountCreated {
		log.Info("no account yet, provisioning")
		s.provision(ctx, d)
		return d, nil
	}

	user, tempPassword, err := s.provisioner.Reissue(ctx, e)
	if err != nil {
		log.Warn("credential reissue refused", zap.Error(err))
		return nil, err
	}
	d.UserID = user.ID
	log.Info("temporary credential reissued", zap.String("user_id", user.ID))

	res := s.notifier.SendWelcome(ctx, e, user, tempPassword)
	d.EmailSent = res.Sent
	if !res.Sent {
		log.Warn("welcome email not sent", zap.String("failure", string(res.Kind)), zap.Error(res.Err))
		d.Error = fmt.Sprintf("welcome email failed (%s)", res.Kind)
	}
	return d, nil
}

// DecideBulk applies one decision to many entities. Approvals and rejections
// go through Decide row by row; other targets are written in one statement.
// A failing row never aborts the batch.
func (s *Service) DecideBulk(ctx context.Context, ids []string, status domain.VerificationStatus, adminID, notes string) (*BulkDecision, error) {
	ids = uniqueIDs(ids)
	if len(ids) == 0 {
		return nil, apperr.Validation("Validation failed", apperr.WithDetails(apperr.Detail{
			Field:   "entity_ids",
			Message: "at least one entity id is required",
		}))
	}
	if !status.Valid() {
		return nil, invalidStatus(status)
	}

	if status.HasSideEffects() {
		return s.decideEach(ctx, ids, status, adminID, notes), nil
	}
	return s.decideSilent(ctx, ids, status, adminID, notes)
}

func (s *Service) decideEach(ctx context.Context, ids []string, status domain.VerificationStatus, adminID, notes string) *BulkDecision {
	out := &BulkDecision{
		UpdatedEntities:        make([]domain.Entity, 0, len(ids)),
		AccountCreationResults: make([]BulkResult, 0, len(ids)),
	}
	for _, id := range ids {
		d, err := s.Decide(ctx, id, status, adminID, notes)
		if err != nil {
			s.log.Warn("bulk decision skipped row", zap.String("entity_id", id), zap.Error(err))
			out.AccountCreationResults = append(out.AccountCreationResults, BulkResult{
				EntityID: id,
				Error:    rowError(err),
			})
			continue
		}
		out.UpdatedEntities = append(out.UpdatedEntities, *d.Entity)
		out.AccountCreationResults = append(out.AccountCreationResults, BulkResult{
			EntityID:       id,
			Success:        d.Error == "",
			Transitioned:   d.Transitioned,
			AccountCreated: d.AccountCreated,
			EmailSent:      d.EmailSent,
			Error:          d.Error,
		})
	}
	return out
}

func (s *Service) decideSilent(ctx context.Context, ids []string, status domain.VerificationStatus, adminID, notes string) (*BulkDecision, error) {
	rows, err := s.store.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]domain.Entity, len(rows))
	for _, row := range rows {
		byID[row.ID] = row
	}

	results := make(map[string]BulkResult, len(ids))
	allowed := make([]string, 0, len(rows))
	for _, id := range ids {
		row, ok := byID[id]
		switch {
		case !ok:
			results[id] = BulkResult{EntityID: id, Error: "entity not found"}
		case !domain.CanTransition(row.VerificationStatus, status):
			results[id] = BulkResult{EntityID: id, Error: invalidTransition(row.VerificationStatus, status).Message}
		default:
			allowed = append(allowed, id)
			results[id] = BulkResult{EntityID: id, Success: true}
		}
	}

	updated, transitioned, err := s.store.BulkSetVerificationStatus(ctx, allowed, status, adminID, notes)
	if err != nil {
		return nil, err
	}
	for _, id := range transitioned {
		r := results[id]
		r.Transitioned = true
		results[id] = r
	}

	s.log.Info("bulk verification decision",
		zap.String("admin_id", adminID),
		zap.String("to", string(status)),
		zap.Int("requested", len(ids)),
		zap.Int("updated", len(updated)),
		zap.Int("transitioned", len(transitioned)),
	)

	out := &BulkDecision{
		UpdatedEntities:        updated,
		AccountCreationResults: make([]BulkResult, 0, len(ids)),
	}
	for _, id := range ids {
		out.AccountCreationResults = append(out.AccountCreationResults, results[id])
	}
	return out, nil
}

func invalidStatus(status domain.VerificationStatus) *apperr.Error {
	return apperr.Validation("Validation failed", apperr.WithDetails(apperr.Detail{
		Field:   "verification_status",
		Message: fmt.Sprintf("%q is not one of: pending approved rejected on_hold", status),
	}))
}

func invalidTransition(from, to domain.VerificationStatus) *apperr.Error {
	return apperr.New(apperr.KindValidation, CodeInvalidTransition,
		fmt.Sprintf("cannot move entity from %s to %s", from, to))
}

func rowError(err error) string {
	var ae *apperr.Error
	if errors.As(err, &ae) {
		return ae.Message
	}
	return err.Error()
}

func uniqueIDs(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
