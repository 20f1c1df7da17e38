package repository

import (
	"errors"
	"strings"

	"adbond/internal/pkg/apperr"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

var (
	ErrEntityNotFound = apperr.New(apperr.KindNotFound, "ENTITY_NOT_FOUND", "entity not found")
	ErrUserNotFound   = apperr.New(apperr.KindNotFound, "USER_NOT_FOUND", "user not found")
	ErrEmailTaken     = apperr.Conflict("EMAIL_EXISTS", "email already exists")
	ErrHasDependents  = apperr.ForeignKey("entity has dependent records; remove them first")

	ErrCredentialInUse = apperr.Conflict("CREDENTIAL_IN_USE", "user has already replaced the temporary password")
)

func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint failed") || strings.Contains(msg, "duplicate key")
}

func isForeignKeyViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrForeignKeyViolated) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23503"
	}
	return strings.Contains(strings.ToLower(err.Error()), "foreign key constraint failed")
}

// wrapWrite maps constraint violations onto the store's taxonomy.
func wrapWrite(err error) error {
	switch {
	case err == nil:
		return nil
	case isUniqueViolation(err):
		return apperr.Conflict(ErrEmailTaken.Code, ErrEmailTaken.Message, apperr.WithErr(err))
	case isForeignKeyViolation(err):
		return apperr.ForeignKey(ErrHasDependents.Message, apperr.WithErr(err))
	}
	return err
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func nullableString(v string) *string {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}
	return &v
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
