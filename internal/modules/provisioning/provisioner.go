package provisioning

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"adbond/internal/domain"
	"adbond/internal/repository"

	"golang.org/x/crypto/bcrypt"
)

const (
	DefaultTempPasswordTTL = 24 * time.Hour
	tempPasswordLength     = 16
	tempPasswordAlphabet   = "ABCDEFGHJKLMNPQRSTUVWXYZabcdefghijkmnopqrstuvwxyz23456789!@#$%^&*"
)

// ErrDuplicateEmail means a user with the entity's email already exists.
var ErrDuplicateEmail = errors.New("user with this email already exists")

type UserStore interface {
	Create(ctx context.Context, u *domain.User) error
	GetByEntityID(ctx context.Context, entityID string) (*domain.User, error)
	ResetTempCredential(ctx context.Context, id, passwordHash string, expires time.Time) error
}

type Provisioner struct {
	users UserStore
	ttl   time.Duration
	now   func() time.Time
	hash  func(password string) (string, error)
}

func NewProvisioner(users UserStore, ttl time.Duration) *Provisioner {
	if ttl <= 0 {
		ttl = DefaultTempPasswordTTL
	}
	return &Provisioner{
		users: users,
		ttl:   ttl,
		now:   time.Now,
		hash:  hashPassword,
	}
}

// Provision creates the login account for an approved entity. The returned
// plaintext password exists only for the welcome email.
func (p *Provisioner) Provision(ctx context.Context, e *domain.Entity) (*domain.User, string, error) {
	tempPassword, err := GenerateTempPassword(tempPasswordLength)
	if err != nil {
		return nil, "", fmt.Errorf("generate temporary password: %w", err)
	}

	hashed, err := p.hash(tempPassword)
	if err != nil {
		return nil, "", fmt.Errorf("hash temporary password: %w", err)
	}

	first, last := SplitName(e.Name)
	expires := p.now().Add(p.ttl).UTC()
	entityID := e.ID

	user := &domain.User{
		Email:                 e.Email,
		PasswordHash:          hashed,
		Role:                  domain.RoleForEntity(e.EntityType),
		FirstName:             first,
		LastName:              last,
		EntityID:              &entityID,
		PasswordResetRequired: true,
		TempPasswordExpires:   &expires,
	}

	if err := p.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrEmailTaken) {
			return nil, "", fmt.Errorf("%w: %w", ErrDuplicateEmail, err)
		}
		return nil, "", fmt.Errorf("create user for entity %s: %w", e.ID, err)
	}

	return user, tempPassword, nil
}

// Reissue gives the entity's account a fresh temporary password with a new
// expiry. It fails with repository.ErrCredentialInUse once the user has set
// their own password.
func (p *Provisioner) Reissue(ctx context.Context, e *domain.Entity) (*domain.User, string, error) {
	user, err := p.users.GetByEntityID(ctx, e.ID)
	if err != nil {
		return nil, "", err
	}
	if !user.PasswordResetRequired {
		return nil, "", repository.ErrCredentialInUse
	}

	tempPassword, err := GenerateTempPassword(tempPasswordLength)
	if err != nil {
		return nil, "", fmt.Errorf("generate temporary password: %w", err)
	}
	hashed, err := p.hash(tempPassword)
	if err != nil {
		return nil, "", fmt.Errorf("hash temporary password: %w", err)
	}
	expires := p.now().Add(p.ttl).UTC()

	if err := p.users.ResetTempCredential(ctx, user.ID, hashed, expires); err != nil {
		return nil, "", err
	}
	user.PasswordHash = hashed
	user.TempPasswordExpires = &expires
	return user, tempPassword, nil
}

// SplitName treats the first whitespace-delimited token as the first name and
// the rest as the last name.
func SplitName(name string) (first, last string) {
	parts := strings.Fields(name)
	if len(parts) == 0 {
		return "", ""
	}
	return parts[0], strings.Join(parts[1:], " ")
}

func GenerateTempPassword(length int) (string, error) {
	var b strings.Builder
	b.Grow(length)
	max := big.NewInt(int64(len(tempPasswordAlphabet)))
	for i := 0; i < length; i++ {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		b.WriteByte(tempPasswordAlphabet[n.Int64()])
	}
	return b.String(), nil
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
