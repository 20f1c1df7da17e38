package provisioning

import (
	"context"
	"testing"
	"time"

	"adbond/internal/domain"
	"adbond/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type mockUserRepo struct {
	mock.Mock
}

func (m *mockUserRepo) Create(ctx context.Context, u *domain.User) error {
	args := m.Called(ctx, u)
	return args.Error(0)
}

func (m *mockUserRepo) GetByEntityID(ctx context.Context, entityID string) (*domain.User, error) {
	args := m.Called(ctx, entityID)
	u, _ := args.Get(0).(*domain.User)
	return u, args.Error(1)
}

func (m *mockUserRepo) ResetTempCredential(ctx context.Context, id, passwordHash string, expires time.Time) error {
	args := m.Called(ctx, id, passwordHash, expires)
	return args.Error(0)
}

func acmeEntity() *domain.Entity {
	return &domain.Entity{
		ID:         "ent-1",
		EntityType: domain.EntityAdvertiser,
		Name:       "Acme Media Group",
		Email:      "hello@acme.io",
	}
}

func TestProvision_Success(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	users := new(mockUserRepo)
	users.On("Create", ctx, mock.AnythingOfType("*domain.User")).Return(nil)

	p := NewProvisioner(users, 0)
	p.now = func() time.Time { return now }

	user, password, err := p.Provision(ctx, acmeEntity())
	require.NoError(t, err)

	assert.Len(t, password, tempPasswordLength)
	assert.Equal(t, "hello@acme.io", user.Email)
	assert.Equal(t, domain.RoleAdvertiser, user.Role)
	assert.Equal(t, "Acme", user.FirstName)
	assert.Equal(t, "Media Group", user.LastName)
	require.NotNil(t, user.EntityID)
	assert.Equal(t, "ent-1", *user.EntityID)
	assert.True(t, user.PasswordResetRequired)
	require.NotNil(t, user.TempPasswordExpires)
	assert.Equal(t, now.Add(24*time.Hour), *user.TempPasswordExpires)
	assert.NotEqual(t, password, user.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)))

	users.AssertExpectations(t)
}

func TestProvision_DuplicateEmail(t *testing.T) {
	ctx := context.Background()

	users := new(mockUserRepo)
	users.On("Create", ctx, mock.Anything).Return(repository.ErrEmailTaken)

	_, password, err := NewProvisioner(users, time.Hour).Provision(ctx, acmeEntity())

	assert.ErrorIs(t, err, ErrDuplicateEmail)
	assert.ErrorIs(t, err, repository.ErrEmailTaken)
	assert.Empty(t, password)
}

func TestSplitName(t *testing.T) {
	cases := map[string][2]string{
		"Acme":                {"Acme", ""},
		"  Acme   Media  ":    {"Acme", "Media"},
		"Blue Ocean Ads Ltd.": {"Blue", "Ocean Ads Ltd."},
		"":                    {"", ""},
	}
	for in, want := range cases {
		first, last := SplitName(in)
		assert.Equal(t, want[0], first, in)
		assert.Equal(t, want[1], last, in)
	}
}

func TestGenerateTempPassword_Printable(t *testing.T) {
	a, err := GenerateTempPassword(16)
	require.NoError(t, err)
	b, err := GenerateTempPassword(16)
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
	for _, r := range a {
		assert.Contains(t, tempPasswordAlphabet, string(r))
	}
}

func TestReissue_ReplacesUnusedCredential(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 5, 9, 0, 0, 0, time.UTC)
	entityID := "ent-1"
	existing := &domain.User{ID: "user-1", Email: "hello@acme.io", EntityID: &entityID, PasswordResetRequired: true}

	users := new(mockUserRepo)
	users.On("GetByEntityID", ctx, "ent-1").Return(existing, nil)
	users.On("ResetTempCredential", ctx, "user-1", mock.AnythingOfType("string"), now.Add(time.Hour)).Return(nil)

	p := NewProvisioner(users, time.Hour)
	p.now = func() time.Time { return now }

	user, password, err := p.Reissue(ctx, acmeEntity())
	require.NoError(t, err)

	assert.Len(t, password, tempPasswordLength)
	require.NotNil(t, user.TempPasswordExpires)
	assert.Equal(t, now.Add(time.Hour), *user.TempPasswordExpires)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)))
	users.AssertExpectations(t)
}

func TestReissue_RefusesUsedCredential(t *testing.T) {
	ctx := context.Background()
	users := new(mockUserRepo)
	users.On("GetByEntityID", ctx, "ent-1").Return(&domain.User{ID: "user-1", PasswordResetRequired: false}, nil)

	_, _, err := NewProvisioner(users, 0).Reissue(ctx, acmeEntity())

	assert.ErrorIs(t, err, repository.ErrCredentialInUse)
	users.AssertNotCalled(t, "ResetTempCredential", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}
