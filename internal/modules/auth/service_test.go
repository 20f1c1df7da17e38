package auth

import (
	"context"
	"testing"
	"time"

	"adbond/internal/domain"
	"adbond/internal/pkg/apperr"
	"adbond/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// Mock User Repository implementing the interface
type mockUserRepo struct {
	mock.Mock
}

func (m *mockUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *mockUserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *mockUserRepo) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	args := m.Called(ctx, id, passwordHash)
	return args.Error(0)
}

// Mock JWT service
type mockJWTService struct {
	mock.Mock
}

func (m *mockJWTService) GenerateToken(userID string, role string) (string, error) {
	args := m.Called(userID, role)
	return args.String(0), args.Error(1)
}

var fixedNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestService(users *mockUserRepo, jwt *mockJWTService) *Service {
	s := NewService(users, jwt)
	s.now = func() time.Time { return fixedNow }
	return s
}

func userWithPassword(t *testing.T, password string) *domain.User {
	t.Helper()
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return &domain.User{
		ID:           "user-10",
		Email:        "user@example.com",
		PasswordHash: string(hashed),
		Role:         domain.RoleAdvertiser,
	}
}

func TestService_Login_Success(t *testing.T) {
	userRepo := new(mockUserRepo)
	jwtSvc := new(mockJWTService)

	existingUser := userWithPassword(t, "password123")
	userRepo.On("GetByEmail", mock.Anything, "user@example.com").Return(existingUser, nil)
	jwtSvc.On("GenerateToken", "user-10", "advertiser").Return("login-token", nil)

	result, err := newTestService(userRepo, jwtSvc).Login(context.Background(), LoginRequest{
		Email:    "  User@Example.com ",
		Password: "password123",
	})

	require.NoError(t, err)
	assert.Equal(t, "login-token", result.AccessToken)
	assert.Empty(t, result.User.PasswordHash)
	jwtSvc.AssertExpectations(t)
}

func TestService_Login_UnknownUser(t *testing.T) {
	userRepo := new(mockUserRepo)
	userRepo.On("GetByEmail", mock.Anything, "ghost@example.com").Return(nil, repository.ErrUserNotFound)

	_, err := newTestService(userRepo, new(mockJWTService)).Login(context.Background(), LoginRequest{
		Email:    "ghost@example.com",
		Password: "whatever",
	})

	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestService_Login_TempPasswordWindow(t *testing.T) {
	tests := []struct {
		name     string
		expires  time.Time
		password string
		wantErr  error
	}{
		{"still valid", fixedNow.Add(time.Hour), "Tmp#Pass1234abcd", nil},
		{"expired", fixedNow.Add(-time.Minute), "Tmp#Pass1234abcd", ErrTempPasswordExpired},
		{"expired with wrong password", fixedNow.Add(-time.Minute), "nope", ErrInvalidCredentials},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			userRepo := new(mockUserRepo)
			jwtSvc := new(mockJWTService)

			u := userWithPassword(t, "Tmp#Pass1234abcd")
			u.PasswordResetRequired = true
			expires := tt.expires
			u.TempPasswordExpires = &expires

			userRepo.On("GetByEmail", mock.Anything, u.Email).Return(u, nil)
			jwtSvc.On("GenerateToken", u.ID, "advertiser").Return("tok", nil).Maybe()

			result, err := newTestService(userRepo, jwtSvc).Login(context.Background(), LoginRequest{
				Email:    u.Email,
				Password: tt.password,
			})

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.True(t, result.User.PasswordResetRequired)
		})
	}
}

func TestService_ChangePassword_ClearsTemporaryCredential(t *testing.T) {
	userRepo := new(mockUserRepo)

	u := userWithPassword(t, "Tmp#Pass1234abcd")
	u.PasswordResetRequired = true
	expires := fixedNow.Add(time.Hour)
	u.TempPasswordExpires = &expires

	userRepo.On("GetByID", mock.Anything, u.ID).Return(u, nil)
	userRepo.On("UpdatePassword", mock.Anything, u.ID, mock.MatchedBy(func(hash string) bool {
		return bcrypt.CompareHashAndPassword([]byte(hash), []byte("brand-new-pass")) == nil
	})).Return(nil)

	err := newTestService(userRepo, new(mockJWTService)).ChangePassword(context.Background(), u.ID, ChangePasswordRequest{
		CurrentPassword: "Tmp#Pass1234abcd",
		NewPassword:     "brand-new-pass",
	})

	require.NoError(t, err)
	userRepo.AssertExpectations(t)
}

func TestService_ChangePassword_Refusals(t *testing.T) {
	expired := fixedNow.Add(-time.Hour)

	tests := []struct {
		name    string
		current string
		next    string
		expires *time.Time
		wantErr error
	}{
		{"wrong current", "bad", "brand-new-pass", nil, ErrInvalidCredentials},
		{"expired temp", "Tmp#Pass1234abcd", "brand-new-pass", &expired, ErrTempPasswordExpired},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			userRepo := new(mockUserRepo)
			u := userWithPassword(t, "Tmp#Pass1234abcd")
			if tt.expires != nil {
				u.PasswordResetRequired = true
				u.TempPasswordExpires = tt.expires
			}
			userRepo.On("GetByID", mock.Anything, u.ID).Return(u, nil)

			err := newTestService(userRepo, new(mockJWTService)).ChangePassword(context.Background(), u.ID, ChangePasswordRequest{
				CurrentPassword: tt.current,
				NewPassword:     tt.next,
			})

			assert.ErrorIs(t, err, tt.wantErr)
			userRepo.AssertNotCalled(t, "UpdatePassword", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestService_ChangePassword_SamePassword(t *testing.T) {
	userRepo := new(mockUserRepo)
	u := userWithPassword(t, "same-password")
	userRepo.On("GetByID", mock.Anything, u.ID).Return(u, nil)

	err := newTestService(userRepo, new(mockJWTService)).ChangePassword(context.Background(), u.ID, ChangePasswordRequest{
		CurrentPassword: "same-password",
		NewPassword:     "same-password",
	})

	assert.True(t, apperr.IsKind(err, apperr.KindValidation))
}

func TestService_GetCurrentUser_Missing(t *testing.T) {
	userRepo := new(mockUserRepo)
	userRepo.On("GetByID", mock.Anything, "gone").Return(nil, repository.ErrUserNotFound)

	_, err := newTestService(userRepo, new(mockJWTService)).GetCurrentUser(context.Background(), "gone")

	assert.ErrorIs(t, err, ErrUnauthorized)
}
