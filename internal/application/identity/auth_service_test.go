package identity

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/erp/procurement/internal/domain/identity"
	"github.com/erp/procurement/internal/domain/shared"
	"github.com/erp/procurement/internal/infrastructure/auth"
	"github.com/erp/procurement/internal/infrastructure/config"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// MockUserRepository is a mock implementation of identity.UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Save(ctx context.Context, user *identity.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*identity.User, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.User), args.Error(1)
}

func (m *MockUserRepository) FindByUsername(ctx context.Context, tenantID uuid.UUID, username string) (*identity.User, error) {
	args := m.Called(ctx, tenantID, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.User), args.Error(1)
}

func (m *MockUserRepository) FindAll(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]*identity.User, int64, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).([]*identity.User), args.Get(1).(int64), args.Error(2)
}

func (m *MockUserRepository) FindByIDs(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) ([]*identity.User, error) {
	args := m.Called(ctx, tenantID, ids)
	return args.Get(0).([]*identity.User), args.Error(1)
}

func (m *MockUserRepository) ExistsByUsername(ctx context.Context, tenantID uuid.UUID, username string) (bool, error) {
	args := m.Called(ctx, tenantID, username)
	return args.Bool(0), args.Error(1)
}

func newTestJWTService() *auth.JWTService {
	return auth.NewJWTService(config.JWTConfig{
		Secret:                "test-secret-key-32-characters-long",
		AccessTokenExpiration: 15 * time.Minute,
		Issuer:                "test-issuer",
	})
}

func createTestUser(t *testing.T, tenantID uuid.UUID) *identity.User {
	t.Helper()
	user, err := identity.NewUser(tenantID, "testuser", "Password123")
	require.NoError(t, err)
	require.NoError(t, user.SetDisplayName("Test User"))
	require.NoError(t, user.SetGroups([]identity.Group{identity.GroupPurchaseUser, identity.GroupPurchaseCP}))
	user.ClearDomainEvents()
	return user
}

func TestAuthService_Login_Success(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()
	userRepo := new(MockUserRepository)
	jwtService := newTestJWTService()

	user := createTestUser(t, tenantID)
	userRepo.On("FindByUsername", ctx, tenantID, "testuser").Return(user, nil)
	userRepo.On("Save", ctx, user).Return(nil)

	svc := NewAuthService(userRepo, jwtService, auth.NewInMemoryTokenBlacklist(), zap.NewNop())
	result, err := svc.Login(ctx, LoginInput{TenantID: tenantID, Username: "testuser", Password: "Password123"})

	require.NoError(t, err)
	assert.NotEmpty(t, result.AccessToken)
	assert.Equal(t, "Bearer", result.TokenType)
	assert.Equal(t, "Test User", result.User.DisplayName)
	assert.NotNil(t, user.LastLoginAt)

	claims, err := jwtService.ValidateAccessToken(result.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, tenantID.String(), claims.TenantID)
	assert.Equal(t, user.ID.String(), claims.UserID)
	assert.True(t, claims.HasPermission(string(identity.GroupPurchaseCP)))
	assert.False(t, claims.HasPermission(string(identity.GroupAdmin)))

	userRepo.AssertExpectations(t)
}

func TestAuthService_Login_InvalidPassword(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()
	userRepo := new(MockUserRepository)

	user := createTestUser(t, tenantID)
	userRepo.On("FindByUsername", ctx, tenantID, "testuser").Return(user, nil)

	svc := NewAuthService(userRepo, newTestJWTService(), auth.NewInMemoryTokenBlacklist(), zap.NewNop())
	result, err := svc.Login(ctx, LoginInput{TenantID: tenantID, Username: "testuser", Password: "wrongpassword1"})

	require.Error(t, err)
	assert.Nil(t, result)
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	userRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestAuthService_Login_UserNotFound(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()
	userRepo := new(MockUserRepository)
	userRepo.On("FindByUsername", ctx, tenantID, "ghost").Return(nil, shared.ErrNotFound)

	svc := NewAuthService(userRepo, newTestJWTService(), auth.NewInMemoryTokenBlacklist(), zap.NewNop())
	_, err := svc.Login(ctx, LoginInput{TenantID: tenantID, Username: "ghost", Password: "Password123"})

	var domainErr *shared.DomainError
	require.True(t, errors.As(err, &domainErr))
	assert.Equal(t, "INVALID_CREDENTIALS", domainErr.Code)
}

func TestAuthService_Login_RepositoryError(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()
	userRepo := new(MockUserRepository)
	dbErr := errors.New("connection refused")
	userRepo.On("FindByUsername", ctx, tenantID, "testuser").Return(nil, dbErr)

	svc := NewAuthService(userRepo, newTestJWTService(), auth.NewInMemoryTokenBlacklist(), zap.NewNop())
	_, err := svc.Login(ctx, LoginInput{TenantID: tenantID, Username: "testuser", Password: "Password123"})

	assert.ErrorIs(t, err, dbErr)
}

func TestAuthService_Login_Deactivated(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()
	userRepo := new(MockUserRepository)

	user := createTestUser(t, tenantID)
	user.Deactivate()
	userRepo.On("FindByUsername", ctx, tenantID, "testuser").Return(user, nil)

	svc := NewAuthService(userRepo, newTestJWTService(), auth.NewInMemoryTokenBlacklist(), zap.NewNop())
	_, err := svc.Login(ctx, LoginInput{TenantID: tenantID, Username: "testuser", Password: "Password123"})

	assert.ErrorIs(t, err, ErrAccountDeactivated)
}

func TestAuthService_Login_SaveFailureStillSucceeds(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()
	userRepo := new(MockUserRepository)

	user := createTestUser(t, tenantID)
	userRepo.On("FindByUsername", ctx, tenantID, "testuser").Return(user, nil)
	userRepo.On("Save", ctx, user).Return(errors.New("write failed"))

	svc := NewAuthService(userRepo, newTestJWTService(), auth.NewInMemoryTokenBlacklist(), zap.NewNop())
	result, err := svc.Login(ctx, LoginInput{TenantID: tenantID, Username: "testuser", Password: "Password123"})

	require.NoError(t, err)
	assert.NotEmpty(t, result.AccessToken)
}

func TestAuthService_Logout(t *testing.T) {
	ctx := context.Background()
	blacklist := auth.NewInMemoryTokenBlacklist()
	svc := NewAuthService(new(MockUserRepository), newTestJWTService(), blacklist, zap.NewNop())

	t.Run("blacklists the token", func(t *testing.T) {
		err := svc.Logout(ctx, LogoutInput{
			UserID:       uuid.New(),
			TenantID:     uuid.New(),
			TokenJTI:     "jti-1",
			RemainingTTL: time.Minute,
		})
		require.NoError(t, err)

		revoked, err := blacklist.IsBlacklisted(ctx, "jti-1")
		require.NoError(t, err)
		assert.True(t, revoked)
	})

	t.Run("expired token is a no-op", func(t *testing.T) {
		err := svc.Logout(ctx, LogoutInput{TokenJTI: "jti-2"})
		require.NoError(t, err)

		revoked, err := blacklist.IsBlacklisted(ctx, "jti-2")
		require.NoError(t, err)
		assert.False(t, revoked)
	})
}
