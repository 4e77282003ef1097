package identity

import (
	"context"
	"time"

	"github.com/erp/procurement/internal/domain/identity"
	"github.com/erp/procurement/internal/domain/shared"
	"github.com/erp/procurement/internal/infrastructure/auth"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrUsernameExists is returned when the username is taken in the tenant
var ErrUsernameExists = shared.NewDomainError("USERNAME_EXISTS", "Username already exists")

// UserService handles user management operations
type UserService struct {
	userRepo       identity.UserRepository
	blacklist      auth.TokenBlacklist
	tokenTTL       time.Duration
	logger         *zap.Logger
	eventPublisher shared.EventPublisher
}

// NewUserService creates a new user service. tokenTTL is the access token
// lifetime, used to revoke outstanding tokens when groups change.
func NewUserService(
	userRepo identity.UserRepository,
	blacklist auth.TokenBlacklist,
	tokenTTL time.Duration,
	logger *zap.Logger,
) *UserService {
	return &UserService{
		userRepo:  userRepo,
		blacklist: blacklist,
		tokenTTL:  tokenTTL,
		logger:    logger,
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *UserService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// Create creates a new user
func (s *UserService) Create(ctx context.Context, tenantID uuid.UUID, input CreateUserInput) (*UserDTO, error) {
	exists, err := s.userRepo.ExistsByUsername(ctx, tenantID, input.Username)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrUsernameExists
	}

	user, err := identity.NewUser(tenantID, input.Username, input.Password)
	if err != nil {
		return nil, err
	}
	if err := user.SetDisplayName(input.DisplayName); err != nil {
		return nil, err
	}
	if input.Email != "" {
		user.SetEmail(input.Email)
	}
	if len(input.Groups) > 0 {
		if err := user.SetGroups(toGroups(input.Groups)); err != nil {
			return nil, err
		}
	}

	if err := s.userRepo.Save(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("User created",
		zap.String("user_id", user.ID.String()),
		zap.String("username", user.Username),
		zap.Strings("groups", user.Permissions()))

	s.publish(ctx, user)

	dto := ToUserDTO(user)
	return &dto, nil
}

// GetByID retrieves a user
func (s *UserService) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*UserDTO, error) {
	user, err := s.userRepo.FindByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	dto := ToUserDTO(user)
	return &dto, nil
}

// List retrieves users with filtering and pagination
func (s *UserService) List(ctx context.Context, tenantID uuid.UUID, filter UserListFilter) ([]UserDTO, int64, error) {
	domainFilter := shared.DefaultFilter()
	if filter.Page > 0 {
		domainFilter.Page = filter.Page
	}
	if filter.PageSize > 0 {
		domainFilter.PageSize = filter.PageSize
	}
	domainFilter.Search = filter.Search
	if filter.Group != "" {
		domainFilter.Filters["group"] = filter.Group
	}
	if filter.Active != nil {
		domainFilter.Filters["active"] = *filter.Active
	}

	users, total, err := s.userRepo.FindAll(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	items := make([]UserDTO, len(users))
	for i, u := range users {
		items[i] = ToUserDTO(u)
	}
	return items, total, nil
}

// SetGroups replaces the user's security groups. Tokens issued before the
// change carry stale groups and are revoked.
func (s *UserService) SetGroups(ctx context.Context, tenantID, id uuid.UUID, input SetGroupsInput) (*UserDTO, error) {
	user, err := s.userRepo.FindByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if err := user.SetGroups(toGroups(input.Groups)); err != nil {
		return nil, err
	}
	if err := s.userRepo.Save(ctx, user); err != nil {
		return nil, err
	}

	if err := s.blacklist.InvalidateUserTokens(ctx, user.ID.String(), s.tokenTTL); err != nil {
		s.logger.Error("Failed to revoke user tokens after group change",
			zap.String("user_id", user.ID.String()), zap.Error(err))
	}

	s.logger.Info("User groups changed",
		zap.String("user_id", user.ID.String()),
		zap.Strings("groups", user.Permissions()))

	s.publish(ctx, user)

	dto := ToUserDTO(user)
	return &dto, nil
}

// Deactivate blocks the user and revokes its tokens
func (s *UserService) Deactivate(ctx context.Context, tenantID, id uuid.UUID) (*UserDTO, error) {
	user, err := s.userRepo.FindByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	user.Deactivate()
	if err := s.userRepo.Save(ctx, user); err != nil {
		return nil, err
	}
	if err := s.blacklist.InvalidateUserTokens(ctx, user.ID.String(), s.tokenTTL); err != nil {
		s.logger.Error("Failed to revoke tokens of deactivated user",
			zap.String("user_id", user.ID.String()), zap.Error(err))
	}
	dto := ToUserDTO(user)
	return &dto, nil
}

func (s *UserService) publish(ctx context.Context, user *identity.User) {
	events := user.GetDomainEvents()
	user.ClearDomainEvents()
	if s.eventPublisher == nil || len(events) == 0 {
		return
	}
	if err := s.eventPublisher.Publish(ctx, events...); err != nil {
		s.logger.Error("Failed to publish user events", zap.Error(err))
	}
}
