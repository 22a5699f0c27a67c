package user

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	domain "dynamo-user-service/internal/domain/user"
	apperrors "dynamo-user-service/pkg/errors"
)

// Repository defines the interface for user data access operations.
// Implementations exist for DynamoDB and for SQL databases through GORM.
type Repository interface {
	// Create persists a new user and fails if the id is taken.
	Create(ctx context.Context, u *domain.User) (*domain.User, error)
	// GetByID returns nil, nil when no record exists.
	GetByID(ctx context.Context, id string) (*domain.User, error)
	// Update writes the patch fields and returns the stored record.
	Update(ctx context.Context, id string, patch domain.UserPatch) (*domain.User, error)
	// Delete removes by id; absent ids are not an error.
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]domain.User, error)
}

// Usecase implements the business logic for user management operations.
// It holds no state between requests beyond its collaborators.
type Usecase struct {
	repo     Repository
	log      *zap.Logger
	validate *validator.Validate
	newID    func() string
}

// New creates a new instance of Usecase with the provided repository and logger.
func New(r Repository, log *zap.Logger) *Usecase {
	return &Usecase{
		repo:     r,
		log:      log,
		validate: validator.New(),
		newID:    uuid.NewString,
	}
}

// formatValidationError converts validator.ValidationErrors into a *errors.ValidationError.
func formatValidationError(err error) error {
	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}

	messages := make([]string, 0, len(validationErrors))
	for _, e := range validationErrors {
		switch e.Tag() {
		case "required":
			messages = append(messages, fmt.Sprintf("%s is required", e.Field()))
		default:
			messages = append(messages, fmt.Sprintf("%s is invalid", e.Field()))
		}
	}
	return apperrors.NewValidationError("", strings.Join(messages, ", "))
}

// CreateUser generates a fresh identifier, persists the user and returns the stored record.
func (uc *Usecase) CreateUser(ctx context.Context, in CreateUserRequest) (*User, error) {
	if err := uc.validate.Struct(in); err != nil {
		uc.log.Warn("validate failed", zap.Error(err))
		return nil, formatValidationError(err)
	}

	id := uc.newID()
	uc.log.Info("creating user", zap.String("id", id), zap.String("name", in.Name))

	created, err := uc.repo.Create(ctx, &domain.User{
		ID:           id,
		Name:         in.Name,
		EmailAddress: in.EmailAddress,
	})
	if err != nil {
		uc.log.Error("failed to create user", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	return toDTO(created), nil
}

// UpdateUser writes the supplied fields against an identifier and returns the merged record.
func (uc *Usecase) UpdateUser(ctx context.Context, in UpdateUserRequest) (*User, error) {
	if err := uc.validate.Struct(in); err != nil {
		uc.log.Warn("validate failed", zap.Error(err))
		return nil, formatValidationError(err)
	}

	uc.log.Info("updating user", zap.String("id", in.ID))

	updated, err := uc.repo.Update(ctx, in.ID, domain.UserPatch{
		Name:         in.Name,
		EmailAddress: in.EmailAddress,
	})
	if err != nil {
		uc.log.Error("failed to update user", zap.String("id", in.ID), zap.Error(err))
		return nil, err
	}

	return toDTO(updated), nil
}

// DeleteUser removes a user. Deleting an unknown id succeeds.
func (uc *Usecase) DeleteUser(ctx context.Context, in DeleteUserRequest) error {
	if err := uc.validate.Struct(in); err != nil {
		uc.log.Warn("delete user validation failed", zap.Error(err))
		return formatValidationError(err)
	}

	uc.log.Info("deleting user", zap.String("id", in.ID))

	if err := uc.repo.Delete(ctx, in.ID); err != nil {
		uc.log.Error("failed to delete user", zap.String("id", in.ID), zap.Error(err))
		return err
	}
	return nil
}

// GetUser retrieves a user by ID. A missing record yields *errors.NotFoundError.
func (uc *Usecase) GetUser(ctx context.Context, in GetUserRequest) (*User, error) {
	if err := uc.validate.Struct(in); err != nil {
		uc.log.Warn("get user validation failed", zap.Error(err))
		return nil, formatValidationError(err)
	}

	u, err := uc.repo.GetByID(ctx, in.ID)
	if err != nil {
		uc.log.Error("failed to get user", zap.String("id", in.ID), zap.Error(err))
		return nil, err
	}
	if u == nil {
		uc.log.Debug("user not found", zap.String("id", in.ID))
		return nil, apperrors.NewNotFoundError("user", in.ID)
	}

	return toDTO(u), nil
}

// ListUsers returns every stored user.
func (uc *Usecase) ListUsers(ctx context.Context) (*ListUsersResponse, error) {
	domainUsers, err := uc.repo.List(ctx)
	if err != nil {
		uc.log.Error("failed to list users", zap.Error(err))
		return nil, err
	}

	users := make([]User, len(domainUsers))
	for i := range domainUsers {
		users[i] = *toDTO(&domainUsers[i])
	}

	return &ListUsersResponse{Users: users}, nil
}

func toDTO(u *domain.User) *User {
	return &User{
		ID:           u.ID,
		Name:         u.Name,
		EmailAddress: u.EmailAddress,
	}
}
