package postgres

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"dynamo-user-service/internal/domain/user"
	apperrors "dynamo-user-service/pkg/errors"
)

// UserRepoPG implements the Repository interface on a SQL database through GORM.
// It runs against PostgreSQL in production and SQLite locally.
type UserRepoPG struct {
	db  *gorm.DB    // GORM database connection
	log *zap.Logger // Structured logger for database operations
}

// NewUserRepoPG creates a new instance of UserRepoPG.
func NewUserRepoPG(db *gorm.DB, log *zap.Logger) *UserRepoPG {
	return &UserRepoPG{db: db, log: log}
}

// UserSchema represents the database schema for the users table.
type UserSchema struct {
	ID           string `gorm:"primaryKey;size:64"`
	Name         string `gorm:"not null"`
	EmailAddress string `gorm:"column:email_address;not null"`
}

// TableName specifies the table name for the UserSchema model.
func (UserSchema) TableName() string {
	return "users"
}

func (m UserSchema) toDomain() *user.User {
	return &user.User{
		ID:           m.ID,
		Name:         m.Name,
		EmailAddress: m.EmailAddress,
	}
}

// EnsureSchema migrates the users table.
func (r *UserRepoPG) EnsureSchema(ctx context.Context) error {
	if err := r.db.WithContext(ctx).AutoMigrate(&UserSchema{}); err != nil {
		return fmt.Errorf("failed to migrate users table: %w", err)
	}
	return nil
}

// Create inserts a new user into the database.
func (r *UserRepoPG) Create(ctx context.Context, u *user.User) (*user.User, error) {
	if u == nil {
		return nil, errors.New("user cannot be nil")
	}

	model := fromDomain(*u)

	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperrors.NewAlreadyExistsError("user", u.ID, err)
		}
		r.log.Error("failed to create user in db", zap.Error(err), zap.String("id", u.ID))
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	r.log.Info("user created in db", zap.String("id", model.ID))
	return model.toDomain(), nil
}

// Update upserts the patch columns for id and returns the row as stored.
// The row is created when missing, matching DynamoDB UpdateItem.
func (r *UserRepoPG) Update(ctx context.Context, id string, patch user.UserPatch) (*user.User, error) {
	model := fromDomain(patch.Apply(user.User{ID: id}))

	var columns []string
	if patch.Name != nil {
		columns = append(columns, "name")
	}
	if patch.EmailAddress != nil {
		columns = append(columns, "email_address")
	}

	onConflict := clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoNothing: true,
	}
	if len(columns) > 0 {
		onConflict = clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns(columns),
		}
	}

	db := r.db.WithContext(ctx)
	if err := db.Clauses(onConflict).Create(&model).Error; err != nil {
		r.log.Error("failed to update user in db", zap.Error(err), zap.String("id", id))
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	var stored UserSchema
	if err := db.First(&stored, "id = ?", id).Error; err != nil {
		r.log.Error("failed to reload user after update", zap.Error(err), zap.String("id", id))
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	r.log.Info("user updated in db", zap.String("id", id))
	return stored.toDomain(), nil
}

// Delete removes a user from the database by ID. Missing rows are not an error.
func (r *UserRepoPG) Delete(ctx context.Context, id string) error {
	if err := r.db.WithContext(ctx).Delete(&UserSchema{}, "id = ?", id).Error; err != nil {
		r.log.Error("failed to delete user in db", zap.Error(err), zap.String("id", id))
		return fmt.Errorf("failed to delete user: %w", err)
	}

	r.log.Info("user deleted in db", zap.String("id", id))
	return nil
}

// GetByID retrieves a user from the database by their unique ID.
func (r *UserRepoPG) GetByID(ctx context.Context, id string) (*user.User, error) {
	var model UserSchema
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			r.log.Debug("user not found", zap.String("id", id))
			return nil, nil
		}
		r.log.Error("failed to get user from db", zap.Error(err), zap.String("id", id))
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return model.toDomain(), nil
}

// List retrieves every user ordered by id.
func (r *UserRepoPG) List(ctx context.Context) ([]user.User, error) {
	var models []UserSchema
	if err := r.db.WithContext(ctx).Order("id").Find(&models).Error; err != nil {
		r.log.Error("failed to list users from db", zap.Error(err))
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	users := make([]user.User, len(models))
	for i, model := range models {
		users[i] = *model.toDomain()
	}

	return users, nil
}

func fromDomain(u user.User) UserSchema {
	return UserSchema{
		ID:           u.ID,
		Name:         u.Name,
		EmailAddress: u.EmailAddress,
	}
}
