package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/wizzchat/wizzchat/internal/domain"
)

// GormUserRepository implements UserRepository using GORM.
type GormUserRepository struct {
	db *gorm.DB
}

// NewGormUserRepository creates a new GORM-based user repository.
func NewGormUserRepository(db *gorm.DB) *GormUserRepository {
	return &GormUserRepository{db: db}
}

// Create creates a new user.
func (r *GormUserRepository) Create(ctx context.Context, user *domain.User) error {
	user.ID = uuid.New().String()
	if user.MessageColor == "" {
		user.MessageColor = domain.DefaultMessageColor
	}

	model := domain.UserToModel(user)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return r.handleError(err)
	}

	user.CreatedAt = model.CreatedAt
	user.UpdatedAt = model.UpdatedAt
	return nil
}

// GetByID retrieves a user by ID.
func (r *GormUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	var model domain.UserModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// GetByEmail retrieves a user by email.
func (r *GormUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	var model domain.UserModel
	if err := r.db.WithContext(ctx).First(&model, "email = ?", email).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// List returns all users ordered by username.
func (r *GormUserRepository) List(ctx context.Context) ([]domain.User, error) {
	var models []domain.UserModel
	if err := r.db.WithContext(ctx).Order("username asc").Find(&models).Error; err != nil {
		return nil, err
	}

	users := make([]domain.User, 0, len(models))
	for i := range models {
		users = append(users, *models[i].ToDomain())
	}
	return users, nil
}

// Update updates a user's mutable profile fields.
func (r *GormUserRepository) Update(ctx context.Context, user *domain.User) error {
	var count int64
	if err := r.db.WithContext(ctx).Model(&domain.UserModel{}).
		Where("id = ?", user.ID).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return ErrUserNotFound
	}

	err := r.db.WithContext(ctx).Model(&domain.UserModel{}).
		Where("id = ?", user.ID).
		Updates(map[string]interface{}{
			"username":      user.Username,
			"message_color": user.MessageColor,
		}).Error
	if err != nil {
		return r.handleError(err)
	}

	var updated domain.UserModel
	r.db.WithContext(ctx).First(&updated, "id = ?", user.ID)
	user.UpdatedAt = updated.UpdatedAt
	return nil
}

// SetOnline updates a user's online flag.
func (r *GormUserRepository) SetOnline(ctx context.Context, id string, online bool) error {
	// RowsAffected is unreliable here: setting the flag to its current value
	// reports zero rows on some drivers.
	var count int64
	if err := r.db.WithContext(ctx).Model(&domain.UserModel{}).
		Where("id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return ErrUserNotFound
	}

	return r.db.WithContext(ctx).Model(&domain.UserModel{}).
		Where("id = ?", id).
		Update("is_online", online).Error
}

// handleError converts database-specific errors to domain errors.
func (r *GormUserRepository) handleError(err error) error {
	errStr := err.Error()

	// Unique constraint violations, phrased differently per driver.
	if strings.Contains(errStr, "duplicate key") ||
		strings.Contains(errStr, "UNIQUE constraint") ||
		strings.Contains(errStr, "Duplicate entry") {
		if strings.Contains(errStr, "email") {
			return ErrEmailExists
		}
		if strings.Contains(errStr, "username") {
			return ErrUsernameExists
		}
	}

	return err
}
