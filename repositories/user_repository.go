package repositories

import (
	"context"
	"errors"
	"strings"

	"gin-catalog/models"

	"gorm.io/gorm"
)

type IUserRepository interface {
	FindByID(ctx context.Context, id uint) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	GetOrCreate(ctx context.Context, email string, displayName string) (*models.User, error)
	Save(ctx context.Context, user *models.User) error
}

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) IUserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) FindByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	result := r.db.WithContext(ctx).First(&user, "email = ?", strings.ToLower(strings.TrimSpace(email)))
	if result.Error != nil {
		return nil, result.Error
	}
	return &user, nil
}

// GetOrCreate returns the user with the given email, creating it on first
// sight. A concurrent insert of the same email is resolved by re-reading.
func (r *UserRepository) GetOrCreate(ctx context.Context, email string, displayName string) (*models.User, error) {
	user, err := r.FindByEmail(ctx, email)
	if err == nil {
		if user.DisplayName == "" && displayName != "" {
			user.DisplayName = displayName
			if err := r.db.WithContext(ctx).Model(user).Update("display_name", displayName).Error; err != nil {
				return nil, err
			}
		}
		return user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	newUser := models.User{
		Email:       strings.ToLower(strings.TrimSpace(email)),
		DisplayName: displayName,
	}
	if err := r.db.WithContext(ctx).Create(&newUser).Error; err != nil {
		if IsDuplicate(err) {
			return r.FindByEmail(ctx, email)
		}
		return nil, err
	}
	return &newUser, nil
}

func (r *UserRepository) Save(ctx context.Context, user *models.User) error {
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))
	return normalizeError(r.db.WithContext(ctx).Save(user).Error)
}
