package repository

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/goblogdev/goblog/models"
)

// UserRepository manages registered accounts.
type UserRepository interface {
	// Create persists a new account; a duplicate email yields ErrConflict.
	Create(ctx context.Context, user *models.User) error
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id uint) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
	// UpdateLastLogin stamps last_login without touching other columns.
	UpdateLastLogin(ctx context.Context, id uint, at time.Time) error
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a gorm backed UserRepository.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	return translateErr(r.db.WithContext(ctx).Create(user).Error)
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	email = strings.ToLower(strings.TrimSpace(email))
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, translateErr(err)
	}
	return &user, nil
}

func (r *userRepository) FindByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, translateErr(err)
	}
	return &user, nil
}

func (r *userRepository) Update(ctx context.Context, user *models.User) error {
	return translateErr(r.db.WithContext(ctx).Save(user).Error)
}

func (r *userRepository) UpdateLastLogin(ctx context.Context, id uint, at time.Time) error {
	return translateErr(r.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", id).
		UpdateColumn("last_login", at).Error)
}
