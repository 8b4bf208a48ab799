package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/Skotchmaster/auth_service/internal/models"
)

type GormRepo struct {
	DB *gorm.DB
}

func (r *GormRepo) Get(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := r.DB.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (r *GormRepo) Create(ctx context.Context, user *models.User) error {
	tx := r.DB.WithContext(ctx).Where("username = ?", user.Username).FirstOrCreate(user)
	if tx.Error != nil {
		// The unique index breaks the tie when two inserts race past the
		// existence check.
		if errors.Is(tx.Error, gorm.ErrDuplicatedKey) {
			return ErrUserAlreadyExists
		}
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return ErrUserAlreadyExists
	}
	return nil
}

func (r *GormRepo) List(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if err := r.DB.WithContext(ctx).Order("id").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func (r *GormRepo) SetDisabled(ctx context.Context, username string, disabled bool) error {
	tx := r.DB.WithContext(ctx).Model(&models.User{}).
		Where("username = ?", username).
		Update("disabled", disabled)
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
