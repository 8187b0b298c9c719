package repository

import (
	"context"
	"errors"

	"agency-backend/internal/model"

	"gorm.io/gorm"
)

type UserRoleRepository interface {
	RoleFor(ctx context.Context, userID string) (string, error)
}

type userRoleRepoImpl struct {
	db *gorm.DB
}

func NewUserRoleRepository(db *gorm.DB) UserRoleRepository {
	return &userRoleRepoImpl{
		db: db,
	}
}

func (r *userRoleRepoImpl) RoleFor(ctx context.Context, userID string) (string, error) {
	var role model.UserRole
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		First(&role).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil
		}
		return "", err
	}

	return role.Role, nil
}
