package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"moonex/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrCodeNotFound = errors.New("admin code not found or inactive")

// RoleRepository backs the authorization capability: role lookups plus
// one-shot admin-code redemption.
type RoleRepository interface {
	HasRole(ctx context.Context, userID uint, role string) (bool, error)
	GrantRole(ctx context.Context, userID uint, role string) error
	GetActiveCode(ctx context.Context, code string) (*models.AdminCode, error)
	// ConsumeCode deactivates an active code for the given user. It
	// reports ErrCodeNotFound when the code was already used, so two
	// concurrent redemptions cannot both succeed.
	ConsumeCode(ctx context.Context, codeID string, userID uint) error
	ExecuteInTransaction(fn func(RoleRepository) error) error
}

type roleRepository struct {
	db *gorm.DB
}

func NewRoleRepository(db *gorm.DB) RoleRepository {
	return &roleRepository{db: db}
}

func (r *roleRepository) HasRole(ctx context.Context, userID uint, role string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.UserRole{}).
		Where("user_id = ? AND role = ?", userID, role).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check role: %w", err)
	}
	return count > 0, nil
}

func (r *roleRepository) GrantRole(ctx context.Context, userID uint, role string) error {
	userRole := models.UserRole{UserID: userID, Role: role}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "role"}},
			DoNothing: true,
		}).
		Create(&userRole).Error
	if err != nil {
		return fmt.Errorf("failed to grant role: %w", err)
	}
	return nil
}

func (r *roleRepository) GetActiveCode(ctx context.Context, code string) (*models.AdminCode, error) {
	var adminCode models.AdminCode
	err := r.db.WithContext(ctx).
		Where("code = ? AND is_active = ?", code, true).
		First(&adminCode).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCodeNotFound
		}
		return nil, fmt.Errorf("failed to get admin code: %w", err)
	}
	return &adminCode, nil
}

func (r *roleRepository) ConsumeCode(ctx context.Context, codeID string, userID uint) error {
	now := time.Now().UTC()
	res := r.db.WithContext(ctx).Model(&models.AdminCode{}).
		Where("id = ? AND is_active = ?", codeID, true).
		Updates(map[string]interface{}{
			"is_active": false,
			"used_by":   userID,
			"used_at":   now,
		})
	if res.Error != nil {
		return fmt.Errorf("failed to consume admin code: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrCodeNotFound
	}
	return nil
}

func (r *roleRepository) ExecuteInTransaction(fn func(RoleRepository) error) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		return fn(&roleRepository{db: tx})
	})
}
