package vendors

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/maxmagma/wedstay-backend/pkg/db/models"
	"github.com/maxmagma/wedstay-backend/pkg/enums"
)

// Repository handles vendor persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds a GORM DB to vendor operations.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create persists a new vendor row.
func (r *Repository) Create(ctx context.Context, vendor *models.Vendor) error {
	if vendor == nil {
		return fmt.Errorf("vendor is required")
	}
	return r.db.WithContext(ctx).Create(vendor).Error
}

// FindByID loads a vendor by its UUID.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Vendor, error) {
	var vendor models.Vendor
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&vendor).Error; err != nil {
		return nil, err
	}
	return &vendor, nil
}

// FindByUserID loads the vendor owned by the given profile.
func (r *Repository) FindByUserID(ctx context.Context, userID uuid.UUID) (*models.Vendor, error) {
	var vendor models.Vendor
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&vendor).Error; err != nil {
		return nil, err
	}
	return &vendor, nil
}

// SlugExists reports whether a vendor already claims the slug.
func (r *Repository) SlugExists(ctx context.Context, slug string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Vendor{}).
		Where("slug = ?", slug).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Update saves the provided vendor.
func (r *Repository) Update(ctx context.Context, vendor *models.Vendor) error {
	if vendor == nil {
		return fmt.Errorf("vendor is required")
	}
	return r.db.WithContext(ctx).Save(vendor).Error
}

// TransitionStatus performs a guarded status update: the row is only
// touched when its status still matches from. Returns the number of rows
// affected so callers can detect a lost race.
func (r *Repository) TransitionStatus(ctx context.Context, id uuid.UUID, from, to enums.VendorStatus, extra map[string]any) (int64, error) {
	updates := map[string]any{"status": to}
	for k, v := range extra {
		updates[k] = v
	}
	res := r.db.WithContext(ctx).
		Model(&models.Vendor{}).
		Where("id = ? AND status = ?", id, from).
		Updates(updates)
	return res.RowsAffected, res.Error
}
