package reviews

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/maxmagma/wedstay-backend/pkg/db/models"
)

// Repository handles review persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds a GORM DB to review operations.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create persists a new review row.
func (r *Repository) Create(ctx context.Context, review *models.Review) error {
	if review == nil {
		return fmt.Errorf("review is required")
	}
	return r.db.WithContext(ctx).Create(review).Error
}

// FindByID loads a review by its UUID.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Review, error) {
	var review models.Review
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&review).Error; err != nil {
		return nil, err
	}
	return &review, nil
}

// ListPublishedByProduct returns the visible reviews for a product.
func (r *Repository) ListPublishedByProduct(ctx context.Context, productID uuid.UUID) ([]models.Review, error) {
	var reviews []models.Review
	err := r.db.WithContext(ctx).
		Where("product_id = ? AND is_published", productID).
		Order("created_at DESC").
		Find(&reviews).Error
	return reviews, err
}

// ListPublishedByVendor returns the visible reviews for a vendor.
func (r *Repository) ListPublishedByVendor(ctx context.Context, vendorID uuid.UUID) ([]models.Review, error) {
	var reviews []models.Review
	err := r.db.WithContext(ctx).
		Where("vendor_id = ? AND is_published", vendorID).
		Order("created_at DESC").
		Find(&reviews).Error
	return reviews, err
}

// Update saves the provided review.
func (r *Repository) Update(ctx context.Context, review *models.Review) error {
	if review == nil {
		return fmt.Errorf("review is required")
	}
	return r.db.WithContext(ctx).Save(review).Error
}
