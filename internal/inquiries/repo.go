package inquiries

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/maxmagma/wedstay-backend/pkg/db/models"
	"github.com/maxmagma/wedstay-backend/pkg/enums"
)

// Repository handles inquiry persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds a GORM DB to inquiry operations.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create persists a new inquiry row.
func (r *Repository) Create(ctx context.Context, inquiry *models.Inquiry) error {
	if inquiry == nil {
		return fmt.Errorf("inquiry is required")
	}
	return r.db.WithContext(ctx).Create(inquiry).Error
}

// FindByID loads an inquiry by its UUID.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Inquiry, error) {
	var inquiry models.Inquiry
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&inquiry).Error; err != nil {
		return nil, err
	}
	return &inquiry, nil
}

// ListByUser returns a customer's own inquiries, newest first.
func (r *Repository) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Inquiry, error) {
	var inquiries []models.Inquiry
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&inquiries).Error
	return inquiries, err
}

// ListForVendor returns inquiries whose item list references at least one
// of the vendor's products. The items column is a JSONB array of
// {productId, quantity} objects.
func (r *Repository) ListForVendor(ctx context.Context, vendorID uuid.UUID) ([]models.Inquiry, error) {
	var inquiries []models.Inquiry
	err := r.db.WithContext(ctx).Raw(`
		SELECT DISTINCT i.*
		FROM inquiries i,
		     jsonb_array_elements(i.items) AS it
		JOIN products p ON p.id = (it->>'productId')::uuid
		WHERE p.vendor_id = ?
		ORDER BY i.created_at DESC`, vendorID).
		Scan(&inquiries).Error
	return inquiries, err
}

// TransitionStatus performs a guarded status update: the row is only
// touched when its status still matches from. extra carries additional
// column writes applied in the same statement, which is how the quote
// history is appended atomically with the pending to quoted step.
func (r *Repository) TransitionStatus(ctx context.Context, id uuid.UUID, from, to enums.InquiryStatus, extra map[string]any) (int64, error) {
	updates := map[string]any{"status": to}
	for k, v := range extra {
		updates[k] = v
	}
	res := r.db.WithContext(ctx).
		Model(&models.Inquiry{}).
		Where("id = ? AND status = ?", id, from).
		Updates(updates)
	return res.RowsAffected, res.Error
}
