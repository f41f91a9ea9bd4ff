package aggregator

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/maxmagma/wedstay-backend/pkg/db/models"
)

// productCounterColumns whitelists the relaxed product counters.
var productCounterColumns = map[string]bool{
	"views":     true,
	"inquiries": true,
	"cart_adds": true,
	"orders":    true,
}

// vendorCounterColumns whitelists the relaxed vendor counters.
var vendorCounterColumns = map[string]bool{
	"total_inquiries": true,
	"total_products":  true,
}

// Repository handles counter event persistence and the denormalized
// counter writes derived from them.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds a GORM DB to aggregator operations.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// InsertEventTx records the processed event inside the transaction. The
// unique index on event_id makes this the at-most-once gate.
func (r *Repository) InsertEventTx(tx *gorm.DB, event *models.CounterEvent) error {
	if tx == nil {
		return gorm.ErrInvalidTransaction
	}
	if event == nil {
		return fmt.Errorf("event is required")
	}
	return tx.Create(event).Error
}

// IncrementProductCounterTx applies a relaxed single-statement increment.
func (r *Repository) IncrementProductCounterTx(tx *gorm.DB, productID uuid.UUID, column string, delta int) error {
	if tx == nil {
		return gorm.ErrInvalidTransaction
	}
	if !productCounterColumns[column] {
		return fmt.Errorf("unknown product counter %q", column)
	}
	return tx.Model(&models.Product{}).
		Where("id = ?", productID).
		UpdateColumn(column, gorm.Expr(column+" + ?", delta)).Error
}

// IncrementVendorCounterTx applies a relaxed single-statement increment.
func (r *Repository) IncrementVendorCounterTx(tx *gorm.DB, vendorID uuid.UUID, column string, delta int) error {
	if tx == nil {
		return gorm.ErrInvalidTransaction
	}
	if !vendorCounterColumns[column] {
		return fmt.Errorf("unknown vendor counter %q", column)
	}
	return tx.Model(&models.Vendor{}).
		Where("id = ?", vendorID).
		UpdateColumn(column, gorm.Expr(column+" + ?", delta)).Error
}

// AddVendorRevenueTx applies a revenue delta with the strict
// read-modify-write discipline: the row is locked for the duration of
// the transaction.
func (r *Repository) AddVendorRevenueTx(tx *gorm.DB, vendorID uuid.UUID, amount decimal.Decimal) error {
	if tx == nil {
		return gorm.ErrInvalidTransaction
	}
	var vendor models.Vendor
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&vendor, "id = ?", vendorID).Error; err != nil {
		return err
	}
	vendor.TotalRevenue = vendor.TotalRevenue.Add(amount)
	return tx.Model(&models.Vendor{}).
		Where("id = ?", vendorID).
		UpdateColumn("total_revenue", vendor.TotalRevenue).Error
}

// ReconcileProductCounters rewrites every product counter from the event
// log, discarding any drift the relaxed increments accumulated.
func (r *Repository) ReconcileProductCounters(ctx context.Context) error {
	stmts := map[string]string{
		"views":     "view",
		"inquiries": "inquiry",
		"cart_adds": "cart_add",
		"orders":    "order",
	}
	for column, kind := range stmts {
		sql := fmt.Sprintf(`UPDATE products p SET %s = COALESCE((
			SELECT SUM(ce.delta) FROM counter_events ce
			WHERE ce.target_kind = 'product' AND ce.kind = ? AND ce.target_id = p.id
		), 0)`, column)
		if err := r.db.WithContext(ctx).Exec(sql, kind).Error; err != nil {
			return fmt.Errorf("reconcile products.%s: %w", column, err)
		}
	}
	return nil
}

// ReconcileVendorProducts recounts each vendor's live products.
func (r *Repository) ReconcileVendorProducts(ctx context.Context) error {
	return r.db.WithContext(ctx).Exec(`UPDATE vendors v SET total_products = (
		SELECT COUNT(*) FROM products p WHERE p.vendor_id = v.id
	)`).Error
}

// ReconcileVendorInquiries rewrites vendor inquiry totals from the event log.
func (r *Repository) ReconcileVendorInquiries(ctx context.Context) error {
	return r.db.WithContext(ctx).Exec(`UPDATE vendors v SET total_inquiries = COALESCE((
		SELECT SUM(ce.delta) FROM counter_events ce
		WHERE ce.target_kind = 'vendor' AND ce.kind = 'inquiry' AND ce.target_id = v.id
	), 0)`).Error
}

// ReconcileVendorRevenue recomputes revenue from order history. Refunded
// orders left the completed status, so they drop out of the sum on their own.
func (r *Repository) ReconcileVendorRevenue(ctx context.Context) error {
	return r.db.WithContext(ctx).Exec(`UPDATE vendors v SET total_revenue = COALESCE((
		SELECT SUM((it->>'price')::numeric * (it->>'quantity')::int)
		FROM orders o, jsonb_array_elements(o.items) AS it
		WHERE o.status = 'completed' AND (it->>'vendorId')::uuid = v.id
	), 0)`).Error
}

// ReconcileVendorRatings recomputes the published review average.
func (r *Repository) ReconcileVendorRatings(ctx context.Context) error {
	return r.db.WithContext(ctx).Exec(`UPDATE vendors v SET average_rating = (
		SELECT ROUND(AVG(rating)::numeric, 2) FROM reviews rv
		WHERE rv.vendor_id = v.id AND rv.is_published
	)`).Error
}
