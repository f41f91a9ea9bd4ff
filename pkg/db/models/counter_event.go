package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/maxmagma/wedstay-backend/pkg/enums"
)

// CounterEvent records one applied counter increment. The unique index on
// EventID is the at-most-once guarantee; the Redis reservation is only a
// fast path in front of it.
type CounterEvent struct {
	ID          uuid.UUID               `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	EventID     string                  `gorm:"column:event_id;not null;uniqueIndex"`
	Kind        enums.CounterEventKind  `gorm:"column:kind;type:counter_event_kind;not null"`
	TargetKind  enums.CounterTargetKind `gorm:"column:target_kind;type:counter_target_kind;not null"`
	TargetID    uuid.UUID               `gorm:"column:target_id;type:uuid;not null"`
	Delta       int                     `gorm:"column:delta;not null;default:1"`
	Amount      decimal.NullDecimal     `gorm:"column:amount;type:numeric(12,2)"`
	ProcessedAt time.Time               `gorm:"column:processed_at;autoCreateTime"`
}
