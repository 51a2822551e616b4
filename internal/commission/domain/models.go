// Package domain contains the persisted commission output and the engine
// contracts.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

// CommissionLog is the at-most-one-per-sale record of the computed
// commission. The engine replaces it wholesale on every recalculation.
type CommissionLog struct {
	ID         snowflake.ID    `json:"id" gorm:"primaryKey"`
	SaleID     snowflake.ID    `json:"sale_id" gorm:"not null;uniqueIndex"`
	EmployeeID snowflake.ID    `json:"employee_id" gorm:"not null;index"`
	Amount     decimal.Decimal `json:"amount" gorm:"type:decimal(20,2);not null"`
	RuleID     *snowflake.ID   `json:"rule_id,omitempty" gorm:"index"`
	Source     Source          `json:"source" gorm:"type:text;not null"`
	CreatedAt  time.Time       `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (CommissionLog) TableName() string { return "commission_logs" }
