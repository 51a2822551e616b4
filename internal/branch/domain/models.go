// Package domain contains the branch model and contracts.
package domain

import (
	"encoding/json"
	"strconv"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// SettingCommissionRate is the branch settings key holding the default
// commission rate fraction (0.10 = 10%). Used only when no rule matches.
const SettingCommissionRate = "commission_rate"

type Branch struct {
	ID        snowflake.ID      `json:"id" gorm:"primaryKey"`
	Name      string            `json:"name" gorm:"type:text;not null"`
	Code      string            `json:"code" gorm:"type:text;not null;uniqueIndex"`
	Settings  datatypes.JSONMap `json:"settings" gorm:"type:jsonb"`
	IsActive  bool              `json:"is_active" gorm:"not null;default:true"`
	CreatedAt time.Time         `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time         `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (Branch) TableName() string { return "branches" }

// CommissionRate reads the default rate from settings. The second return
// reports whether the setting is present at all; an explicit 0 counts as
// present and suppresses any further fallback.
func (b Branch) CommissionRate() (decimal.Decimal, bool) {
	if b.Settings == nil {
		return decimal.Zero, false
	}
	raw, ok := b.Settings[SettingCommissionRate]
	if !ok || raw == nil {
		return decimal.Zero, false
	}

	switch v := raw.(type) {
	case float64:
		return decimal.NewFromFloat(v), true
	case int:
		return decimal.NewFromInt(int64(v)), true
	case int64:
		return decimal.NewFromInt(v), true
	case json.Number:
		parsed, err := decimal.NewFromString(v.String())
		if err != nil {
			return decimal.Zero, false
		}
		return parsed, true
	case string:
		parsed, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return decimal.Zero, false
		}
		return decimal.NewFromFloat(parsed), true
	default:
		return decimal.Zero, false
	}
}
