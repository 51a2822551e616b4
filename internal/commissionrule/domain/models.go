// Package domain contains the commission rule model and contracts.
//
// A rule is a scoped, time-bounded override describing how commission is
// computed for matching sales. Rules are created and deleted through the
// admin endpoints and never mutated by the engine.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

type CommissionRule struct {
	ID           snowflake.ID  `json:"id" gorm:"primaryKey"`
	Name         string        `json:"name" gorm:"type:text;not null"`
	BranchID     *snowflake.ID `json:"branch_id,omitempty" gorm:"index"`
	PolicyTypeID *snowflake.ID `json:"policy_type_id,omitempty" gorm:"index"`
	Formula      string        `json:"formula" gorm:"type:text;not null"`
	ValidFrom    time.Time     `json:"valid_from" gorm:"not null;index"`
	ValidTo      *time.Time    `json:"valid_to,omitempty" gorm:"index"`
	IsActive     bool          `json:"is_active" gorm:"not null;default:true;index"`
	CreatedAt    time.Time     `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (CommissionRule) TableName() string { return "commission_rules" }

// SpecificityScore ranks how narrowly the rule is scoped. Branch scope
// outweighs policy-type scope: both (3) > branch-only (2) >
// policy-type-only (1) > global (0).
func (r CommissionRule) SpecificityScore() int {
	score := 0
	if r.BranchID != nil {
		score += 2
	}
	if r.PolicyTypeID != nil {
		score += 1
	}
	return score
}

// AppliesTo reports whether the rule matches the given scope on the given
// day. Validity windows are day-granular and inclusive on both ends.
func (r CommissionRule) AppliesTo(branchID, policyTypeID snowflake.ID, asOf time.Time) bool {
	day := StartOfDay(asOf)

	if StartOfDay(r.ValidFrom).After(day) {
		return false
	}
	if r.ValidTo != nil && EndOfDay(*r.ValidTo).Before(day) {
		return false
	}
	if r.BranchID != nil && *r.BranchID != branchID {
		return false
	}
	if r.PolicyTypeID != nil && *r.PolicyTypeID != policyTypeID {
		return false
	}
	return true
}

// StartOfDay truncates to midnight UTC.
func StartOfDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// EndOfDay normalizes to 23:59:59.999 UTC so inclusive valid_to
// comparisons behave at day granularity.
func EndOfDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, 999_000_000, time.UTC)
}
