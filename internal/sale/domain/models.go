// Package domain contains the sale model and contracts.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

type SaleStatus string

var (
	SaleStatusActive    SaleStatus = "ACTIVE"
	SaleStatusCancelled SaleStatus = "CANCELLED"
)

type Sale struct {
	ID           snowflake.ID    `json:"id" gorm:"primaryKey"`
	CustomerName string          `json:"customer_name" gorm:"type:text;not null"`
	PolicyNumber string          `json:"policy_number" gorm:"type:text;not null;uniqueIndex"`
	BranchID     snowflake.ID    `json:"branch_id" gorm:"not null;index"`
	PolicyTypeID snowflake.ID    `json:"policy_type_id" gorm:"not null;index"`
	EmployeeID   snowflake.ID    `json:"employee_id" gorm:"not null;index"`
	Amount       decimal.Decimal `json:"amount" gorm:"type:decimal(20,2);not null"`
	Status       SaleStatus      `json:"status" gorm:"type:text;not null"`
	SaleDate     time.Time       `json:"sale_date" gorm:"not null;index"`
	CreatedAt    time.Time       `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt    time.Time       `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (Sale) TableName() string { return "sales" }
