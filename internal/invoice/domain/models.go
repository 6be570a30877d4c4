// Package domain contains persistence models for invoicing.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// InvoiceStatus represents invoice lifecycle states.
type InvoiceStatus string

const (
	InvoiceStatusDraft InvoiceStatus = "DRAFT"
	InvoiceStatusOpen  InvoiceStatus = "OPEN"
	InvoiceStatusPaid  InvoiceStatus = "PAID"
	InvoiceStatusVoid  InvoiceStatus = "VOID"
)

// Invoice represents a calculated, persisted invoice.
type Invoice struct {
	ID                 snowflake.ID      `gorm:"primaryKey"`
	OrgID              snowflake.ID      `gorm:"not null;index"`
	Status             InvoiceStatus     `gorm:"type:text;not null;default:'DRAFT'"`
	Currency           string            `gorm:"type:text;not null"`
	TotalDiscountMinor int64             `gorm:"not null;default:0"`
	TotalTaxMinor      int64             `gorm:"not null;default:0"`
	TotalMinor         int64             `gorm:"not null;default:0"`
	TotalCogsMinor     int64             `gorm:"not null;default:0"`
	IdempotencyKey     *string           `gorm:"type:text;index"`
	IssuedAt           time.Time         `gorm:"not null"`
	Metadata           datatypes.JSONMap `gorm:"type:jsonb"`
	CreatedAt          time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt          time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (Invoice) TableName() string { return "invoices" }

// InvoiceLine represents one priced line on an invoice.
type InvoiceLine struct {
	ID               snowflake.ID `gorm:"primaryKey"`
	OrgID            snowflake.ID `gorm:"not null;index"`
	InvoiceID        snowflake.ID `gorm:"not null;index"`
	ProductID        snowflake.ID `gorm:"not null;index"`
	Description      string       `gorm:"type:text"`
	Quantity         int64        `gorm:"not null"`
	UnitPriceMinor   int64        `gorm:"not null"`
	DiscountMinor    int64        `gorm:"not null;default:0"`
	TaxableBaseMinor int64        `gorm:"not null;default:0"`
	TaxMinor         int64        `gorm:"not null;default:0"`
	CogsMinor        int64        `gorm:"not null;default:0"`
	TotalMinor       int64        `gorm:"not null"`
	CreatedAt        time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (InvoiceLine) TableName() string { return "invoice_lines" }
