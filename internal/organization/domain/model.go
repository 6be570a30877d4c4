package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Organization is a billing tenant. Every product, invoice, and schedule
// row is scoped to one organization.
type Organization struct {
	ID        snowflake.ID `gorm:"column:id;primaryKey"`
	Name      string       `gorm:"column:name"`
	Slug      string       `gorm:"column:slug;uniqueIndex"`
	IsDefault bool         `gorm:"column:is_default"`
	CreatedAt time.Time    `gorm:"column:created_at"`
	UpdatedAt time.Time    `gorm:"column:updated_at"`
}

func (Organization) TableName() string {
	return "organizations"
}
