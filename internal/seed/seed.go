package seed

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"

	organizationdomain "github.com/leadloom/leadloom/internal/organization/domain"
)

const (
	defaultOrgName = "Main"
	defaultOrgSlug = "main"
)

// EnsureDefaultOrg seeds the default organization for startup bootstrap.
// When id is non-zero the organization is created with that exact ID so
// DEFAULT_ORG in the environment matches the seeded row.
func EnsureDefaultOrg(db *gorm.DB, id int64) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		return err
	}

	ctx := context.Background()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var org organizationdomain.Organization
		err := tx.WithContext(ctx).Where("slug = ?", defaultOrgSlug).First(&org).Error
		if err == nil {
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		orgID := snowflake.ID(id)
		if orgID == 0 {
			orgID = node.Generate()
		}

		now := time.Now().UTC()
		org = organizationdomain.Organization{
			ID:        orgID,
			Name:      defaultOrgName,
			Slug:      defaultOrgSlug,
			IsDefault: true,
			CreatedAt: now,
			UpdatedAt: now,
		}
		return tx.WithContext(ctx).Create(&org).Error
	})
}
