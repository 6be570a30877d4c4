package migration

import (
	"go.uber.org/fx"
	"gorm.io/gorm"

	"github.com/leadloom/leadloom/internal/config"
	invoicedomain "github.com/leadloom/leadloom/internal/invoice/domain"
	organizationdomain "github.com/leadloom/leadloom/internal/organization/domain"
	productdomain "github.com/leadloom/leadloom/internal/product/domain"
	scheduledomain "github.com/leadloom/leadloom/internal/schedule/domain"
	"github.com/leadloom/leadloom/internal/seed"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config) error {
		if cfg.DBType == "postgres" {
			sqlDB, err := conn.DB()
			if err != nil {
				return err
			}
			if err := RunMigrations(sqlDB); err != nil {
				return err
			}
		} else {
			// Non-postgres dialects cover local and test setups only.
			if err := conn.AutoMigrate(
				&organizationdomain.Organization{},
				&productdomain.Product{},
				&productdomain.PaymentPlan{},
				&invoicedomain.Invoice{},
				&invoicedomain.InvoiceLine{},
				&scheduledomain.PaymentScheduleEntry{},
				&scheduledomain.RecurringScheduleEntry{},
			); err != nil {
				return err
			}
		}

		return seed.EnsureDefaultOrg(conn, cfg.DefaultOrgID)
	}),
)
