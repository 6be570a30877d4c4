package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/leadloom/leadloom/internal/product/domain"
	"github.com/leadloom/leadloom/pkg/db/option"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Create(ctx context.Context, db *gorm.DB, product *domain.Product) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO products (
			id, org_id, code, name, description, currency, price_minor, tax_rate_bp,
			discount_type, discount_value, cogs_type, cogs_value,
			recurring_interval, recurring_interval_days, active, metadata, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		product.ID,
		product.OrgID,
		product.Code,
		product.Name,
		product.Description,
		product.Currency,
		product.PriceMinor,
		product.TaxRateBp,
		product.DiscountType,
		product.DiscountValue,
		product.CogsType,
		product.CogsValue,
		product.RecurringInterval,
		product.RecurringIntervalDays,
		product.Active,
		product.Metadata,
		product.CreatedAt,
		product.UpdatedAt,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, orgID, id int64) (*domain.Product, error) {
	var p domain.Product
	err := db.WithContext(ctx).Raw(
		`SELECT * FROM products WHERE org_id = ? AND id = ?`,
		orgID,
		id,
	).Scan(&p).Error
	if err != nil {
		return nil, err
	}
	if p.ID == 0 {
		return nil, nil
	}
	return &p, nil
}

func (r *repo) FindByIDs(ctx context.Context, db *gorm.DB, orgID int64, ids []int64) ([]domain.Product, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var items []domain.Product
	err := db.WithContext(ctx).Raw(
		`SELECT * FROM products WHERE org_id = ? AND id IN ?`,
		orgID,
		ids,
	).Scan(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, orgID int64, filter domain.ListRequest) ([]domain.Product, error) {
	var items []domain.Product
	stmt := db.WithContext(ctx).
		Model(&domain.Product{}).
		Where("org_id = ?", orgID)

	if filter.Name != "" {
		stmt = stmt.Where("name = ?", filter.Name)
	}
	if filter.Active != nil {
		stmt = stmt.Where("active = ?", *filter.Active)
	}

	stmt = option.WithSortBy(option.WithQuerySortBy(filter.SortBy, filter.OrderBy, map[string]bool{
		"created_at": true,
		"updated_at": true,
		"name":       true,
	})).Apply(stmt)

	if err := stmt.Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, product *domain.Product) error {
	if product == nil {
		return gorm.ErrInvalidData
	}
	return db.WithContext(ctx).Exec(
		`UPDATE products
		 SET name = ?, description = ?, price_minor = ?, tax_rate_bp = ?,
		     discount_type = ?, discount_value = ?, cogs_type = ?, cogs_value = ?,
		     recurring_interval = ?, recurring_interval_days = ?, active = ?, metadata = ?, updated_at = ?
		 WHERE org_id = ? AND id = ?`,
		product.Name,
		product.Description,
		product.PriceMinor,
		product.TaxRateBp,
		product.DiscountType,
		product.DiscountValue,
		product.CogsType,
		product.CogsValue,
		product.RecurringInterval,
		product.RecurringIntervalDays,
		product.Active,
		product.Metadata,
		product.UpdatedAt,
		product.OrgID,
		product.ID,
	).Error
}

func (r *repo) UpsertPaymentPlan(ctx context.Context, db *gorm.DB, plan *domain.PaymentPlan) error {
	if plan == nil {
		return gorm.ErrInvalidData
	}
	existing, err := r.FindPaymentPlan(ctx, db, plan.OrgID, plan.ProductID)
	if err != nil {
		return err
	}
	if existing == nil {
		return db.WithContext(ctx).Exec(
			`INSERT INTO product_payment_plans (
				id, org_id, product_id, num_installments, interval_type, interval_days,
				down_payment_minor, created_at, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			plan.ID,
			plan.OrgID,
			plan.ProductID,
			plan.NumInstallments,
			plan.IntervalType,
			plan.IntervalDays,
			plan.DownPaymentMinor,
			plan.CreatedAt,
			plan.UpdatedAt,
		).Error
	}

	plan.ID = existing.ID
	plan.CreatedAt = existing.CreatedAt
	return db.WithContext(ctx).Exec(
		`UPDATE product_payment_plans
		 SET num_installments = ?, interval_type = ?, interval_days = ?, down_payment_minor = ?, updated_at = ?
		 WHERE org_id = ? AND product_id = ?`,
		plan.NumInstallments,
		plan.IntervalType,
		plan.IntervalDays,
		plan.DownPaymentMinor,
		plan.UpdatedAt,
		plan.OrgID,
		plan.ProductID,
	).Error
}

func (r *repo) FindPaymentPlan(ctx context.Context, db *gorm.DB, orgID, productID int64) (*domain.PaymentPlan, error) {
	var plan domain.PaymentPlan
	err := db.WithContext(ctx).Raw(
		`SELECT * FROM product_payment_plans WHERE org_id = ? AND product_id = ?`,
		orgID,
		productID,
	).Scan(&plan).Error
	if err != nil {
		return nil, err
	}
	if plan.ID == 0 {
		return nil, nil
	}
	return &plan, nil
}
