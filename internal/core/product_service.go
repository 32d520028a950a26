package core

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
)

const productColumns = `id, sku, name, description, price, quantity, min_threshold, product_group, created_at, updated_at`

var productSortColumns = map[string]string{
	"name":       "name",
	"price":      "price",
	"quantity":   "quantity",
	"created_at": "created_at",
}

type productService struct {
	pool      *pgxpool.Pool
	inv       InventoryService
	cache     ProductCache
	observers *Observers
}

// NewProductService constructs a ProductService. cache and observers may be nil.
func NewProductService(pool *pgxpool.Pool, inv InventoryService, cache ProductCache, observers *Observers) ProductService {
	if cache == nil {
		cache = uncached{}
	}
	return &productService{pool: pool, inv: inv, cache: cache, observers: observers}
}

// uncached loads straight from the database.
type uncached struct{}

func (uncached) Fetch(ctx context.Context, _ int, load func(context.Context) (*Product, error)) (*Product, error) {
	return load(ctx)
}

func scanProduct(row interface{ Scan(...any) error }, p *Product) error {
	return row.Scan(&p.ID, &p.SKU, &p.Name, &p.Description, &p.Price, &p.Quantity,
		&p.MinThreshold, &p.ProductGroup, &p.CreatedAt, &p.UpdatedAt)
}

func validateProductInput(in ProductInput) error {
	if strings.TrimSpace(in.SKU) == "" {
		return &ValidationError{Field: "sku", Message: "is required"}
	}
	if strings.TrimSpace(in.Name) == "" {
		return &ValidationError{Field: "name", Message: "is required"}
	}
	if !in.Price.IsPositive() {
		return &ValidationError{Field: "price", Message: "must be positive"}
	}
	if in.Quantity < 0 {
		return &ValidationError{Field: "quantity", Message: "must not be negative"}
	}
	if in.MinThreshold != nil && *in.MinThreshold < 0 {
		return &ValidationError{Field: "min_threshold", Message: "must not be negative"}
	}
	return nil
}

func (s *productService) CreateProduct(ctx context.Context, actor Actor, in ProductInput) (*Product, error) {
	if err := actor.Require(Role.CanManageProducts, "create products"); err != nil {
		return nil, err
	}
	if err := validateProductInput(in); err != nil {
		return nil, err
	}
	threshold := DefaultMinThreshold
	if in.MinThreshold != nil {
		threshold = *in.MinThreshold
	}

	tx, err := s.pool.BeginTx(ctx, readCommitted)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var p Product
	err = scanProduct(tx.QueryRow(ctx, `
		INSERT INTO products (sku, name, description, price, quantity, min_threshold, product_group)
		VALUES ($1, $2, $3, $4, 0, $5, $6)
		RETURNING `+productColumns,
		strings.TrimSpace(in.SKU), strings.TrimSpace(in.Name), in.Description, in.Price, threshold, in.ProductGroup,
	), &p)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, &DuplicateError{Resource: "product", Field: "sku", Value: in.SKU}
		}
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	// Opening stock goes through the ledger so the audit trail starts at zero.
	var event *ProductEvent
	if in.Quantity > 0 {
		event, err = s.inv.ApplyTx(ctx, tx, p.ID, in.Quantity, ReasonOpeningStock, actor)
		if err != nil {
			return nil, err
		}
		p = event.Product
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit product: %w", err)
	}
	s.inv.Publish(ctx, event)
	return &p, nil
}

func (s *productService) loadProduct(ctx context.Context, q pgxQuerier, id int) (*Product, error) {
	var p Product
	err := scanProduct(q.QueryRow(ctx, "SELECT "+productColumns+" FROM products WHERE id = $1", id), &p)
	if err != nil {
		return nil, notFoundOr(err, "product", id, "fetch product")
	}
	return &p, nil
}

func (s *productService) GetProduct(ctx context.Context, id int) (*Product, error) {
	return s.cache.Fetch(ctx, id, func(ctx context.Context) (*Product, error) {
		return s.loadProduct(ctx, s.pool, id)
	})
}

func (s *productService) GetProductBySKU(ctx context.Context, sku string) (*Product, error) {
	var p Product
	err := scanProduct(s.pool.QueryRow(ctx, "SELECT "+productColumns+" FROM products WHERE sku = $1", sku), &p)
	if err != nil {
		return nil, notFoundOr(err, "product", sku, "fetch product")
	}
	return &p, nil
}

// productListQuery builds the WHERE and ORDER BY clauses for ListProducts.
// Only whitelisted column names are interpolated; values are always bound.
func productListQuery(f ProductFilter) (where string, orderBy string, args []any) {
	var conds []string
	if f.Search != "" {
		args = append(args, "%"+f.Search+"%")
		n := len(args)
		conds = append(conds, fmt.Sprintf("(name ILIKE $%d OR sku ILIKE $%d OR description ILIKE $%d)", n, n, n))
	}
	if f.MinPrice != nil {
		args = append(args, *f.MinPrice)
		conds = append(conds, fmt.Sprintf("price >= $%d", len(args)))
	}
	if f.MaxPrice != nil {
		args = append(args, *f.MaxPrice)
		conds = append(conds, fmt.Sprintf("price <= $%d", len(args)))
	}
	if f.LowStock {
		conds = append(conds, "quantity <= min_threshold")
	}
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	dir := "ASC"
	key := f.SortBy
	if strings.HasPrefix(key, "-") {
		dir = "DESC"
		key = key[1:]
	}
	col, ok := productSortColumns[key]
	if !ok {
		col, dir = "name", "ASC"
	}
	orderBy = fmt.Sprintf(" ORDER BY %s %s, id ASC", col, dir)
	return where, orderBy, args
}

func (s *productService) ListProducts(ctx context.Context, f ProductFilter) (*ProductList, error) {
	if f.MinPrice != nil && f.MaxPrice != nil && f.MinPrice.GreaterThan(*f.MaxPrice) {
		return nil, &ValidationError{Field: "min_price", Message: "must not exceed max_price"}
	}
	page := f.Page.normalize()
	where, orderBy, args := productListQuery(f)

	var total int
	if err := s.pool.QueryRow(ctx, "SELECT COUNT(*) FROM products"+where, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("failed to count products: %w", err)
	}

	args = append(args, page.Limit, page.offset())
	query := fmt.Sprintf("SELECT %s FROM products%s%s LIMIT $%d OFFSET $%d",
		productColumns, where, orderBy, len(args)-1, len(args))
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	list := &ProductList{Products: []Product{}, Total: total, Page: page.Page, Limit: page.Limit}
	for rows.Next() {
		var p Product
		if err := scanProduct(rows, &p); err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		list.Products = append(list.Products, p)
	}
	return list, rows.Err()
}

func (s *productService) UpdateProduct(ctx context.Context, actor Actor, id int, upd ProductUpdate) (*Product, error) {
	if err := actor.Require(Role.CanManageProducts, "update products"); err != nil {
		return nil, err
	}
	if upd.Name != nil && strings.TrimSpace(*upd.Name) == "" {
		return nil, &ValidationError{Field: "name", Message: "must not be empty"}
	}
	if upd.Price != nil && !upd.Price.IsPositive() {
		return nil, &ValidationError{Field: "price", Message: "must be positive"}
	}
	if upd.MinThreshold != nil && *upd.MinThreshold < 0 {
		return nil, &ValidationError{Field: "min_threshold", Message: "must not be negative"}
	}

	var p Product
	err := scanProduct(s.pool.QueryRow(ctx, `
		UPDATE products SET
			name          = COALESCE($2, name),
			description   = COALESCE($3, description),
			price         = COALESCE($4, price),
			min_threshold = COALESCE($5, min_threshold),
			product_group = COALESCE($6, product_group),
			updated_at    = NOW()
		WHERE id = $1
		RETURNING `+productColumns,
		id, upd.Name, upd.Description, upd.Price, upd.MinThreshold, upd.ProductGroup,
	), &p)
	if err != nil {
		return nil, notFoundOr(err, "product", id, "update product")
	}

	s.observers.productChanged(ctx, ProductEvent{Kind: ProductUpdated, Product: p})
	return &p, nil
}

func (s *productService) DeleteProduct(ctx context.Context, actor Actor, id int) error {
	if err := actor.Require(Role.CanDeleteRecords, "delete products"); err != nil {
		return err
	}

	tx, err := s.pool.BeginTx(ctx, readCommitted)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var p Product
	err = scanProduct(tx.QueryRow(ctx, "SELECT "+productColumns+" FROM products WHERE id = $1 FOR UPDATE", id), &p)
	if err != nil {
		return notFoundOr(err, "product", id, "lock product")
	}

	var referenced bool
	err = tx.QueryRow(ctx, `
		SELECT EXISTS(SELECT 1 FROM purchase_orders WHERE product_id = $1)
		    OR EXISTS(SELECT 1 FROM sales_orders WHERE product_id = $1)
	`, id).Scan(&referenced)
	if err != nil {
		return fmt.Errorf("failed to check product references: %w", err)
	}
	if referenced {
		return &BusinessRuleError{Message: fmt.Sprintf("product %d is referenced by orders and cannot be deleted", id)}
	}

	if _, err := tx.Exec(ctx, "DELETE FROM products WHERE id = $1", id); err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit product deletion: %w", err)
	}

	s.observers.productChanged(ctx, ProductEvent{Kind: ProductDeleted, Product: p})
	return nil
}
