package repository

import (
	"context"
	"errors"

	"unimarket/internal/database"
	"unimarket/internal/domain/merchant"
	"unimarket/internal/domain/user"

	"github.com/google/uuid"
)

var (
	ErrMerchantNotFound = errors.New("merchant not found")
	ErrProductNotFound  = errors.New("product not found")
)

type MerchantRepository interface {
	CreateWithOwnerRole(ctx context.Context, m merchant.Merchant) error
	GetByID(ctx context.Context, id uuid.UUID) (merchant.Merchant, error)
	List(ctx context.Context, keyword string, limit, offset int) ([]merchant.Merchant, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]merchant.Merchant, error)
	Update(ctx context.Context, m merchant.Merchant) error
	SoftDelete(ctx context.Context, id uuid.UUID) error
}

type ProductRepository interface {
	Create(ctx context.Context, p merchant.Product) error
	GetByID(ctx context.Context, id uuid.UUID) (merchant.Product, error)
	ListByMerchant(ctx context.Context, merchantID uuid.UUID, onlyOnSale bool, limit, offset int) ([]merchant.Product, error)
	Update(ctx context.Context, p merchant.Product) error
	SoftDelete(ctx context.Context, id uuid.UUID) error
}

type PostgresMerchantRepository struct {
	db database.DB
}

func NewPostgresMerchantRepository(db database.DB) *PostgresMerchantRepository {
	return &PostgresMerchantRepository{db: db}
}

const merchantColumns = `id, owner_id, name, slug, description, address, phone, active, deleted, created_at, updated_at`

// CreateWithOwnerRole inserts the merchant and grants MERCHANT to its owner atomically.
func (r *PostgresMerchantRepository) CreateWithOwnerRole(ctx context.Context, m merchant.Merchant) error {
	return database.WithTx(ctx, r.db, func(tx database.Tx) error {
		_, err := tx.Exec(ctx,
			`INSERT INTO merchants (id, owner_id, name, slug, description, address, phone, active)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			m.ID, m.OwnerID, m.Name, m.Slug, m.Description, m.Address, m.Phone, m.Active,
		)
		if err != nil {
			if IsUniqueViolation(err) {
				return ErrDuplicate
			}
			return err
		}
		return grantRole(ctx, tx, m.OwnerID, user.RoleMerchant)
	})
}

func (r *PostgresMerchantRepository) GetByID(ctx context.Context, id uuid.UUID) (merchant.Merchant, error) {
	row := r.db.QueryRow(ctx, `SELECT `+merchantColumns+` FROM merchants WHERE id = $1 AND deleted = FALSE`, id)
	m, err := scanMerchant(row)
	if err != nil {
		if isNoRows(err) {
			return merchant.Merchant{}, ErrMerchantNotFound
		}
		return merchant.Merchant{}, err
	}
	return m, nil
}

func (r *PostgresMerchantRepository) List(ctx context.Context, keyword string, limit, offset int) ([]merchant.Merchant, error) {
	limit, offset = clampPage(limit, offset, 20, 100)

	query := `SELECT ` + merchantColumns + ` FROM merchants WHERE deleted = FALSE AND active = TRUE`
	args := []any{}
	if p := likePattern(keyword); p != "" {
		args = append(args, p)
		query += ` AND name ILIKE $1`
	}
	args = append(args, limit, offset)
	query += ` ORDER BY created_at DESC LIMIT $` + itoa(len(args)-1) + ` OFFSET $` + itoa(len(args))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectMerchants(rows)
}

func (r *PostgresMerchantRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]merchant.Merchant, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+merchantColumns+` FROM merchants WHERE owner_id = $1 AND deleted = FALSE ORDER BY created_at DESC`,
		ownerID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectMerchants(rows)
}

func (r *PostgresMerchantRepository) Update(ctx context.Context, m merchant.Merchant) error {
	n, err := r.db.Exec(ctx,
		`UPDATE merchants SET name = $2, description = $3, address = $4, phone = $5, active = $6, updated_at = now()
		 WHERE id = $1 AND deleted = FALSE`,
		m.ID, m.Name, m.Description, m.Address, m.Phone, m.Active,
	)
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrMerchantNotFound
	}
	return nil
}

// SoftDelete hides the merchant and takes its products off sale.
func (r *PostgresMerchantRepository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	return database.WithTx(ctx, r.db, func(tx database.Tx) error {
		n, err := tx.Exec(ctx, `UPDATE merchants SET deleted = TRUE, updated_at = now() WHERE id = $1 AND deleted = FALSE`, id)
		if err != nil {
			return err
		}
		if n == 0 {
			return ErrMerchantNotFound
		}
		_, err = tx.Exec(ctx,
			`UPDATE products SET status = $2, updated_at = now() WHERE merchant_id = $1 AND deleted = FALSE`,
			id, merchant.ProductOffShelf,
		)
		return err
	})
}

func collectMerchants(rows database.Rows) ([]merchant.Merchant, error) {
	out := make([]merchant.Merchant, 0)
	for rows.Next() {
		m, err := scanMerchant(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func scanMerchant(row scanner) (merchant.Merchant, error) {
	var m merchant.Merchant
	err := row.Scan(&m.ID, &m.OwnerID, &m.Name, &m.Slug, &m.Description, &m.Address, &m.Phone, &m.Active, &m.Deleted, &m.CreatedAt, &m.UpdatedAt)
	return m, err
}

type PostgresProductRepository struct {
	db database.DB
}

func NewPostgresProductRepository(db database.DB) *PostgresProductRepository {
	return &PostgresProductRepository{db: db}
}

const productColumns = `id, merchant_id, name, description, price_cents, stock, status, deleted, created_at, updated_at`

func (r *PostgresProductRepository) Create(ctx context.Context, p merchant.Product) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO products (id, merchant_id, name, description, price_cents, stock, status)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		p.ID, p.MerchantID, p.Name, p.Description, p.PriceCents, p.Stock, p.Status,
	)
	if err != nil && isForeignKeyViolation(err) {
		return ErrMerchantNotFound
	}
	return err
}

func (r *PostgresProductRepository) GetByID(ctx context.Context, id uuid.UUID) (merchant.Product, error) {
	row := r.db.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1 AND deleted = FALSE`, id)
	p, err := scanProduct(row)
	if err != nil {
		if isNoRows(err) {
			return merchant.Product{}, ErrProductNotFound
		}
		return merchant.Product{}, err
	}
	return p, nil
}

func (r *PostgresProductRepository) ListByMerchant(ctx context.Context, merchantID uuid.UUID, onlyOnSale bool, limit, offset int) ([]merchant.Product, error) {
	limit, offset = clampPage(limit, offset, 20, 100)

	query := `SELECT ` + productColumns + ` FROM products WHERE merchant_id = $1 AND deleted = FALSE`
	args := []any{merchantID}
	if onlyOnSale {
		args = append(args, merchant.ProductOnSale)
		query += ` AND status = $2`
	}
	args = append(args, limit, offset)
	query += ` ORDER BY created_at DESC LIMIT $` + itoa(len(args)-1) + ` OFFSET $` + itoa(len(args))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]merchant.Product, 0)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *PostgresProductRepository) Update(ctx context.Context, p merchant.Product) error {
	n, err := r.db.Exec(ctx,
		`UPDATE products SET name = $2, description = $3, price_cents = $4, stock = $5, status = $6, updated_at = now()
		 WHERE id = $1 AND deleted = FALSE`,
		p.ID, p.Name, p.Description, p.PriceCents, p.Stock, p.Status,
	)
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrProductNotFound
	}
	return nil
}

func (r *PostgresProductRepository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	n, err := r.db.Exec(ctx, `UPDATE products SET deleted = TRUE, updated_at = now() WHERE id = $1 AND deleted = FALSE`, id)
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrProductNotFound
	}
	return nil
}

func scanProduct(row scanner) (merchant.Product, error) {
	var p merchant.Product
	err := row.Scan(&p.ID, &p.MerchantID, &p.Name, &p.Description, &p.PriceCents, &p.Stock, &p.Status, &p.Deleted, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}
