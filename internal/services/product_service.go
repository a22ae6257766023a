package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/isdelr/tienda-api/internal/database"
	"github.com/isdelr/tienda-api/internal/models"
)

// ProductServiceProvider defines the interface for product services.
type ProductServiceProvider interface {
	GetAllProducts(ctx context.Context) ([]models.Product, error)
	GetProductByID(ctx context.Context, id int64) (models.Product, error)
	CreateProduct(ctx context.Context, in models.ProductInput) (models.Product, error)
	UpdateProduct(ctx context.Context, id int64, patch models.ProductPatch) (models.Product, error)
	DeleteProduct(ctx context.Context, id int64) error
	SearchByCategory(ctx context.Context, categoryName string) ([]models.Product, error)
	SearchByName(ctx context.Context, fragment string) ([]models.Product, error)
}

// ProductService provides business logic for product management.
type ProductService struct {
	db *database.DB
}

// NewProductService creates a new ProductService.
func NewProductService(db *database.DB) *ProductService {
	return &ProductService{db: db}
}

const productSelect = `
	SELECT p.id, p.name, p.price, p.quantity, p.category_id,
	       c.id, c.name, c.description
	FROM products p
	JOIN categories c ON c.id = p.category_id`

// scanProduct reads a productSelect row, including its category.
func scanProduct(scanner interface{ Scan(...any) error }) (models.Product, error) {
	var p models.Product
	var c models.Category
	var desc sql.NullString
	err := scanner.Scan(&p.ID, &p.Name, &p.Price, &p.Quantity, &p.CategoryID, &c.ID, &c.Name, &desc)
	if err != nil {
		return p, err
	}
	if desc.Valid {
		c.Description = &desc.String
	}
	p.Category = &c
	return p, nil
}

func queryProducts(ctx context.Context, q database.Querier, where string, args ...any) ([]models.Product, error) {
	rows, err := q.QueryContext(ctx, productSelect+" "+where+" ORDER BY p.id", args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	products := []models.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

func getProductByID(ctx context.Context, q database.Querier, id int64) (models.Product, error) {
	p, err := scanProduct(q.QueryRowContext(ctx, productSelect+" WHERE p.id = ?", id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Product{}, fmt.Errorf("product %d: %w", id, ErrProductNotFound)
		}
		return models.Product{}, err
	}
	return p, nil
}

// GetAllProducts retrieves every product. An empty catalog is not an error.
func (s *ProductService) GetAllProducts(ctx context.Context) ([]models.Product, error) {
	return queryProducts(ctx, s.db, "")
}

// GetProductByID retrieves a single product with its category.
func (s *ProductService) GetProductByID(ctx context.Context, id int64) (models.Product, error) {
	return getProductByID(ctx, s.db, id)
}

// CreateProduct inserts a product after checking its category exists.
func (s *ProductService) CreateProduct(ctx context.Context, in models.ProductInput) (models.Product, error) {
	var v validator
	v.check(in.Name != "", "nombre")
	v.check(in.Price >= 0, "precio")
	v.check(in.Quantity >= 0, "cantidad")
	if err := v.err(); err != nil {
		return models.Product{}, err
	}

	var created models.Product
	err := s.db.WithTx(ctx, func(tx *database.Tx) error {
		ok, err := categoryExists(ctx, tx, in.CategoryID)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("category %d: %w", in.CategoryID, ErrCategoryNotFound)
		}

		var id int64
		err = tx.QueryRowContext(ctx,
			"INSERT INTO products(name, price, quantity, category_id) VALUES(?, ?, ?, ?) RETURNING id",
			in.Name, in.Price, in.Quantity, in.CategoryID,
		).Scan(&id)
		if err != nil {
			return fmt.Errorf("insert product: %w", err)
		}

		created, err = getProductByID(ctx, tx, id)
		return err
	})
	if err != nil {
		return models.Product{}, err
	}
	return created, nil
}

// UpdateProduct overwrites the supplied fields. A new category must exist.
func (s *ProductService) UpdateProduct(ctx context.Context, id int64, patch models.ProductPatch) (models.Product, error) {
	var v validator
	if patch.Name != nil {
		v.check(*patch.Name != "", "nombre")
	}
	if patch.Price != nil {
		v.check(*patch.Price >= 0, "precio")
	}
	if patch.Quantity != nil {
		v.check(*patch.Quantity >= 0, "cantidad")
	}
	if err := v.err(); err != nil {
		return models.Product{}, err
	}

	var updated models.Product
	err := s.db.WithTx(ctx, func(tx *database.Tx) error {
		p, err := getProductByID(ctx, tx, id)
		if err != nil {
			return err
		}

		if patch.Name != nil {
			p.Name = *patch.Name
		}
		if patch.Price != nil {
			p.Price = *patch.Price
		}
		if patch.Quantity != nil {
			p.Quantity = *patch.Quantity
		}
		if patch.CategoryID != nil {
			ok, err := categoryExists(ctx, tx, *patch.CategoryID)
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("category %d: %w", *patch.CategoryID, ErrCategoryNotFound)
			}
			p.CategoryID = *patch.CategoryID
		}

		_, err = tx.ExecContext(ctx,
			"UPDATE products SET name = ?, price = ?, quantity = ?, category_id = ? WHERE id = ?",
			p.Name, p.Price, p.Quantity, p.CategoryID, id,
		)
		if err != nil {
			return fmt.Errorf("update product %d: %w", id, err)
		}

		updated, err = getProductByID(ctx, tx, id)
		return err
	})
	if err != nil {
		return models.Product{}, err
	}
	return updated, nil
}

// DeleteProduct removes a product from the database.
func (s *ProductService) DeleteProduct(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM products WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete product %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("product %d: %w", id, ErrProductNotFound)
	}
	return nil
}

// SearchByCategory lists the products of the category with exactly this
// name. An unknown category and a category without products both yield
// ErrNotFound.
func (s *ProductService) SearchByCategory(ctx context.Context, categoryName string) ([]models.Product, error) {
	var categoryID int64
	err := s.db.QueryRowContext(ctx,
		"SELECT id FROM categories WHERE name = ? ORDER BY id LIMIT 1", categoryName,
	).Scan(&categoryID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("category %q: %w", categoryName, ErrCategoryNotFound)
		}
		return nil, err
	}

	products, err := queryProducts(ctx, s.db, "WHERE p.category_id = ?", categoryID)
	if err != nil {
		return nil, err
	}
	if len(products) == 0 {
		return nil, fmt.Errorf("products in category %q: %w", categoryName, ErrNotFound)
	}
	return products, nil
}

// SearchByName lists products whose name contains fragment, ignoring case.
func (s *ProductService) SearchByName(ctx context.Context, fragment string) ([]models.Product, error) {
	pattern := "%" + escapeLike(strings.ToLower(fragment)) + "%"
	where := fmt.Sprintf(`WHERE %s(p.name) LIKE ? ESCAPE '\'`, s.db.Dialect().Lower())
	products, err := queryProducts(ctx, s.db, where, pattern)
	if err != nil {
		return nil, err
	}
	if len(products) == 0 {
		return nil, fmt.Errorf("products matching %q: %w", fragment, ErrNotFound)
	}
	return products, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
