package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/isdelr/tienda-api/internal/database"
	"github.com/isdelr/tienda-api/internal/models"
)

// CategoryServiceProvider defines the interface for category services.
type CategoryServiceProvider interface {
	CreateCategory(ctx context.Context, name string, description *string) (models.Category, error)
	GetAllCategories(ctx context.Context) ([]models.Category, error)
	DeleteCategory(ctx context.Context, id int64) error
}

// CategoryService provides business logic for category management.
type CategoryService struct {
	db *database.DB
}

// NewCategoryService creates a new CategoryService.
func NewCategoryService(db *database.DB) *CategoryService {
	return &CategoryService{db: db}
}

// scanCategory is a helper to scan a category from a row or rows object.
func scanCategory(scanner interface{ Scan(...any) error }) (models.Category, error) {
	var c models.Category
	var desc sql.NullString
	if err := scanner.Scan(&c.ID, &c.Name, &desc); err != nil {
		return c, err
	}
	if desc.Valid {
		c.Description = &desc.String
	}
	return c, nil
}

func categoryExists(ctx context.Context, q database.Querier, id int64) (bool, error) {
	var found int64
	err := q.QueryRowContext(ctx, "SELECT id FROM categories WHERE id = ?", id).Scan(&found)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// CreateCategory adds a new category. Names are not required to be unique.
func (s *CategoryService) CreateCategory(ctx context.Context, name string, description *string) (models.Category, error) {
	c := models.Category{Name: name, Description: description}
	err := s.db.QueryRowContext(ctx,
		"INSERT INTO categories(name, description) VALUES(?, ?) RETURNING id",
		name, description,
	).Scan(&c.ID)
	if err != nil {
		return models.Category{}, fmt.Errorf("insert category: %w", err)
	}
	return c, nil
}

// GetAllCategories retrieves every category. An empty table is reported as
// ErrNotFound.
func (s *CategoryService) GetAllCategories(ctx context.Context) ([]models.Category, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id, name, description FROM categories ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var categories []models.Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(categories) == 0 {
		return nil, fmt.Errorf("categories: %w", ErrNotFound)
	}
	return categories, nil
}

// DeleteCategory removes a category that no product references.
func (s *CategoryService) DeleteCategory(ctx context.Context, id int64) error {
	return s.db.WithTx(ctx, func(tx *database.Tx) error {
		ok, err := categoryExists(ctx, tx, id)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("category %d: %w", id, ErrCategoryNotFound)
		}

		var count int
		if err := tx.QueryRowContext(ctx, "SELECT COUNT(*) FROM products WHERE category_id = ?", id).Scan(&count); err != nil {
			return err
		}
		if count > 0 {
			return fmt.Errorf("category %d has %d products: %w", id, count, ErrConflict)
		}

		if _, err := tx.ExecContext(ctx, "DELETE FROM categories WHERE id = ?", id); err != nil {
			return fmt.Errorf("delete category %d: %w", id, err)
		}
		return nil
	})
}
