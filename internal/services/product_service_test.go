package services

import (
	"context"
	"testing"

	"github.com/isdelr/tienda-api/internal/database"
	"github.com/isdelr/tienda-api/internal/models"
	"github.com/isdelr/tienda-api/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type catalog struct {
	db         *database.DB
	categories *CategoryService
	products   *ProductService
}

func newTestCatalog(t *testing.T) catalog {
	t.Helper()
	db := testutil.OpenInMemoryDB(t)
	return catalog{db: db, categories: NewCategoryService(db), products: NewProductService(db)}
}

func (c catalog) category(t *testing.T, name string) models.Category {
	t.Helper()
	cat, err := c.categories.CreateCategory(context.Background(), name, nil)
	require.NoError(t, err)
	return cat
}

func (c catalog) product(t *testing.T, name string, categoryID int64) models.Product {
	t.Helper()
	p, err := c.products.CreateProduct(context.Background(), models.ProductInput{
		Name: name, Price: 10, Quantity: 1, CategoryID: categoryID,
	})
	require.NoError(t, err)
	return p
}

func TestCreateProductEmbedsCategory(t *testing.T) {
	c := newTestCatalog(t)
	cat := c.category(t, "Electrónica")

	p, err := c.products.CreateProduct(context.Background(), models.ProductInput{
		Name: "Laptop", Price: 999.99, Quantity: 10, CategoryID: cat.ID,
	})
	require.NoError(t, err)
	assert.NotZero(t, p.ID)
	assert.Equal(t, 999.99, p.Price)
	assert.Equal(t, 10, p.Quantity)
	require.NotNil(t, p.Category)
	assert.Equal(t, "Electrónica", p.Category.Name)
}

func TestCreateProductUnknownCategoryCreatesNothing(t *testing.T) {
	c := newTestCatalog(t)
	ctx := context.Background()

	_, err := c.products.CreateProduct(ctx, models.ProductInput{Name: "Laptop", Price: 1, Quantity: 1, CategoryID: 7})
	assert.ErrorIs(t, err, ErrCategoryNotFound)

	all, err := c.products.GetAllProducts(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestCreateProductValidation(t *testing.T) {
	c := newTestCatalog(t)
	cat := c.category(t, "Hogar")

	_, err := c.products.CreateProduct(context.Background(), models.ProductInput{
		Name: "", Price: -1, Quantity: -2, CategoryID: cat.ID,
	})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, []string{"nombre", "precio", "cantidad"}, verr.Fields)
}

func TestUpdateProductPriceOnly(t *testing.T) {
	c := newTestCatalog(t)
	ctx := context.Background()
	cat := c.category(t, "Electrónica")
	p := c.product(t, "Laptop", cat.ID)

	price := 1299.5
	_, err := c.products.UpdateProduct(ctx, p.ID, models.ProductPatch{Price: &price})
	require.NoError(t, err)

	got, err := c.products.GetProductByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 1299.5, got.Price)
	assert.Equal(t, p.Name, got.Name)
	assert.Equal(t, p.Quantity, got.Quantity)
	assert.Equal(t, p.CategoryID, got.CategoryID)
}

func TestUpdateProductZeroQuantityOverwrites(t *testing.T) {
	c := newTestCatalog(t)
	cat := c.category(t, "Electrónica")
	p := c.product(t, "Laptop", cat.ID)

	zero := 0
	got, err := c.products.UpdateProduct(context.Background(), p.ID, models.ProductPatch{Quantity: &zero})
	require.NoError(t, err)
	assert.Equal(t, 0, got.Quantity)
}

func TestUpdateProductCategory(t *testing.T) {
	c := newTestCatalog(t)
	ctx := context.Background()
	electronics := c.category(t, "Electrónica")
	office := c.category(t, "Oficina")
	p := c.product(t, "Monitor", electronics.ID)

	got, err := c.products.UpdateProduct(ctx, p.ID, models.ProductPatch{CategoryID: &office.ID})
	require.NoError(t, err)
	assert.Equal(t, office.ID, got.CategoryID)
	assert.Equal(t, "Oficina", got.Category.Name)

	missing := int64(404)
	_, err = c.products.UpdateProduct(ctx, p.ID, models.ProductPatch{CategoryID: &missing})
	assert.ErrorIs(t, err, ErrCategoryNotFound)

	again, err := c.products.GetProductByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, office.ID, again.CategoryID)
}

func TestUpdateProductNotFound(t *testing.T) {
	c := newTestCatalog(t)
	name := "x"
	_, err := c.products.UpdateProduct(context.Background(), 5, models.ProductPatch{Name: &name})
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestDeleteProduct(t *testing.T) {
	c := newTestCatalog(t)
	ctx := context.Background()
	cat := c.category(t, "Hogar")
	p := c.product(t, "Silla", cat.ID)

	require.NoError(t, c.products.DeleteProduct(ctx, p.ID))
	assert.ErrorIs(t, c.products.DeleteProduct(ctx, p.ID), ErrProductNotFound)
}

func TestSearchByNameIgnoresCase(t *testing.T) {
	c := newTestCatalog(t)
	ctx := context.Background()
	cat := c.category(t, "Electrónica")
	c.product(t, "Laptop", cat.ID)
	c.product(t, "Mouse", cat.ID)

	found, err := c.products.SearchByName(ctx, "laptop")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "Laptop", found[0].Name)

	found, err = c.products.SearchByName(ctx, "OUS")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "Mouse", found[0].Name)

	_, err = c.products.SearchByName(ctx, "tablet")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSearchByNameFoldsAccentedLetters(t *testing.T) {
	c := newTestCatalog(t)
	ctx := context.Background()
	cat := c.category(t, "Juguetes")
	c.product(t, "CAMIÓN de juguete", cat.ID)

	for _, q := range []string{"camión", "CAMIÓN", "Camión De"} {
		found, err := c.products.SearchByName(ctx, q)
		require.NoError(t, err, q)
		require.Len(t, found, 1, q)
		assert.Equal(t, "CAMIÓN de juguete", found[0].Name)
	}

	_, err := c.products.SearchByName(ctx, "camion")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSearchByNameTreatsWildcardsLiterally(t *testing.T) {
	c := newTestCatalog(t)
	cat := c.category(t, "Varios")
	c.product(t, "Cable", cat.ID)

	_, err := c.products.SearchByName(context.Background(), "%")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSearchByCategory(t *testing.T) {
	c := newTestCatalog(t)
	ctx := context.Background()
	electronics := c.category(t, "Electrónica")
	c.category(t, "Vacía")
	c.product(t, "Laptop", electronics.ID)

	found, err := c.products.SearchByCategory(ctx, "Electrónica")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "Laptop", found[0].Name)

	_, err = c.products.SearchByCategory(ctx, "Vacía")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NotErrorIs(t, err, ErrCategoryNotFound)

	_, err = c.products.SearchByCategory(ctx, "Juguetes")
	assert.ErrorIs(t, err, ErrCategoryNotFound)
}

func TestGetAllProductsEmptyIsNotAnError(t *testing.T) {
	c := newTestCatalog(t)
	all, err := c.products.GetAllProducts(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, all)
	assert.Empty(t, all)
}
