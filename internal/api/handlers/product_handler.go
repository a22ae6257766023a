package handlers

import (
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	"github.com/isdelr/tienda-api/internal/models"
	"github.com/isdelr/tienda-api/internal/services"
)

// ProductHandler handles HTTP requests related to products.
type ProductHandler struct {
	service services.ProductServiceProvider
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(service services.ProductServiceProvider) *ProductHandler {
	return &ProductHandler{service: service}
}

// ProductPayload is the body of a product creation request. Every field is
// required; pointers tell an absent field from a zero one.
type ProductPayload struct {
	Name       *string  `json:"nombre"`
	Price      *float64 `json:"precio"`
	Quantity   *int     `json:"cantidad"`
	CategoryID *int64   `json:"categoria_id"`
}

var (
	createProductFailure = failure{op: "Failed to create product", internal: "Error al crear el producto"}
	listProductFailure   = failure{op: "Failed to retrieve products", internal: "Error al obtener productos"}
	getProductFailure    = failure{op: "Failed to get product", internal: "Error al obtener el producto"}
	editProductFailure   = failure{op: "Failed to update product", internal: "Error al actualizar el producto"}
	deleteProductFailure = failure{op: "Failed to delete product", internal: "Error al eliminar el producto"}
	byCategoryFailure    = failure{
		op:       "Failed to search products by category",
		notFound: "No hay productos en esa categoría",
		internal: "Error al buscar productos por categoría",
	}
	byNameFailure = failure{
		op:       "Failed to search products by name",
		notFound: "No se encontraron productos con ese nombre",
		internal: "Error al buscar productos por nombre",
	}
)

// Create handles the request to create a new product.
func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	var payload ProductPayload
	if !decodeJSON(w, r, &payload) {
		return
	}
	if payload.Name == nil || *payload.Name == "" || payload.Price == nil ||
		payload.Quantity == nil || payload.CategoryID == nil {
		badRequest(w, "Todos los campos son requeridos")
		return
	}

	product, err := h.service.CreateProduct(r.Context(), models.ProductInput{
		Name:       *payload.Name,
		Price:      *payload.Price,
		Quantity:   *payload.Quantity,
		CategoryID: *payload.CategoryID,
	})
	if err != nil {
		createProductFailure.fail(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, product)
}

// GetAll handles the request to get all products.
func (h *ProductHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	products, err := h.service.GetAllProducts(r.Context())
	if err != nil {
		listProductFailure.fail(w, err)
		return
	}

	writeJSON(w, http.StatusOK, products)
}

// Get handles the request to get a single product by its ID.
func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	product, err := h.service.GetProductByID(r.Context(), id)
	if err != nil {
		getProductFailure.fail(w, err)
		return
	}

	writeJSON(w, http.StatusOK, product)
}

// Update handles a partial update of a product.
func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	var patch models.ProductPatch
	if !decodeJSON(w, r, &patch) {
		return
	}
	if patch.IsEmpty() {
		badRequest(w, msgEmptyPatch)
		return
	}

	product, err := h.service.UpdateProduct(r.Context(), id, patch)
	if err != nil {
		editProductFailure.fail(w, err)
		return
	}

	writeJSON(w, http.StatusOK, product)
}

// Delete handles the request to delete a product.
func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	if err := h.service.DeleteProduct(r.Context(), id); err != nil {
		deleteProductFailure.fail(w, err)
		return
	}
	writeMsg(w, http.StatusOK, "Producto eliminado")
}

// SearchByCategory lists the products of the category named in the path.
func (h *ProductHandler) SearchByCategory(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "nombre")
	if r.URL.RawPath != "" {
		if unescaped, err := url.PathUnescape(name); err == nil {
			name = unescaped
		}
	}
	if name == "" {
		badRequest(w, "El nombre de la categoría es obligatorio")
		return
	}

	products, err := h.service.SearchByCategory(r.Context(), name)
	if err != nil {
		byCategoryFailure.fail(w, err)
		return
	}

	writeJSON(w, http.StatusOK, products)
}

// SearchByName lists the products whose name contains ?nombre=, ignoring case.
func (h *ProductHandler) SearchByName(w http.ResponseWriter, r *http.Request) {
	fragment := r.URL.Query().Get("nombre")
	if fragment == "" {
		badRequest(w, "El parámetro nombre es obligatorio")
		return
	}

	products, err := h.service.SearchByName(r.Context(), fragment)
	if err != nil {
		byNameFailure.fail(w, err)
		return
	}

	writeJSON(w, http.StatusOK, products)
}
