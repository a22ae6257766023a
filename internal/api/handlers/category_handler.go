package handlers

import (
	"net/http"

	"github.com/isdelr/tienda-api/internal/services"
)

// CategoryHandler handles HTTP requests related to categories.
type CategoryHandler struct {
	service services.CategoryServiceProvider
}

// NewCategoryHandler creates a new CategoryHandler.
func NewCategoryHandler(service services.CategoryServiceProvider) *CategoryHandler {
	return &CategoryHandler{service: service}
}

// CategoryPayload is the body of a category creation request.
type CategoryPayload struct {
	Name        string  `json:"nombre"`
	Description *string `json:"descripcion"`
}

var (
	createCategoryFailure = failure{op: "Failed to create category", internal: "Error al crear la categoría"}
	listCategoryFailure   = failure{
		op:       "Failed to retrieve categories",
		notFound: "No hay categorías disponibles",
		internal: "Error al obtener categorías",
	}
	deleteCategoryFailure = failure{
		op:       "Failed to delete category",
		conflict: "La categoría tiene productos asociados",
		internal: "Error al eliminar la categoría",
	}
)

// Create handles the request to create a new category.
func (h *CategoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	var payload CategoryPayload
	if !decodeJSON(w, r, &payload) {
		return
	}
	if payload.Name == "" {
		badRequest(w, "El nombre de la categoría es obligatorio")
		return
	}

	category, err := h.service.CreateCategory(r.Context(), payload.Name, payload.Description)
	if err != nil {
		createCategoryFailure.fail(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, category)
}

// GetAll handles the request to get all categories.
func (h *CategoryHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	categories, err := h.service.GetAllCategories(r.Context())
	if err != nil {
		listCategoryFailure.fail(w, err)
		return
	}

	writeJSON(w, http.StatusOK, categories)
}

// Delete handles the request to delete a category without products.
func (h *CategoryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	if err := h.service.DeleteCategory(r.Context(), id); err != nil {
		deleteCategoryFailure.fail(w, err)
		return
	}
	writeMsg(w, http.StatusOK, "Categoría eliminada")
}
