package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/isdelr/tienda-api/internal/services"
	"github.com/rs/zerolog/log"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("Failed to encode response")
	}
}

// writeMsg answers {"msg": ...}, the shape of every non-validation failure.
func writeMsg(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"msg": msg})
}

// badRequest answers {"error": ...} for missing or malformed input.
func badRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, map[string]string{"error": msg})
}

const (
	msgInvalidCredentials = "Credenciales inválidas. Revisa el email o la contraseña."
	msgUserNotFound       = "No se encontró el usuario"
	msgCategoryNotFound   = "La categoría no existe"
	msgProductNotFound    = "No se encontró el producto"
	msgEmptyPatch         = "No se indicó ningún campo para actualizar"
)

// failure describes how one operation reports its failures. notFound is used
// when the error does not name an entity.
type failure struct {
	op       string // log message
	notFound string
	conflict string
	internal string
}

var notFoundByEntity = []struct {
	target error
	msg    string
}{
	{services.ErrUserNotFound, msgUserNotFound},
	{services.ErrCategoryNotFound, msgCategoryNotFound},
	{services.ErrProductNotFound, msgProductNotFound},
}

var statusByKind = []struct {
	target error
	status int
}{
	{services.ErrNotFound, http.StatusNotFound},
	{services.ErrInvalidCredentials, http.StatusUnauthorized},
	{services.ErrConflict, http.StatusConflict},
}

// fail maps a service error onto its status code. Internal causes are
// logged and never sent to the client.
func (f failure) fail(w http.ResponseWriter, err error) {
	var verr *services.ValidationError
	if errors.As(err, &verr) {
		badRequest(w, "Campos inválidos: "+strings.Join(verr.Fields, ", "))
		return
	}

	status := http.StatusInternalServerError
	for _, k := range statusByKind {
		if errors.Is(err, k.target) {
			status = k.status
			break
		}
	}

	switch status {
	case http.StatusNotFound:
		log.Warn().Err(err).Msg(f.op)
		writeMsg(w, status, f.notFoundMsg(err))
	case http.StatusConflict:
		log.Warn().Err(err).Msg(f.op)
		writeMsg(w, status, f.conflict)
	case http.StatusUnauthorized:
		writeMsg(w, status, msgInvalidCredentials)
	default:
		log.Error().Err(err).Msg(f.op)
		writeMsg(w, status, f.internal)
	}
}

func (f failure) notFoundMsg(err error) string {
	for _, e := range notFoundByEntity {
		if errors.Is(err, e.target) {
			return e.msg
		}
	}
	if f.notFound != "" {
		return f.notFound
	}
	return "Recurso no encontrado"
}

// decodeJSON reads the request body into v, rejecting malformed JSON.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		badRequest(w, "Cuerpo de la solicitud inválido")
		return false
	}
	return true
}

// idParam parses the {id} URL parameter.
func idParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		badRequest(w, "Identificador inválido")
		return 0, false
	}
	return id, true
}
