package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/isdelr/tienda-api/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func newTestIssuer(t *testing.T) *TokenIssuer {
	t.Helper()
	i, err := NewTokenIssuer(testSecret, time.Hour)
	require.NoError(t, err)
	return i
}

func TestNewTokenIssuerRequiresSecret(t *testing.T) {
	_, err := NewTokenIssuer("", time.Hour)
	assert.Error(t, err)
}

func TestIssueAndValidate(t *testing.T) {
	i := newTestIssuer(t)
	tok, err := i.Issue(models.User{ID: 42, Email: "ana@example.com"})
	require.NoError(t, err)

	claims, err := i.Validate(tok)
	require.NoError(t, err)
	assert.Equal(t, int64(42), claims.UserID)
	assert.Equal(t, "42", claims.Subject)
	assert.Equal(t, "ana@example.com", claims.Email)
	assert.NotEmpty(t, claims.ID)
}

func TestValidateRejectsWrongSecret(t *testing.T) {
	tok, err := newTestIssuer(t).Issue(models.User{ID: 1})
	require.NoError(t, err)

	other, err := NewTokenIssuer("wrong", time.Hour)
	require.NoError(t, err)
	_, err = other.Validate(tok)
	assert.Error(t, err)
}

func TestValidateRejectsExpired(t *testing.T) {
	i := newTestIssuer(t)
	issued := time.Now()
	i.now = func() time.Time { return issued }
	tok, err := i.Issue(models.User{ID: 1})
	require.NoError(t, err)

	i.now = func() time.Time { return issued.Add(2 * time.Hour) }
	_, err = i.Validate(tok)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestValidateRejectsOtherAlgorithms(t *testing.T) {
	claims := &Claims{
		UserID: 1,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)

	_, err = newTestIssuer(t).Validate(tok)
	assert.Error(t, err)
}

func TestMiddleware(t *testing.T) {
	i := newTestIssuer(t)
	var seen *Claims
	h := i.Middleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = ClaimsFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	tok, err := i.Issue(models.User{ID: 7})
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
		status int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic " + tok, http.StatusUnauthorized},
		{"garbage token", "Bearer nope", http.StatusUnauthorized},
		{"valid token", "Bearer " + tok, http.StatusNoContent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seen = nil
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			assert.Equal(t, tt.status, rec.Code)
			if tt.status == http.StatusNoContent {
				require.NotNil(t, seen)
				assert.Equal(t, int64(7), seen.UserID)
			} else {
				assert.Nil(t, seen)
			}
		})
	}
}
