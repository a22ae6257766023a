package testutil

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"testing"

	"github.com/isdelr/tienda-api/internal/database"
)

// OpenInMemoryDB opens a migrated in-memory SQLite database private to the
// test. The database name is a digest of t.Name(), so any subtest name is
// safe inside the file: URI.
func OpenInMemoryDB(t *testing.T) *database.DB {
	t.Helper()
	sum := sha256.Sum256([]byte(t.Name()))
	d, err := database.New("file:" + hex.EncodeToString(sum[:12]) + "?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { _ = d.Close() })

	if err := database.Migrate(context.Background(), d); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	return d
}
