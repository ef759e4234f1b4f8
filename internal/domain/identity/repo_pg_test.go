package identity

import (
	"os"
	"strings"
	"testing"
)

// The user queries are built from userCols, so every column named there must
// exist in the users DDL or the first login after migrating fails.
func TestUserColumnsExistInMigration(t *testing.T) {
	ddl, err := os.ReadFile("../../../migrations/001_init.sql")
	if err != nil {
		t.Fatalf("reading migration: %v", err)
	}

	start := strings.Index(string(ddl), "CREATE TABLE users (")
	if start < 0 {
		t.Fatal("users table not found in migration")
	}
	end := strings.Index(string(ddl)[start:], ");")
	if end < 0 {
		t.Fatal("users table DDL not terminated")
	}
	usersDDL := string(ddl)[start : start+end]

	for _, col := range strings.Split(userCols, ",") {
		col = strings.TrimSpace(col)
		if col == "" {
			continue
		}
		if !strings.Contains(usersDDL, "\n    "+col+" ") {
			t.Errorf("column %q selected by the repository but missing from the users DDL", col)
		}
	}
}
