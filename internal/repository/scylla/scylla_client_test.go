package scylla

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/gocql/gocql"
)

// Each repository method binds a fixed number of values; the placeholder
// counts here must match those call sites.
func TestDefaultStatements(t *testing.T) {
	stmts := defaultStatements()

	tests := []struct {
		name         string
		stmt         string
		placeholders int
	}{
		{"CreateApp", stmts.CreateApp, 17},
		{"GetAppByName", stmts.GetAppByName, 3},
		{"ListAppsByUser", stmts.ListAppsByUser, 2},
		{"UpdateApp", stmts.UpdateApp, 15},
		{"UpdateAppRisk", stmts.UpdateAppRisk, 9},
		{"DeactivateApp", stmts.DeactivateApp, 4},
		{"CreateVaultItem", stmts.CreateVaultItem, 11},
		{"GetVaultItem", stmts.GetVaultItem, 2},
		{"ListVaultItems", stmts.ListVaultItems, 1},
		{"DeleteVaultItem", stmts.DeleteVaultItem, 2},
		{"RecordScan", stmts.RecordScan, 4},
		{"ListScansByUser", stmts.ListScansByUser, 1},
	}

	seen := make(map[string]string, len(tests))
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if strings.TrimSpace(tt.stmt) == "" {
				t.Fatal("statement is empty")
			}
			if got := strings.Count(tt.stmt, "?"); got != tt.placeholders {
				t.Errorf("placeholder count = %d, want %d", got, tt.placeholders)
			}
			if prev, ok := seen[tt.stmt]; ok {
				t.Errorf("statement duplicates %s", prev)
			}
			seen[tt.stmt] = tt.name
		})
	}
}

func TestRetryableScanErr(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"not found", gocql.ErrNotFound, false},
		{"wrapped not found", fmt.Errorf("lookup: %w", gocql.ErrNotFound), false},
		{"timeout", gocql.ErrTimeoutNoResponse, true},
		{"generic", errors.New("connection reset"), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := retryableScanErr(tt.err); got != tt.want {
				t.Errorf("retryableScanErr(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}
