package db

import (
	"reflect"
	"testing"
)

func TestPendingMigrations(t *testing.T) {
	tests := []struct {
		name     string
		files    []string
		applied  map[string]bool
		expected []string
	}{
		{
			"nothing applied",
			[]string{"0002_audit.up.sql", "0001_init.up.sql"},
			map[string]bool{},
			[]string{"0001_init.up.sql", "0002_audit.up.sql"},
		},
		{
			"partially applied",
			[]string{"0001_init.up.sql", "0002_audit.up.sql", "0003_clients.up.sql"},
			map[string]bool{"0001_init": true, "0002_audit": true},
			[]string{"0003_clients.up.sql"},
		},
		{
			"all applied",
			[]string{"0001_init.up.sql"},
			map[string]bool{"0001_init": true},
			nil,
		},
		{
			"no files",
			nil,
			map[string]bool{"0001_init": true},
			nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := pendingMigrations(tt.files, tt.applied)
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("pendingMigrations(%v) = %v, want %v", tt.files, got, tt.expected)
			}
		})
	}
}
