package backend

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
)

func testFactory() Factory {
	return NewFactory(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestCreateMemoryBackend(t *testing.T) {
	result, err := testFactory().CreateBackend(context.Background(), Config{Type: MemoryBackend})
	if err != nil {
		t.Fatalf("CreateBackend: %v", err)
	}
	if result.Backend == nil {
		t.Fatal("expected non-nil backend")
	}
	if result.Cleanup != nil {
		t.Fatal("memory backend needs no cleanup")
	}

	acct, err := result.Backend.CreateAccount(context.Background(), "+15551230000")
	if err != nil {
		t.Fatalf("CreateAccount on memory backend: %v", err)
	}
	if acct.ID == 0 {
		t.Fatal("expected usable account from memory backend")
	}
}

func TestCreateSQLiteBackend(t *testing.T) {
	cfg := Config{
		Type:         SQLiteBackend,
		SQLiteDBPath: filepath.Join(t.TempDir(), "ledger.db"),
	}
	result, err := testFactory().CreateBackend(context.Background(), cfg)
	if err != nil {
		t.Fatalf("CreateBackend: %v", err)
	}
	if result.Cleanup == nil {
		t.Fatal("sqlite backend must expose cleanup")
	}
	defer result.Cleanup()

	acct, err := result.Backend.CreateAccount(context.Background(), "+15551230001")
	if err != nil {
		t.Fatalf("CreateAccount on sqlite backend: %v", err)
	}
	cats, err := result.Backend.ListCategories(context.Background(), acct.ID)
	if err != nil || len(cats) == 0 {
		t.Fatalf("expected seeded categories, got %v err=%v", cats, err)
	}
}

func TestCreateBackendInvalidType(t *testing.T) {
	if _, err := testFactory().CreateBackend(context.Background(), Config{Type: "postgres"}); err == nil {
		t.Fatal("expected error for unknown backend type")
	}
}

func TestConfigValidate(t *testing.T) {
	cases := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"memory ok", Config{Type: MemoryBackend}, false},
		{"sqlite ok", Config{Type: SQLiteBackend, SQLiteDBPath: "/tmp/x.db"}, false},
		{"sqlite missing path", Config{Type: SQLiteBackend}, true},
		{"unknown type", Config{Type: "sheets"}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cfg.Validate()
			if tc.wantErr && err == nil {
				t.Fatal("expected error")
			}
			if !tc.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}
