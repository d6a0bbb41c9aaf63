package pluggy

import (
	"errors"
	"path/filepath"
	"testing"
)

func testStore(t *testing.T) *ConnectionStore {
	t.Helper()
	return NewConnectionStore(filepath.Join(t.TempDir(), "connections.json"))
}

func TestConnectionStoreRoundTrip(t *testing.T) {
	store := testStore(t)

	conns, err := store.List()
	if err != nil {
		t.Fatalf("list on missing file: %v", err)
	}
	if len(conns) != 0 {
		t.Fatalf("expected empty list, got %d", len(conns))
	}

	conn := Connection{ItemID: "item-1", BankName: "Banco Teste", Status: "active", CreatedAt: "2025-03-10 10:00:00"}
	if err := store.Save(conn); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := store.Get("item-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.BankName != "Banco Teste" {
		t.Errorf("unexpected connection: %+v", got)
	}

	if err := store.UpdateStatus("item-1", "error"); err != nil {
		t.Fatalf("update status: %v", err)
	}
	got, err = store.Get("item-1")
	if err != nil {
		t.Fatalf("get after update: %v", err)
	}
	if got.Status != "error" {
		t.Errorf("status not updated: %+v", got)
	}

	if err := store.Delete("item-1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := store.Get("item-1"); !errors.Is(err, ErrConnectionNotFound) {
		t.Errorf("expected ErrConnectionNotFound, got %v", err)
	}
}

func TestConnectionStoreSaveOverwritesByItemID(t *testing.T) {
	store := testStore(t)

	if err := store.Save(Connection{ItemID: "item-1", BankName: "Primeiro"}); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := store.Save(Connection{ItemID: "item-1", BankName: "Segundo"}); err != nil {
		t.Fatalf("save: %v", err)
	}

	conns, err := store.List()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(conns) != 1 {
		t.Fatalf("expected 1 connection, got %d", len(conns))
	}
	if conns[0].BankName != "Segundo" {
		t.Errorf("expected overwrite, got %+v", conns[0])
	}
}

func TestConnectionStoreFollowsResolvedPath(t *testing.T) {
	dir := t.TempDir()
	env := "prod"
	store := NewConnectionStoreFunc(func() string {
		return filepath.Join(dir, "oauth_connections_"+env+".json")
	})

	if err := store.Save(Connection{ItemID: "item-prod", BankName: "Banco Prod"}); err != nil {
		t.Fatalf("save: %v", err)
	}

	env = "dev"
	conns, err := store.List()
	if err != nil {
		t.Fatalf("list after switch: %v", err)
	}
	if len(conns) != 0 {
		t.Fatalf("expected empty dev registry, got %d connections", len(conns))
	}
	if err := store.Save(Connection{ItemID: "item-dev", BankName: "Banco Dev"}); err != nil {
		t.Fatalf("save in dev: %v", err)
	}

	env = "prod"
	got, err := store.Get("item-prod")
	if err != nil {
		t.Fatalf("get after switching back: %v", err)
	}
	if got.BankName != "Banco Prod" {
		t.Errorf("prod registry lost its connection: %+v", got)
	}
	if _, err := store.Get("item-dev"); !errors.Is(err, ErrConnectionNotFound) {
		t.Errorf("dev connection leaked into prod registry: %v", err)
	}
}

func TestDisplayName(t *testing.T) {
	named := Connection{ItemID: "abcdef123456", BankName: "Nubank"}
	if got := named.DisplayName(); got != "Nubank" {
		t.Errorf("expected bank name, got %q", got)
	}

	anon := Connection{ItemID: "abcdef123456"}
	if got := anon.DisplayName(); got != "Banco_abcdef12" {
		t.Errorf("expected truncated fallback, got %q", got)
	}

	short := Connection{ItemID: "ab"}
	if got := short.DisplayName(); got != "Banco_ab" {
		t.Errorf("expected short fallback, got %q", got)
	}
}
