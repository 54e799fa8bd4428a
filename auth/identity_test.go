package auth_test

import (
	"path/filepath"
	"testing"

	"XingHe-API/auth"
)

func TestEnsureIdentityMintsAndPersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "id", "identity.json")

	identity, err := auth.EnsureIdentity(path)
	if err != nil {
		t.Fatalf("ensure identity: %v", err)
	}
	if identity.UserID == "" {
		t.Fatalf("missing user id")
	}
	if identity.DisplayName != "User" {
		t.Fatalf("unexpected default name: %q", identity.DisplayName)
	}

	// 再次加载得到同一身份
	again, err := auth.EnsureIdentity(path)
	if err != nil {
		t.Fatalf("ensure identity again: %v", err)
	}
	if again.UserID != identity.UserID {
		t.Fatalf("user id changed: %s vs %s", again.UserID, identity.UserID)
	}
}

func TestIdentitySaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "identity.json")

	identity := &auth.Identity{UserID: "u1", DisplayName: "小明", Avatar: "http://example.com/a.png"}
	if err := identity.Save(path); err != nil {
		t.Fatalf("save: %v", err)
	}

	loaded, err := auth.LoadIdentity(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if *loaded != *identity {
		t.Fatalf("round trip mismatch: %+v", loaded)
	}
}

func TestEnsureIdentityRecoversFromCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "identity.json")
	identity := &auth.Identity{UserID: "", DisplayName: ""}
	if err := identity.Save(path); err != nil {
		t.Fatalf("save: %v", err)
	}

	ensured, err := auth.EnsureIdentity(path)
	if err != nil {
		t.Fatalf("ensure identity: %v", err)
	}
	if ensured.UserID == "" {
		t.Fatalf("expected fresh user id")
	}
}
