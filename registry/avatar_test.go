package registry_test

import (
	"testing"

	"XingHe-API/registry"
)

func TestAvatarRegistryPutAndGet(t *testing.T) {
	r := registry.NewAvatarRegistry()

	r.Put("u1", "小明", "http://example.com/a.png")

	if name, ok := r.Name("u1"); !ok || name != "小明" {
		t.Fatalf("name not stored: %q %v", name, ok)
	}
	if avatar, ok := r.Avatar("u1"); !ok || avatar != "http://example.com/a.png" {
		t.Fatalf("avatar not stored: %q %v", avatar, ok)
	}
	if _, ok := r.Name("u2"); ok {
		t.Fatalf("unexpected hit for unknown user")
	}
}

func TestAvatarRegistryEmptyValuesDoNotOverwrite(t *testing.T) {
	r := registry.NewAvatarRegistry()

	r.Put("u1", "小明", "http://example.com/a.png")
	r.Put("u1", "", "")

	if name, _ := r.Name("u1"); name != "小明" {
		t.Fatalf("name overwritten: %q", name)
	}
	if avatar, _ := r.Avatar("u1"); avatar != "http://example.com/a.png" {
		t.Fatalf("avatar overwritten: %q", avatar)
	}
}

func TestAvatarRegistryIgnoresEmptyUserID(t *testing.T) {
	r := registry.NewAvatarRegistry()

	r.Put("", "小明", "")
	if r.Len() != 0 {
		t.Fatalf("empty user id should be ignored")
	}
}

func TestAvatarRegistryLatestWriteWins(t *testing.T) {
	r := registry.NewAvatarRegistry()

	r.Put("u1", "旧昵称", "")
	r.Put("u1", "新昵称", "")

	if name, _ := r.Name("u1"); name != "新昵称" {
		t.Fatalf("expected latest name, got %q", name)
	}
	if r.Len() != 1 {
		t.Fatalf("expected 1 entry, got %d", r.Len())
	}
}
