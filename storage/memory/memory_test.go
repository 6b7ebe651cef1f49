package memory

import (
	"context"
	"errors"
	"testing"
)

func TestMedium(t *testing.T) {
	ctx := context.Background()
	m := New()

	if err := m.SetItem(ctx, "a", "1"); err != nil {
		t.Fatalf("SetItem failed: %v", err)
	}
	if v, ok, err := m.GetItem(ctx, "a"); v != "1" || !ok || err != nil {
		t.Errorf("GetItem = %q, %v, %v", v, ok, err)
	}
	keys, _ := m.Keys(ctx)
	if len(keys) != 1 || keys[0] != "a" {
		t.Errorf("Keys = %v", keys)
	}
	if err := m.RemoveItem(ctx, "a"); err != nil {
		t.Fatalf("RemoveItem failed: %v", err)
	}
	if _, ok, _ := m.GetItem(ctx, "a"); ok {
		t.Error("key still present after RemoveItem")
	}
}

func TestMedium_Fail(t *testing.T) {
	ctx := context.Background()
	m := New()
	boom := errors.New("boom")
	m.Fail(boom)

	if _, _, err := m.GetItem(ctx, "a"); !errors.Is(err, boom) {
		t.Errorf("GetItem err = %v", err)
	}
	if err := m.SetItem(ctx, "a", "1"); !errors.Is(err, boom) {
		t.Errorf("SetItem err = %v", err)
	}
	if err := m.RemoveItem(ctx, "a"); !errors.Is(err, boom) {
		t.Errorf("RemoveItem err = %v", err)
	}
	if _, err := m.Keys(ctx); !errors.Is(err, boom) {
		t.Errorf("Keys err = %v", err)
	}

	m.Fail(nil)
	if err := m.SetItem(ctx, "a", "1"); err != nil {
		t.Errorf("SetItem after recovery: %v", err)
	}
}
