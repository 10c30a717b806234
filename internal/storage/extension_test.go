package storage

import (
	"testing"

	"github.com/pixil98/go-testutil"
)

func TestExtensionState_SetGet(t *testing.T) {
	var e ExtensionState

	err := e.Set("inventory", []string{"sword", "rope"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var items []string
	found, err := e.Get("inventory", &items)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	testutil.AssertEqual(t, "found", found, true)
	testutil.AssertEqual(t, "item count", len(items), 2)
	testutil.AssertEqual(t, "first item", items[0], "sword")
}

func TestExtensionState_SetMarshalError(t *testing.T) {
	e := ExtensionState{}
	err := e.Set("bad", make(chan int))
	if err == nil {
		t.Error("expected marshal error")
	}
}

func TestExtensionState_GetMissing(t *testing.T) {
	var out string

	var nilState ExtensionState
	found, err := nilState.Get("anything", &out)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	testutil.AssertEqual(t, "found on nil state", found, false)

	e := ExtensionState{}
	found, err = e.Get("absent", &out)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	testutil.AssertEqual(t, "found on empty state", found, false)
}

func TestExtensionState_GetTypeMismatch(t *testing.T) {
	e := ExtensionState{}
	if err := e.Set("count", 42); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var out []string
	found, err := e.Get("count", &out)
	testutil.AssertEqual(t, "found", found, true)
	if err == nil {
		t.Error("expected unmarshal error")
	}
}
