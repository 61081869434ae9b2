package domain

import (
	"encoding/json"
	"testing"
)

func TestFlatten_SortedKeyOrderSkipsID(t *testing.T) {
	r := Row{
		"name":   "Park Hotel",
		"city":   "Tokyo",
		"rating": 4.5,
		"__id":   7,
	}

	got := r.Flatten()
	want := "Tokyo Park Hotel 4.5"
	if got != want {
		t.Errorf("Flatten() = %q, want %q", got, want)
	}
}

func TestFlatten_Deterministic(t *testing.T) {
	r := Row{"b": "two", "a": "one", "c": "three"}

	first := r.Flatten()
	for i := 0; i < 10; i++ {
		if got := r.Flatten(); got != first {
			t.Fatalf("Flatten() varies: %q vs %q", got, first)
		}
	}
}

func TestFlatten_ArraysAndScalars(t *testing.T) {
	r := Row{
		"themes": []any{"food", "culture"},
		"active": true,
		"nights": 3,
		"empty":  "",
	}

	got := r.Flatten()
	want := "true 3 food culture"
	if got != want {
		t.Errorf("Flatten() = %q, want %q", got, want)
	}
}

func TestID_SurvivesJSONRoundTrip(t *testing.T) {
	r := Row{"city": "Tokyo"}.WithID(42)

	data, err := json.Marshal(r)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var back Row
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	id, ok := back.ID()
	if !ok || id != 42 {
		t.Errorf("ID() = %d, %v; want 42, true", id, ok)
	}
}

func TestID_AbsentOnRawRow(t *testing.T) {
	if _, ok := (Row{"city": "Tokyo"}).ID(); ok {
		t.Error("ID() should be absent before WithID")
	}
}

func TestClone_IsIndependent(t *testing.T) {
	orig := Row{"city": "Tokyo", "airline": "Virgin Atlantic"}

	c := orig.Clone()
	c["date"] = "2025-07-01"

	if _, ok := orig["date"]; ok {
		t.Error("writing the clone mutated the original row")
	}
	if c.City() != "Tokyo" {
		t.Errorf("clone city = %q, want Tokyo", c.City())
	}
}

func TestWithID_DoesNotMutateOriginal(t *testing.T) {
	orig := Row{"city": "Tokyo"}
	_ = orig.WithID(1)

	if _, ok := orig.ID(); ok {
		t.Error("WithID mutated the original row")
	}
}

func TestEqualCity(t *testing.T) {
	r := Row{"city": "Cape Town"}

	if !r.EqualCity("cape town") {
		t.Error("match should be case-insensitive")
	}
	if r.EqualCity("Tokyo") {
		t.Error("different city must not match")
	}
	if !r.EqualCity("") {
		t.Error("empty city means no filter")
	}
}
