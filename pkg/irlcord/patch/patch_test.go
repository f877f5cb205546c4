package patch

import "testing"

func TestFieldStates(t *testing.T) {
	var absentField Field[string]
	if absentField.Present() || absentField.IsSet() || absentField.IsCleared() {
		t.Error("Expected zero Field to be absent")
	}

	s := Set("x")
	if !s.Present() || !s.IsSet() || s.Value() != "x" {
		t.Errorf("Expected set field with value x, got %+v", s)
	}

	c := Clear[int]()
	if !c.Present() || !c.IsCleared() || c.IsSet() {
		t.Errorf("Expected cleared field, got %+v", c)
	}
}

func TestApply(t *testing.T) {
	name := "old"
	Field[string]{}.Apply(&name)
	if name != "old" {
		t.Errorf("Expected absent field to leave value, got %q", name)
	}
	Set("new").Apply(&name)
	if name != "new" {
		t.Errorf("Expected 'new', got %q", name)
	}
	Clear[string]().Apply(&name)
	if name != "" {
		t.Errorf("Expected cleared value, got %q", name)
	}
}

func TestApplyPtr(t *testing.T) {
	three := 3
	limit := &three

	Field[int]{}.ApplyPtr(&limit)
	if limit == nil || *limit != 3 {
		t.Fatalf("Expected absent field to keep 3, got %v", limit)
	}
	Set(5).ApplyPtr(&limit)
	if limit == nil || *limit != 5 {
		t.Fatalf("Expected 5, got %v", limit)
	}
	Clear[int]().ApplyPtr(&limit)
	if limit != nil {
		t.Errorf("Expected nil after clear, got %v", *limit)
	}
}

func TestString(t *testing.T) {
	args := map[string]string{"name": "Hike", "description": ""}
	if f := String(args, "name"); !f.IsSet() || f.Value() != "Hike" {
		t.Errorf("Expected set name, got %+v", f)
	}
	if f := String(args, "description"); !f.IsCleared() {
		t.Errorf("Expected cleared description, got %+v", f)
	}
	if f := String(args, "location"); f.Present() {
		t.Errorf("Expected absent location, got %+v", f)
	}
}
