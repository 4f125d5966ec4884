package qc

import "testing"

func TestDefaultRegistry(t *testing.T) {
	r := DefaultRegistry()

	list := r.List()
	if len(list) != 3 {
		t.Fatalf("List() = %d actions, want 3", len(list))
	}
	want := []string{ActionAggregate, ActionChop, ActionStats}
	for i, a := range list {
		if a.Name != want[i] {
			t.Errorf("List()[%d] = %q, want %q", i, a.Name, want[i])
		}
		if a.Title == "" || a.Citation == "" {
			t.Errorf("action %q lacks title or citation", a.Name)
		}
	}

	a, err := r.Get(ActionChop)
	if err != nil {
		t.Fatalf("Get(chop) error = %v", err)
	}
	if a.Name != ActionChop {
		t.Errorf("Get(chop).Name = %q", a.Name)
	}
	if _, err := r.Get("trim"); err == nil {
		t.Error("Get(trim) should fail")
	}
}
