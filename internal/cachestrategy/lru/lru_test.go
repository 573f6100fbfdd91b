package lru

import "testing"

func TestNewRejectsZeroCapacity(t *testing.T) {
	if _, err := New[string, int](0); err == nil {
		t.Error("New(0) error = nil, want error")
	}
}

func TestStrategyEvictsLeastRecentlyUsed(t *testing.T) {
	s, err := New[string, int](2)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	s.Add("a", 1)
	s.Add("b", 2)
	if _, ok := s.Get("a"); !ok {
		t.Fatal("Get(a) missed")
	}
	if evicted := s.Add("c", 3); !evicted {
		t.Error("Add(c) evicted = false, want true")
	}

	if _, ok := s.Get("b"); ok {
		t.Error("Get(b) hit, want evicted")
	}
	if v, ok := s.Get("a"); !ok || v != 1 {
		t.Errorf("Get(a) = %d, %v, want 1, true", v, ok)
	}
	if s.Len() != 2 {
		t.Errorf("Len() = %d, want 2", s.Len())
	}

	if !s.Remove("a") || s.Len() != 1 {
		t.Errorf("Remove(a) left Len() = %d, want 1", s.Len())
	}
}
