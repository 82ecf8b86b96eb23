package subscription

import "testing"

func TestKeyCanonicalNames(t *testing.T) {
	a := NewKey("d1", []string{"temp", "humidity"})
	b := NewKey("d1", []string{"humidity", "temp"})

	if a != b {
		t.Errorf("keys with reordered names differ: %+v vs %+v", a, b)
	}

	c := NewKey("d1", []string{"temp", "temp", "humidity"})
	if a != c {
		t.Errorf("keys with duplicated names differ: %+v vs %+v", a, c)
	}
}

func TestKeyEmptyNames(t *testing.T) {
	a := NewKey("d1", nil)
	b := NewKey("d1", []string{})

	if a != b {
		t.Error("nil and empty name sets should produce equal keys")
	}
	if a.Names != "" {
		t.Errorf("Names = %q for empty set, want empty", a.Names)
	}
}

func TestKeySentinelDistinct(t *testing.T) {
	// The sentinel scope and a concrete target are never merged,
	// even with identical name sets.
	all := AllKey([]string{"temp"})
	one := NewKey("d1", []string{"temp"})

	if all == one {
		t.Error("sentinel key equals concrete-target key")
	}
	if all.Target != TargetAll {
		t.Errorf("AllKey target = %q, want %q", all.Target, TargetAll)
	}
}

func TestKeyDifferentNameSets(t *testing.T) {
	a := NewKey("d1", []string{"temp"})
	b := NewKey("d1", []string{"temp", "humidity"})

	if a == b {
		t.Error("keys with different name sets should differ")
	}
}

func TestUpdateKey(t *testing.T) {
	a := UpdateKey{Target: "d1", CommandID: 7}
	b := UpdateKey{Target: "d1", CommandID: 7}
	c := UpdateKey{Target: "d2", CommandID: 7}

	if a != b {
		t.Error("equal update keys differ")
	}
	if a == c {
		t.Error("update keys for different targets should differ")
	}
}
