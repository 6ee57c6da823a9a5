package core

import "testing"

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		groups []AtomGroup
		atoms  int
		ok     bool
	}{
		{"uniform", Uniform(8, 1.0), 8, true},
		{"two species", []AtomGroup{{0, 0, 4, 1.0}, {1, 4, 8, 2.0}}, 8, true},
		{"gap", []AtomGroup{{0, 0, 3, 1.0}, {1, 4, 8, 1.0}}, 8, false},
		{"overlap", []AtomGroup{{0, 0, 5, 1.0}, {1, 4, 8, 1.0}}, 8, false},
		{"short cover", Uniform(6, 1.0), 8, false},
		{"zero mass", []AtomGroup{{0, 0, 8, 0}}, 8, false},
		{"empty group", []AtomGroup{{0, 0, 0, 1.0}, {1, 0, 8, 1.0}}, 8, false},
	}
	for _, tt := range tests {
		err := Validate(tt.groups, tt.atoms)
		if (err == nil) != tt.ok {
			t.Errorf("%s: Validate = %v, want ok=%v", tt.name, err, tt.ok)
		}
	}
}

func TestMassOf(t *testing.T) {
	groups := []AtomGroup{{0, 0, 2, 1.5}, {1, 2, 4, 3.0}}
	if m := MassOf(groups, 1); m != 1.5 {
		t.Errorf("MassOf(1) = %v", m)
	}
	if m := MassOf(groups, 3); m != 3.0 {
		t.Errorf("MassOf(3) = %v", m)
	}
	if m := MassOf(groups, 9); m != 0 {
		t.Errorf("MassOf(9) = %v, want 0", m)
	}
}
