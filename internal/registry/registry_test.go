package registry

import (
	"testing"

	"github.com/vovakirdan/tui-battleship/internal/battleship"
)

func TestRegisterAndCreate(t *testing.T) {
	Register("test-tiny", "Tiny", func() battleship.Rules {
		return battleship.Rules{BoardSize: 4, Fleet: []battleship.ShipSpec{{Name: "Skiff", Length: 2}}}
	})

	if !Exists("test-tiny") {
		t.Fatal("Exists() = false after Register")
	}
	if Title("test-tiny") != "Tiny" {
		t.Errorf("Title() = %q, want Tiny", Title("test-tiny"))
	}

	r, err := Create("test-tiny")
	if err != nil {
		t.Fatalf("Create() failed: %v", err)
	}
	if r.BoardSize != 4 || len(r.Fleet) != 1 {
		t.Errorf("Create() = %+v", r)
	}

	// Each Create returns an independent fleet slice.
	r.Fleet[0].Length = 5
	again, _ := Create("test-tiny")
	if again.Fleet[0].Length != 2 {
		t.Error("Create() shares fleet state between calls")
	}

	if _, err := Create("missing"); err == nil {
		t.Error("Create(missing) should fail")
	}
	if Title("missing") != "missing" {
		t.Errorf("Title(missing) = %q", Title("missing"))
	}
}

func TestRegisterPanics(t *testing.T) {
	tests := []struct {
		name string
		id   string
		f    Factory
	}{
		{"duplicate", "test-dup", battleship.ClassicRules},
		{"invalid rules", "test-bad", func() battleship.Rules { return battleship.Rules{BoardSize: 1} }},
	}

	Register("test-dup", "Dup", battleship.ClassicRules)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defer func() {
				if recover() == nil {
					t.Error("Register() did not panic")
				}
			}()
			Register(tt.id, tt.name, tt.f)
		})
	}
}

func TestListSorted(t *testing.T) {
	Register("test-b", "B", battleship.ClassicRules)
	Register("test-a", "A", battleship.ClassicRules)

	list := List()
	for i := 1; i < len(list); i++ {
		if list[i-1].ID > list[i].ID {
			t.Fatalf("List() not sorted: %q before %q", list[i-1].ID, list[i].ID)
		}
	}
}
