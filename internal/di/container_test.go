package di

import (
	"reflect"
	"testing"
)

type greeter struct{ name string }

func TestContainerRegisterAndLookup(t *testing.T) {
	c := NewContainer()
	c.Register("greeter", &greeter{name: "leo"})
	c.Register("count", 3)

	g, err := Lookup[*greeter](c, "greeter")
	if err != nil || g.name != "leo" {
		t.Fatalf("Lookup = %v, %v", g, err)
	}
	if _, err := Lookup[string](c, "count"); err == nil {
		t.Error("expected a type mismatch error")
	}
	if _, err := Lookup[*greeter](c, "missing"); err == nil {
		t.Error("expected a missing service error")
	}

	if got := c.GetNames(); !reflect.DeepEqual(got, []string{"count", "greeter"}) {
		t.Errorf("GetNames = %v", got)
	}
	if err := c.Require("greeter", "count"); err != nil {
		t.Errorf("Require: %v", err)
	}
	if err := c.Require("greeter", "nope"); err == nil {
		t.Error("Require should report the missing service")
	}
}

func TestGetContainerIsShared(t *testing.T) {
	if GetContainer() != GetContainer() {
		t.Error("GetContainer should return a single instance")
	}
}
