package ptrx

import "testing"

func TestNonEmpty(t *testing.T) {
	if NonEmpty(nil) != nil {
		t.Fatal("nil must stay nil")
	}
	if NonEmpty(String("  ")) != nil {
		t.Fatal("blank must become nil")
	}
	if got := NonEmpty(String("/x")); got == nil || *got != "/x" {
		t.Fatalf("unexpected %v", got)
	}
}

func TestStringValue(t *testing.T) {
	if StringValue(nil) != "" {
		t.Fatal("nil must read as empty")
	}
	if StringValue(String("v")) != "v" {
		t.Fatal("value lost")
	}
}
