package delay

import (
	"testing"
	"time"
)

func TestNext(t *testing.T) {
	for _, entry := range [][]T{
		{3, 5},
		{5, 10},
		{10, 3},
		{7, 3},
	} {
		expected := entry[1]
		actual := entry[0].Next()
		if actual != expected {
			t.Errorf("expected: %v | got %v", expected, actual)
		}
	}
}

func TestParse(t *testing.T) {
	if d, err := Parse(5); err != nil || d != 5 {
		t.Errorf("wrong delay, expected=%v, got=%v (%v)", 5, d, err)
	}
	if _, err := Parse(4); err == nil {
		t.Error("4s must be rejected")
	}
}

func TestDuration(t *testing.T) {
	if d := T(10).Duration(); d != 10*time.Second {
		t.Errorf("wrong duration %v", d)
	}
}
