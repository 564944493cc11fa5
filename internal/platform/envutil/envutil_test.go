package envutil

import (
	"reflect"
	"testing"
	"time"
)

func TestIntFallsBackOnGarbage(t *testing.T) {
	t.Setenv("ENVUTIL_INT", "nope")
	if got := Int("ENVUTIL_INT", 7); got != 7 {
		t.Fatalf("Int: want=7 got=%d", got)
	}
	t.Setenv("ENVUTIL_INT", " 12 ")
	if got := Int("ENVUTIL_INT", 7); got != 12 {
		t.Fatalf("Int: want=12 got=%d", got)
	}
}

func TestBool(t *testing.T) {
	t.Setenv("ENVUTIL_BOOL", "off")
	if Bool("ENVUTIL_BOOL", true) {
		t.Fatalf("Bool: expected false")
	}
	t.Setenv("ENVUTIL_BOOL", "maybe")
	if !Bool("ENVUTIL_BOOL", true) {
		t.Fatalf("Bool: expected default true")
	}
}

func TestSeconds(t *testing.T) {
	t.Setenv("ENVUTIL_TTL", "90")
	if got := Seconds("ENVUTIL_TTL", time.Hour); got != 90*time.Second {
		t.Fatalf("Seconds: got=%s", got)
	}
	t.Setenv("ENVUTIL_TTL", "-5")
	if got := Seconds("ENVUTIL_TTL", time.Hour); got != time.Hour {
		t.Fatalf("Seconds fallback: got=%s", got)
	}
}

func TestList(t *testing.T) {
	t.Setenv("ENVUTIL_LIST", " a, ,b ,")
	if got := List("ENVUTIL_LIST", nil); !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Fatalf("List: got=%v", got)
	}
}
