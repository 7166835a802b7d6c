package expr_test

import (
	"math"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/example/docsql/internal/sql/expr"
)

type stubEntity struct{ name string }

func (s *stubEntity) Attribute(name string) (expr.Value, bool) {
	if name == "name" {
		return expr.String(s.name), true
	}
	return expr.Null(), false
}

func TestFromNativeKinds(t *testing.T) {
	cases := []struct {
		in   interface{}
		kind expr.Kind
		text string
	}{
		{nil, expr.KindNull, "NULL"},
		{"wall", expr.KindString, "wall"},
		{42, expr.KindNumber, "42"},
		{int64(-7), expr.KindNumber, "-7"},
		{2.5, expr.KindNumber, "2.5"},
		{true, expr.KindString, "true"},
		{decimal.RequireFromString("1.25"), expr.KindNumber, "1.25"},
		{uint64(math.MaxUint64), expr.KindNumber, "18446744073709551615"},
		{uint(7), expr.KindNumber, "7"},
		{float32(0.5), expr.KindNumber, "0.5"},
		{math.Inf(1), expr.KindString, "+Inf"},
		{math.Inf(-1), expr.KindString, "-Inf"},
		{math.NaN(), expr.KindString, "NaN"},
		{float32(math.Inf(1)), expr.KindString, "+Inf"},
	}
	for _, tc := range cases {
		v := expr.FromNative(tc.in)
		if v.Kind() != tc.kind {
			t.Fatalf("FromNative(%v): expected kind %v, got %v", tc.in, tc.kind, v.Kind())
		}
		if v.String() != tc.text {
			t.Fatalf("FromNative(%v): expected %q, got %q", tc.in, tc.text, v.String())
		}
	}
}

func TestEntityValue(t *testing.T) {
	e := &stubEntity{name: "Wall"}
	v := expr.FromNative(e)
	if v.Kind() != expr.KindEntity {
		t.Fatalf("expected entity kind, got %v", v.Kind())
	}
	got, ok := v.Entity()
	if !ok || got != e {
		t.Fatalf("expected the original entity back")
	}
	if !v.Equal(expr.EntityRef(e)) {
		t.Fatalf("expected entity references to the same record to be equal")
	}
	if expr.EntityRef(nil).Kind() != expr.KindNull {
		t.Fatalf("expected nil entity to become null")
	}
}

func TestEqualityAndNulls(t *testing.T) {
	if !expr.Int(4).Equal(expr.Number(decimal.RequireFromString("4.0"))) {
		t.Fatalf("expected 4 = 4.0")
	}
	if expr.String("4").Equal(expr.Int(4)) {
		t.Fatalf("expected string and number never to be equal")
	}
	if expr.Null().Equal(expr.Null()) {
		t.Fatalf("expected null never to compare equal")
	}
	if expr.Null().Key() != (expr.Value{}).Key() {
		t.Fatalf("expected all nulls to share a group key")
	}
	if expr.Int(4).Key() != expr.Number(decimal.RequireFromString("4.00")).Key() {
		t.Fatalf("expected numerically equal values to share a group key")
	}
	if expr.String("4").Key() == expr.Int(4).Key() {
		t.Fatalf("expected string and number keys to differ")
	}
}

type valueEntity struct{ id string }

func (v valueEntity) Attribute(string) (expr.Value, bool) { return expr.Null(), false }

func TestEntityKeys(t *testing.T) {
	a, b := &stubEntity{name: "a"}, &stubEntity{name: "a"}
	if expr.EntityRef(a).Key() == expr.EntityRef(b).Key() {
		t.Fatalf("expected distinct pointer entities to have distinct keys")
	}
	if expr.EntityRef(a).Key() != expr.EntityRef(a).Key() {
		t.Fatalf("expected the same entity to keep its key")
	}
	x, y := expr.EntityRef(valueEntity{id: "x"}), expr.EntityRef(valueEntity{id: "y"})
	if x.Key() == y.Key() {
		t.Fatalf("expected distinct value entities to have distinct keys, got %s", x.Key())
	}
	if strings.Contains(x.Key(), "%!") {
		t.Fatalf("unexpected formatting error in key %s", x.Key())
	}
	if x.Key() != expr.EntityRef(valueEntity{id: "x"}).Key() {
		t.Fatalf("expected equal value entities to share a key")
	}
}

func TestCompare(t *testing.T) {
	if cmp, ok := expr.Int(1).Compare(expr.Int(6)); !ok || cmp >= 0 {
		t.Fatalf("expected 1 < 6, got %d/%v", cmp, ok)
	}
	if cmp, ok := expr.String("b").Compare(expr.String("a")); !ok || cmp <= 0 {
		t.Fatalf("expected b > a, got %d/%v", cmp, ok)
	}
	if _, ok := expr.String("b").Compare(expr.Int(1)); ok {
		t.Fatalf("expected mixed kinds to be unordered")
	}
}

func TestParseNumber(t *testing.T) {
	v, err := expr.ParseNumber("42")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if v.String() != "42" {
		t.Fatalf("unexpected rendering %q", v.String())
	}
	if _, err := expr.ParseNumber("4x"); err == nil {
		t.Fatalf("expected error for malformed number")
	}
}
