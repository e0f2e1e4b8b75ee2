package details

import (
	"encoding/json"
	"reflect"
	"testing"
)

func TestParsePreservesOrder(t *testing.T) {
	src := `{"zeta":1,"alpha":"a","mid":null,"nested":{"b":true,"a":[1,"x"]}}`

	m, err := Parse([]byte(src))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if got, want := m.Keys(), []string{"zeta", "alpha", "mid", "nested"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Keys() = %v, want %v", got, want)
	}

	out, err := json.Marshal(m)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if string(out) != src {
		t.Errorf("round trip = %s, want %s", out, src)
	}
}

func TestParseKinds(t *testing.T) {
	m, err := Parse([]byte(`{"s":"x","n":2.5,"b":false,"z":null,"l":[],"m":{}}`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	want := map[string]Kind{
		"s": KindString,
		"n": KindNumber,
		"b": KindBool,
		"z": KindNull,
		"l": KindList,
		"m": KindMap,
	}
	for key, kind := range want {
		v, ok := m.Get(key)
		if !ok {
			t.Fatalf("Get(%q) missing", key)
		}
		if v.Kind() != kind {
			t.Errorf("%s kind = %s, want %s", key, v.Kind(), kind)
		}
	}

	if n, ok := m.GetNumber("n"); !ok || n != 2.5 {
		t.Errorf("GetNumber(n) = %v, %v", n, ok)
	}
	if _, ok := m.GetNumber("s"); ok {
		t.Error("GetNumber(s) reported a number")
	}
	if got := m.GetString("z"); got != "" {
		t.Errorf("GetString(z) = %q, want empty", got)
	}
}

func TestParseRejectsNonObject(t *testing.T) {
	for _, src := range []string{`[1,2]`, `"x"`, `{"a":`, ``} {
		if _, err := Parse([]byte(src)); err == nil {
			t.Errorf("Parse(%q) succeeded, want error", src)
		}
	}
}

func TestParseNullIsEmpty(t *testing.T) {
	m, err := Parse([]byte(`null`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if m.Len() != 0 {
		t.Errorf("Len() = %d, want 0", m.Len())
	}
}

func TestSetKeepsFirstPosition(t *testing.T) {
	m := NewMap()
	m.Set("a", Number(1))
	m.Set("b", Number(2))
	m.Set("a", Number(3))

	if got := m.Keys(); !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Errorf("Keys() = %v", got)
	}
	if v, _ := m.GetNumber("a"); v != 3 {
		t.Errorf("a = %v, want 3", v)
	}
}

func TestDisplay(t *testing.T) {
	inner := NewMap()
	inner.Set("tier", String("gold"))
	inner.Set("az", Number(2))

	tests := []struct {
		name string
		v    Value
		want string
	}{
		{"null", Null(), "—"},
		{"true", Bool(true), "Yes"},
		{"false", Bool(false), "No"},
		{"integer", Number(1234567), "1,234,567"},
		{"fraction", Number(1234.5), "1,234.5"},
		{"string", String("t3.micro"), "t3.micro"},
		{"list", List(String("a"), Number(2)), "a, 2"},
		{"map", Object(inner), "tier: gold, az: 2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.v.Display(); got != tt.want {
				t.Errorf("Display() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestLabel(t *testing.T) {
	tests := []struct {
		key  string
		want string
	}{
		{"instanceType", "Instance Type"},
		{"cost_per_hour", "Cost Per Hour"},
		{"multi-az", "Multi Az"},
		{"region", "Region"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := Label(tt.key); got != tt.want {
			t.Errorf("Label(%q) = %q, want %q", tt.key, got, tt.want)
		}
	}
}

func TestNewPanel(t *testing.T) {
	m, err := Parse([]byte(`{"name":"VM1","type":"Compute","region":"us-east","vcpus":4,"public":false}`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	p := NewPanel("Node: VM1", m)
	if p.Title != "Node: VM1" || p.Type != "Compute" {
		t.Errorf("header = %q/%q", p.Title, p.Type)
	}

	var labels []string
	for _, r := range p.Rows {
		labels = append(labels, r.Label+"="+r.Value)
	}
	want := []string{"Region=us-east", "Vcpus=4", "Public=No"}
	if !reflect.DeepEqual(labels, want) {
		t.Errorf("rows = %v, want %v", labels, want)
	}
}
