package lens

import (
	"testing"

	"github.com/gravitymirage/gravitymirage/pkg/errors"
)

func validParams() Params {
	return Params{Mass: 10, Scale: 2000, Method: MethodWeakField, Width: 64, Height: 64}
}

func TestParamsValidate(t *testing.T) {
	if err := validParams().Validate(); err != nil {
		t.Fatalf("valid params rejected: %v", err)
	}

	cases := []struct {
		name   string
		mutate func(*Params)
		code   errors.Code
	}{
		{"zero mass", func(p *Params) { p.Mass = 0 }, errors.ErrCodeInvalidMass},
		{"negative mass", func(p *Params) { p.Mass = -1 }, errors.ErrCodeInvalidMass},
		{"zero scale", func(p *Params) { p.Scale = 0 }, errors.ErrCodeInvalidScale},
		{"negative scale", func(p *Params) { p.Scale = -5 }, errors.ErrCodeInvalidScale},
		{"unknown method", func(p *Params) { p.Method = "turbo" }, errors.ErrCodeInvalidMethod},
		{"empty method", func(p *Params) { p.Method = "" }, errors.ErrCodeInvalidMethod},
		{"zero width", func(p *Params) { p.Width = 0 }, errors.ErrCodeInvalidDimensions},
		{"negative height", func(p *Params) { p.Height = -2 }, errors.ErrCodeInvalidDimensions},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := validParams()
			tc.mutate(&p)
			err := p.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !errors.Is(err, tc.code) {
				t.Errorf("code = %q, want %q", errors.GetCode(err), tc.code)
			}
		})
	}
}

func TestParseMethod(t *testing.T) {
	cases := []struct {
		in   string
		want Method
		ok   bool
	}{
		{"weak-field", MethodWeakField, true},
		{"weak", MethodWeakField, true},
		{"WEAK", MethodWeakField, true},
		{" geodesic ", MethodGeodesic, true},
		{"Geodesic", MethodGeodesic, true},
		{"turbo", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		got, err := ParseMethod(tc.in)
		if tc.ok && (err != nil || got != tc.want) {
			t.Errorf("ParseMethod(%q) = %q, %v; want %q", tc.in, got, err, tc.want)
		}
		if !tc.ok && err == nil {
			t.Errorf("ParseMethod(%q) should fail", tc.in)
		}
	}
}

func TestParamsCacheKeyDistinguishesParameters(t *testing.T) {
	base := validParams()
	variants := []Params{
		{Mass: 11, Scale: 2000, Method: MethodWeakField, Width: 64, Height: 64},
		{Mass: 10, Scale: 2001, Method: MethodWeakField, Width: 64, Height: 64},
		{Mass: 10, Scale: 2000, Method: MethodGeodesic, Width: 64, Height: 64},
		{Mass: 10, Scale: 2000, Method: MethodWeakField, Width: 65, Height: 64},
		{Mass: 10, Scale: 2000, Method: MethodWeakField, Width: 64, Height: 64, OffsetX: 1},
	}
	for _, v := range variants {
		if v.CacheKey() == base.CacheKey() {
			t.Errorf("cache key collision: %+v vs base", v)
		}
	}
	if base.CacheKey() != validParams().CacheKey() {
		t.Error("cache key must be deterministic")
	}
}
