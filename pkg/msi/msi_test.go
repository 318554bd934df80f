package msi

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeProductCode(t *testing.T) {
	tests := map[string]string{
		"{B44584C3-ECA1-495D-A17E-6A8C3BD8403C}":   "{B44584C3-ECA1-495D-A17E-6A8C3BD8403C}",
		"b44584c3-eca1-495d-a17e-6a8c3bd8403c":     "{B44584C3-ECA1-495D-A17E-6A8C3BD8403C}",
		"  {b44584c3-eca1-495d-a17e-6a8c3bd8403c}": "{B44584C3-ECA1-495D-A17E-6A8C3BD8403C}",
		"":                                         "",
	}
	for in, want := range tests {
		assert.Equal(t, want, NormalizeProductCode(in), "input %q", in)
	}
}

func TestSameProduct(t *testing.T) {
	assert.True(t, SameProduct("{90120000-0030-0000-0000-0000000FF1CE}", "90120000-0030-0000-0000-0000000ff1ce"))
	assert.False(t, SameProduct("{90120000-0030-0000-0000-0000000FF1CE}", "{90120000-0031-0000-0000-0000000FF1CE}"))
}

func TestStatic(t *testing.T) {
	products, err := Static{{ProductCode: "{A}"}}.Products()
	assert.NoError(t, err)
	assert.Len(t, products, 1)
}
