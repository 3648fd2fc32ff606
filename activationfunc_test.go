package gobp

import (
	"testing"

	"github.com/goki/mat32"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestActivationFuncs(t *testing.T) {
	tests := []struct {
		fn    *ActivationFunc
		x     float32
		value float32
		deriv float32
	}{
		{&Tanh, 0, 0, 1},
		{&Tanh, 1, 0.761594, 0.419974},
		{&Logistic, 0, 0.5, 0.25},
		{&Logistic, 2, 0.880797, 0.104994},
		{&Linear, -3, -3, 1},
		{&Binary, 0, 1, 1},
		{&Binary, -0.1, 0, 1},
		{&Rectifier, -2, 0, 0},
		{&Rectifier, 2, 2, 1},
	}
	for _, test := range tests {
		if v := test.fn.Func(test.x); !aboutEqual(v, test.value, defTol) {
			t.Errorf("%s(%g): expected %g but got %g", test.fn.Name, test.x, test.value, v)
		}
		if d := test.fn.Derivative(test.x); !aboutEqual(d, test.deriv, defTol) {
			t.Errorf("%s'(%g): expected %g but got %g", test.fn.Name, test.x, test.deriv, d)
		}
	}
}

// TestDerivativeSlope compares the derivatives with a central difference
func TestDerivativeSlope(t *testing.T) {
	const h = 1e-2
	for _, fn := range []*ActivationFunc{&Tanh, &Logistic, &Linear} {
		for _, x := range []float32{-1.5, -0.3, 0.2, 1.1} {
			slope := (fn.Func(x+h) - fn.Func(x-h)) / (2 * h)
			assert.InDelta(t, slope, fn.Derivative(x), 1e-3, "%s at %g", fn.Name, x)
		}
	}
	assert.Equal(t, mat32.Tanh(0.5), TanhFunc(0.5))
}

func TestActivationFuncByName(t *testing.T) {
	for _, fn := range activationFuncs {
		got, err := ActivationFuncByName(fn.Name)
		require.NoError(t, err)
		assert.Same(t, fn, got)
	}
	_, err := ActivationFuncByName("softmax")
	assert.True(t, errors.Is(err, ErrUnknownFunction))
}
