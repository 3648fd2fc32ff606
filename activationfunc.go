package gobp

import (
	"github.com/goki/mat32"
	"github.com/pkg/errors"
)

// ActivationFunc is a transfer function that turns a given net input into an activation value.
// It contains the actual function (Func), its derivative with respect to the net input (Derivative),
// and the name it is persisted under (Name).
type ActivationFunc struct {
	Name       string
	Func       func(x float32) float32
	Derivative func(x float32) float32
}

// Tanh is the hyperbolic tangent activation function, the default of a new network
var Tanh = ActivationFunc{
	Name:       "tanh",
	Func:       TanhFunc,
	Derivative: TanhDerivative,
}

// TanhFunc returns tanh(x)
func TanhFunc(x float32) float32 {
	return mat32.Tanh(x)
}

// TanhDerivative returns the derivative of tanh at x (1 - tanh(x)^2)
func TanhDerivative(x float32) float32 {
	t := mat32.Tanh(x)
	return 1 - t*t
}

// Logistic is the standard logistic / Sigmoid activation function (1 / (1 + e^-x))
var Logistic = ActivationFunc{
	Name:       "log",
	Func:       LogisticFunc,
	Derivative: LogisticFuncDerivative,
}

// LogisticFunc returns the value of the standard logistic / Sigmoid activation function at the given point (1 / (1 + e^-x))
func LogisticFunc(x float32) float32 {
	return 1 / (1 + mat32.Exp(-x))
}

// LogisticFuncDerivative returns the derivative of the standard logistic / Sigmoid activation function at the given point
func LogisticFuncDerivative(x float32) float32 {
	s := LogisticFunc(x)
	return s * (1 - s)
}

// Linear is the identity activation function that returns the input unchanged
var Linear = ActivationFunc{
	Name:       "linear",
	Func:       LinearFunc,
	Derivative: LinearDerivative,
}

// LinearFunc just returns the input x unchanged
func LinearFunc(x float32) float32 {
	return x
}

// LinearDerivative returns the derivative of the identity function (which is 1)
func LinearDerivative(x float32) float32 {
	return 1
}

// Binary is a step function returning 1 if x >= 0 and 0 otherwise.
// Its derivative is taken as 1 so that error still flows through it.
var Binary = ActivationFunc{
	Name:       "binary",
	Func:       BinaryFunc,
	Derivative: LinearDerivative,
}

// BinaryFunc returns 1 if x >= 0 and 0 otherwise
func BinaryFunc(x float32) float32 {
	if x >= 0 {
		return 1
	}
	return 0
}

// Rectifier is the rectifier (ReLU) activation function that returns x if x > 0 and 0 otherwise
var Rectifier = ActivationFunc{
	Name:       "relu",
	Func:       RectifierFunc,
	Derivative: RectifierDerivative,
}

// RectifierFunc returns the value of the rectifier (ReLU) activation function at the given point (x if x > 0 and 0 otherwise)
func RectifierFunc(x float32) float32 {
	if x > 0 {
		return x
	}
	return 0
}

// RectifierDerivative returns the derivative of the rectifier (ReLU) activation function at the given point (1 if x > 0 and 0 otherwise)
func RectifierDerivative(x float32) float32 {
	if x > 0 {
		return 1
	}
	return 0
}

var activationFuncs = []*ActivationFunc{&Tanh, &Logistic, &Linear, &Binary, &Rectifier}

// ActivationFuncByName returns the activation function persisted under the given name.
func ActivationFuncByName(name string) (*ActivationFunc, error) {
	for _, fn := range activationFuncs {
		if fn.Name == name {
			return fn, nil
		}
	}
	return nil, errors.Wrapf(ErrUnknownFunction, "%q", name)
}
