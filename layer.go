package gobp

import (
	"github.com/kkoreilly/gobp/parallel"
	"github.com/pkg/errors"
)

// Layer represents one layer (input, hidden, or output) of a neural network.
// It owns its units and its optional bias unit.
type Layer struct {
	id    int       // the index of this layer in the network
	net   *Network  // the network this layer belongs to, nil if detached
	flags LayerFlag // the capabilities of this layer
	units []Unit    // the units on this layer, unit i has ID i
	bias  *Unit     // the bias unit, present iff flags has LayerBias
}

// NewLayer creates a detached layer with n units and the given flags
func NewLayer(n int, flags LayerFlag) (*Layer, error) {
	l := &Layer{id: -1}
	if err := l.Resize(n); err != nil {
		return nil, err
	}
	l.SetFlag(flags)
	return l, nil
}

// MustNewLayer is like NewLayer but panics on a negative size
func MustNewLayer(n int, flags LayerFlag) *Layer {
	l, err := NewLayer(n, flags)
	if err != nil {
		panic(err.Error())
	}
	return l
}

// ID returns the index of the layer in its network, -1 if it is detached
func (l *Layer) ID() int {
	return l.id
}

// Len returns the number of units on the layer, not counting the bias unit
func (l *Layer) Len() int {
	return len(l.units)
}

// Flags returns the capabilities of the layer
func (l *Layer) Flags() LayerFlag {
	return l.flags
}

// Unit returns the i-th unit of the layer
func (l *Layer) Unit(i int) (*Unit, error) {
	if i < 0 || i >= len(l.units) {
		return nil, &RangeError{What: "unit", Index: i, Limit: len(l.units)}
	}
	return &l.units[i], nil
}

// Units returns the units of the layer. The slice is owned by the layer.
func (l *Layer) Units() []Unit {
	return l.units
}

// Bias returns the bias unit, or nil if the layer has none
func (l *Layer) Bias() *Unit {
	return l.bias
}

// Values returns the activation values of the units
func (l *Layer) Values() []float32 {
	res := make([]float32, len(l.units))
	for i := range l.units {
		res[i] = l.units[i].Act
	}
	return res
}

// Resize destroys all units of the layer, along with every edge touching them, and creates
// n fresh units with ids 0 to n-1. The bias unit is kept.
func (l *Layer) Resize(n int) error {
	if n < 0 {
		return errors.Wrapf(ErrContractViolation, "negative layer size %d", n)
	}
	if l.net != nil {
		for i := range l.units {
			l.net.detach(&l.units[i])
		}
	}
	l.units = make([]Unit, n)
	for i := range l.units {
		l.units[i].ID = i
	}
	if l.net != nil {
		l.net.setLayerParams(l)
	}
	return nil
}

// SetFlag replaces the flags of the layer. Clearing LayerBias removes the bias unit
// together with its edges.
func (l *Layer) SetFlag(flags LayerFlag) {
	l.flags = flags
	if !flags.Has(LayerBias) && l.bias != nil {
		if l.net != nil {
			l.net.detach(l.bias)
		}
		l.bias = nil
	}
	l.EnsureBias()
}

// AddFlag adds flags to the layer
func (l *Layer) AddFlag(flags LayerFlag) {
	l.flags |= flags
	l.EnsureBias()
}

// EnsureBias creates the bias unit, with an activation of 1, if the layer has the LayerBias
// flag and no bias unit yet. It does nothing otherwise.
func (l *Layer) EnsureBias() {
	if !l.flags.Has(LayerBias) || l.bias != nil {
		return
	}
	l.bias = &Unit{ID: BiasUnit, Act: 1}
	if l.net != nil {
		l.bias.setParams(l.net.learningRate, l.net.momentum, l.net.weightDecay)
	}
}

// ref returns the reference to the i-th unit of the layer
func (l *Layer) ref(i int) UnitRef {
	return UnitRef{Layer: l.id, Unit: i}
}

// checkConnect makes sure both layers live in the same network, since edges refer to units by
// layer index, and that dst is a later layer
func (l *Layer) checkConnect(dst *Layer) error {
	if dst == nil {
		return errors.Wrap(ErrContractViolation, "nil destination layer")
	}
	if l.net == nil || l.net != dst.net {
		return ErrDetachedLayer
	}
	return feedsForward(l.id, dst.id)
}

// ConnectLayer connects every unit of this layer, and the bias unit, to every unit of dst.
// dst must come after this layer in the network. Weights start at small random values.
// allowAdapt sets whether the new edges of the ordinary units are trainable; edges of the
// bias unit always are.
func (l *Layer) ConnectLayer(dst *Layer, allowAdapt bool) error {
	if err := l.checkConnect(dst); err != nil {
		return err
	}
	for i := range l.units {
		for j := range dst.units {
			l.net.connect(l.ref(i), dst.ref(j), l.net.randWeight(), 0, allowAdapt)
		}
	}
	l.connectBias(dst)
	return nil
}

// ConnectLayerMask connects the units of this layer to units of dst following mask:
// mask[i] lists the ids of the units of dst that unit i connects to. The bias unit, if any,
// is still connected to every unit of dst. The whole mask is checked before any edge is made.
func (l *Layer) ConnectLayerMask(dst *Layer, mask [][]int, allowAdapt bool) error {
	if err := l.checkConnect(dst); err != nil {
		return err
	}
	if len(mask) != len(l.units) {
		return errors.Wrapf(ErrContractViolation, "connection mask has %d rows for %d units", len(mask), len(l.units))
	}
	for i, row := range mask {
		for _, j := range row {
			if j < 0 || j >= len(dst.units) {
				return errors.Wrapf(&RangeError{What: "destination unit", Index: j, Limit: len(dst.units)},
					"connection mask row %d", i)
			}
		}
	}
	for i, row := range mask {
		for _, j := range row {
			l.net.connect(l.ref(i), dst.ref(j), l.net.randWeight(), 0, allowAdapt)
		}
	}
	l.connectBias(dst)
	return nil
}

func (l *Layer) connectBias(dst *Layer) {
	if l.bias == nil {
		return
	}
	for j := range dst.units {
		l.net.connect(l.ref(BiasUnit), dst.ref(j), l.net.randWeight(), 0, true)
	}
}

// threads returns the goroutine limit of the owning network
func (l *Layer) threads() int {
	if l.net == nil {
		return 0
	}
	return l.net.Threads
}

// SetLearningRate sets the learning rate of every unit, the bias unit included
func (l *Layer) SetLearningRate(val float32) {
	parallel.ForEach(len(l.units), l.threads(), func(i int) {
		l.units[i].LearningRate = val
	})
	if l.bias != nil {
		l.bias.LearningRate = val
	}
}

// SetMomentum sets the momentum of every unit, the bias unit included
func (l *Layer) SetMomentum(val float32) {
	parallel.ForEach(len(l.units), l.threads(), func(i int) {
		l.units[i].Momentum = val
	})
	if l.bias != nil {
		l.bias.Momentum = val
	}
}

// SetWeightDecay sets the weight decay of every unit, the bias unit included
func (l *Layer) SetWeightDecay(val float32) {
	parallel.ForEach(len(l.units), l.threads(), func(i int) {
		l.units[i].WeightDecay = val
	})
	if l.bias != nil {
		l.bias.WeightDecay = val
	}
}
