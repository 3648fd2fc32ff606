// Package gobp implements feedforward neural networks with backpropagation in Go.
//
// A Network is an ordered list of Layers of Units joined by weighted Edges. It is built from a
// ConTable, trained with PropagateForward / SetOutput / PropagateBackward, and can be saved to
// and loaded from a bzip2 compressed binary stream.
package gobp

import (
	"math/rand"

	"github.com/kkoreilly/gobp/parallel"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// Network is a layered feedforward neural network
type Network struct {
	Threads int // the maximum number of goroutines per parallel loop, <= 0 uses parallel.Workers()

	layers      []*Layer   // the layers, in propagation order
	inputLayer  *Layer     // the layer the input is set on
	outputLayer *Layer     // the layer the output is read from
	flag        NetFlag    // the training algorithm family
	rng         *rand.Rand // source of initial weights, nil uses the global source

	learningRate float32 // the rate at which the network learns
	momentum     float32 // the share of the last weight change added to the next one
	weightDecay  float32 // the share of a weight subtracted from it on every change

	fn          *ActivationFunc // the transfer function of every unit
	trainingSet *TrainingSet    // the data used by TrainFromData
}

// New creates a network with the default configuration and builds it from the given table
func New(t *ConTable) (*Network, error) {
	n := new(Network)
	if err := n.Configure(DefaultConfig()); err != nil {
		return nil, err
	}
	if err := n.CreateNet(t); err != nil {
		return nil, err
	}
	return n, nil
}

// SetSeed makes initial weights created by ConnectLayer reproducible.
// Sub-networks taken with GetSubNet share the seeded source.
func (n *Network) SetSeed(seed int64) {
	n.rng = rand.New(rand.NewSource(seed))
}

// randWeight returns a weight in [-0.5, 0.5)
func (n *Network) randWeight() float32 {
	if n.rng != nil {
		return n.rng.Float32() - 0.5
	}
	return rand.Float32() - 0.5
}

// Flag returns the training algorithm family of the network
func (n *Network) Flag() NetFlag {
	return n.flag
}

// SetFlag sets the training algorithm family of the network
func (n *Network) SetFlag(f NetFlag) {
	n.flag = f
}

// EraseAll removes every layer from the network. The removed layers lose all their edges,
// so they can be added to another network.
func (n *Network) EraseAll() {
	for _, l := range n.layers {
		for i := range l.units {
			l.units[i].in = nil
			l.units[i].out = nil
		}
		if l.bias != nil {
			l.bias.in = nil
			l.bias.out = nil
		}
		l.net = nil
		l.id = -1
	}
	n.layers = nil
	n.inputLayer = nil
	n.outputLayer = nil
}

// Layers returns the layers of the network. The slice is owned by the network.
func (n *Network) Layers() []*Layer {
	return n.layers
}

// Layer returns the layer with the given index
func (n *Network) Layer(i int) (*Layer, error) {
	if i < 0 || i >= len(n.layers) {
		return nil, &RangeError{What: "layer", Index: i, Limit: len(n.layers)}
	}
	return n.layers[i], nil
}

// InputLayer returns the designated input layer, nil if there is none
func (n *Network) InputLayer() *Layer {
	return n.inputLayer
}

// OutputLayer returns the designated output layer, nil if there is none
func (n *Network) OutputLayer() *Layer {
	return n.outputLayer
}

// AddLayer appends the layer to the network. If the layer has the LayerInput or LayerOutput flag,
// it becomes the input or output layer of the network. The units take over the hyperparameters
// of the network.
func (n *Network) AddLayer(l *Layer) error {
	if l == nil {
		return errors.Wrap(ErrContractViolation, "nil layer")
	}
	if l.net != nil {
		return errors.Wrapf(ErrContractViolation, "layer already belongs to a network as layer %d", l.id)
	}
	l.id = len(n.layers)
	l.net = n
	n.layers = append(n.layers, l)
	n.setLayerParams(l)

	if l.flags.Has(LayerInput) {
		n.inputLayer = l
	}
	if l.flags.Has(LayerOutput) {
		n.outputLayer = l
	}
	return nil
}

// setLayerParams copies the hyperparameters of the network onto the units of l
func (n *Network) setLayerParams(l *Layer) {
	for i := range l.units {
		l.units[i].setParams(n.learningRate, n.momentum, n.weightDecay)
	}
	if l.bias != nil {
		l.bias.setParams(n.learningRate, n.momentum, n.weightDecay)
	}
}

// CreateNet destroys the current network and builds a new one from the table: the layers,
// the connections between ordinary units and, for backpropagation networks, the connections
// of the bias units. If any record of the table cannot be wired, the network is left empty
// and a *ConnectionError is returned.
func (n *Network) CreateNet(t *ConTable) error {
	n.EraseAll()
	if t == nil {
		return errors.Wrap(ErrMalformedTable, "nil table")
	}
	if err := t.Validate(); err != nil {
		return err
	}
	logger.Printf("creating %s network with %d layers", t.NetType, t.NrOfLayers)

	n.SetFlag(t.NetType)
	for i := 0; i < t.NrOfLayers; i++ {
		l, err := NewLayer(t.SizeOfLayer[i], t.TypeOfLayer[i])
		if err != nil {
			n.EraseAll()
			return errors.Wrapf(err, "creating layer %d", i)
		}
		n.AddLayer(l)
	}
	if n.inputLayer == nil || n.outputLayer == nil {
		n.EraseAll()
		return errors.Wrap(ErrMalformedTable, "no input or output layer")
	}

	for i, c := range t.NeurCons {
		if err := n.connectRecord(c); err != nil {
			n.EraseAll()
			return &ConnectionError{Index: i, Record: c, Reason: err.Error()}
		}
	}

	if t.NetType != NetBP {
		return nil
	}
	for i, c := range t.BiasCons {
		if err := n.connectBiasRecord(c); err != nil {
			n.EraseAll()
			return &ConnectionError{Index: i, Bias: true, Record: c, Reason: err.Error()}
		}
	}
	return nil
}

// connectRecord wires one connection record between ordinary units
func (n *Network) connectRecord(c ConDescr) error {
	src, err := n.lookup(c.SrcLayerID, c.SrcNeurID)
	if err != nil {
		return err
	}
	dst, err := n.lookup(c.DstLayerID, c.DstNeurID)
	if err != nil {
		return err
	}
	if err := feedsForward(c.SrcLayerID, c.DstLayerID); err != nil {
		return err
	}
	n.connect(src, dst, c.Val, 0, true)
	return nil
}

// feedsForward checks that an edge goes from a layer to a later one. Units of one layer are
// computed in parallel, so they must not read each other.
func feedsForward(src, dst int) error {
	if dst <= src {
		return errors.Wrapf(ErrContractViolation, "layer %d cannot feed layer %d", src, dst)
	}
	return nil
}

// connectBiasRecord wires one bias connection record
func (n *Network) connectBiasRecord(c ConDescr) error {
	if c.SrcLayerID < 0 || c.SrcLayerID >= len(n.layers) {
		return &RangeError{What: "source layer", Index: c.SrcLayerID, Limit: len(n.layers)}
	}
	if n.layers[c.SrcLayerID].bias == nil {
		return errors.Errorf("layer %d has no bias unit", c.SrcLayerID)
	}
	dst, err := n.lookup(c.DstLayerID, c.DstNeurID)
	if err != nil {
		return err
	}
	if err := feedsForward(c.SrcLayerID, c.DstLayerID); err != nil {
		return err
	}
	n.connect(UnitRef{Layer: c.SrcLayerID, Unit: BiasUnit}, dst, c.Val, 0, true)
	return nil
}

// lookup checks that the ordinary unit exists and returns its reference
func (n *Network) lookup(layer, unit int) (UnitRef, error) {
	if layer < 0 || layer >= len(n.layers) {
		return UnitRef{}, &RangeError{What: "layer", Index: layer, Limit: len(n.layers)}
	}
	if unit < 0 || unit >= len(n.layers[layer].units) {
		return UnitRef{}, &RangeError{What: "unit", Index: unit, Limit: len(n.layers[layer].units)}
	}
	return UnitRef{Layer: layer, Unit: unit}, nil
}

// unit resolves a reference known to be valid
func (n *Network) unit(r UnitRef) *Unit {
	l := n.layers[r.Layer]
	if r.Unit == BiasUnit {
		return l.bias
	}
	return &l.units[r.Unit]
}

// connect creates an edge between two units given by valid references
func (n *Network) connect(src, dst UnitRef, value, momentum float32, adapt bool) *Edge {
	e := &Edge{Src: src, Dst: dst, Value: value, Momentum: momentum, Adapt: adapt}
	s := n.unit(src)
	d := n.unit(dst)
	s.out = append(s.out, e)
	d.in = append(d.in, e)
	return e
}

// detach removes every edge of u from the units at the other end
func (n *Network) detach(u *Unit) {
	for _, e := range u.out {
		d := n.unit(e.Dst)
		d.in = removeEdge(d.in, e)
	}
	for _, e := range u.in {
		s := n.unit(e.Src)
		s.out = removeEdge(s.out, e)
	}
	u.in = nil
	u.out = nil
}

// EdgeCount returns the number of edges in the network
func (n *Network) EdgeCount() int {
	var count int
	for _, l := range n.layers {
		for i := range l.units {
			count += len(l.units[i].out)
		}
		if l.bias != nil {
			count += len(l.bias.out)
		}
	}
	return count
}

// transfer returns the transfer function, tanh if none is set
func (n *Network) transfer() *ActivationFunc {
	if n.fn == nil {
		return &Tanh
	}
	return n.fn
}

// TransferFunction returns the transfer function of the units
func (n *Network) TransferFunction() *ActivationFunc {
	return n.transfer()
}

// SetTransferFunction sets the transfer function of the units. The function is shared, not copied.
func (n *Network) SetTransferFunction(fn *ActivationFunc) {
	n.fn = fn
}

// PropagateForward computes the value of every unit from layer 1 to the last layer, in order.
// The input layer keeps the values given to it. Units of one layer are computed in parallel.
func (n *Network) PropagateForward() {
	fn := n.transfer()
	for i := 1; i < len(n.layers); i++ {
		l := n.layers[i]
		parallel.ForEach(len(l.units), n.Threads, func(j int) {
			l.units[j].calcValue(n, fn)
		})
	}
}

// PropagateBackward adapts the edges of every layer from the last one to the first, in order.
// The units of a layer are adapted in parallel, then the bias unit of the layer.
// The deltas of the output units must have been set with SetOutput.
func (n *Network) PropagateBackward() {
	fn := n.transfer()
	for i := len(n.layers) - 1; i >= 0; i-- {
		l := n.layers[i]
		parallel.ForEach(len(l.units), n.Threads, func(j int) {
			l.units[j].adaptEdges(n, fn)
		})
		if l.bias != nil {
			l.bias.adaptEdges(n, fn)
		}
	}
}

// SetLearningRate sets the learning rate of the network and of every unit in it
func (n *Network) SetLearningRate(val float32) {
	n.learningRate = val
	parallel.ForEach(len(n.layers), n.Threads, func(i int) {
		n.layers[i].SetLearningRate(val)
	})
}

// LearningRate returns the learning rate of the network
func (n *Network) LearningRate() float32 {
	return n.learningRate
}

// SetMomentum sets the momentum of the network and of every unit in it
func (n *Network) SetMomentum(val float32) {
	n.momentum = val
	parallel.ForEach(len(n.layers), n.Threads, func(i int) {
		n.layers[i].SetMomentum(val)
	})
}

// Momentum returns the momentum of the network
func (n *Network) Momentum() float32 {
	return n.momentum
}

// SetWeightDecay sets the weight decay of the network and of every unit in it
func (n *Network) SetWeightDecay(val float32) {
	n.weightDecay = val
	parallel.ForEach(len(n.layers), n.Threads, func(i int) {
		n.layers[i].SetWeightDecay(val)
	})
}

// WeightDecay returns the weight decay of the network
func (n *Network) WeightDecay() float32 {
	return n.weightDecay
}

// SetInput sets the activation values of the input layer
func (n *Network) SetInput(inputs []float32) error {
	if n.inputLayer == nil {
		return errors.Wrap(ErrContractViolation, "network has no input layer")
	}
	if len(inputs) != len(n.inputLayer.units) {
		return errors.Wrapf(ErrSizeMismatch, "%d inputs for %d input units", len(inputs), len(n.inputLayer.units))
	}
	for i, v := range inputs {
		u := &n.inputLayer.units[i]
		u.Net = v
		u.Act = v
	}
	return nil
}

// SetOutput sets the error deltas of the output units from the given targets and
// returns the sum squared error of the current output.
func (n *Network) SetOutput(targets []float32) (float32, error) {
	if n.outputLayer == nil {
		return 0, errors.Wrap(ErrContractViolation, "network has no output layer")
	}
	if len(targets) != len(n.outputLayer.units) {
		return 0, errors.Wrapf(ErrSizeMismatch, "%d targets for %d output units", len(targets), len(n.outputLayer.units))
	}
	fn := n.transfer()
	var sse float32
	for i, target := range targets {
		u := &n.outputLayer.units[i]
		err := target - u.Act
		u.Delta = err * fn.Derivative(u.Net)
		sse += err * err
	}
	return sse, nil
}

// Output returns the output activations of the network
func (n *Network) Output() []float32 {
	if n.outputLayer == nil {
		return nil
	}
	return n.outputLayer.Values()
}

// WeightMatrix returns the weights of the edges from layer src to layer dst as a matrix with
// one row per unit of src and one column per unit of dst. If src has a bias unit, its weights
// form an extra last row. Missing edges are 0.
func (n *Network) WeightMatrix(src, dst int) (*mat.Dense, error) {
	s, err := n.Layer(src)
	if err != nil {
		return nil, err
	}
	d, err := n.Layer(dst)
	if err != nil {
		return nil, err
	}
	rows := len(s.units)
	if s.bias != nil {
		rows++
	}
	if rows == 0 || len(d.units) == 0 {
		return nil, errors.Wrapf(ErrSizeMismatch, "empty weight matrix %dx%d", rows, len(d.units))
	}
	w := mat.NewDense(rows, len(d.units), nil)
	fill := func(row int, u *Unit) {
		for _, e := range u.out {
			if e.Dst.Layer == dst && e.Dst.Unit != BiasUnit {
				w.Set(row, e.Dst.Unit, float64(e.Value))
			}
		}
	}
	for i := range s.units {
		fill(i, &s.units[i])
	}
	if s.bias != nil {
		fill(rows-1, s.bias)
	}
	return w, nil
}
