package gobp

// BiasUnit is the unit index used by a UnitRef to name the bias unit of a layer
const BiasUnit = -1

// UnitRef locates a unit by the index of its layer in the network and its index in the layer
type UnitRef struct {
	Layer int
	Unit  int // index in the layer, or BiasUnit
}

// IsBias reports whether the reference names a bias unit
func (r UnitRef) IsBias() bool {
	return r.Unit == BiasUnit
}

// Edge is a directed weighted connection between two units. The same Edge is held in
// the outgoing list of its source and the incoming list of its destination.
type Edge struct {
	Src      UnitRef // the unit the edge comes from
	Dst      UnitRef // the unit the edge goes to
	Value    float32 // the weight of the edge
	Momentum float32 // the last weight change, used for the momentum term
	Adapt    bool    // whether the weight is changed by training
}

// Destination returns the endpoint of the edge that is not from
func (e *Edge) Destination(from UnitRef) UnitRef {
	if e.Src == from {
		return e.Dst
	}
	return e.Src
}

// Unit contains the data for a unit (neuron) in the neural network
type Unit struct {
	ID    int     // the index of the unit in its layer, BiasUnit for a bias unit
	Act   float32 // the activation value (output) of the unit
	Net   float32 // the net input of the unit
	Delta float32 // the error delta of the unit

	LearningRate float32
	Momentum     float32
	WeightDecay  float32

	in  []*Edge
	out []*Edge
}

// In returns the incoming edges of the unit
func (u *Unit) In() []*Edge {
	return u.in
}

// Out returns the outgoing edges of the unit
func (u *Unit) Out() []*Edge {
	return u.out
}

// setParams sets the hyperparameters of the unit
func (u *Unit) setParams(learningRate, momentum, weightDecay float32) {
	u.LearningRate = learningRate
	u.Momentum = momentum
	u.WeightDecay = weightDecay
}

// calcValue computes the net input from the incoming edges and the activation from the net input.
// Units without incoming edges keep their value.
func (u *Unit) calcValue(n *Network, fn *ActivationFunc) {
	if len(u.in) == 0 {
		return
	}
	var net float32
	for _, e := range u.in {
		net += n.unit(e.Src).Act * e.Value
	}
	u.Net = net
	u.Act = fn.Func(net)
}

// adaptEdges computes the error delta of the unit from the deltas of the units it feeds
// and then moves the weights of its adaptable outgoing edges. Only the unit's own
// outgoing edges are written. Units without outgoing edges keep the delta given by SetOutput.
func (u *Unit) adaptEdges(n *Network, fn *ActivationFunc) {
	if len(u.out) == 0 {
		return
	}
	if u.ID != BiasUnit {
		// sum is taken over the weights before any of them changes
		var sum float32
		for _, e := range u.out {
			sum += e.Value * n.unit(e.Dst).Delta
		}
		u.Delta = fn.Derivative(u.Net) * sum
	}
	for _, e := range u.out {
		if !e.Adapt {
			continue
		}
		del := u.LearningRate*n.unit(e.Dst).Delta*u.Act + u.Momentum*e.Momentum - u.WeightDecay*e.Value
		e.Momentum = del
		e.Value += del
	}
}

// removeEdge removes e from the list
func removeEdge(list []*Edge, e *Edge) []*Edge {
	for i, v := range list {
		if v == e {
			copy(list[i:], list[i+1:])
			list[len(list)-1] = nil
			return list[:len(list)-1]
		}
	}
	return list
}
