package gobp

// GetSubNet returns a new network made of copies of the layers start to stop (inclusive).
// The first copied layer is made an input layer and the last one an output layer.
// Every edge starting in the range is recreated with its weight, momentum and adaptability,
// except edges ending outside the range, which are dropped. The transfer function and the
// training set are shared with the source network, as is the weight source set by SetSeed;
// the hyperparameters are copied.
// The source network is not modified.
func (n *Network) GetSubNet(start, stop int) (*Network, error) {
	if start < 0 || start >= len(n.layers) {
		return nil, &RangeError{What: "start layer", Index: start, Limit: len(n.layers)}
	}
	if stop < start || stop >= len(n.layers) {
		return nil, &RangeError{What: "stop layer", Index: stop, Limit: len(n.layers)}
	}

	sub := &Network{
		Threads:      n.Threads,
		flag:         n.flag,
		rng:          n.rng,
		learningRate: n.learningRate,
		momentum:     n.momentum,
		weightDecay:  n.weightDecay,
		fn:           n.fn,
		trainingSet:  n.trainingSet,
	}

	for i := start; i <= stop; i++ {
		src := n.layers[i]
		l := MustNewLayer(len(src.units), src.flags)
		if i == start {
			l.AddFlag(LayerInput)
		}
		if i == stop {
			l.AddFlag(LayerOutput)
		}
		sub.AddLayer(l)
	}

	inRange := func(r UnitRef) bool {
		return r.Layer >= start && r.Layer <= stop
	}
	shift := func(r UnitRef) UnitRef {
		return UnitRef{Layer: r.Layer - start, Unit: r.Unit}
	}
	copyEdges := func(from UnitRef, u *Unit) {
		for _, e := range u.out {
			if !inRange(e.Dst) {
				continue
			}
			sub.connect(shift(from), shift(e.Dst), e.Value, e.Momentum, e.Adapt)
		}
	}
	for i := start; i <= stop; i++ {
		l := n.layers[i]
		for j := range l.units {
			copyEdges(l.ref(j), &l.units[j])
		}
		if l.bias != nil {
			copyEdges(l.ref(BiasUnit), l.bias)
		}
	}
	return sub, nil
}

// Clone returns an independent copy of the whole network
func (n *Network) Clone() (*Network, error) {
	return n.GetSubNet(0, len(n.layers)-1)
}
