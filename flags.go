package gobp

import "strings"

// LayerFlag is the set of capabilities of a layer. A layer may carry several flags,
// e.g. a single layer network is both LayerInput and LayerOutput.
type LayerFlag int32

const (
	LayerInput  LayerFlag = 1 << iota // the layer receives the network input
	LayerHidden                       // the layer is a hidden layer
	LayerOutput                       // the layer holds the network output
	LayerBias                         // the layer has a bias unit fanning out to the next layer
)

// Has reports whether all of the flags in f are set
func (l LayerFlag) Has(f LayerFlag) bool {
	return l&f == f
}

func (l LayerFlag) String() string {
	if l == 0 {
		return "none"
	}
	var names []string
	for _, v := range []struct {
		f    LayerFlag
		name string
	}{{LayerInput, "input"}, {LayerHidden, "hidden"}, {LayerOutput, "output"}, {LayerBias, "bias"}} {
		if l.Has(v.f) {
			names = append(names, v.name)
		}
	}
	return strings.Join(names, "|")
}

// NetFlag identifies the training algorithm family of a network
type NetFlag int32

const (
	NetBP  NetFlag = 1 << iota // backpropagation network
	NetSOM                     // self-organizing map; only recognized so that bias wiring can be skipped
)

func (n NetFlag) String() string {
	switch n {
	case NetBP:
		return "backprop"
	case NetSOM:
		return "som"
	}
	return "unknown"
}
