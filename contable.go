package gobp

import (
	"math/rand"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// ConDescr describes one connection of a ConTable
type ConDescr struct {
	SrcLayerID int
	SrcNeurID  int // ignored for bias connections, whose source is the bias unit of SrcLayerID
	DstLayerID int
	DstNeurID  int
	Val        float32 // the initial weight
}

// ConTable is the topology descriptor a network is built from: the layers with their sizes and
// flags, the connections between ordinary units and the connections of the bias units.
// Every connection must go from a layer to a later one. It is consumed by CreateNet and not
// kept by the network.
type ConTable struct {
	NetType     NetFlag
	NrOfLayers  int
	SizeOfLayer []int
	TypeOfLayer []LayerFlag
	NeurCons    []ConDescr
	BiasCons    []ConDescr
}

// NewConTable returns an empty table for a network of the given type
func NewConTable(netType NetFlag) *ConTable {
	return &ConTable{NetType: netType}
}

// AddLayer appends a layer with size units and the given flags and returns its index
func (t *ConTable) AddLayer(size int, flags LayerFlag) int {
	t.SizeOfLayer = append(t.SizeOfLayer, size)
	t.TypeOfLayer = append(t.TypeOfLayer, flags)
	t.NrOfLayers++
	return t.NrOfLayers - 1
}

// AddConnection appends a connection between two ordinary units
func (t *ConTable) AddConnection(srcLayer, srcUnit, dstLayer, dstUnit int, val float32) {
	t.NeurCons = append(t.NeurCons, ConDescr{
		SrcLayerID: srcLayer,
		SrcNeurID:  srcUnit,
		DstLayerID: dstLayer,
		DstNeurID:  dstUnit,
		Val:        val,
	})
}

// AddBiasConnection appends a connection from the bias unit of srcLayer to a unit of dstLayer
func (t *ConTable) AddBiasConnection(srcLayer, dstLayer, dstUnit int, val float32) {
	t.BiasCons = append(t.BiasCons, ConDescr{
		SrcLayerID: srcLayer,
		SrcNeurID:  BiasUnit,
		DstLayerID: dstLayer,
		DstNeurID:  dstUnit,
		Val:        val,
	})
}

// Validate checks that the layer lists agree with the layer count
func (t *ConTable) Validate() error {
	if t.NrOfLayers <= 0 {
		return errors.Wrap(ErrMalformedTable, "no layers")
	}
	if len(t.SizeOfLayer) != t.NrOfLayers || len(t.TypeOfLayer) != t.NrOfLayers {
		return errors.Wrapf(ErrMalformedTable, "%d layers but %d sizes and %d types",
			t.NrOfLayers, len(t.SizeOfLayer), len(t.TypeOfLayer))
	}
	for i, size := range t.SizeOfLayer {
		if size < 0 {
			return errors.Wrapf(ErrMalformedTable, "layer %d has negative size %d", i, size)
		}
	}
	return nil
}

// FullyConnected returns the table of a backpropagation network with the given layer sizes,
// every layer fully connected to the next one. The first layer is the input, the last the output.
// With bias, every layer but the last gets a bias unit wired to all units of the next layer.
// Weights are drawn uniformly from [-0.5, 0.5) using rng, or all set to 0.1 if rng is nil.
func FullyConnected(sizes []int, bias bool, rng *rand.Rand) (*ConTable, error) {
	if len(sizes) == 0 {
		return nil, errors.Wrap(ErrMalformedTable, "no layer sizes")
	}
	weight := func() float32 {
		if rng == nil {
			return 0.1
		}
		return rng.Float32() - 0.5
	}
	last := len(sizes) - 1
	t := NewConTable(NetBP)
	for i, size := range sizes {
		if size <= 0 {
			return nil, errors.Wrapf(ErrMalformedTable, "layer %d has size %d", i, size)
		}
		flags := LayerHidden
		if i == 0 && i == last {
			flags = LayerInput | LayerOutput
		} else if i == 0 {
			flags = LayerInput
		} else if i == last {
			flags = LayerOutput
		}
		if bias && i != last {
			flags |= LayerBias
		}
		t.AddLayer(size, flags)
	}
	for i := 0; i < last; i++ {
		for src := 0; src < sizes[i]; src++ {
			for dst := 0; dst < sizes[i+1]; dst++ {
				t.AddConnection(i, src, i+1, dst, weight())
			}
		}
		if bias {
			for dst := 0; dst < sizes[i+1]; dst++ {
				t.AddBiasConnection(i, i+1, dst, weight())
			}
		}
	}
	return t, nil
}

// ParseTopology parses a list of layer sizes separated by spaces or commas, such as "2 3 1"
func ParseTopology(s string) ([]int, error) {
	parts := strings.FieldsFunc(s, func(r rune) bool {
		return r == ' ' || r == ',' || r == '\t'
	})
	if len(parts) == 0 {
		return nil, errors.Errorf("empty topology %q", s)
	}
	sizes := make([]int, len(parts))
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return nil, errors.Wrapf(err, "parsing size of layer %d", i)
		}
		if n <= 0 {
			return nil, errors.Errorf("layer %d has size %d", i, n)
		}
		sizes[i] = n
	}
	return sizes, nil
}
