package gobp

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

// trainOnce runs one forward and backward pass so that edges carry momentum
func trainOnce(t *testing.T, n *Network, input, target []float32) {
	t.Helper()
	require.NoError(t, n.SetInput(input))
	n.PropagateForward()
	_, err := n.SetOutput(target)
	require.NoError(t, err)
	n.PropagateBackward()
}

func TestCloneIsIsomorphic(t *testing.T) {
	n := newTestNetwork(t, true, 2, 3, 2, 1)
	n.SetMomentum(0.5)
	trainOnce(t, n, []float32{1, -1}, []float32{0.5})

	c, err := n.Clone()
	require.NoError(t, err)
	require.Len(t, c.Layers(), len(n.Layers()))
	assert.Equal(t, n.EdgeCount(), c.EdgeCount())
	assert.Equal(t, n.Config(), c.Config())
	for i, l := range n.Layers() {
		cl := c.Layers()[i]
		assert.Equal(t, l.Len(), cl.Len())
		assert.Equal(t, l.Flags(), cl.Flags())
		assert.Equal(t, i, cl.ID())
	}
	for i := 0; i+1 < len(n.Layers()); i++ {
		want, err := n.WeightMatrix(i, i+1)
		require.NoError(t, err)
		got, err := c.WeightMatrix(i, i+1)
		require.NoError(t, err)
		assert.True(t, mat.Equal(want, got), "weights from layer %d", i)
	}

	// momentum and adaptability travel with the edges
	src := n.Layers()[1].Units()[0].Out()[0]
	dst := c.Layers()[1].Units()[0].Out()[0]
	assert.NotZero(t, src.Momentum)
	assert.Equal(t, src.Momentum, dst.Momentum)
	assert.Equal(t, src.Adapt, dst.Adapt)

	// the copy is independent
	dst.Value += 1
	assert.NotEqual(t, src.Value, dst.Value)
	assert.Same(t, n.InputLayer(), n.Layers()[0])
	assert.Same(t, c.InputLayer(), c.Layers()[0])
	assert.Same(t, c.OutputLayer(), c.Layers()[3])
}

func TestGetSubNetDropsBoundaryEdges(t *testing.T) {
	n := newTestNetwork(t, true, 2, 3, 2, 1)
	before := n.EdgeCount()

	sub, err := n.GetSubNet(1, 2)
	require.NoError(t, err)
	require.Len(t, sub.Layers(), 2)
	assert.Equal(t, before, n.EdgeCount())

	// 3x2 ordinary edges and 2 from the bias unit of the first copied layer
	assert.Equal(t, 8, sub.EdgeCount())
	for _, l := range sub.Layers() {
		for _, u := range l.Units() {
			for _, e := range u.Out() {
				assert.LessOrEqual(t, e.Dst.Layer, 1)
			}
		}
		if l.Bias() != nil {
			for _, e := range l.Bias().Out() {
				assert.Equal(t, 1, e.Dst.Layer)
			}
		}
	}

	assert.True(t, sub.Layers()[0].Flags().Has(LayerInput|LayerHidden|LayerBias))
	assert.True(t, sub.Layers()[1].Flags().Has(LayerOutput|LayerHidden))
	assert.Same(t, sub.Layers()[0], sub.InputLayer())
	assert.Same(t, sub.Layers()[1], sub.OutputLayer())

	// the sub-net runs on its own
	require.NoError(t, sub.SetInput([]float32{1, 1, 1}))
	sub.PropagateForward()
	assert.Len(t, sub.Output(), 2)
}

func TestGetSubNetSharesFunctionAndTrainingSet(t *testing.T) {
	n := newTestNetwork(t, false, 2, 2, 1)
	n.SetTransferFunction(&Logistic)
	set := &TrainingSet{}
	set.AddPair([]float32{0, 1}, []float32{1})
	n.SetTrainingSet(set)
	n.SetLearningRate(0.3)
	n.SetWeightDecay(0.01)

	sub, err := n.GetSubNet(0, 1)
	require.NoError(t, err)
	assert.Same(t, n.TransferFunction(), sub.TransferFunction())
	assert.Same(t, set, sub.TrainingSet())
	assert.Equal(t, float32(0.3), sub.LearningRate())
	assert.Equal(t, float32(0.01), sub.WeightDecay())
	assert.Equal(t, float32(0.3), sub.Layers()[1].Units()[0].LearningRate)
}

func TestGetSubNetRange(t *testing.T) {
	n := newTestNetwork(t, false, 2, 3, 2, 1)
	for _, r := range [][2]int{{-1, 2}, {2, 1}, {0, 4}, {4, 4}} {
		_, err := n.GetSubNet(r[0], r[1])
		assert.True(t, errors.Is(err, ErrContractViolation), "range %v", r)
	}

	sub, err := n.GetSubNet(2, 2)
	require.NoError(t, err)
	require.Len(t, sub.Layers(), 1)
	assert.Equal(t, 0, sub.EdgeCount())
	assert.True(t, sub.Layers()[0].Flags().Has(LayerInput|LayerOutput))
}

func TestGetSubNetSharesSeed(t *testing.T) {
	weights := func() *mat.Dense {
		n := newTestNetwork(t, false, 2, 2)
		n.SetSeed(5)
		sub, err := n.GetSubNet(0, 1)
		require.NoError(t, err)
		assert.Same(t, n.rng, sub.rng)

		extra := MustNewLayer(3, LayerHidden)
		require.NoError(t, sub.AddLayer(extra))
		require.NoError(t, sub.Layers()[1].ConnectLayer(extra, true))
		w, err := sub.WeightMatrix(1, 2)
		require.NoError(t, err)
		return w
	}
	assert.True(t, mat.Equal(weights(), weights()))
}
