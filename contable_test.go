package gobp

import (
	"math/rand"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFullyConnected(t *testing.T) {
	tab, err := FullyConnected([]int{2, 3, 1}, true, rand.New(rand.NewSource(3)))
	require.NoError(t, err)
	require.NoError(t, tab.Validate())
	assert.Equal(t, NetBP, tab.NetType)
	assert.Equal(t, 3, tab.NrOfLayers)
	assert.Equal(t, []LayerFlag{LayerInput | LayerBias, LayerHidden | LayerBias, LayerOutput}, tab.TypeOfLayer)
	assert.Len(t, tab.NeurCons, 2*3+3*1)
	assert.Len(t, tab.BiasCons, 3+1)
	for _, c := range append(tab.NeurCons, tab.BiasCons...) {
		assert.Equal(t, c.SrcLayerID+1, c.DstLayerID)
		assert.True(t, c.Val >= -0.5 && c.Val < 0.5)
	}
	for _, c := range tab.BiasCons {
		assert.Equal(t, BiasUnit, c.SrcNeurID)
	}

	tab, err = FullyConnected([]int{4}, false, nil)
	require.NoError(t, err)
	assert.Equal(t, []LayerFlag{LayerInput | LayerOutput}, tab.TypeOfLayer)
	assert.Empty(t, tab.NeurCons)

	_, err = FullyConnected(nil, false, nil)
	assert.True(t, errors.Is(err, ErrMalformedTable))
	_, err = FullyConnected([]int{2, 0, 1}, false, nil)
	assert.True(t, errors.Is(err, ErrMalformedTable))
}

func TestConTableValidate(t *testing.T) {
	tab := NewConTable(NetBP)
	assert.True(t, errors.Is(tab.Validate(), ErrMalformedTable))

	assert.Equal(t, 0, tab.AddLayer(2, LayerInput))
	assert.Equal(t, 1, tab.AddLayer(1, LayerOutput))
	assert.NoError(t, tab.Validate())

	tab.NrOfLayers = 3
	assert.True(t, errors.Is(tab.Validate(), ErrMalformedTable))

	tab.NrOfLayers = 2
	tab.SizeOfLayer[1] = -1
	assert.True(t, errors.Is(tab.Validate(), ErrMalformedTable))
}

func TestParseTopology(t *testing.T) {
	tests := []struct {
		in   string
		want []int
	}{
		{"2 3 1", []int{2, 3, 1}},
		{"4,8,2", []int{4, 8, 2}},
		{" 5 ,\t6 ", []int{5, 6}},
	}
	for _, test := range tests {
		got, err := ParseTopology(test.in)
		require.NoError(t, err, test.in)
		assert.Equal(t, test.want, got, test.in)
	}
	for _, in := range []string{"", " , ", "2 x 1", "2 0 1", "3 -1"} {
		_, err := ParseTopology(in)
		assert.Error(t, err, in)
	}
}
