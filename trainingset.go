package gobp

import "github.com/pkg/errors"

// TrainingSet is a list of input patterns with the outputs the network should produce for them
type TrainingSet struct {
	Inputs  [][]float32
	Outputs [][]float32
}

// AddPair appends an input pattern and its target output
func (t *TrainingSet) AddPair(input, output []float32) {
	t.Inputs = append(t.Inputs, input)
	t.Outputs = append(t.Outputs, output)
}

// Len returns the number of pairs in the set
func (t *TrainingSet) Len() int {
	return len(t.Inputs)
}

// TrainingSet returns the training set of the network, nil if none is set
func (n *Network) TrainingSet() *TrainingSet {
	return n.trainingSet
}

// SetTrainingSet sets the training set used by TrainFromData. The set is shared, not copied.
func (n *Network) SetTrainingSet(t *TrainingSet) {
	n.trainingSet = t
}

// TrainFromData trains the network on its training set for at most cycles epochs, stopping early
// once the summed squared error of an epoch is at or below tolerance. It returns the error
// of the last epoch.
func (n *Network) TrainFromData(cycles int, tolerance float32) (float32, error) {
	t := n.trainingSet
	if t == nil || t.Len() == 0 {
		return 0, ErrNoTrainingSet
	}
	if len(t.Outputs) != len(t.Inputs) {
		return 0, errors.Wrapf(ErrSizeMismatch, "%d inputs but %d outputs", len(t.Inputs), len(t.Outputs))
	}
	var sse float32
	for c := 0; c < cycles; c++ {
		sse = 0
		for i := range t.Inputs {
			if err := n.SetInput(t.Inputs[i]); err != nil {
				return 0, errors.Wrapf(err, "pattern %d", i)
			}
			n.PropagateForward()
			e, err := n.SetOutput(t.Outputs[i])
			if err != nil {
				return 0, errors.Wrapf(err, "pattern %d", i)
			}
			sse += e
			n.PropagateBackward()
		}
		if sse <= tolerance {
			logger.Printf("reached error %g after %d cycles", sse, c+1)
			break
		}
	}
	return sse, nil
}
