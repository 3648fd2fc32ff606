package gobp

import "github.com/pkg/errors"

// Config holds the training configuration of a network
type Config struct {
	LearningRate     float32 // the rate at which the network learns
	Momentum         float32 // the share of the last weight change added to the next one, in [0, 1)
	WeightDecay      float32 // the share of a weight subtracted from it on every change
	Threads          int     // the maximum number of goroutines per parallel loop, <= 0 for one per logical core
	TransferFunction string  // the name of the transfer function, see ActivationFuncByName
}

// DefaultConfig returns the configuration of a network created by New
func DefaultConfig() Config {
	return Config{
		LearningRate:     0.01,
		TransferFunction: Tanh.Name,
	}
}

// Validate validates the configuration
func (c Config) Validate() error {
	if c.LearningRate < 0 {
		return errors.Errorf("learning rate must not be negative, got %g", c.LearningRate)
	}
	if c.Momentum < 0 || c.Momentum >= 1 {
		return errors.Errorf("momentum must be in [0, 1), got %g", c.Momentum)
	}
	if c.WeightDecay < 0 {
		return errors.Errorf("weight decay must not be negative, got %g", c.WeightDecay)
	}
	if _, err := ActivationFuncByName(c.TransferFunction); err != nil {
		return err
	}
	return nil
}

// Configure validates the configuration and applies it to the network and all of its units
func (n *Network) Configure(c Config) error {
	if err := c.Validate(); err != nil {
		return errors.Wrap(err, "invalid config")
	}
	fn, _ := ActivationFuncByName(c.TransferFunction)
	n.Threads = c.Threads
	n.SetTransferFunction(fn)
	n.SetLearningRate(c.LearningRate)
	n.SetMomentum(c.Momentum)
	n.SetWeightDecay(c.WeightDecay)
	return nil
}

// Config returns the current configuration of the network
func (n *Network) Config() Config {
	return Config{
		LearningRate:     n.learningRate,
		Momentum:         n.momentum,
		WeightDecay:      n.weightDecay,
		Threads:          n.Threads,
		TransferFunction: n.transfer().Name,
	}
}
