// bpnet builds, trains and inspects backpropagation networks.
//
// Usage:
//
//	bpnet -topology="2 3 1" -bias -epochs=5000 -lr=0.2 -save=xor.bz2
//	bpnet -load=xor.bz2 -subnet=0:1
package main

import (
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"strconv"
	"strings"

	"github.com/kkoreilly/gobp"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

var (
	topology  = flag.String("topology", "2 3 1", "layer sizes, input first")
	bias      = flag.Bool("bias", true, "give every layer but the output a bias unit")
	epochs    = flag.Int("epochs", 2000, "maximum number of training epochs")
	tolerance = flag.Float64("tolerance", 0.01, "stop training once the epoch error is at or below this")
	lr        = flag.Float64("lr", 0.2, "learning rate")
	momentum  = flag.Float64("momentum", 0.5, "momentum")
	decay     = flag.Float64("decay", 0, "weight decay")
	fn        = flag.String("func", "tanh", "transfer function: tanh, log, linear, binary, relu")
	seed      = flag.Int64("seed", 1, "seed of the initial weights")
	threads   = flag.Int("threads", 0, "goroutines per parallel loop, 0 for one per logical core")
	save      = flag.String("save", "", "save the network to this file")
	load      = flag.String("load", "", "load the network from this file instead of building one")
	subnet    = flag.String("subnet", "", "extract the layers start:stop into a new network and print it")
	verbose   = flag.Bool("verbose", false, "log network creation, saving and loading")
)

func main() {
	flag.Parse()
	log.SetFlags(0)
	if *verbose {
		gobp.SetLogger(log.New(os.Stderr, "gobp: ", log.LstdFlags))
	}
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	n, err := network()
	if err != nil {
		return err
	}
	cfg := n.Config()
	cfg.Threads = *threads
	if *load == "" {
		cfg = gobp.Config{
			LearningRate:     float32(*lr),
			Momentum:         float32(*momentum),
			WeightDecay:      float32(*decay),
			Threads:          *threads,
			TransferFunction: *fn,
		}
	}
	if err := n.Configure(cfg); err != nil {
		return err
	}

	if set := xor(n); set != nil && *epochs > 0 {
		n.SetTrainingSet(set)
		sse, err := n.TrainFromData(*epochs, float32(*tolerance))
		if err != nil {
			return errors.Wrap(err, "training")
		}
		fmt.Printf("trained on xor, error %.5f\n", sse)
		for i, in := range set.Inputs {
			if err := n.SetInput(in); err != nil {
				return err
			}
			n.PropagateForward()
			fmt.Printf("  %v -> %.4f (want %v)\n", in, n.Output(), set.Outputs[i])
		}
	}
	if err := printNetwork(n); err != nil {
		return err
	}

	if *save != "" {
		if err := n.SaveFile(*save); err != nil {
			return err
		}
		fmt.Printf("saved to %s\n", *save)
	}

	if *subnet != "" {
		start, stop, err := parseRange(*subnet)
		if err != nil {
			return err
		}
		sub, err := n.GetSubNet(start, stop)
		if err != nil {
			return errors.Wrapf(err, "extracting layers %d to %d", start, stop)
		}
		fmt.Printf("sub-network of layers %d to %d:\n", start, stop)
		return printNetwork(sub)
	}
	return nil
}

// network loads the network named by -load or builds a fully connected one from -topology
func network() (*gobp.Network, error) {
	if *load != "" {
		return gobp.LoadFile(*load)
	}
	sizes, err := gobp.ParseTopology(*topology)
	if err != nil {
		return nil, err
	}
	tab, err := gobp.FullyConnected(sizes, *bias, rand.New(rand.NewSource(*seed)))
	if err != nil {
		return nil, err
	}
	return gobp.New(tab)
}

// xor returns the xor training set if the network has two inputs and one output
func xor(n *gobp.Network) *gobp.TrainingSet {
	if n.InputLayer().Len() != 2 || n.OutputLayer().Len() != 1 {
		return nil
	}
	set := &gobp.TrainingSet{}
	set.AddPair([]float32{0, 0}, []float32{0})
	set.AddPair([]float32{0, 1}, []float32{1})
	set.AddPair([]float32{1, 0}, []float32{1})
	set.AddPair([]float32{1, 1}, []float32{0})
	return set
}

func printNetwork(n *gobp.Network) error {
	fmt.Printf("%s network, %d layers, %d edges, transfer function %s\n",
		n.Flag(), len(n.Layers()), n.EdgeCount(), n.TransferFunction().Name)
	for _, l := range n.Layers() {
		fmt.Printf("  layer %d: %d units (%s)\n", l.ID(), l.Len(), l.Flags())
	}
	for i := 0; i+1 < len(n.Layers()); i++ {
		w, err := n.WeightMatrix(i, i+1)
		if err != nil {
			return errors.Wrapf(err, "weights from layer %d", i)
		}
		fmt.Printf("weights %d -> %d:\n%.4f\n", i, i+1, mat.Formatted(w, mat.Prefix(""), mat.Squeeze()))
	}
	return nil
}

// parseRange parses "start:stop"
func parseRange(s string) (int, int, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 2 {
		return 0, 0, errors.Errorf("invalid layer range %q, want start:stop", s)
	}
	start, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, errors.Wrapf(err, "invalid layer range %q", s)
	}
	stop, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, errors.Wrapf(err, "invalid layer range %q", s)
	}
	return start, stop, nil
}
