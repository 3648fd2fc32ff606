package gobp

import (
	"encoding/binary"
	"io"
	"os"

	"github.com/dsnet/compress/bzip2"
	"github.com/pkg/errors"
)

// All fields are written little endian: integers as 4 bytes, weights as IEEE-754 float32 and
// booleans as a single byte.
var byteOrder = binary.LittleEndian

// maxNameLen bounds the length of a persisted transfer function name
const maxNameLen = 256

func writeField(w io.Writer, v interface{}, format string, args ...interface{}) error {
	if err := binary.Write(w, byteOrder, v); err != nil {
		return errors.Wrapf(err, "writing "+format, args...)
	}
	return nil
}

func readField(r io.Reader, v interface{}, format string, args ...interface{}) error {
	if err := binary.Read(r, byteOrder, v); err != nil {
		return errors.Wrapf(err, "reading "+format, args...)
	}
	return nil
}

// writeEdges writes the number of outgoing edges of u followed by the destination and weight of each
func writeEdges(w io.Writer, u *Unit, what string) error {
	if err := writeField(w, uint32(len(u.out)), "%s edge count", what); err != nil {
		return err
	}
	for k, e := range u.out {
		if err := writeField(w, int32(e.Dst.Layer), "%s edge %d destination layer", what, k); err != nil {
			return err
		}
		if err := writeField(w, int32(e.Dst.Unit), "%s edge %d destination unit", what, k); err != nil {
			return err
		}
		if err := writeField(w, e.Value, "%s edge %d value", what, k); err != nil {
			return err
		}
	}
	return nil
}

// readEdges reads what writeEdges wrote, calling add for each edge
func readEdges(r io.Reader, what string, add func(dstLayer, dstUnit int, val float32)) error {
	var count uint32
	if err := readField(r, &count, "%s edge count", what); err != nil {
		return err
	}
	for k := uint32(0); k < count; k++ {
		var dstLayer, dstUnit int32
		var val float32
		if err := readField(r, &dstLayer, "%s edge %d destination layer", what, k); err != nil {
			return err
		}
		if err := readField(r, &dstUnit, "%s edge %d destination unit", what, k); err != nil {
			return err
		}
		if err := readField(r, &val, "%s edge %d value", what, k); err != nil {
			return err
		}
		add(int(dstLayer), int(dstUnit), val)
	}
	return nil
}

// ExportTo writes the layer: its id, size and flags, the outgoing edges of every unit, and then
// whether it has a bias unit followed by the outgoing edges of the bias unit.
func (l *Layer) ExportTo(w io.Writer) error {
	if err := writeField(w, int32(l.id), "layer id"); err != nil {
		return err
	}
	if err := writeField(w, uint32(len(l.units)), "layer %d size", l.id); err != nil {
		return err
	}
	if err := writeField(w, int32(l.flags), "layer %d flags", l.id); err != nil {
		return err
	}
	for i := range l.units {
		if err := writeEdges(w, &l.units[i], "unit"); err != nil {
			return errors.Wrapf(err, "layer %d unit %d", l.id, i)
		}
	}

	hasBias := l.bias != nil
	if err := writeField(w, hasBias, "layer %d bias marker", l.id); err != nil {
		return err
	}
	if hasBias {
		if err := writeEdges(w, l.bias, "bias"); err != nil {
			return errors.Wrapf(err, "layer %d", l.id)
		}
	}
	return nil
}

// ImportLayer reads a layer written by ExportTo into the table: the layer is appended to the
// layer lists, its edges to NeurCons and the edges of its bias unit to BiasCons, with the
// layer as source. Nothing is wired until the table is given to CreateNet.
// It returns the id of the layer read.
func ImportLayer(r io.Reader, t *ConTable) (int, error) {
	var id int32
	var size uint32
	var flags int32
	if err := readField(r, &id, "layer id"); err != nil {
		return -1, err
	}
	if int(id) != len(t.SizeOfLayer) {
		return -1, errors.Wrapf(ErrMalformedTable, "layer id %d where %d was expected", id, len(t.SizeOfLayer))
	}
	if err := readField(r, &size, "layer %d size", id); err != nil {
		return -1, err
	}
	if err := readField(r, &flags, "layer %d flags", id); err != nil {
		return -1, err
	}
	layer := t.AddLayer(int(size), LayerFlag(flags))

	for i := 0; i < int(size); i++ {
		err := readEdges(r, "unit", func(dstLayer, dstUnit int, val float32) {
			t.AddConnection(layer, i, dstLayer, dstUnit, val)
		})
		if err != nil {
			return -1, errors.Wrapf(err, "layer %d unit %d", id, i)
		}
	}

	var hasBias bool
	if err := readField(r, &hasBias, "layer %d bias marker", id); err != nil {
		return -1, err
	}
	if hasBias {
		err := readEdges(r, "bias", func(dstLayer, dstUnit int, val float32) {
			t.AddBiasConnection(layer, dstLayer, dstUnit, val)
		})
		if err != nil {
			return -1, errors.Wrapf(err, "layer %d", id)
		}
	}
	return layer, nil
}

// ExportTo writes the network without compression: the network type, the number of layers,
// the name of the transfer function, the hyperparameters and then every layer.
func (n *Network) ExportTo(w io.Writer) error {
	if err := writeField(w, int32(n.flag), "network type"); err != nil {
		return err
	}
	if err := writeField(w, uint32(len(n.layers)), "layer count"); err != nil {
		return err
	}
	name := n.transfer().Name
	if err := writeField(w, uint32(len(name)), "transfer function name length"); err != nil {
		return err
	}
	if err := writeField(w, []byte(name), "transfer function name"); err != nil {
		return err
	}
	for _, v := range []struct {
		val  float32
		name string
	}{{n.learningRate, "learning rate"}, {n.momentum, "momentum"}, {n.weightDecay, "weight decay"}} {
		if err := writeField(w, v.val, v.name); err != nil {
			return err
		}
	}
	for _, l := range n.layers {
		if err := l.ExportTo(w); err != nil {
			return err
		}
	}
	return nil
}

// Import reads a network written by ExportTo. The layers are first collected into a ConTable
// and the network is then built from it with CreateNet. Threads is not persisted, so the
// loaded network starts with Threads 0.
func Import(r io.Reader) (*Network, error) {
	var flag int32
	var layers, nameLen uint32
	if err := readField(r, &flag, "network type"); err != nil {
		return nil, err
	}
	if err := readField(r, &layers, "layer count"); err != nil {
		return nil, err
	}
	if err := readField(r, &nameLen, "transfer function name length"); err != nil {
		return nil, err
	}
	if nameLen > maxNameLen {
		return nil, errors.Wrapf(ErrMalformedTable, "transfer function name of %d bytes", nameLen)
	}
	name := make([]byte, nameLen)
	if err := readField(r, name, "transfer function name"); err != nil {
		return nil, err
	}
	fn, err := ActivationFuncByName(string(name))
	if err != nil {
		return nil, err
	}
	var params [3]float32
	if err := readField(r, &params, "hyperparameters"); err != nil {
		return nil, err
	}

	t := NewConTable(NetFlag(flag))
	for i := uint32(0); i < layers; i++ {
		if _, err := ImportLayer(r, t); err != nil {
			return nil, err
		}
	}

	n := new(Network)
	n.SetTransferFunction(fn)
	n.SetLearningRate(params[0])
	n.SetMomentum(params[1])
	n.SetWeightDecay(params[2])
	if err := n.CreateNet(t); err != nil {
		return nil, err
	}
	return n, nil
}

// Save writes the network to w as a bzip2 compressed stream
func (n *Network) Save(w io.Writer) error {
	bw, err := bzip2.NewWriter(w, &bzip2.WriterConfig{Level: bzip2.BestCompression})
	if err != nil {
		return errors.Wrap(err, "creating bzip2 writer")
	}
	if err := n.ExportTo(bw); err != nil {
		bw.Close()
		return err
	}
	return errors.Wrap(bw.Close(), "closing bzip2 writer")
}

// Load reads a network saved with Save from r
func Load(r io.Reader) (*Network, error) {
	br, err := bzip2.NewReader(r, nil)
	if err != nil {
		return nil, errors.Wrap(err, "creating bzip2 reader")
	}
	defer br.Close()
	return Import(br)
}

// SaveFile saves the network to the named file, creating or truncating it
func (n *Network) SaveFile(name string) error {
	logger.Printf("saving network with %d layers to %s", len(n.layers), name)
	f, err := os.Create(name)
	if err != nil {
		return errors.Wrapf(err, "can't save network to %s", name)
	}
	if err := n.Save(f); err != nil {
		f.Close()
		return errors.Wrapf(err, "can't save network to %s", name)
	}
	return f.Close()
}

// LoadFile loads a network saved with SaveFile
func LoadFile(name string) (*Network, error) {
	logger.Printf("loading network from %s", name)
	f, err := os.Open(name)
	if err != nil {
		return nil, errors.Wrapf(err, "can't load network from %s", name)
	}
	defer f.Close()
	n, err := Load(f)
	if err != nil {
		return nil, errors.Wrapf(err, "can't load network from %s", name)
	}
	return n, nil
}
