package gobp

import "fmt"

// Error is a wrapper for the fixed errors returned by the network. More specific errors
// (RangeError, ConnectionError) unwrap to one of these so that callers can use errors.Is.
type Error struct{ string }

func (err Error) Error() string {
	return err.string
}

// These are the global errors that may be returned.
var (
	ErrContractViolation = Error{"contract violation"}
	ErrMalformedTable    = Error{"malformed connection table"}
	ErrDetachedLayer     = Error{"layer is not part of the network"}
	ErrNoTrainingSet     = Error{"no training set"}
	ErrSizeMismatch      = Error{"size mismatch"}
	ErrUnknownFunction   = Error{"unknown transfer function"}
)

// RangeError reports an index that is out of the range [0, Limit).
type RangeError struct {
	What  string // what the index refers to, e.g. "layer" or "unit"
	Index int    // the offending index
	Limit int    // the exclusive upper bound
}

func (err *RangeError) Error() string {
	return fmt.Sprintf("%s index %d out of range [0, %d)", err.What, err.Index, err.Limit)
}

// Unwrap makes every RangeError a contract violation.
func (err *RangeError) Unwrap() error {
	return ErrContractViolation
}

// ConnectionError reports a connection record of a ConTable that could not be wired.
type ConnectionError struct {
	Index  int      // position of the record in its list
	Bias   bool     // whether the record came from BiasCons
	Record ConDescr // the record itself
	Reason string
}

func (err *ConnectionError) Error() string {
	list := "connection"
	if err.Bias {
		list = "bias connection"
	}
	return fmt.Sprintf("%s %d (%d:%d -> %d:%d): %s", list, err.Index,
		err.Record.SrcLayerID, err.Record.SrcNeurID, err.Record.DstLayerID, err.Record.DstNeurID, err.Reason)
}

// Unwrap makes every ConnectionError a malformed table error.
func (err *ConnectionError) Unwrap() error {
	return ErrMalformedTable
}
