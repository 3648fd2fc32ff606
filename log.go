package gobp

import (
	"io"
	"log"
)

var logger = log.New(io.Discard, "gobp: ", log.LstdFlags)

// SetLogger sets the logger the package reports network creation, saving and loading to.
// Logging is off until a logger is set; a nil logger turns it off again.
func SetLogger(l *log.Logger) {
	if l == nil {
		l = log.New(io.Discard, "", 0)
	}
	logger = l
}
