package utils

import (
	"io"
	"strings"

	"github.com/charmbracelet/log"
)

// NewLogger returns a leveled logger writing to w. The tools write
// diagnostics to stderr; stdout is reserved for their output.
func NewLogger(w io.Writer, prefix, level string) (*log.Logger, error) {
	lvl, err := log.ParseLevel(strings.ToLower(level))
	if err != nil {
		return nil, err
	}
	return log.NewWithOptions(w, log.Options{
		Prefix: prefix,
		Level:  lvl,
	}), nil
}
