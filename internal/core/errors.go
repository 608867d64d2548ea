package core

import "errors"

// Sentinel errors shared across the capture pipeline.
var (
	ErrNotSIP        = errors.New("strix: payload is not SIP")
	ErrSourceClosed  = errors.New("strix: packet source closed")
	ErrConfigInvalid = errors.New("strix: invalid configuration")
)
