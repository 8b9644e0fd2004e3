package DGSEM

import (
	"errors"

	"github.com/notargets/treedg/treemesh"
)

var (
	// ErrShape reports buffers or metadata inconsistent with the mesh and
	// equation, detected before any kernel is dispatched.
	ErrShape = errors.New("shape mismatch")
	// ErrTopology reports a face not owned by exactly one coupling, detected
	// when the mesh is ingested.
	ErrTopology = treemesh.ErrTopology
	// ErrConfig reports an unsupported combination of solver options.
	ErrConfig = errors.New("invalid configuration")
	// ErrBackend reports a failed kernel dispatch on an accelerator.
	ErrBackend = errors.New("backend failure")
)
