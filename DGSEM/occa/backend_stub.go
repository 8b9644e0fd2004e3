//go:build !occa

package occa

import (
	"fmt"

	"github.com/notargets/treedg/DGSEM"
)

// NewBackend is only available when built with the occa tag.
func NewBackend(sd *DGSEM.Semidiscretization, props string) (DGSEM.Backend, error) {
	return nil, fmt.Errorf("%w: not built with occa, rebuild with -tags occa", DGSEM.ErrBackend)
}
