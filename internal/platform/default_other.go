//go:build !darwin && !linux

package platform

import (
	"fmt"
	"runtime"
)

func NewDefaultBackend(opts Options) (Backend, error) {
	return nil, fmt.Errorf("%w: %s", ErrUnsupported, runtime.GOOS)
}
