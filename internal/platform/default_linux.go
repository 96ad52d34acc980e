//go:build linux

package platform

// NewDefaultBackend returns the X11 backend.
func NewDefaultBackend(opts Options) (Backend, error) {
	return NewX11Backend(opts.Scale, opts.Logger)
}
