//go:build !windows

package inject

import "errors"

// ErrUnsupported indicates no input-synthesis facility exists on this
// platform build.
var ErrUnsupported = errors.New("input injection is only supported on windows")

// New returns the platform injector.
func New() (Injector, error) {
	return nil, ErrUnsupported
}

// vkToScan has no platform mapping on non-windows builds, so keycode
// fallback tokens and untabled characters stay unresolved.
func vkToScan(vk int) (uint16, error) {
	return 0, ErrUnsupported
}
