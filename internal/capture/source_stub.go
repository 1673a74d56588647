//go:build !windows

package capture

import "errors"

// ErrUnsupported indicates no system-wide input listener exists on this
// platform build.
var ErrUnsupported = errors.New("input capture is only supported on windows")

// NewPlatformSource returns the platform capture source.
func NewPlatformSource() (Source, error) {
	return nil, ErrUnsupported
}
