package download

import "errors"

// Sentinel errors for the download package.
var (
	// ErrBadStatus is returned when the media server answers with a non-2xx status.
	ErrBadStatus = errors.New("unexpected response status")

	// ErrUnsafeName is returned when a link's name would escape the target directory.
	ErrUnsafeName = errors.New("unsafe file name")
)
