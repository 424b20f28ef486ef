package sboms

import "io"

// File is one uploaded SBOM. Content is read once by the storage backend and
// is not retained afterwards.
type File struct {
	Filename    string
	ContentType string
	Size        int64
	Content     io.Reader
}
