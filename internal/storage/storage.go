package storage

import (
	"io"
)

// Storage abstracts the file backend. Keys are relative paths chosen by
// the caller; Save returns the stored path.
type Storage interface {
	Save(key string, r io.Reader) (string, error)
	Open(key string) (io.ReadCloser, error)
	Delete(key string) error
	URL(key string) string
}
