package main

import (
	"io"
	"os"
)

// openInput resolves the positional FILE argument to a readable stream: an
// empty string or "-" means stdin, matching spec.md §6.4.
func openInput(path string) (io.ReadCloser, error) {
	if path == "" || path == "-" {
		return io.NopCloser(os.Stdin), nil
	}
	return os.Open(path)
}
