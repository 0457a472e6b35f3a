//go:build !unix

package transport

import "os"

func pollable(fd uintptr, name string) *os.File {
	return os.NewFile(fd, name)
}
