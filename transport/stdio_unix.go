//go:build unix

package transport

import (
	"os"
	"syscall"

	"github.com/mattn/go-isatty"
)

// pollable wraps fd in a File owned by the runtime poller. A non-blocking
// descriptor is what lets Close wake a goroutine parked in Read; a blocking
// one stays parked until the peer writes or hangs up. Terminals are left in
// blocking mode, since the mode is shared with the parent shell.
func pollable(fd uintptr, name string) *os.File {
	if !isatty.IsTerminal(fd) {
		_ = syscall.SetNonblock(int(fd), true)
	}
	return os.NewFile(fd, name)
}
