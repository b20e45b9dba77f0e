//go:build darwin

package runtimecatalog

import "golang.org/x/sys/unix"

// Darwin has no exit_group distinction (no Linux-style thread groups), so
// "exit" covers both single-thread and process-wide exit here.
func init() {
	registerSyscalls(map[string]uintptr{
		"read":   uintptr(unix.SYS_READ),
		"write":  uintptr(unix.SYS_WRITE),
		"close":  uintptr(unix.SYS_CLOSE),
		"exit":   uintptr(unix.SYS_EXIT),
		"mmap":   uintptr(unix.SYS_MMAP),
		"munmap": uintptr(unix.SYS_MUNMAP),
		"brk":    uintptr(unix.SYS_BRK),
	})
}
