//go:build freebsd || openbsd || netbsd

package runtimecatalog

import "golang.org/x/sys/unix"

// The BSDs share Darwin's flat exit (no exit_group) and the same core
// read/write/close/mmap/brk names across their generated unix constant
// tables.
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
