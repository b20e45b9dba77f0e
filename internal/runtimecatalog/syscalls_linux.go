//go:build linux

package runtimecatalog

import "golang.org/x/sys/unix"

// Linux's generic syscall ABI (the asm-generic table ARM64 uses, which
// x86-64's historical table is a superset of) guarantees these names
// across every Linux (OS, arch) pair this core targets; open/close-style
// variants (open vs. openat) differ by arch, so only the subset stable on
// both amd64 and arm64 is registered here.
func init() {
	registerSyscalls(map[string]uintptr{
		"read":       uintptr(unix.SYS_READ),
		"write":      uintptr(unix.SYS_WRITE),
		"close":      uintptr(unix.SYS_CLOSE),
		"exit":       uintptr(unix.SYS_EXIT),
		"exit_group": uintptr(unix.SYS_EXIT_GROUP),
		"mmap":       uintptr(unix.SYS_MMAP),
		"munmap":     uintptr(unix.SYS_MUNMAP),
		"brk":        uintptr(unix.SYS_BRK),
	})
}
