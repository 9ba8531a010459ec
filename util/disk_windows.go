//go:build windows

package util

import (
	"syscall"
	"unsafe"
)

// Usage returns total, used, and free bytes for the drive containing path.
func Usage(path string) (total, used, free uint64, err error) {
	kernel32 := syscall.NewLazyDLL("kernel32.dll")
	proc := kernel32.NewProc("GetDiskFreeSpaceExW")

	dir, err := syscall.UTF16PtrFromString(path)
	if err != nil {
		return
	}

	var freeAvail, totalBytes, totalFree uint64

	r1, _, e1 := proc.Call(
		uintptr(unsafe.Pointer(dir)),
		uintptr(unsafe.Pointer(&freeAvail)),
		uintptr(unsafe.Pointer(&totalBytes)),
		uintptr(unsafe.Pointer(&totalFree)),
	)
	if r1 == 0 {
		if e1 != syscall.Errno(0) {
			err = e1
		} else {
			err = syscall.EINVAL
		}
		return
	}

	total = totalBytes
	free = freeAvail
	used = total - free
	return
}
