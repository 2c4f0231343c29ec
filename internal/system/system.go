// Package system probes the host and tunes process-level resources.
package system

import (
	"log"
	"runtime"
	"syscall"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
)

// lowMemoryBytes is the available-memory threshold below which a
// warning is logged at pipeline setup.
const lowMemoryBytes = 512 << 20

// maxEncoderThreads caps the threads handed to the encoder; beyond
// this, VP9/x264 scaling flattens out for a single 720p stream.
const maxEncoderThreads = 8

// InitResourceLimits raises the open-file limit so the encode session
// and temp files never trip the default soft cap.
func InitResourceLimits() {
	var rLimit syscall.Rlimit
	if err := syscall.Getrlimit(syscall.RLIMIT_NOFILE, &rLimit); err != nil {
		log.Printf("[!] Could not read file limit: %v", err)
		return
	}

	rLimit.Cur = 2048
	if rLimit.Cur > rLimit.Max {
		rLimit.Cur = rLimit.Max
	}

	if err := syscall.Setrlimit(syscall.RLIMIT_NOFILE, &rLimit); err != nil {
		log.Printf("[!] Could not raise file limit: %v", err)
	}
}

// LogicalCores returns the logical CPU count, falling back to the
// runtime view when the host probe fails.
func LogicalCores() int {
	n, err := cpu.Counts(true)
	if err != nil || n < 1 {
		return runtime.NumCPU()
	}
	return n
}

// EncoderThreads picks the thread count for the encode session.
func EncoderThreads() int {
	n := LogicalCores()
	if n > maxEncoderThreads {
		return maxEncoderThreads
	}
	return n
}

// CheckMemory logs a warning when available memory is low and returns
// the available byte count (0 when unknown).
func CheckMemory() uint64 {
	vm, err := mem.VirtualMemory()
	if err != nil {
		return 0
	}
	if vm.Available < lowMemoryBytes {
		log.Printf("[!] Low memory: %d MiB available", vm.Available>>20)
	}
	return vm.Available
}
