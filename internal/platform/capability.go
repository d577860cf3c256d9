package platform

import (
	"runtime"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
)

// Capability describes the hardware a scan may use. It is detected once by
// the caller and injected into the scanner, so the scanner can be exercised
// with arbitrary values in tests.
type Capability struct {
	CPUs        int
	MemoryBytes uint64
}

// DetectCapability queries logical CPU count and total memory.
// Failures fall back to runtime.NumCPU and an unknown (zero) memory size.
func DetectCapability() Capability {
	c := Capability{}

	if counts, err := cpu.Counts(true); err == nil && counts > 0 {
		c.CPUs = counts
	} else {
		c.CPUs = runtime.NumCPU()
	}

	if vmem, err := mem.VirtualMemory(); err == nil {
		c.MemoryBytes = vmem.Total
	}

	return c
}
