// Package runner executes the vector updates of the time integrators on an
// OCCA device.
package runner

import (
	"fmt"
	"strings"
	"unsafe"

	"github.com/notargets/gocca"
)

// innerLimit is the CUDA thread limit of one @inner loop
const innerLimit = 1024

// Runner owns the device memory and kernels for vectors of one length. The
// vector is split into NPART partitions of at most KpartMax entries, one
// @outer iteration each.
type Runner struct {
	Device       *gocca.OCCADevice
	Kernels      map[string]*gocca.OCCAKernel
	PooledMemory map[string]*gocca.OCCAMemory

	N        int
	NPart    int
	KpartMax int
}

// NewRunner sizes the partitions for vectors of length n
func NewRunner(device *gocca.OCCADevice, n int) *Runner {
	if n < 1 {
		panic(fmt.Sprintf("runner: vector length %d", n))
	}
	npart := (n + innerLimit - 1) / innerLimit
	return &Runner{
		Device:       device,
		Kernels:      make(map[string]*gocca.OCCAKernel),
		PooledMemory: make(map[string]*gocca.OCCAMemory),
		N:            n,
		NPart:        npart,
		KpartMax:     (n + npart - 1) / npart,
	}
}

// GeneratePreamble returns the type and size definitions prepended to every
// kernel of the runner
func (kr *Runner) GeneratePreamble() string {
	var sb strings.Builder
	sb.WriteString("typedef double real_t;\n")
	sb.WriteString(fmt.Sprintf("#define N %d\n", kr.N))
	sb.WriteString(fmt.Sprintf("#define NPART %d\n", kr.NPart))
	sb.WriteString(fmt.Sprintf("#define KpartMax %d\n", kr.KpartMax))
	return sb.String()
}

func (kr *Runner) BuildKernel(source, name string) (*gocca.OCCAKernel, error) {
	kernel, err := kr.Device.BuildKernelFromString(kr.GeneratePreamble()+source, name, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build kernel %s: %w", name, err)
	}
	if old, ok := kr.Kernels[name]; ok {
		old.Free()
	}
	kr.Kernels[name] = kernel
	return kernel, nil
}

// Allocate reserves device memory for a vector of length N
func (kr *Runner) Allocate(name string) *gocca.OCCAMemory {
	if mem, ok := kr.PooledMemory[name]; ok {
		return mem
	}
	mem := kr.Device.Malloc(int64(kr.N*8), nil, nil)
	kr.PooledMemory[name] = mem
	return mem
}

func (kr *Runner) CopyToDevice(name string, host []float64) error {
	mem, err := kr.memory(name, host)
	if err != nil {
		return err
	}
	mem.CopyFrom(unsafe.Pointer(&host[0]), int64(kr.N*8))
	return nil
}

func (kr *Runner) CopyFromDevice(name string, host []float64) error {
	mem, err := kr.memory(name, host)
	if err != nil {
		return err
	}
	mem.CopyTo(unsafe.Pointer(&host[0]), int64(kr.N*8))
	return nil
}

func (kr *Runner) memory(name string, host []float64) (*gocca.OCCAMemory, error) {
	mem, ok := kr.PooledMemory[name]
	if !ok {
		return nil, fmt.Errorf("no device memory allocated for %s", name)
	}
	if len(host) != kr.N {
		return nil, fmt.Errorf("%s: host length %d, device length %d", name, len(host), kr.N)
	}
	return mem, nil
}

// Free releases kernels and memory. The device stays open.
func (kr *Runner) Free() {
	for name, k := range kr.Kernels {
		k.Free()
		delete(kr.Kernels, name)
	}
	for name, mem := range kr.PooledMemory {
		mem.Free()
		delete(kr.PooledMemory, name)
	}
}
