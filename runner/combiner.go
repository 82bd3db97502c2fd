package runner

import (
	"fmt"

	"github.com/notargets/gocca"
)

const axpbyKernel = `
@kernel void axpby(const real_t a, const real_t *x, const real_t b, real_t *y) {
	for (int part = 0; part < NPART; ++part; @outer) {
		for (int elem = 0; elem < KpartMax; ++elem; @inner) {
			const int i = part*KpartMax + elem;
			if (i < N) {
				y[i] = a*x[i] + b*y[i];
			}
		}
	}
}
`

// OCCACombiner forms the stage combinations of the Runge-Kutta schemes on a
// device. Vectors are copied in and out on every call, so it pays off only
// for large meshes. The kernel is rebuilt when the vector length changes.
type OCCACombiner struct {
	Device *gocca.OCCADevice

	kr *Runner
}

func NewOCCACombiner(device *gocca.OCCADevice) *OCCACombiner {
	return &OCCACombiner{Device: device}
}

func (c *OCCACombiner) setup(n int) error {
	if c.kr != nil && c.kr.N == n {
		return nil
	}
	if c.kr != nil {
		c.kr.Free()
	}
	c.kr = NewRunner(c.Device, n)
	c.kr.Allocate("x")
	c.kr.Allocate("y")
	_, err := c.kr.BuildKernel(axpbyKernel, "axpby")
	return err
}

// Axpby sets y = a*x + b*y. Device failures panic, the transport solver has
// no error path for the stage combination.
func (c *OCCACombiner) Axpby(a float64, x []float64, b float64, y []float64) {
	if len(x) != len(y) {
		panic(fmt.Sprintf("axpby: lengths %d and %d", len(x), len(y)))
	}
	if len(y) == 0 {
		return
	}
	if err := c.setup(len(y)); err != nil {
		panic(err)
	}
	kr := c.kr
	if err := kr.CopyToDevice("x", x); err != nil {
		panic(err)
	}
	if err := kr.CopyToDevice("y", y); err != nil {
		panic(err)
	}
	if err := kr.Kernels["axpby"].RunWithArgs(a, kr.PooledMemory["x"], b, kr.PooledMemory["y"]); err != nil {
		panic(fmt.Errorf("kernel execution failed: %w", err))
	}
	kr.Device.Finish()
	if err := kr.CopyFromDevice("y", y); err != nil {
		panic(err)
	}
}

// Free releases the device resources of the combiner
func (c *OCCACombiner) Free() {
	if c.kr != nil {
		c.kr.Free()
		c.kr = nil
	}
}
