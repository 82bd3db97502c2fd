package partitions

import (
	"fmt"
	"runtime"
	"sync"
)

// Partition is a contiguous block of element rows processed by one goroutine
type Partition struct {
	ID int

	// Row membership, [RowStart, RowEnd)
	RowStart, RowEnd int

	// Element membership
	Elements    []int // Active (ice) element indices in this partition, row major
	NumElements int   // len(Elements)
}

// PartitionLayout decomposes a structured nx*ny element grid into row blocks.
// Every parallel loop of the solvers goes through it, so the land mask is
// applied in exactly one place.
type PartitionLayout struct {
	Partitions    []Partition
	NumPartitions int // Number of goroutines used by the parallel loops

	Nx, Ny        int
	TotalElements int   // Number of active elements over all partitions
	EToP          []int // Length nx*ny: element k belongs to partition EToP[k], -1 for land

	activeRows [][]int // Active elements of each row
}

// NewPartitionLayout splits ny rows into at most parallelDegree blocks.
// A parallelDegree < 1 selects runtime.GOMAXPROCS. isActive reports whether
// an element takes part in the computation; nil activates every element.
func NewPartitionLayout(nx, ny, parallelDegree int, isActive func(eid int) bool) *PartitionLayout {
	if nx < 1 || ny < 1 {
		panic(fmt.Sprintf("invalid grid dimensions %d x %d", nx, ny))
	}
	if parallelDegree < 1 {
		parallelDegree = runtime.GOMAXPROCS(0)
	}
	np := parallelDegree
	if np > ny {
		np = ny
	}
	pl := &PartitionLayout{
		Partitions:    make([]Partition, np),
		NumPartitions: np,
		Nx:            nx,
		Ny:            ny,
		EToP:          make([]int, nx*ny),
		activeRows:    make([][]int, ny),
	}
	for iy := 0; iy < ny; iy++ {
		for ix := 0; ix < nx; ix++ {
			eid := iy*nx + ix
			pl.EToP[eid] = -1
			if isActive == nil || isActive(eid) {
				pl.activeRows[iy] = append(pl.activeRows[iy], eid)
			}
		}
	}
	for p := 0; p < np; p++ {
		start, end := bucketRange(ny, np, p)
		part := Partition{ID: p, RowStart: start, RowEnd: end}
		for iy := start; iy < end; iy++ {
			for _, eid := range pl.activeRows[iy] {
				part.Elements = append(part.Elements, eid)
				pl.EToP[eid] = p
			}
		}
		part.NumElements = len(part.Elements)
		pl.TotalElements += part.NumElements
		pl.Partitions[p] = part
	}
	return pl
}

// bucketRange spreads n items over np buckets, the first n%np buckets
// holding one extra item
func bucketRange(n, np, p int) (start, end int) {
	size, rem := n/np, n%np
	start = p*size + min(p, rem)
	end = start + size
	if p < rem {
		end++
	}
	return
}

// ActiveRow returns the active elements of row iy
func (pl *PartitionLayout) ActiveRow(iy int) []int { return pl.activeRows[iy] }

func (pl *PartitionLayout) parallel(fn func(p *Partition)) {
	if pl.NumPartitions == 1 {
		fn(&pl.Partitions[0])
		return
	}
	var wg sync.WaitGroup
	for np := range pl.Partitions {
		wg.Add(1)
		go func(p *Partition) {
			defer wg.Done()
			fn(p)
		}(&pl.Partitions[np])
	}
	wg.Wait()
}

// ForEachActive calls fn for every active element, partitions in parallel
func (pl *PartitionLayout) ForEachActive(fn func(eid int)) {
	pl.ForEachActiveWorker(func(_, eid int) { fn(eid) })
}

// ForEachActiveWorker is ForEachActive passing the partition ID, so callers
// can index per goroutine scratch space
func (pl *PartitionLayout) ForEachActiveWorker(fn func(worker, eid int)) {
	pl.parallel(func(p *Partition) {
		for _, eid := range p.Elements {
			fn(p.ID, eid)
		}
	})
}

// ForEachRow calls fn for every row, partitions in parallel
func (pl *PartitionLayout) ForEachRow(fn func(iy int)) {
	pl.parallel(func(p *Partition) {
		for iy := p.RowStart; iy < p.RowEnd; iy++ {
			fn(iy)
		}
	})
}

// ForEachActiveTwoColor calls fn for every active element, first on all even
// rows, then on all odd rows. Elements of rows of one color share no CG
// nodes, so fn may scatter into node arrays without locks.
func (pl *PartitionLayout) ForEachActiveTwoColor(fn func(eid int)) {
	pl.ForEachActiveTwoColorWorker(func(_, eid int) { fn(eid) })
}

func (pl *PartitionLayout) ForEachActiveTwoColorWorker(fn func(worker, eid int)) {
	for color := 0; color < 2; color++ {
		pl.parallel(func(p *Partition) {
			for iy := p.RowStart; iy < p.RowEnd; iy++ {
				if iy%2 != color {
					continue
				}
				for _, eid := range pl.activeRows[iy] {
					fn(p.ID, eid)
				}
			}
		})
	}
}

// ForEachRange splits [0,n) into one chunk per partition and calls fn on
// each chunk in parallel
func (pl *PartitionLayout) ForEachRange(n int, fn func(lo, hi int)) {
	np := pl.NumPartitions
	if np > n {
		np = max(n, 1)
	}
	if np == 1 {
		fn(0, n)
		return
	}
	var wg sync.WaitGroup
	for p := 0; p < np; p++ {
		lo, hi := bucketRange(n, np, p)
		wg.Add(1)
		go func(lo, hi int) {
			defer wg.Done()
			fn(lo, hi)
		}(lo, hi)
	}
	wg.Wait()
}

// ForEachSlice calls fn on index sets in parallel, one goroutine per set
// group. It is used for independent lists such as edge rows.
func (pl *PartitionLayout) ForEachSlice(n int, fn func(i int)) {
	pl.ForEachRange(n, func(lo, hi int) {
		for i := lo; i < hi; i++ {
			fn(i)
		}
	})
}
