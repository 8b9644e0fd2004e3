package device

import (
	"fmt"
	"runtime"
	"sync"

	"github.com/notargets/treedg/utils"
)

// Kernel processes the work-items [lo,hi) of a launch.
type Kernel func(lo, hi int)

// Device runs kernels over ranges of work-items. Launch may return before the
// kernel completes, Finish blocks until every launched kernel is done.
// Kernels launched without an intervening Finish may run concurrently.
type Device interface {
	Mode() string
	Launch(name string, n int, kernel Kernel)
	Finish()
}

// Threads runs each launch on ParallelDegree goroutines, each one owning a
// contiguous block of work-items.
type Threads struct {
	ParallelDegree int
	wg             sync.WaitGroup
	partitions     map[int]*utils.PartitionMap
}

// NewThreads uses one goroutine per CPU when procLimit is zero.
func NewThreads(procLimit int) (th *Threads) {
	th = &Threads{
		ParallelDegree: procLimit,
		partitions:     make(map[int]*utils.PartitionMap),
	}
	if procLimit <= 0 {
		th.ParallelDegree = runtime.NumCPU()
	}
	return
}

func (th *Threads) Mode() string { return fmt.Sprintf("Threads(%d)", th.ParallelDegree) }

func (th *Threads) Launch(name string, n int, kernel Kernel) {
	if n <= 0 {
		return
	}
	pm, ok := th.partitions[n]
	if !ok {
		pm = utils.NewPartitionMap(min(th.ParallelDegree, n), n)
		th.partitions[n] = pm
	}
	for bn := 0; bn < pm.ParallelDegree; bn++ {
		lo, hi := pm.GetBucketRange(bn)
		th.wg.Add(1)
		go func(lo, hi int) {
			defer th.wg.Done()
			kernel(lo, hi)
		}(lo, hi)
	}
}

func (th *Threads) Finish() { th.wg.Wait() }

// Serial runs every launch to completion on the calling goroutine.
type Serial struct{}

func (Serial) Mode() string { return "Serial" }

func (Serial) Launch(name string, n int, kernel Kernel) {
	if n > 0 {
		kernel(0, n)
	}
}

func (Serial) Finish() {}
