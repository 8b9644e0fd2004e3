//go:build metis

package treemesh

import (
	"fmt"
	"log"

	"github.com/james-bowman/sparse"
	"github.com/notargets/go-metis"
)

// MetisPartitioner computes a k-way partition of the element graph.
type MetisPartitioner struct {
	Objective       string // "vol" minimizes communication volume, otherwise edge cut
	ImbalanceFactor float32
}

func NewMetisPartitioner(objective string) (Partitioner, error) {
	return MetisPartitioner{Objective: objective, ImbalanceFactor: 1.05}, nil
}

func (mp MetisPartitioner) Partition(adjacency *sparse.CSR, nparts int) (part []int, err error) {
	var (
		K, _   = adjacency.Dims()
		raw    = adjacency.RawMatrix()
		xadj   = make([]int32, K+1)
		adjncy = make([]int32, len(raw.Ind))
	)
	log.Printf("Partitioning mesh with %d elements into %d parts", K, nparts)
	for i, p := range raw.Indptr[:K+1] {
		xadj[i] = int32(p)
	}
	for i, j := range raw.Ind {
		adjncy[i] = int32(j)
	}

	opts := make([]int32, metis.NoOptions)
	if err = metis.SetDefaultOptions(opts); err != nil {
		return nil, fmt.Errorf("failed to set METIS options: %w", err)
	}
	if mp.Objective == "vol" {
		opts[metis.OptionObjType] = metis.ObjTypeVol
	} else {
		opts[metis.OptionObjType] = metis.ObjTypeCut
	}
	imbalance := mp.ImbalanceFactor
	if imbalance == 0 {
		imbalance = 1.05
	}
	ubvec := []float32{imbalance}

	p32, objval, err := metis.PartGraphKwayWeighted(xadj, adjncy, nil, nil, int32(nparts), nil, ubvec, opts)
	if err != nil {
		return nil, fmt.Errorf("METIS partitioning failed: %w", err)
	}
	log.Printf("METIS objective value %d", objval)
	part = make([]int, K)
	for i := range part {
		part[i] = int(p32[i])
	}
	return
}
