package treemesh

import (
	"fmt"
	"sort"

	"github.com/james-bowman/sparse"
	"github.com/notargets/treedg/types"
	"github.com/notargets/treedg/utils"
)

// Partitioner assigns each vertex of an element adjacency graph to one of
// nparts partitions.
type Partitioner interface {
	Partition(adjacency *sparse.CSR, nparts int) (part []int, err error)
}

// ContiguousPartitioner cuts the Morton ordered element list into nparts
// ranges of near equal size.
type ContiguousPartitioner struct{}

func (ContiguousPartitioner) Partition(adjacency *sparse.CSR, nparts int) (part []int, err error) {
	K, _ := adjacency.Dims()
	pm := utils.NewPartitionMap(nparts, K)
	part = make([]int, K)
	for bn := 0; bn < nparts; bn++ {
		kMin, kMax := pm.GetBucketRange(bn)
		for k := kMin; k < kMax; k++ {
			part[k] = bn
		}
	}
	return
}

// partition renumbers the elements so that every partition occupies a
// contiguous range, keeping the Morton order inside each partition.
func (m *Mesh) partition(nparts int, p Partitioner) (err error) {
	if p == nil {
		p = ContiguousPartitioner{}
	}
	var part []int
	if part, err = p.Partition(m.Adjacency(), nparts); err != nil {
		return fmt.Errorf("partitioning %d elements into %d parts: %w", len(m.Elements), nparts, err)
	}
	K := len(m.Elements)
	if len(part) != K {
		return fmt.Errorf("partitioner returned %d assignments for %d elements", len(part), K)
	}
	order := make([]int, K)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool { return part[order[i]] < part[order[j]] })
	keys := make([]types.CellKey, K)
	parts := make([]int, K)
	for eNew, eOld := range order {
		keys[eNew] = m.Elements[eOld].Key
		if part[eOld] < 0 || part[eOld] >= nparts {
			return fmt.Errorf("partition %d of element %d out of range", part[eOld], eOld)
		}
		parts[eNew] = part[eOld]
	}
	m.setElements(keys)
	if err = m.buildCatalogs(); err != nil {
		return
	}
	m.ElementPartition = parts
	m.NPartitions = nparts
	return
}

// PartitionRanges returns the element range [begin,end) of each partition.
func (m *Mesh) PartitionRanges() (ranges [][2]int) {
	if m.ElementPartition == nil {
		return [][2]int{{0, len(m.Elements)}}
	}
	ranges = make([][2]int, m.NPartitions)
	for p := range ranges {
		ranges[p] = [2]int{len(m.Elements), 0}
	}
	for e, p := range m.ElementPartition {
		ranges[p][0] = min(ranges[p][0], e)
		ranges[p][1] = max(ranges[p][1], e+1)
	}
	for p := range ranges {
		if ranges[p][1] == 0 {
			ranges[p] = [2]int{0, 0}
		}
	}
	return
}

// CutFaces counts element pairs coupled across a partition boundary.
func (m *Mesh) CutFaces() (cut int) {
	if m.ElementPartition == nil {
		return
	}
	adj := m.Adjacency()
	for e := range m.Elements {
		for _, nb := range Neighbors(adj, e) {
			if nb > e && m.ElementPartition[nb] != m.ElementPartition[e] {
				cut++
			}
		}
	}
	return
}
