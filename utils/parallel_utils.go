package utils

// PartitionMap splits the index range [0,MaxIndex) into ParallelDegree
// contiguous buckets whose sizes differ by at most one, the larger buckets
// first.
type PartitionMap struct {
	MaxIndex       int
	ParallelDegree int
	Partitions     [][2]int // Beginning and end index of each bucket
}

func NewPartitionMap(ParallelDegree, maxIndex int) (pm *PartitionMap) {
	pm = &PartitionMap{
		MaxIndex:       maxIndex,
		ParallelDegree: ParallelDegree,
		Partitions:     make([][2]int, ParallelDegree),
	}
	var (
		size      = maxIndex / ParallelDegree
		remainder = maxIndex % ParallelDegree
		begin     int
	)
	for bn := range pm.Partitions {
		end := begin + size
		if bn < remainder {
			end++
		}
		pm.Partitions[bn] = [2]int{begin, end}
		begin = end
	}
	return
}

func (pm *PartitionMap) GetBucketRange(bucketNum int) (kMin, kMax int) {
	kMin, kMax = pm.Partitions[bucketNum][0], pm.Partitions[bucketNum][1]
	return
}

func (pm *PartitionMap) GetBucketDimension(bucketNum int) int {
	kMin, kMax := pm.GetBucketRange(bucketNum)
	return kMax - kMin
}
