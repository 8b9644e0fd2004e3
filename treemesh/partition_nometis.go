//go:build !metis

package treemesh

import "errors"

func NewMetisPartitioner(objective string) (Partitioner, error) {
	return nil, errors.New("METIS partitioning requires building with -tags metis")
}
