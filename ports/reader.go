package ports

import (
	"coursemetry/domain/dataset"
)

// DatasetReader loads an engagement dataset from an external source into
// memory. Implementations are read-only: they never write back to the source.
type DatasetReader interface {
	ReadDataset() (*dataset.Dataset, error)
}
