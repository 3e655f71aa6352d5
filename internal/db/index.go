package db

// StorageType selects the FT index storage backend.
type StorageType string

// Index storage backends.
const (
	StorageHash StorageType = "HASH"
)

// IndexFieldType is the FT schema field type.
type IndexFieldType string

// FT schema field types.
const (
	IndexFieldTag     IndexFieldType = "TAG"
	IndexFieldNumeric IndexFieldType = "NUMERIC"
	IndexFieldVector  IndexFieldType = "VECTOR"
)

// VectorAlgo selects the vector index algorithm.
type VectorAlgo string

// Vector index algorithms.
const (
	VectorFlat VectorAlgo = "FLAT"
	VectorHNSW VectorAlgo = "HNSW"
)

// Distance is the vector distance metric.
type Distance string

// Vector distance metrics.
const (
	DistanceCosine Distance = "COSINE"
	DistanceL2     Distance = "L2"
)

// IndexDefinition describes an FT index to create.
type IndexDefinition struct {
	Name        string
	StorageType StorageType
	Prefixes    []string
	Fields      []IndexField
}

// IndexField is a single FT schema field.
type IndexField struct {
	Name              string
	Type              IndexFieldType
	Sortable          bool
	VectorDim         int
	VectorAlgo        VectorAlgo
	VectorDistance    Distance
	VectorM           int
	VectorEFConstruct int
}
