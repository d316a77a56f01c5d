package core

type SchemaType int

const (
	SchemaFul SchemaType = iota
	SchemaLess
)

func (s SchemaType) String() string {
	switch s {
	case SchemaFul:
		return "schemaful"
	case SchemaLess:
		return "schemaless"
	default:
		return ""
	}
}

type (
	// FormatterOptions provide various options for formatters
	FormatterOptions struct {
		SchemaType SchemaType
		ChunkStart int
	}

	// Formatter converts header and rows to bytes
	Formatter interface {
		Format(header Header, rows []Row, opts *FormatterOptions) ([]byte, error)
	}
)

type (
	// Row and Header are attributes of IterResult iterator
	Row    []any
	Header []string

	// Meta holds metadata
	Meta struct {
		// type of schema (schemaful or schemaless)
		SchemaType SchemaType
		// Total is the number of matching records reported by the backend
		// (e.g. from a Content-Range header). Only valid if TotalKnown is set.
		Total      int
		TotalKnown bool
	}

	// ResultStream is a result from executed query and has a form of an iterator
	ResultStream interface {
		Meta() *Meta
		Header() Header
		Next() (Row, error)
		HasNext() bool
		Close()
	}
)

type StructureType int

const (
	StructureTypeNone StructureType = iota
	StructureTypeTable
	StructureTypeView
)

func (s StructureType) String() string {
	switch s {
	case StructureTypeNone:
		return ""
	case StructureTypeTable:
		return "table"
	case StructureTypeView:
		return "view"
	default:
		return ""
	}
}

// Structure represents the structure of a single database
type Structure struct {
	// Name to be displayed
	Name   string
	Schema string
	// Type of layout
	Type StructureType
	// Children layout nodes
	Children []*Structure
}

type Column struct {
	// Column name
	Name string
	// Database data type
	Type string
}

// TableOptions identify a single table for helper lookups.
type TableOptions struct {
	Table           string
	Schema          string
	Materialization StructureType
}
