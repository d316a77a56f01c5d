package probe

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// Defaults of the model table and its relations.
const (
	DefaultTable            = "nexus_modelos"
	DefaultStatus           = "Ativo"
	DefaultUnitTable        = "nexus_unidades"
	DefaultParticipantTable = "nexus_participantes"
	DefaultPageSize         = 12
	DefaultFallbackLimit    = 5
	DefaultRefSampleSize    = 20
)

// Config describes the table under test and how its relations are embedded.
type Config struct {
	Table  string `validate:"required"`
	Status string `validate:"required"`

	// OrderColumn orders the data probe, newest first.
	OrderColumn string `validate:"required"`

	UnitTable        string `validate:"required"`
	UnitAlias        string `validate:"required"`
	ParticipantTable string `validate:"required"`
	ParticipantAlias string `validate:"required"`

	// UnitRef and ConsultantRef are the foreign key columns shown by the
	// fallback probe.
	UnitRef       string `validate:"required"`
	ConsultantRef string `validate:"required"`

	PageSize      int `validate:"min=1"`
	FallbackLimit int `validate:"min=1"`

	// CheckRefs enables the reference probe after a non empty fallback.
	CheckRefs     bool
	RefSampleSize int `validate:"min=1"`
}

func DefaultConfig() Config {
	return Config{
		Table:            DefaultTable,
		Status:           DefaultStatus,
		OrderColumn:      "data",
		UnitTable:        DefaultUnitTable,
		UnitAlias:        "unidade",
		ParticipantTable: DefaultParticipantTable,
		ParticipantAlias: "consultor",
		UnitRef:          "unidade",
		ConsultantRef:    "consultor_venda",
		PageSize:         DefaultPageSize,
		FallbackLimit:    DefaultFallbackLimit,
		RefSampleSize:    DefaultRefSampleSize,
	}
}

// Validate checks that all fields in Config are valid
func (c *Config) Validate() error {
	validate := validator.New()

	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("validation failed for probe config: %w", err)
	}

	return nil
}
