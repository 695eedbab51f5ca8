package enrich

import "strings"

// Length is the summary length band.
type Length string

// Accuracy is the summary detail level.
type Accuracy string

// SchemaStyle is the schema layout.
type SchemaStyle string

const (
	LengthBrief    Length = "brief"
	LengthMedium   Length = "medium"
	LengthDetailed Length = "detailed"

	AccuracyStandard Accuracy = "standard"
	AccuracyHigh     Accuracy = "high"

	SchemaBrainstorm SchemaStyle = "brainstorm"
	SchemaCascade    SchemaStyle = "cascade"
)

// SummaryOptions selects the summary instruction.
type SummaryOptions struct {
	Length   Length
	Accuracy Accuracy
}

// ParseLength maps a request value to a Length; unknown values become medium.
// The Italian names used by earlier clients are accepted too.
func ParseLength(raw string) Length {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "brief", "short", "breve":
		return LengthBrief
	case "detailed", "long", "dettagliato":
		return LengthDetailed
	default:
		return LengthMedium
	}
}

// ParseAccuracy maps a request value to an Accuracy; unknown values become standard.
func ParseAccuracy(raw string) Accuracy {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "high", "alta":
		return AccuracyHigh
	default:
		return AccuracyStandard
	}
}

// ParseSchemaStyle maps a request value to a SchemaStyle; unknown values become brainstorm.
func ParseSchemaStyle(raw string) SchemaStyle {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "cascade", "cascata", "flow":
		return SchemaCascade
	default:
		return SchemaBrainstorm
	}
}
