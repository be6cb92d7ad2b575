package forecast

import (
	"fmt"
	"net/url"
)

// SchemaAdapter abstracts one schema variant of the locationforecast feed.
// The selection and scheduling core only ever sees the normalized Series.
type SchemaAdapter interface {
	// Name identifies the variant ("json", "xml").
	Name() string

	// Endpoint is the default remote endpoint for the variant.
	Endpoint() string

	// QueryParams builds the coordinate query for the variant.
	QueryParams(lat, lon float64, elevation int) url.Values

	// Parse converts a raw payload into a Series. Structurally incomplete
	// payloads yield a *ParseError.
	Parse(payload []byte) (Series, error)
}

// AdapterFor selects the adapter for a configured schema name.
func AdapterFor(schema string) (SchemaAdapter, error) {
	switch schema {
	case "json":
		return CurrentJSONAdapter{}, nil
	case "xml":
		return LegacyXMLAdapter{}, nil
	default:
		return nil, fmt.Errorf("unknown forecast schema %q", schema)
	}
}
