package forecast

import "fmt"

// FieldType identifies one of the weather attributes a sensor can track.
// The set is closed; ParseFieldType rejects anything else.
type FieldType string

const (
	FieldSymbol        FieldType = "symbol"
	FieldPrecipitation FieldType = "precipitation"
	FieldTemperature   FieldType = "temperature"
	FieldWindSpeed     FieldType = "windSpeed"
	FieldWindGust      FieldType = "windGust"
	FieldPressure      FieldType = "pressure"
	FieldWindDirection FieldType = "windDirection"
	FieldHumidity      FieldType = "humidity"
	FieldFog           FieldType = "fog"
	FieldCloudiness    FieldType = "cloudiness"
	FieldLowClouds     FieldType = "lowClouds"
	FieldMediumClouds  FieldType = "mediumClouds"
	FieldHighClouds    FieldType = "highClouds"
	FieldDewpoint      FieldType = "dewpointTemperature"
)

// Metadata holds the static presentation attributes derived from a field type.
type Metadata struct {
	Title       string
	Unit        string
	DeviceClass string
}

var fieldMetadata = map[FieldType]Metadata{
	FieldSymbol:        {Title: "Symbol"},
	FieldPrecipitation: {Title: "Precipitation", Unit: "mm"},
	FieldTemperature:   {Title: "Temperature", Unit: "°C", DeviceClass: "temperature"},
	FieldWindSpeed:     {Title: "Wind speed", Unit: "m/s"},
	FieldWindGust:      {Title: "Wind gust", Unit: "m/s"},
	FieldPressure:      {Title: "Pressure", Unit: "hPa", DeviceClass: "pressure"},
	FieldWindDirection: {Title: "Wind direction", Unit: "°"},
	FieldHumidity:      {Title: "Humidity", Unit: "%", DeviceClass: "humidity"},
	FieldFog:           {Title: "Fog", Unit: "%"},
	FieldCloudiness:    {Title: "Cloudiness", Unit: "%"},
	FieldLowClouds:     {Title: "Low clouds", Unit: "%"},
	FieldMediumClouds:  {Title: "Medium clouds", Unit: "%"},
	FieldHighClouds:    {Title: "High clouds", Unit: "%"},
	FieldDewpoint:      {Title: "Dewpoint temperature", Unit: "°C", DeviceClass: "temperature"},
}

// Valid reports whether f belongs to the closed field-type set.
func (f FieldType) Valid() bool {
	_, ok := fieldMetadata[f]
	return ok
}

// Metadata returns the static title, unit and device class for f.
func (f FieldType) Metadata() Metadata {
	return fieldMetadata[f]
}

// ParseFieldType converts a configured identifier into a FieldType.
func ParseFieldType(s string) (FieldType, error) {
	ft := FieldType(s)
	if !ft.Valid() {
		return "", fmt.Errorf("unknown field type %q", s)
	}
	return ft, nil
}

// AllFieldTypes lists every supported field type in a fixed order.
func AllFieldTypes() []FieldType {
	return []FieldType{
		FieldSymbol,
		FieldPrecipitation,
		FieldTemperature,
		FieldWindSpeed,
		FieldWindGust,
		FieldPressure,
		FieldWindDirection,
		FieldHumidity,
		FieldFog,
		FieldCloudiness,
		FieldLowClouds,
		FieldMediumClouds,
		FieldHighClouds,
		FieldDewpoint,
	}
}
