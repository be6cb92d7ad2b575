package forecast

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"time"
)

// CurrentJSONAdapter parses the locationforecast/2.0 "complete" JSON schema.
type CurrentJSONAdapter struct{}

// instantDetailKeys maps field types to their attribute name in the
// "instant" details bag.
var instantDetailKeys = map[FieldType]string{
	FieldTemperature:   "air_temperature",
	FieldPressure:      "air_pressure_at_sea_level",
	FieldHumidity:      "relative_humidity",
	FieldDewpoint:      "dew_point_temperature",
	FieldWindSpeed:     "wind_speed",
	FieldWindGust:      "wind_speed_of_gust",
	FieldWindDirection: "wind_from_direction",
	FieldFog:           "fog_area_fraction",
	FieldCloudiness:    "cloud_area_fraction",
	FieldLowClouds:     "cloud_area_fraction_low",
	FieldMediumClouds:  "cloud_area_fraction_medium",
	FieldHighClouds:    "cloud_area_fraction_high",
}

type jsonNextHours struct {
	Summary struct {
		SymbolCode string `json:"symbol_code"`
	} `json:"summary"`
	Details map[string]float64 `json:"details"`
}

type jsonTimeEntry struct {
	Time time.Time `json:"time"`
	Data struct {
		Instant struct {
			Details map[string]float64 `json:"details"`
		} `json:"instant"`
		NextHour *jsonNextHours `json:"next_1_hours"`
	} `json:"data"`
}

type jsonDocument struct {
	Properties *struct {
		Timeseries []jsonTimeEntry `json:"timeseries"`
	} `json:"properties"`
}

func (CurrentJSONAdapter) Name() string { return "json" }

func (CurrentJSONAdapter) Endpoint() string {
	return "https://api.met.no/weatherapi/locationforecast/2.0/complete"
}

func (CurrentJSONAdapter) QueryParams(lat, lon float64, elevation int) url.Values {
	v := url.Values{}
	v.Set("lat", strconv.FormatFloat(lat, 'f', 4, 64))
	v.Set("lon", strconv.FormatFloat(lon, 'f', 4, 64))
	v.Set("altitude", strconv.Itoa(elevation))
	return v
}

// Parse decodes the payload. A payload without properties.timeseries is
// malformed; a present-but-empty timeseries is a valid empty series.
func (CurrentJSONAdapter) Parse(payload []byte) (Series, error) {
	var doc jsonDocument
	if err := json.Unmarshal(payload, &doc); err != nil {
		return Series{}, &ParseError{Err: err}
	}
	if doc.Properties == nil || doc.Properties.Timeseries == nil {
		return Series{}, &ParseError{Err: errors.New("payload has no properties.timeseries")}
	}

	entries := make([]TimeEntry, 0, len(doc.Properties.Timeseries))
	for i, te := range doc.Properties.Timeseries {
		if te.Time.IsZero() {
			return Series{}, &ParseError{Err: fmt.Errorf("timeseries entry %d has no time", i)}
		}

		fields := make(map[FieldType]Value)
		for ft, key := range instantDetailKeys {
			if n, ok := te.Data.Instant.Details[key]; ok {
				fields[ft] = Num(n)
			}
		}
		if nh := te.Data.NextHour; nh != nil {
			if nh.Summary.SymbolCode != "" {
				fields[FieldSymbol] = Sym(nh.Summary.SymbolCode)
			}
			if n, ok := nh.Details["precipitation_amount"]; ok {
				fields[FieldPrecipitation] = Num(n)
			}
		}

		// The feed only states the entry time; each entry covers one hour.
		entries = append(entries, TimeEntry{
			ValidFrom: te.Time,
			ValidTo:   te.Time.Add(time.Hour),
			Fields:    fields,
		})
	}

	return Series{Entries: entries}, nil
}
