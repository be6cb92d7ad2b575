package forecast

import (
	"encoding/xml"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"time"
)

// LegacyXMLAdapter parses the legacy "classic" XML schema. Instantaneous
// parameters arrive in zero-width <time> elements (from == to) while
// precipitation and the symbol arrive in separate interval elements; the
// per-field candidate walk handles that split without merging.
type LegacyXMLAdapter struct{}

type xmlValueAttr struct {
	Value *float64 `xml:"value,attr"`
}

type xmlPercentAttr struct {
	Percent *float64 `xml:"percent,attr"`
}

type xmlSpeedAttr struct {
	Mps *float64 `xml:"mps,attr"`
}

type xmlLocation struct {
	Temperature   *xmlValueAttr   `xml:"temperature"`
	Pressure      *xmlValueAttr   `xml:"pressure"`
	Humidity      *xmlValueAttr   `xml:"humidity"`
	Dewpoint      *xmlValueAttr   `xml:"dewpointTemperature"`
	Precipitation *xmlValueAttr   `xml:"precipitation"`
	WindSpeed     *xmlSpeedAttr   `xml:"windSpeed"`
	WindGust      *xmlSpeedAttr   `xml:"windGust"`
	WindDirection *struct {
		Deg *float64 `xml:"deg,attr"`
	} `xml:"windDirection"`
	Fog          *xmlPercentAttr `xml:"fog"`
	Cloudiness   *xmlPercentAttr `xml:"cloudiness"`
	LowClouds    *xmlPercentAttr `xml:"lowClouds"`
	MediumClouds *xmlPercentAttr `xml:"mediumClouds"`
	HighClouds   *xmlPercentAttr `xml:"highClouds"`
	Symbol       *struct {
		Code string `xml:"code,attr"`
	} `xml:"symbol"`
}

type xmlTime struct {
	From     string      `xml:"from,attr"`
	To       string      `xml:"to,attr"`
	Location xmlLocation `xml:"location"`
}

type xmlDocument struct {
	XMLName xml.Name `xml:"weatherdata"`
	Product struct {
		Times []xmlTime `xml:"time"`
	} `xml:"product"`
}

func (LegacyXMLAdapter) Name() string { return "xml" }

func (LegacyXMLAdapter) Endpoint() string {
	return "https://api.met.no/weatherapi/locationforecast/2.0/classic"
}

func (LegacyXMLAdapter) QueryParams(lat, lon float64, elevation int) url.Values {
	v := url.Values{}
	v.Set("lat", strconv.FormatFloat(lat, 'f', 4, 64))
	v.Set("lon", strconv.FormatFloat(lon, 'f', 4, 64))
	v.Set("msl", strconv.Itoa(elevation))
	return v
}

func (LegacyXMLAdapter) Parse(payload []byte) (Series, error) {
	var doc xmlDocument
	if err := xml.Unmarshal(payload, &doc); err != nil {
		return Series{}, &ParseError{Err: err}
	}
	if len(doc.Product.Times) == 0 {
		return Series{}, &ParseError{Err: errors.New("document has no time elements")}
	}

	entries := make([]TimeEntry, 0, len(doc.Product.Times))
	for i, te := range doc.Product.Times {
		from, err := parseXMLTime(te.From)
		if err != nil {
			return Series{}, &ParseError{Err: fmt.Errorf("time entry %d: %w", i, err)}
		}
		to, err := parseXMLTime(te.To)
		if err != nil {
			return Series{}, &ParseError{Err: fmt.Errorf("time entry %d: %w", i, err)}
		}
		if to.Before(from) {
			return Series{}, &ParseError{Err: fmt.Errorf("time entry %d: window ends before it starts", i)}
		}

		entries = append(entries, TimeEntry{
			ValidFrom: from,
			ValidTo:   to,
			Fields:    te.Location.fields(),
		})
	}

	return Series{Entries: entries}, nil
}

func (l xmlLocation) fields() map[FieldType]Value {
	fields := make(map[FieldType]Value)

	putValue := func(ft FieldType, a *xmlValueAttr) {
		if a != nil && a.Value != nil {
			fields[ft] = Num(*a.Value)
		}
	}
	putPercent := func(ft FieldType, a *xmlPercentAttr) {
		if a != nil && a.Percent != nil {
			fields[ft] = Num(*a.Percent)
		}
	}
	putSpeed := func(ft FieldType, a *xmlSpeedAttr) {
		if a != nil && a.Mps != nil {
			fields[ft] = Num(*a.Mps)
		}
	}

	putValue(FieldTemperature, l.Temperature)
	putValue(FieldPressure, l.Pressure)
	putValue(FieldHumidity, l.Humidity)
	putValue(FieldDewpoint, l.Dewpoint)
	putValue(FieldPrecipitation, l.Precipitation)
	putSpeed(FieldWindSpeed, l.WindSpeed)
	putSpeed(FieldWindGust, l.WindGust)
	putPercent(FieldFog, l.Fog)
	putPercent(FieldCloudiness, l.Cloudiness)
	putPercent(FieldLowClouds, l.LowClouds)
	putPercent(FieldMediumClouds, l.MediumClouds)
	putPercent(FieldHighClouds, l.HighClouds)
	if l.WindDirection != nil && l.WindDirection.Deg != nil {
		fields[FieldWindDirection] = Num(*l.WindDirection.Deg)
	}
	if l.Symbol != nil && l.Symbol.Code != "" {
		fields[FieldSymbol] = Sym(l.Symbol.Code)
	}

	return fields
}

func parseXMLTime(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	t, err := time.Parse("2006-01-02T15:04:05", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid timestamp %q", s)
	}
	return t.UTC(), nil
}
