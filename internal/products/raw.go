// Package products normalizes conformance-registry product records into flat
// views and evaluates filter and sort criteria over them.
package products

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"strconv"
)

// RawProductRecord is one entry of the upstream conforming-products list.
// Unknown keys are ignored.
type RawProductRecord struct {
	RecordID    FlexString  `json:"recordId"`
	Applicant   string      `json:"applicant"`
	Product     RawProduct  `json:"product"`
	Containers  Containers  `json:"containers"`
	Dates       RecordDates `json:"dates"`
	SpecVersion FlexStrings `json:"specVersion"`
	Status      string      `json:"status"`
}

// RawProduct is the nested product block of a record.
type RawProduct struct {
	DN          ProductDN  `json:"DN"`
	ProductType string     `json:"productType"`
	MinVersion  string     `json:"minVersion"`
	Assurance   *Assurance `json:"assurance,omitempty"`
}

// ProductDN carries the product's distinguished-name fields.
type ProductDN struct {
	CN string `json:"CN"`
	OU string `json:"OU"`
}

// Assurance is the optional assurance block. MaxAssuranceLevel is nil when
// the field is absent.
type Assurance struct {
	MaxAssuranceLevel *FlexInt `json:"maxAssuranceLevel,omitempty"`
}

// Containers holds the independent generate and validate format maps.
type Containers struct {
	Generate ContainerFormats `json:"generate"`
	Validate ContainerFormats `json:"validate"`
}

// RecordDates are calendar dates as published upstream (YYYY-MM-DD).
type RecordDates struct {
	Creation         string `json:"creation"`
	Conformance      string `json:"conformance"`
	LastModification string `json:"lastModification"`
}

// ContainerFormats maps a media type to the formats supported for it.
type ContainerFormats map[string][]string

// UnmarshalJSON accepts a media-type object whose values may be null or of
// an unexpected shape; such entries are dropped instead of failing the
// record. Non-string array members are ignored.
func (c *ContainerFormats) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*c = nil
		return nil
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("container formats: %w", err)
	}
	out := make(ContainerFormats, len(raw))
	for mediaType, value := range raw {
		var items []any
		if err := json.Unmarshal(value, &items); err != nil {
			slog.Debug("ignoring non-array container entry", "media_type", mediaType)
			continue
		}
		formats := make([]string, 0, len(items))
		for _, item := range items {
			if s, ok := item.(string); ok {
				formats = append(formats, s)
			}
		}
		out[mediaType] = formats
	}
	*c = out
	return nil
}

// FlexString decodes from a JSON string or number.
type FlexString string

// UnmarshalJSON implements json.Unmarshaler.
func (s *FlexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*s = ""
		return nil
	case len(data) > 0 && data[0] == '"':
		var v string
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		*s = FlexString(v)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("expected string or number, got %s", data)
	}
	*s = FlexString(n.String())
	return nil
}

// FlexStrings decodes from a JSON array of strings or a single string.
type FlexStrings []string

// UnmarshalJSON implements json.Unmarshaler.
func (s *FlexStrings) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*s = nil
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var v string
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		*s = FlexStrings{v}
		return nil
	}
	var v []string
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("expected string array: %w", err)
	}
	*s = v
	return nil
}

// FlexInt decodes from a JSON number or a numeric string. Fractional values
// are truncated.
type FlexInt int

// UnmarshalJSON implements json.Unmarshaler.
func (i *FlexInt) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var v string
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		data = []byte(v)
	}
	f, err := strconv.ParseFloat(string(data), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return fmt.Errorf("expected integer, got %s", data)
	}
	*i = FlexInt(int(f))
	return nil
}

// DecodeRecords decodes the upstream product document. A document whose top
// level is not an array yields an empty list. Elements that do not match the
// record schema are skipped with a warning; skipped reports how many.
func DecodeRecords(data []byte) (records []RawProductRecord, skipped int, err error) {
	var top any
	if err := json.Unmarshal(data, &top); err != nil {
		return nil, 0, fmt.Errorf("parsing product list: %w", err)
	}
	if _, ok := top.([]any); !ok {
		slog.Warn("product list is not a JSON array, treating as empty")
		return []RawProductRecord{}, 0, nil
	}

	var elems []json.RawMessage
	if err := json.Unmarshal(data, &elems); err != nil {
		return nil, 0, fmt.Errorf("parsing product list: %w", err)
	}
	records = make([]RawProductRecord, 0, len(elems))
	for i, elem := range elems {
		if bytes.Equal(bytes.TrimSpace(elem), []byte("null")) {
			slog.Warn("skipping null product record", "index", i)
			skipped++
			continue
		}
		var rec RawProductRecord
		if err := json.Unmarshal(elem, &rec); err != nil {
			slog.Warn("skipping malformed product record", "index", i, "error", err)
			skipped++
			continue
		}
		records = append(records, rec)
	}
	return records, skipped, nil
}
