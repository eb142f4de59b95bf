package models

import (
	"database/sql/driver"
	"encoding/json"
)

// Margins are page margins in inches
type Margins struct {
	Top    float64 `json:"top"`
	Bottom float64 `json:"bottom"`
	Left   float64 `json:"left"`
	Right  float64 `json:"right"`
}

// FormatRules are the mechanical filing rules a court imposes
type FormatRules struct {
	FontSize      float64 `json:"fontSize"`    // points
	LineSpacing   float64 `json:"lineSpacing"` // 1.0 = single, 2.0 = double
	Margins       Margins `json:"margins"`
	PageNumbering bool    `json:"pageNumbering"`
	CitationStyle string  `json:"citationStyle"`
}

// JurisdictionFormat holds formatting rules and required sections for a court
type JurisdictionFormat struct {
	State    *string     `json:"state,omitempty"`
	Federal  bool        `json:"federal"`
	Rules    FormatRules `json:"rules"`
	Sections []string    `json:"sections"`
}

// Value implements driver.Valuer for JSONB
func (j JurisdictionFormat) Value() (driver.Value, error) {
	return json.Marshal(j)
}

// Scan implements sql.Scanner for JSONB
func (j *JurisdictionFormat) Scan(value interface{}) error {
	if value == nil {
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return nil
	}

	if len(bytes) == 0 {
		return nil
	}

	return json.Unmarshal(bytes, j)
}
