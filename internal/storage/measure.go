package storage

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// Measure is a diagnostic value that may be unavailable. NaN and ±Inf are
// stored as NULL in the catalog and null in JSON, and read back as NaN.
type Measure float64

// NotAvailable is the Measure read back for a missing value.
func NotAvailable() Measure { return Measure(math.NaN()) }

// Valid reports whether m holds a finite value.
func (m Measure) Valid() bool {
	v := float64(m)
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func (m Measure) String() string {
	if !m.Valid() {
		return "n/a"
	}
	return strconv.FormatFloat(float64(m), 'g', 6, 64)
}

func (m Measure) MarshalJSON() ([]byte, error) {
	if !m.Valid() {
		return []byte("null"), nil
	}
	return json.Marshal(float64(m))
}

func (m *Measure) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*m = NotAvailable()
		return nil
	}
	var v float64
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	*m = Measure(v)
	return nil
}

// Value implements driver.Valuer.
func (m Measure) Value() (driver.Value, error) {
	if !m.Valid() {
		return nil, nil
	}
	return float64(m), nil
}

// Scan implements sql.Scanner.
func (m *Measure) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*m = NotAvailable()
	case float64:
		*m = Measure(v)
	case int64:
		*m = Measure(v)
	default:
		return fmt.Errorf("storage: cannot scan %T into Measure", src)
	}
	return nil
}

// Measures converts raw metric values, keeping non-finite ones as
// unavailable.
func Measures(values map[string]float64) map[string]Measure {
	if values == nil {
		return nil
	}
	out := make(map[string]Measure, len(values))
	for k, v := range values {
		out[k] = Measure(v)
	}
	return out
}
