package postgres

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// jsonColumn adapts any JSON-serializable domain value (WorkingHours
// slices, ContractorCalendar, GeoLocation, TimeWindow, RotationConfig) to a
// Postgres jsonb column via database/sql's Valuer/Scanner, the way the
// teacher stores structured fields it has no dedicated table for.
type jsonColumn struct {
	dest interface{}
}

func jsonOf(dest interface{}) jsonColumn {
	return jsonColumn{dest: dest}
}

func (j jsonColumn) Value() (driver.Value, error) {
	b, err := json.Marshal(j.dest)
	if err != nil {
		return nil, fmt.Errorf("marshal json column: %w", err)
	}
	return b, nil
}

func (j jsonColumn) Scan(src interface{}) error {
	var raw []byte
	switch v := src.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	case nil:
		return nil
	default:
		return fmt.Errorf("unsupported json column source type %T", src)
	}
	if len(raw) == 0 {
		return nil
	}
	return json.Unmarshal(raw, j.dest)
}
