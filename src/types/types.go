package types

import (
	"encoding/json"
	"fmt"
	"time"
)

// Display sentinels. Charting never uses these: missing numeric fields chart
// as zero, while text surfaces distinguish "not yet loaded", "not reported by
// this station" and "fetch failed".
const (
	// ValuePending is shown on a card before the first fetch completes.
	ValuePending = "--"
	// ValueNA is shown for fields the station did not report (soil/rain on
	// stations without those probes).
	ValueNA = "N/A"
	// ValueError replaces every card value after a failed latest fetch so a
	// viewer never mistakes stale numbers for live ones.
	ValueError = "ERR"
)

// SensorReading is one timestamped set of station measurements. Readings are
// immutable once decoded; ID is unique within a single fetch but not
// guaranteed stable across fetches.
type SensorReading struct {
	ID          string
	Timestamp   time.Time
	Temperature float64
	Humidity    float64
	Soil        *float64
	Rain        *float64
	CO2         *float64
}

// WireReading mirrors one record as the endpoint serializes it. The timestamp
// arrives either as a plain epoch-millisecond integer or wrapped in a
// Mongo-style {"$date": ms} envelope, so it is kept raw until decode.
type WireReading struct {
	ID          string          `json:"_id"`
	Timestamp   json.RawMessage `json:"timestamp"`
	Temperature float64         `json:"temperature"`
	Humidity    float64         `json:"humidity"`
	SoilValue   *float64        `json:"soilValue"`
	RainValue   *float64        `json:"rainValue"`
	Co          *float64        `json:"Co"`
}

// dateEnvelope is the object form of a wire timestamp.
type dateEnvelope struct {
	Date int64 `json:"$date"`
}

// DecodeTimestamp accepts both wire timestamp forms and returns the instant.
func DecodeTimestamp(raw json.RawMessage) (time.Time, error) {
	if len(raw) == 0 {
		return time.Time{}, fmt.Errorf("timestamp missing")
	}
	var ms int64
	if err := json.Unmarshal(raw, &ms); err == nil {
		return time.UnixMilli(ms), nil
	}
	var env dateEnvelope
	if err := json.Unmarshal(raw, &env); err == nil && env.Date != 0 {
		return time.UnixMilli(env.Date), nil
	}
	return time.Time{}, fmt.Errorf("timestamp has unsupported shape: %s", string(raw))
}

// ToReading decodes the wire record into the domain form.
func (w *WireReading) ToReading() (SensorReading, error) {
	ts, err := DecodeTimestamp(w.Timestamp)
	if err != nil {
		return SensorReading{}, fmt.Errorf("record %s: %w", w.ID, err)
	}
	return SensorReading{
		ID:          w.ID,
		Timestamp:   ts,
		Temperature: w.Temperature,
		Humidity:    w.Humidity,
		Soil:        w.SoilValue,
		Rain:        w.RainValue,
		CO2:         w.Co,
	}, nil
}
