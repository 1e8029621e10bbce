// Package appointments owns the append-only store of confirmed bookings.
package appointments

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// CreatedAtLayout matches the serialized appointment timestamps.
const CreatedAtLayout = "2006-01-02 15:04:05"

// Record is a confirmed appointment. Immutable once created; identifiers
// are one-based and monotonic within a store.
type Record struct {
	ID        int    `json:"id"`
	Service   string `json:"package"`
	Name      string `json:"name"`
	BirthDate string `json:"dob"`
	Date      string `json:"date"`
	Time      string `json:"time"`
	CreatedAt string `json:"created_at"`
}

// Store is the persistence boundary for appointments. The engine never
// mutates or removes records, it only appends one per completed booking.
type Store interface {
	// List returns all records in insertion order.
	List(ctx context.Context) ([]Record, error)
	// Append stores a new record, assigns its identifier and creation
	// timestamp, and returns the stored copy. Either the whole record is
	// appended or the append is reported as failed.
	Append(ctx context.Context, r Record) (Record, error)
}

// ParseSerialized decodes the serialized appointments JSON array used to
// seed an in-memory store. A blank string means no prior appointments.
func ParseSerialized(text string) ([]Record, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil, nil
	}
	var records []Record
	if err := json.Unmarshal([]byte(trimmed), &records); err != nil {
		return nil, fmt.Errorf("appointments: invalid serialized appointments: %w", err)
	}
	return records, nil
}

// Serialize encodes records the same way they arrive.
func Serialize(records []Record) (string, error) {
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return "", fmt.Errorf("appointments: serialize: %w", err)
	}
	return string(data), nil
}

func timestamp(t time.Time) string {
	return t.Format(CreatedAtLayout)
}
