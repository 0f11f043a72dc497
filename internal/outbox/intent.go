package outbox

import (
	"time"

	"golang.org/x/text/unicode/norm"
)

// Op is the kind of remote write an intent requests.
type Op string

const (
	// OpInsert submits the payload as a new row.
	OpInsert Op = "insert"
	// OpUpdate applies the payload as a partial update to the row whose
	// primary key matches the payload's id field.
	OpUpdate Op = "update"
	// OpDelete removes the row whose primary key matches the payload's
	// id field.
	OpDelete Op = "delete"
)

// Valid reports whether op is one of the supported operations.
func (op Op) Valid() bool {
	switch op {
	case OpInsert, OpUpdate, OpDelete:
		return true
	}
	return false
}

// Intent is one desired remote write, recorded but not yet confirmed
// applied. Intents are immutable once enqueued; only queue membership
// changes.
type Intent struct {
	// ID uniquely identifies the intent, assigned at enqueue time.
	ID string `json:"id"`

	// Table names the remote table to affect.
	Table string `json:"table"`

	// Op is the mutation kind.
	Op Op `json:"op"`

	// Payload is the row data. For update and delete it carries the id
	// field selecting the target row.
	Payload map[string]any `json:"payload"`

	// CreatedAt is the enqueue timestamp, kept for diagnostics and
	// ordering inspection. Replay order is the sequence order, not this.
	CreatedAt time.Time `json:"created_at"`
}

// RowID returns the payload's id field, the row selector for update and
// delete intents.
func (in Intent) RowID() (any, bool) {
	id, ok := in.Payload["id"]
	return id, ok
}

// normalizePayload returns a copy of payload with every string value
// NFC-normalized, recursing into nested objects and arrays. Drug and
// supplier names arrive from keyboards in mixed composed/decomposed
// forms; normalizing at enqueue keeps the persisted bytes stable.
func normalizePayload(payload map[string]any) map[string]any {
	if payload == nil {
		return map[string]any{}
	}
	out := make(map[string]any, len(payload))
	for k, v := range payload {
		out[norm.NFC.String(k)] = normalizeValue(v)
	}
	return out
}

func normalizeValue(v any) any {
	switch val := v.(type) {
	case string:
		return norm.NFC.String(val)
	case map[string]any:
		return normalizePayload(val)
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = normalizeValue(item)
		}
		return out
	default:
		return v
	}
}
