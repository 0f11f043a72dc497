package outbox

import (
	"encoding/json"
	"fmt"
	"strings"
)

// FormatVersion is the current persisted-sequence format.
//
// Version history:
//  0 - bare JSON array of intents (legacy, decode only)
//  1 - versioned envelope {version, intents}
const FormatVersion = 1

// envelope is the persisted representation of the pending sequence.
type envelope struct {
	Version int      `json:"version"`
	Intents []Intent `json:"intents"`
}

// encodeIntents serializes the pending sequence for storage.
func encodeIntents(intents []Intent) (string, error) {
	if intents == nil {
		intents = []Intent{}
	}
	raw, err := json.Marshal(envelope{Version: FormatVersion, Intents: intents})
	if err != nil {
		return "", fmt.Errorf("encode pending sequence: %w", err)
	}
	return string(raw), nil
}

// decodeIntents restores a pending sequence from storage.
//
// Legacy sequences persisted before the envelope existed are a bare JSON
// array; those are accepted and rewritten in the current format on the
// next persist. A version newer than FormatVersion is refused rather than
// guessed at.
func decodeIntents(raw string) ([]Intent, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, nil
	}

	if strings.HasPrefix(trimmed, "[") {
		// Legacy v0 format.
		var intents []Intent
		if err := json.Unmarshal([]byte(trimmed), &intents); err != nil {
			return nil, fmt.Errorf("decode legacy pending sequence: %w", err)
		}
		return intents, nil
	}

	var env envelope
	if err := json.Unmarshal([]byte(trimmed), &env); err != nil {
		return nil, fmt.Errorf("decode pending sequence: %w", err)
	}
	if env.Version > FormatVersion {
		return nil, fmt.Errorf("pending sequence version %d is newer than supported version %d", env.Version, FormatVersion)
	}
	return env.Intents, nil
}
