package outbox

import (
	"testing"
	"time"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixtureIntents() []Intent {
	return []Intent{
		{
			ID:    "intent-1",
			Table: "medicines",
			Op:    OpInsert,
			Payload: map[string]any{
				"id":    "med-1",
				"name":  "Paracetamol 500mg",
				"price": 2.5,
				"stock": 40,
			},
			CreatedAt: time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC),
		},
		{
			ID:    "intent-2",
			Table: "medicines",
			Op:    OpUpdate,
			Payload: map[string]any{
				"id":    "med-1",
				"stock": 35,
			},
			CreatedAt: time.Date(2024, 6, 1, 9, 5, 0, 0, time.UTC),
		},
	}
}

func TestCodec_RoundTrip(t *testing.T) {
	encoded, err := encodeIntents(fixtureIntents())
	require.NoError(t, err)

	decoded, err := decodeIntents(encoded)
	require.NoError(t, err)

	require.Len(t, decoded, 2)
	assert.Equal(t, "intent-1", decoded[0].ID)
	assert.Equal(t, OpInsert, decoded[0].Op)
	assert.Equal(t, "intent-2", decoded[1].ID)
	assert.Equal(t, OpUpdate, decoded[1].Op)
	assert.Equal(t, time.Date(2024, 6, 1, 9, 5, 0, 0, time.UTC), decoded[1].CreatedAt)
}

// The persisted bytes are a contract: a format change without a version
// bump silently strands queued writes. Golden file pins the layout.
func TestCodec_PersistedFormatGolden(t *testing.T) {
	encoded, err := encodeIntents(fixtureIntents())
	require.NoError(t, err)

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "pending_sequence", []byte(encoded))
}

func TestCodec_EmptySequence(t *testing.T) {
	encoded, err := encodeIntents(nil)
	require.NoError(t, err)
	assert.Equal(t, `{"version":1,"intents":[]}`, encoded)

	decoded, err := decodeIntents(encoded)
	require.NoError(t, err)
	assert.Empty(t, decoded)
}

func TestCodec_BlankValueDecodesEmpty(t *testing.T) {
	decoded, err := decodeIntents("  ")
	require.NoError(t, err)
	assert.Empty(t, decoded)
}

func TestCodec_LegacyBareArray(t *testing.T) {
	legacy := `[{"id":"intent-old","table":"sales","op":"delete",` +
		`"payload":{"id":"sale-3"},"created_at":"2024-01-15T08:00:00Z"}]`

	decoded, err := decodeIntents(legacy)
	require.NoError(t, err)
	require.Len(t, decoded, 1)
	assert.Equal(t, "intent-old", decoded[0].ID)
	assert.Equal(t, OpDelete, decoded[0].Op)
}

func TestCodec_NewerVersionRefused(t *testing.T) {
	_, err := decodeIntents(`{"version":2,"intents":[]}`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "newer than supported")
}

func TestCodec_GarbageRefused(t *testing.T) {
	_, err := decodeIntents(`{not json`)
	assert.Error(t, err)

	_, err = decodeIntents(`[{"id":`)
	assert.Error(t, err)
}
