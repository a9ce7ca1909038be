package pagination

import (
	"encoding/base64"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeCursor_RoundTrip(t *testing.T) {
	ts := time.Date(2025, 6, 1, 12, 30, 45, 123456789, time.UTC)

	encoded := EncodeCursor("doc-42", ts)
	require.NotEmpty(t, encoded)

	cursor, err := DecodeCursor(encoded)
	require.NoError(t, err)
	require.NotNil(t, cursor)
	assert.Equal(t, "doc-42", cursor.LastID)
	assert.True(t, ts.Equal(cursor.Timestamp))
}

func TestEncodeCursor_EmptyID(t *testing.T) {
	assert.Empty(t, EncodeCursor("", time.Now()))
}

func TestDecodeCursor_Empty(t *testing.T) {
	cursor, err := DecodeCursor("")
	require.NoError(t, err)
	assert.Nil(t, cursor)
}

func TestDecodeCursor_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		cursor string
	}{
		{"not base64", "!!not-base64!!"},
		{"missing separator", base64.StdEncoding.EncodeToString([]byte("just-an-id"))},
		{"bad timestamp", base64.StdEncoding.EncodeToString([]byte("doc-1|yesterday"))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeCursor(tt.cursor)
			assert.ErrorIs(t, err, ErrInvalidCursor)
		})
	}
}

func TestClampLimit(t *testing.T) {
	assert.Equal(t, DefaultLimit, ClampLimit(0))
	assert.Equal(t, DefaultLimit, ClampLimit(-5))
	assert.Equal(t, 25, ClampLimit(25))
	assert.Equal(t, MaxLimit, ClampLimit(10000))
}

func TestCreateNextCursor(t *testing.T) {
	type row struct {
		id string
		ts time.Time
	}
	getID := func(r row) string { return r.id }
	getTS := func(r row) time.Time { return r.ts }

	ts := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	full := []row{{"a", ts}, {"b", ts.Add(time.Minute)}}

	// A full page points at its last item.
	cursor := CreateNextCursor(full, 2, getID, getTS)
	require.NotEmpty(t, cursor)
	decoded, err := DecodeCursor(cursor)
	require.NoError(t, err)
	assert.Equal(t, "b", decoded.LastID)

	// A short page means no more results.
	assert.Empty(t, CreateNextCursor(full, 3, getID, getTS))
	assert.Empty(t, CreateNextCursor([]row{}, 2, getID, getTS))
}
