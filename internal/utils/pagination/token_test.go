package pagination

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEncodeDecodeCursor(t *testing.T) {
	createdAt := time.Date(2025, 5, 15, 14, 30, 45, 123456789, time.UTC)
	id := "9f0c5a7e-0c2f-4e5b-9a4e-1f2d3c4b5a69"

	token := EncodeCursor(createdAt, id)
	assert.NotEmpty(t, token, "Token should not be empty")

	decodedCreatedAt, decodedID, err := DecodeCursor(token)
	assert.NoError(t, err, "Decoding should not return an error")
	assert.Equal(t, createdAt, decodedCreatedAt, "Created at time should match after decode")
	assert.Equal(t, id, decodedID, "ID should match after decode")
}

func TestDecodeCursorError(t *testing.T) {
	// Invalid base64
	_, _, err := DecodeCursor("this is not base64!")
	assert.Error(t, err, "Should return an error for invalid base64")
	assert.Contains(t, err.Error(), "base64 decode", "Error should mention base64 decoding")

	// Missing separator
	_, _, err = DecodeCursor("MjAyMy0wNS0xNVQwMDowMDowMFo=") // "2023-05-15T00:00:00Z"
	assert.Error(t, err, "Should return an error for a token without a separator")
	assert.Contains(t, err.Error(), "split", "Error should mention splitting issue")

	// Invalid timestamp
	_, _, err = DecodeCursor("bm90YWRhdGV8c29tZS1pZA==") // "notadate|some-id"
	assert.Error(t, err, "Should return an error for an invalid timestamp")
	assert.Contains(t, err.Error(), "created_at parse", "Error should mention timestamp parsing issue")

	// Empty id segment
	token := EncodeCursor(time.Now().UTC(), "")
	_, _, err = DecodeCursor(token)
	assert.Error(t, err, "Should return an error for an empty id segment")
	assert.Contains(t, err.Error(), "empty id", "Error should mention the empty id")
}
