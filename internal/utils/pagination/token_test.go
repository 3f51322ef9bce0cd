package pagination

import (
	"encoding/base64"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEncodeDecodeToken(t *testing.T) {
	createdAt := time.Date(2023, 5, 15, 14, 30, 45, 123456789, time.UTC)

	token := EncodeToken(createdAt, "0190f1d2-entry")
	assert.NotEmpty(t, token, "Token should not be empty")

	decodedAt, decodedID, err := DecodeToken(token)
	assert.NoError(t, err, "Decoding should not return an error")
	assert.True(t, createdAt.Equal(decodedAt), "Created at time should match after decode")
	assert.Equal(t, "0190f1d2-entry", decodedID)

	// Non-UTC input is normalized
	local := createdAt.In(time.FixedZone("EAT", 3*60*60))
	decodedAt, _, err = DecodeToken(EncodeToken(local, "x"))
	assert.NoError(t, err)
	assert.True(t, createdAt.Equal(decodedAt))
}

func TestDecodeTokenError(t *testing.T) {
	_, _, err := DecodeToken("this is not base64!")
	assert.Error(t, err, "Should return an error for invalid base64")
	assert.Contains(t, err.Error(), "base64 decode", "Error should mention base64 decoding")

	_, _, err = DecodeToken(rawToken("2023-05-15T00:00:00Z"))
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "split")

	_, _, err = DecodeToken(rawToken("not-a-date|id"))
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "created_at parse")
}

func TestAfter(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	assert.True(t, After(base.Add(time.Second), "a", base, "z"))
	assert.True(t, After(base, "b", base, "a"))
	assert.False(t, After(base, "a", base, "a"))
	assert.False(t, After(base.Add(-time.Second), "z", base, "a"))
}

func rawToken(s string) string {
	return base64.StdEncoding.EncodeToString([]byte(s))
}
