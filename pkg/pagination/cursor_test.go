package pagination

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	c := Cursor{Sid: "abc", Fh: "f1e2", Off: 50, Ps: 25}
	tok, err := EncodeCursor(c)
	require.NoError(t, err)
	require.NotEmpty(t, tok)

	got, err := DecodeCursor(tok)
	require.NoError(t, err)
	require.Equal(t, "abc", got.Sid)
	require.Equal(t, "f1e2", got.Fh)
	require.Equal(t, 50, got.Off)
	require.Equal(t, 25, got.Ps)
	require.Equal(t, 1, got.V)
	require.NotZero(t, got.Iat)
}

func TestDecodeRejectsGarbage(t *testing.T) {
	_, err := DecodeCursor("")
	require.Error(t, err)

	_, err = DecodeCursor("!!!not-base64!!!")
	require.Error(t, err)

	// Valid base64, invalid JSON
	_, err = DecodeCursor("bm90LWpzb24")
	require.Error(t, err)
}

func TestValidateRejectsMissingFields(t *testing.T) {
	_, err := EncodeCursor(Cursor{Fh: "x", Off: 0, Ps: 10})
	require.Error(t, err)

	_, err = EncodeCursor(Cursor{Sid: "s", Off: 0, Ps: 10})
	require.Error(t, err)

	_, err = EncodeCursor(Cursor{Sid: "s", Fh: "x", Off: -1, Ps: 10})
	require.Error(t, err)

	_, err = EncodeCursor(Cursor{Sid: "s", Fh: "x", Off: 0, Ps: 0})
	require.Error(t, err)
}

func TestNextOffset(t *testing.T) {
	require.Equal(t, 25, NextOffset(0, 25))
	require.Equal(t, 30, NextOffset(30, 0))
	require.Equal(t, 10, NextOffset(-5, 10))
}
