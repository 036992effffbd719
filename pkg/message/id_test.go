package message

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeID_RoundTrip(t *testing.T) {
	cases := []struct{ chat, msg string }{
		{"-1001234567890", "42"},
		{"123", "1"},
		{"@channel", "7"},
		{"", ""},
		{"chat", ""},
	}
	for _, c := range cases {
		id := EncodeID(c.chat, c.msg)
		chat, msg, err := DecodeID(id)
		require.NoError(t, err, "DecodeID(%q)", id)
		assert.Equal(t, c.chat, chat)
		assert.Equal(t, c.msg, msg)
	}
}

func TestEncodeID_Format(t *testing.T) {
	assert.Equal(t, "-100_5", EncodeID("-100", "5"))
	assert.Equal(t, "-100_5", EncodeNumericID(-100, 5))
}

func TestDecodeID_TooFewParts(t *testing.T) {
	_, _, err := DecodeID("12345")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrFormat))
}

func TestDecodeID_TooManyParts(t *testing.T) {
	_, _, err := DecodeID("1_2_3")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrFormat)
}

func TestDecodeNumericID(t *testing.T) {
	chat, id, err := DecodeNumericID("-100200_31")
	require.NoError(t, err)
	assert.Equal(t, "-100200", chat)
	assert.Equal(t, 31, id)

	_, _, err = DecodeNumericID("-100200_abc")
	assert.ErrorIs(t, err, ErrFormat)

	_, _, err = DecodeNumericID("nope")
	assert.ErrorIs(t, err, ErrFormat)
}
