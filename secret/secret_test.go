package secret

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValid(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  bool
	}{
		{name: "lowercase hex", value: strings.Repeat("a1", 64), want: true},
		{name: "uppercase hex", value: strings.Repeat("A1", 64)},
		{name: "too short", value: strings.Repeat("a", 127)},
		{name: "too long", value: strings.Repeat("a", 129)},
		{name: "non hex", value: strings.Repeat("g", 128)},
		{name: "empty", value: ""},
		{name: "trailing newline", value: strings.Repeat("a", 128) + "\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Valid(tt.value))
		})
	}
}

func TestGenerate(t *testing.T) {
	t.Run("CryptoRand", func(t *testing.T) {
		first, err := Generate(nil)
		require.NoError(t, err)
		second, err := Generate(nil)
		require.NoError(t, err)

		assert.Regexp(t, `^[0-9a-f]{128}$`, first)
		assert.True(t, Valid(second))
		assert.NotEqual(t, first, second)
	})

	t.Run("Deterministic", func(t *testing.T) {
		value, err := Generate(bytes.NewReader(bytes.Repeat([]byte{0xab}, 64)))
		require.NoError(t, err)
		assert.Equal(t, strings.Repeat("ab", 64), value)
	})

	t.Run("ShortReader", func(t *testing.T) {
		_, err := Generate(bytes.NewReader([]byte{1, 2, 3}))
		assert.Error(t, err)
	})

	t.Run("FailingReader", func(t *testing.T) {
		_, err := Generate(iotest.ErrReader(errors.New("no entropy")))
		assert.Error(t, err)
	})
}
