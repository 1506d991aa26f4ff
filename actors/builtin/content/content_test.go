package content_test

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xorcare/golden"

	"github.com/jetton-project/jetton-actors/actors/builtin/content"
	"github.com/jetton-project/jetton-actors/actors/cell"
)

var fields = content.Fields{
	Name:        "Jetton",
	Description: "Test jetton",
	Symbol:      "JTN",
	Decimals:    9,
	Image:       "https://example.com/jetton.png",
}

func TestContentVectors(t *testing.T) {
	b := &bytes.Buffer{}
	for _, enc := range []content.Encoding{content.EncodingStandard, content.EncodingLegacy} {
		c, err := content.Build(fields, enc)
		require.NoError(t, err)
		h := c.Hash()
		data, err := cell.ToBOC(c, false)
		require.NoError(t, err)
		fmt.Fprintf(b, "%s %s %s\n", enc, hex.EncodeToString(h[:]), hex.EncodeToString(data))
	}
	golden.Assert(t, b.Bytes())
}

func TestBuildIsDeterministic(t *testing.T) {
	a, err := content.Build(fields, content.EncodingStandard)
	require.NoError(t, err)
	b, err := content.Build(fields, content.EncodingStandard)
	require.NoError(t, err)
	assert.True(t, a.Equals(b))

	legacy, err := content.Build(fields, content.EncodingLegacy)
	require.NoError(t, err)
	assert.False(t, a.Equals(legacy))
}

func TestParse(t *testing.T) {
	t.Run("standard round trip", func(t *testing.T) {
		c, err := content.Build(fields, content.EncodingStandard)
		require.NoError(t, err)
		parsed, enc, err := content.Parse(c)
		require.NoError(t, err)
		assert.Equal(t, content.EncodingStandard, enc)
		assert.Equal(t, fields, parsed)
	})

	t.Run("legacy decimals read as zero", func(t *testing.T) {
		c, err := content.Build(fields, content.EncodingLegacy)
		require.NoError(t, err)
		parsed, enc, err := content.Parse(c)
		require.NoError(t, err)
		assert.Equal(t, content.EncodingLegacy, enc)
		expected := fields
		expected.Decimals = 0
		assert.Equal(t, expected, parsed)
	})

	t.Run("long description spans cells", func(t *testing.T) {
		long := fields
		long.Description = strings.Repeat("ä", 400)
		c, err := content.Build(long, content.EncodingStandard)
		require.NoError(t, err)
		parsed, _, err := content.Parse(c)
		require.NoError(t, err)
		assert.Equal(t, long.Description, parsed.Description)
	})

	t.Run("off-chain tag is rejected", func(t *testing.T) {
		c, err := cell.BeginCell().StoreUint(1, 8).EndCell()
		require.NoError(t, err)
		_, _, err = content.Parse(c)
		assert.Error(t, err)
	})
}

func TestBuildRejectsInvalidText(t *testing.T) {
	bad := fields
	bad.Symbol = string([]byte{0xc3, 0x28})
	_, err := content.Build(bad, content.EncodingStandard)
	assert.ErrorIs(t, err, content.ErrInvalidField)
}

func TestParseEncoding(t *testing.T) {
	enc, err := content.ParseEncoding("legacy")
	require.NoError(t, err)
	assert.Equal(t, content.EncodingLegacy, enc)

	enc, err = content.ParseEncoding("")
	require.NoError(t, err)
	assert.Equal(t, content.EncodingStandard, enc)

	_, err = content.ParseEncoding("offchain")
	assert.Error(t, err)
}
