package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParsePrice_Number(t *testing.T) {
	price, ok := ParsePrice(float64(349))

	assert.True(t, ok)
	assert.Equal(t, 349.0, price)
}

func TestParsePrice_LocalizedString(t *testing.T) {
	price, ok := ParsePrice("1 234,56 €")

	assert.True(t, ok)
	assert.Equal(t, 1234.56, price)
}

func TestParsePrice_SymbolPrefix(t *testing.T) {
	price, ok := ParsePrice("€99.99")

	assert.True(t, ok)
	assert.Equal(t, 99.99, price)
}

func TestParsePrice_Malformed(t *testing.T) {
	_, ok := ParsePrice("n/a")

	assert.False(t, ok)
}

func TestParsePrice_Nil(t *testing.T) {
	_, ok := ParsePrice(nil)

	assert.False(t, ok)
}

func TestParsePrice_EmptyString(t *testing.T) {
	_, ok := ParsePrice("")

	assert.False(t, ok)
}

func TestParsePrice_NegativeNumber(t *testing.T) {
	_, ok := ParsePrice(float64(-5))

	assert.False(t, ok)
}

func TestParsePrice_RangeTakesFirstElement(t *testing.T) {
	price, ok := ParsePrice([]any{"299,99€", "349,00 €"})

	assert.True(t, ok)
	assert.Equal(t, 299.99, price)
}

func TestParsePrice_EmptyRange(t *testing.T) {
	_, ok := ParsePrice([]any{})

	assert.False(t, ok)
}

func TestParsePrice_CommaDecimal(t *testing.T) {
	price, ok := ParsePrice("355,00 €")

	assert.True(t, ok)
	assert.Equal(t, 355.0, price)
}
