package money

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	m, err := New(43, "eur")
	require.NoError(t, err)
	assert.Equal(t, Euros(43), m)

	_, err = New(43, "EURO")
	assert.ErrorIs(t, err, ErrInvalidCurrency)
}

func TestArithmetic(t *testing.T) {
	sum, err := Euros(48).Add(Euros(58))
	require.NoError(t, err)
	assert.Equal(t, int64(106), sum.Amount)

	diff, err := Euros(43).Sub(Euros(48))
	require.NoError(t, err)
	assert.Equal(t, int64(-5), diff.Amount)

	_, err = Euros(1).Add(Must(1, "USD"))
	assert.ErrorIs(t, err, ErrCurrencyMismatch)

	_, err = Euros(1).Add(Money{Amount: 1})
	assert.ErrorIs(t, err, ErrInvalidCurrency)
}

func TestMinor(t *testing.T) {
	cents, err := Euros(150).Minor()
	require.NoError(t, err)
	assert.Equal(t, int64(15000), cents)

	_, err = Euros(-1).Minor()
	assert.ErrorIs(t, err, ErrNegativeAmount)
}
