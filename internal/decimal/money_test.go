package decimal_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	money "github.com/jonaboe98/zugferd-api/internal/decimal"
)

func TestFormat_TwoFractionDigits(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"integer", "100", "100.00"},
		{"one digit", "19.5", "19.50"},
		{"two digits", "19.01", "19.01"},
		{"zero", "0", "0.00"},
		{"half rounds up", "2.005", "2.01"},
		{"below half rounds down", "2.004", "2.00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := money.MustFromString(tt.input)
			assert.Equal(t, tt.want, money.Format(money.Round2(d)))
		})
	}
}

func TestPercent(t *testing.T) {
	net := money.MustFromString("100.00")
	rate := money.FromInt(19)

	assert.Equal(t, "19.00", money.Format(money.Percent(net, rate)))

	// 19% of 84.03 is 15.9657, rounded half up
	assert.Equal(t, "15.97", money.Format(money.Percent(money.MustFromString("84.03"), rate)))
}

func TestMul_RoundsTo2Places(t *testing.T) {
	price := money.MustFromString("0.333")
	qty := money.FromInt(3)

	assert.Equal(t, "1.00", money.Format(money.Mul(price, qty)))
}

func TestSum(t *testing.T) {
	sum := money.Sum([]decimal.Decimal{
		money.MustFromString("1.10"),
		money.MustFromString("2.20"),
		money.MustFromString("3.30"),
	})
	assert.Equal(t, "6.60", money.Format(sum))

	assert.True(t, money.Sum(nil).IsZero())
}

func TestWithinTolerance(t *testing.T) {
	tolerance := money.MustFromString("0.01")

	assert.True(t, money.WithinTolerance(money.MustFromString("19.00"), money.MustFromString("19.01"), tolerance))
	assert.True(t, money.WithinTolerance(money.MustFromString("19.01"), money.MustFromString("19.00"), tolerance))
	assert.False(t, money.WithinTolerance(money.MustFromString("19.00"), money.MustFromString("19.02"), tolerance))
}

func TestFromString_Invalid(t *testing.T) {
	_, err := money.FromString("not a number")
	require.Error(t, err)
}
