package invoicer

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
)

func TestFormatter_Money(t *testing.T) {
	f := DefaultFormatter()
	tests := []struct {
		minor int64
		want  string
	}{
		{0, "€ 0.00"},
		{4456, "€ 44.56"},
		{123450, "€ 1,234.50"},
		{1<<53 + 1, "€ 90,071,992,547,409.93"},
		{math.MaxInt64, "€ 92,233,720,368,547,758.07"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, f.Money(tt.minor), "Money(%d)", tt.minor)
	}
}

func TestFormatter_MoneyZeroScaleCurrency(t *testing.T) {
	f := Formatter{Locale: language.English, Currency: currency.JPY}
	assert.Equal(t, "¥ 1,234", f.Money(1234))
}

func TestFormatter_FractionDigitsOverride(t *testing.T) {
	f := DefaultFormatter()
	f.FractionDigits = 3
	assert.Equal(t, "€ 44.560", f.Money(4456))
}

func TestFormatter_ZeroValueDefaultsToEuro(t *testing.T) {
	var f Formatter
	assert.Contains(t, f.Money(100), "€")
}

func TestFormatter_MoneyLocaleSeparators(t *testing.T) {
	f := Formatter{Locale: language.German, Currency: currency.EUR}
	assert.Equal(t, "€ 1.234,50", f.Money(123450))
}

func TestFormatter_Rate(t *testing.T) {
	f := DefaultFormatter()
	assert.Equal(t, "19 %", f.Rate(0.19))
	assert.Equal(t, "0 %", f.Rate(0))
	assert.Equal(t, "21 %", f.Rate(0.21))
	assert.Equal(t, "7 %", f.Rate(0.07))
	assert.Equal(t, "7.5 %", f.Rate(0.075))
	assert.Equal(t, "8 %", f.Rate(0.08))
	assert.NotEqual(t, f.Rate(0.075), f.Rate(0.08))
}

func TestFormatter_Date(t *testing.T) {
	f := DefaultFormatter()
	d := time.Date(2024, time.March, 8, 15, 4, 0, 0, time.UTC)
	assert.Equal(t, "2024-03-08", f.Date(d))
	assert.Empty(t, f.Date(time.Time{}))

	f.DateLayout = "02/01/2006"
	assert.Equal(t, "08/03/2024", f.Date(d))
}
