package currency_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/Facturo-api/pkg/currency"
)

func TestFormat_CeroEnCedis(t *testing.T) {
	assert.Equal(t, "₵0.00", currency.Format(decimal.Zero, "GHS"))
}

func TestFormat_MonedaDesconocidaUsaCodigo(t *testing.T) {
	assert.Equal(t, "XYZ 12.50", currency.FormatFloat(12.5, "XYZ"))
}

func TestFormat_CasosVarios(t *testing.T) {
	cases := []struct {
		name   string
		amount string
		code   string
		want   string
	}{
		{"miles", "1234567.891", "USD", "$1,234,567.89"},
		{"redondeo hacia arriba", "0.125", "EUR", "€0.13"},
		{"negativo", "-45.5", "GBP", "-£45.50"},
		{"minusculas", "10", "ngn", "₦10.00"},
		{"vacio usa USD", "3", "", "$3.00"},
		{"simbolo de varias letras", "99.999", "KES", "KSh100.00"},
		{"desconocida negativa", "-1000", "abc", "-ABC 1,000.00"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, currency.Format(decimal.RequireFromString(tc.amount), tc.code))
		})
	}
}

func TestSymbol(t *testing.T) {
	s, ok := currency.Symbol("ghs")
	assert.True(t, ok)
	assert.Equal(t, "₵", s)

	_, ok = currency.Symbol("XYZ")
	assert.False(t, ok)
}

func TestIsISOCode(t *testing.T) {
	for _, code := range []string{"GHS", "USD", "XYZ"} {
		assert.True(t, currency.IsISOCode(code), code)
	}
	// "€" ocupa tres bytes en UTF-8.
	for _, code := range []string{"€", "US", "USDT", "U$D", "ghs", "12A", ""} {
		assert.False(t, currency.IsISOCode(code), code)
	}
	assert.True(t, currency.IsISOCode(currency.Normalize(" ghs ")))
}
