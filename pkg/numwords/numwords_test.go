package numwords

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestWords(t *testing.T) {
	cases := []struct {
		n    int64
		want string
	}{
		{0, "Zero"},
		{7, "Seven"},
		{19, "Nineteen"},
		{40, "Forty"},
		{99, "Ninety Nine"},
		{100, "One Hundred"},
		{101, "One Hundred One"},
		{999, "Nine Hundred Ninety Nine"},
		{1000, "One Thousand"},
		{17304, "Seventeen Thousand Three Hundred Four"},
		{100000, "One Lakh"},
		{250000, "Two Lakh Fifty Thousand"},
		{10000000, "One Crore"},
		{12345678, "One Crore Twenty Three Lakh Forty Five Thousand Six Hundred Seventy Eight"},
		{1000000000, "One Hundred Crore"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Words(tc.n), "n=%d", tc.n)
	}
}

func TestRupees(t *testing.T) {
	assert.Equal(t,
		"Rupees Seventeen Thousand Three Hundred Four Only",
		Rupees(decimal.RequireFromString("17304.00")))

	assert.Equal(t,
		"Rupees Seventeen Thousand Three Hundred Four and Fifty Paise Only",
		Rupees(decimal.RequireFromString("17304.50")))

	assert.Equal(t,
		"Rupees One Lakh Twenty Five Thousand and Five Paise Only",
		Rupees(decimal.RequireFromString("125000.05")))
}
