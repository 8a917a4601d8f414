// Package numwords renders monetary amounts as English words using the
// Indian numbering system (thousand, lakh, crore) for invoice printing.
package numwords

import (
	"strings"

	"github.com/shopspring/decimal"
)

var ones = []string{
	"", "One", "Two", "Three", "Four", "Five", "Six", "Seven", "Eight", "Nine",
	"Ten", "Eleven", "Twelve", "Thirteen", "Fourteen", "Fifteen", "Sixteen",
	"Seventeen", "Eighteen", "Nineteen",
}

var tens = []string{
	"", "", "Twenty", "Thirty", "Forty", "Fifty", "Sixty", "Seventy", "Eighty", "Ninety",
}

// twoDigits renders 0-99
func twoDigits(n int64) string {
	if n < 20 {
		return ones[n]
	}
	if n%10 == 0 {
		return tens[n/10]
	}
	return tens[n/10] + " " + ones[n%10]
}

// threeDigits renders 0-999
func threeDigits(n int64) string {
	if n < 100 {
		return twoDigits(n)
	}
	out := ones[n/100] + " Hundred"
	if n%100 != 0 {
		out += " " + twoDigits(n%100)
	}
	return out
}

// Words renders a non-negative integer in Indian grouping:
// crore (10^7), lakh (10^5), thousand (10^3), then hundreds.
func Words(n int64) string {
	if n == 0 {
		return "Zero"
	}

	var parts []string
	if crore := n / 10000000; crore > 0 {
		// crores above 99 recurse so "One Hundred Crore" reads correctly
		if crore > 99 {
			parts = append(parts, Words(crore)+" Crore")
		} else {
			parts = append(parts, twoDigits(crore)+" Crore")
		}
		n %= 10000000
	}
	if lakh := n / 100000; lakh > 0 {
		parts = append(parts, twoDigits(lakh)+" Lakh")
		n %= 100000
	}
	if thousand := n / 1000; thousand > 0 {
		parts = append(parts, twoDigits(thousand)+" Thousand")
		n %= 1000
	}
	if n > 0 {
		parts = append(parts, threeDigits(n))
	}
	return strings.Join(parts, " ")
}

// Rupees renders an amount as the "amount in words" line on a GST invoice,
// e.g. "Rupees Seventeen Thousand Three Hundred Four and Fifty Paise Only".
func Rupees(amount decimal.Decimal) string {
	amount = amount.Round(2)
	rupees := amount.IntPart()
	paise := amount.Sub(decimal.NewFromInt(rupees)).Mul(decimal.NewFromInt(100)).IntPart()

	out := "Rupees " + Words(rupees)
	if paise > 0 {
		out += " and " + twoDigits(paise) + " Paise"
	}
	return out + " Only"
}
