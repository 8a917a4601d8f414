package invoice

import (
	"jewelry-backend/internal/model"

	"github.com/shopspring/decimal"
)

// Statutory GST rate on jewelry is 3%: split 1.5% CGST + 1.5% SGST for
// intrastate business, a single 3% IGST line for interstate.
var two = decimal.NewFromInt(2)

// Breakdown is the structured tax summary printed on the invoice. It is
// derived from the committed order amounts and never written back.
type Breakdown struct {
	Subtotal      decimal.Decimal `json:"subtotal"`
	MakingCharges decimal.Decimal `json:"making_charges"`
	WastageAmount decimal.Decimal `json:"wastage_amount"`
	CGST          decimal.Decimal `json:"cgst"`
	SGST          decimal.Decimal `json:"sgst"`
	IGST          decimal.Decimal `json:"igst"`
	Interstate    bool            `json:"interstate"`
	GrandTotal    decimal.Decimal `json:"grand_total"`
}

// BuildBreakdown splits the order's stored GST amount into its statutory
// components. The grand total is the order total unchanged.
func BuildBreakdown(order *model.Order, interstate bool) Breakdown {
	b := Breakdown{
		Subtotal:      order.Subtotal,
		MakingCharges: order.MakingCharges,
		WastageAmount: order.WastageAmount,
		Interstate:    interstate,
		GrandTotal:    order.TotalAmount,
	}
	if interstate {
		b.IGST = order.GSTAmount
		return b
	}
	half := order.GSTAmount.Div(two).Round(2)
	b.CGST = half
	// SGST takes the remainder so the halves always sum to the stored GST
	b.SGST = order.GSTAmount.Sub(half)
	return b
}
