package invoice

import (
	"bytes"
	"strconv"
	"strings"
	"time"

	"jewelry-backend/internal/model"
	"jewelry-backend/pkg/numwords"

	"github.com/jung-kurt/gofpdf"
)

// Business identifies the seller on the invoice header.
type Business struct {
	Name    string
	Address string
	GSTIN   string
	Phone   string
}

// Generator renders committed orders into paginated PDF tax invoices.
type Generator struct {
	business   Business
	interstate bool
}

func NewGenerator(business Business, interstate bool) *Generator {
	return &Generator{business: business, interstate: interstate}
}

// Breakdown exposes the tax summary for an order using the configured
// interstate flag.
func (g *Generator) Breakdown(order *model.Order) Breakdown {
	return BuildBreakdown(order, g.interstate)
}

// InvoiceNumber derives the document number from the order number, keeping
// the date+sequence encoding.
func InvoiceNumber(orderNumber string) string {
	if strings.HasPrefix(orderNumber, "ORD-") {
		return "INV-" + strings.TrimPrefix(orderNumber, "ORD-")
	}
	return "INV-" + orderNumber
}

// Render produces the PDF document for a committed order. The order must be
// loaded with items, customer and staff; order state is never mutated.
func (g *Generator) Render(order *model.Order) ([]byte, error) {
	b := g.Breakdown(order)

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetAutoPageBreak(true, 20)
	pdf.AddPage()

	// Header
	pdf.SetFont("Helvetica", "B", 18)
	pdf.CellFormat(0, 10, g.business.Name, "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(0, 5, g.business.Address, "", 1, "C", false, 0, "")
	pdf.CellFormat(0, 5, "GSTIN: "+g.business.GSTIN+"  |  Phone: "+g.business.Phone, "", 1, "C", false, 0, "")
	pdf.Ln(2)
	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(0, 8, "TAX INVOICE", "T", 1, "C", false, 0, "")
	pdf.Ln(2)

	// Invoice meta + parties
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(95, 6, "Invoice No: "+InvoiceNumber(order.OrderNumber), "", 0, "L", false, 0, "")
	pdf.CellFormat(95, 6, "Date: "+time.Now().UTC().Format("02 Jan 2006"), "", 1, "R", false, 0, "")
	pdf.CellFormat(95, 6, "Order No: "+order.OrderNumber, "", 0, "L", false, 0, "")
	pdf.CellFormat(95, 6, "Order Date: "+order.CreatedAt.UTC().Format("02 Jan 2006"), "", 1, "R", false, 0, "")
	pdf.Ln(3)

	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(95, 6, "Billed To", "B", 0, "L", false, 0, "")
	pdf.CellFormat(95, 6, "Served By", "B", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	customerName, customerDetail := "-", ""
	if order.Customer != nil {
		customerName = order.Customer.Name
		customerDetail = order.Customer.Phone
		if order.Customer.Address != "" {
			customerDetail += "  " + order.Customer.Address
		}
	}
	staffName := "-"
	if order.Staff != nil {
		staffName = order.Staff.Username
	}
	pdf.CellFormat(95, 6, customerName, "", 0, "L", false, 0, "")
	pdf.CellFormat(95, 6, staffName, "", 1, "L", false, 0, "")
	pdf.CellFormat(95, 6, customerDetail, "", 1, "L", false, 0, "")
	pdf.Ln(3)

	// Itemized table
	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetFillColor(235, 235, 235)
	pdf.CellFormat(10, 7, "#", "1", 0, "C", true, 0, "")
	pdf.CellFormat(80, 7, "Description", "1", 0, "L", true, 0, "")
	pdf.CellFormat(20, 7, "Qty", "1", 0, "C", true, 0, "")
	pdf.CellFormat(40, 7, "Unit Price", "1", 0, "R", true, 0, "")
	pdf.CellFormat(40, 7, "Amount", "1", 1, "R", true, 0, "")

	pdf.SetFont("Helvetica", "", 9)
	for i, item := range order.Items {
		description := item.JewelryItemID.String()
		if item.JewelryItem != nil {
			description = item.JewelryItem.Name
			if item.JewelryItem.Purity != "" {
				description += " (" + item.JewelryItem.Purity + ")"
			}
		}
		if item.Customization != "" {
			description += " - " + item.Customization
		}
		pdf.CellFormat(10, 7, strconv.Itoa(i+1), "1", 0, "C", false, 0, "")
		pdf.CellFormat(80, 7, description, "1", 0, "L", false, 0, "")
		pdf.CellFormat(20, 7, strconv.Itoa(item.Quantity), "1", 0, "C", false, 0, "")
		pdf.CellFormat(40, 7, item.UnitPrice.StringFixed(2), "1", 0, "R", false, 0, "")
		pdf.CellFormat(40, 7, item.LineTotal.StringFixed(2), "1", 1, "R", false, 0, "")
	}
	pdf.Ln(3)

	// Totals block
	writeTotal := func(label, value string, bold bool) {
		style := ""
		if bold {
			style = "B"
		}
		pdf.SetFont("Helvetica", style, 10)
		pdf.CellFormat(110, 6, "", "", 0, "L", false, 0, "")
		pdf.CellFormat(40, 6, label, "", 0, "L", false, 0, "")
		pdf.CellFormat(40, 6, value, "", 1, "R", false, 0, "")
	}
	writeTotal("Subtotal", b.Subtotal.StringFixed(2), false)
	writeTotal("Making Charges", b.MakingCharges.StringFixed(2), false)
	writeTotal("Wastage", b.WastageAmount.StringFixed(2), false)
	if b.Interstate {
		writeTotal("IGST (3%)", b.IGST.StringFixed(2), false)
	} else {
		writeTotal("CGST (1.5%)", b.CGST.StringFixed(2), false)
		writeTotal("SGST (1.5%)", b.SGST.StringFixed(2), false)
	}
	writeTotal("Grand Total", b.GrandTotal.StringFixed(2), true)
	pdf.Ln(2)

	pdf.SetFont("Helvetica", "I", 9)
	pdf.MultiCell(0, 5, "Amount in words: "+numwords.Rupees(b.GrandTotal), "", "L", false)
	pdf.Ln(4)

	// Terms
	pdf.SetFont("Helvetica", "B", 9)
	pdf.CellFormat(0, 5, "Terms & Conditions", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 8)
	pdf.MultiCell(0, 4,
		"1. Goods once sold are returnable only within 30 days of purchase in original condition.\n"+
			"2. Making charges and wastage are non-refundable on exchanges.\n"+
			"3. Subject to local jurisdiction.", "", "L", false)
	pdf.Ln(10)

	// Signature block
	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(95, 6, "Customer Signature", "T", 0, "C", false, 0, "")
	pdf.CellFormat(95, 6, "For "+g.business.Name, "T", 1, "C", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

