package services

import (
	"bytes"
	"fmt"

	"github.com/harentsoaR/hospital-api/internal/models"
	"github.com/jung-kurt/gofpdf"
)

// InvoiceRenderer draws a one-page A4 invoice for a bill.
type InvoiceRenderer struct {
	Title string
}

func NewInvoiceRenderer(title string) *InvoiceRenderer {
	return &InvoiceRenderer{Title: title}
}

// Render returns the PDF bytes. patientName may be empty when the bill's
// patient reference does not resolve.
func (r *InvoiceRenderer) Render(bill *models.Bill, patientName string) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(18, 18, 18)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 20)
	pdf.CellFormat(0, 12, r.Title, "", 1, "C", false, 0, "")
	pdf.Ln(6)

	patient := models.IDString(bill.PatientID)
	if patientName != "" {
		patient = fmt.Sprintf("%s (%s)", patientName, patient)
	}
	status := "Unpaid"
	if bill.Paid {
		status = "Paid"
	}
	method := bill.PaymentMethod
	if method == "" {
		method = "-"
	}

	addDetail(pdf, "Invoice ID", bill.ID.Hex())
	addDetail(pdf, "Patient", patient)
	addDetail(pdf, "Payment Method", method)
	addDetail(pdf, "Status", status)
	pdf.Ln(4)

	pdf.SetFont("Arial", "BU", 12)
	pdf.CellFormat(0, 8, "Services:", "", 1, "L", false, 0, "")
	pdf.SetFont("Arial", "", 12)
	services := bill.Services
	if services == "" {
		services = "-"
	}
	pdf.MultiCell(0, 6, services, "", "L", false)
	pdf.Ln(4)

	pdf.SetFont("Arial", "B", 14)
	pdf.CellFormat(0, 10, fmt.Sprintf("Total: $%.2f", bill.Total), "", 1, "R", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func addDetail(pdf *gofpdf.Fpdf, label, value string) {
	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(45, 8, label, "1", 0, "", false, 0, "")
	pdf.SetFont("Arial", "", 12)
	pdf.CellFormat(0, 8, value, "1", 1, "", false, 0, "")
}
