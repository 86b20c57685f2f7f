/**
 * @description
 * This package renders parcel record PDFs for the export endpoint. Output is
 * a single-page summary: title block, ownership, location hierarchy, status
 * and the ownership history table.
 *
 * @dependencies
 * - github.com/jung-kurt/gofpdf: PDF composition.
 */
package pdfgen

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/ardhi/registry-service/internal/domain"
)

// RenderParcel produces the PDF export for one parcel record.
func RenderParcel(parcel *domain.Parcel) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Parcel "+parcel.TitleNumber, false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 12, "Land Parcel Record")
	pdf.Ln(14)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, fmt.Sprintf("Title Number: %s", parcel.TitleNumber))
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "", 11)
	rows := [][2]string{
		{"Registered Owner", parcel.OwnerName},
		{"Owner National ID", parcel.OwnerNationalID},
		{"County", parcel.County},
		{"Sub-County", parcel.SubCounty},
		{"Constituency", parcel.Constituency},
		{"Ward", parcel.Ward},
		{"Size", fmt.Sprintf("%.2f %s", parcel.SizeValue, parcel.SizeUnit)},
		{"Zoning", parcel.Zoning},
		{"Market Value (KES)", fmt.Sprintf("%d", parcel.MarketValue)},
		{"Status", string(parcel.Status)},
		{"Approval Status", string(parcel.ApprovalStatus)},
		{"Verified", yesNo(parcel.IsVerified)},
		{"Fraud Flagged", yesNo(parcel.IsFraudulent)},
		{"Registered On", parcel.CreatedAt.Format("02 Jan 2006")},
	}
	for _, row := range rows {
		pdf.SetFont("Helvetica", "B", 11)
		pdf.CellFormat(55, 7, row[0], "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 11)
		pdf.CellFormat(0, 7, row[1], "", 1, "L", false, 0, "")
	}

	if len(parcel.OwnershipHistory) > 0 {
		pdf.Ln(6)
		pdf.SetFont("Helvetica", "B", 12)
		pdf.Cell(0, 8, "Ownership History")
		pdf.Ln(9)

		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(70, 7, "Owner", "1", 0, "L", false, 0, "")
		pdf.CellFormat(45, 7, "Transfer", "1", 0, "L", false, 0, "")
		pdf.CellFormat(35, 7, "Acquired", "1", 0, "L", false, 0, "")
		pdf.CellFormat(35, 7, "Transferred", "1", 1, "L", false, 0, "")

		pdf.SetFont("Helvetica", "", 10)
		for _, entry := range parcel.OwnershipHistory {
			transferNumber := "initial registration"
			if entry.TransferNumber != nil {
				transferNumber = *entry.TransferNumber
			}
			pdf.CellFormat(70, 7, entry.OwnerName, "1", 0, "L", false, 0, "")
			pdf.CellFormat(45, 7, transferNumber, "1", 0, "L", false, 0, "")
			pdf.CellFormat(35, 7, entry.AcquiredAt.Format("02 Jan 2006"), "1", 0, "L", false, 0, "")
			pdf.CellFormat(35, 7, formatOptionalDate(entry.TransferredAt), "1", 1, "L", false, 0, "")
		}
	}

	pdf.Ln(8)
	pdf.SetFont("Helvetica", "I", 8)
	pdf.Cell(0, 5, fmt.Sprintf("Generated %s", time.Now().UTC().Format(time.RFC1123)))

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}

func formatOptionalDate(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.Format("02 Jan 2006")
}
