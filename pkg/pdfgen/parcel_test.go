package pdfgen

import (
	"bytes"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/ardhi/registry-service/internal/domain"
)

func TestRenderParcel(t *testing.T) {
	transferNumber := "TRF00000042"
	transferredAt := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	parcel := &domain.Parcel{
		ID:              uuid.New(),
		TitleNumber:     "NRB/BLOCK1/100",
		OwnerID:         uuid.New(),
		OwnerName:       "Jane Wanjiku",
		OwnerNationalID: "12345678",
		County:          "Nairobi",
		SubCounty:       "Westlands",
		Constituency:    "Westlands",
		Ward:            "Parklands",
		SizeValue:       0.25,
		SizeUnit:        "hectares",
		Zoning:          "residential",
		MarketValue:     5_000_000,
		Status:          domain.ParcelActive,
		ApprovalStatus:  domain.ApprovalApproved,
		IsVerified:      true,
		CreatedAt:       time.Date(2023, 1, 10, 0, 0, 0, 0, time.UTC),
		OwnershipHistory: []domain.OwnershipEntry{
			{
				OwnerName:     "John Kamau",
				AcquiredAt:    time.Date(2020, 3, 5, 0, 0, 0, 0, time.UTC),
				TransferredAt: &transferredAt,
			},
			{
				OwnerName:      "Jane Wanjiku",
				TransferNumber: &transferNumber,
				AcquiredAt:     transferredAt,
			},
		},
	}

	data, err := RenderParcel(parcel)
	if err != nil {
		t.Fatalf("RenderParcel returned error: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF")) {
		t.Fatalf("expected PDF output, got prefix %q", data[:min(len(data), 8)])
	}
	if len(data) < 1000 {
		t.Fatalf("PDF output suspiciously small: %d bytes", len(data))
	}
}
