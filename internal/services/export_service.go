package services

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/xuri/excelize/v2"
	"github.com/zarlend/zarlend-api/internal/models"
	"github.com/zarlend/zarlend-api/internal/repository"
)

// ExportService renders admin exports: the full application book as XLSX and
// a per-application summary sheet as PDF. National ids are masked in both.
type ExportService struct {
	repos *repository.Repositories
}

func NewExportService(repos *repository.Repositories) *ExportService {
	return &ExportService{repos: repos}
}

// ExportApplicationsXLSX writes every application, newest first, into a
// single-sheet workbook.
func (s *ExportService) ExportApplicationsXLSX(ctx context.Context) ([]byte, string, error) {
	apps, err := s.repos.Application.ListAll(ctx)
	if err != nil {
		return nil, "", err
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := "Applications"
	_ = f.SetSheetName("Sheet1", sheet)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E0E0E0"}, Pattern: 1},
	})

	headers := []string{"ID", "Applicant", "Email", "National ID", "Amount (R)", "Repay Days", "Status", "Admin Notes", "Decided By", "Decision At", "Created At"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
		_ = f.SetCellStyle(sheet, cell, cell, headerStyle)
	}

	for row, app := range apps {
		resp := app.ToResponse()
		values := []any{
			app.ID,
			app.FullName,
			app.User.Email,
			resp.NationalID,
			app.AmountRequested,
			app.RepayDays,
			app.Status,
			deref(app.AdminNotes),
			deref(app.DecidedBy),
			formatTimePtr(app.DecisionAt),
			app.CreatedAt.Format("2006-01-02 15:04"),
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			_ = f.SetCellValue(sheet, cell, v)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, "", err
	}

	filename := fmt.Sprintf("applications_%s.xlsx", time.Now().Format("2006-01-02"))
	return buf.Bytes(), filename, nil
}

// ExportApplicationSummaryPDF renders one application with its document
// checklist for printing or archiving.
func (s *ExportService) ExportApplicationSummaryPDF(ctx context.Context, applicationID string) ([]byte, string, error) {
	app, err := s.repos.Application.FindByIDWithUser(ctx, applicationID)
	if err != nil {
		return nil, "", translateNotFound(err)
	}
	docs, err := s.repos.Document.FindByApplication(ctx, applicationID)
	if err != nil {
		return nil, "", err
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(40, 10, "Loan Application Summary")
	pdf.Ln(12)

	resp := app.ToResponse()
	pdf.SetFont("Arial", "", 10)
	summaryRows := [][2]string{
		{"Reference:", app.ID},
		{"Applicant:", app.FullName},
		{"Email:", app.User.Email},
		{"National ID:", resp.NationalID},
		{"Amount Requested:", fmt.Sprintf("R %d", app.AmountRequested)},
		{"Repayment Term:", fmt.Sprintf("%d days", app.RepayDays)},
		{"Status:", app.Status},
		{"Submitted:", app.CreatedAt.Format("2006-01-02 15:04")},
		{"Decision At:", formatTimePtr(app.DecisionAt)},
		{"Decided By:", deref(app.DecidedBy)},
		{"Admin Notes:", deref(app.AdminNotes)},
	}
	for _, row := range summaryRows {
		pdf.Cell(60, 8, row[0])
		pdf.Cell(100, 8, row[1])
		pdf.Ln(6)
	}
	pdf.Ln(6)

	pdf.SetFont("Arial", "B", 12)
	pdf.Cell(40, 10, "Documents")
	pdf.Ln(8)

	byType := make(map[string]*models.Document, len(docs))
	for i := range docs {
		byType[docs[i].Type] = &docs[i]
	}
	pdf.SetFont("Arial", "", 10)
	for _, required := range models.RequiredDocumentTypes {
		pdf.Cell(60, 8, required)
		if doc, ok := byType[required]; ok {
			pdf.Cell(40, 8, doc.ReviewStatus)
			pdf.Cell(60, 8, doc.CreatedAt.Format("2006-01-02 15:04"))
		} else {
			pdf.Cell(40, 8, "NOT UPLOADED")
		}
		pdf.Ln(6)
	}

	buf := new(bytes.Buffer)
	if err := pdf.Output(buf); err != nil {
		return nil, "", err
	}

	filename := fmt.Sprintf("application_%s_%s.pdf", app.ID, time.Now().Format("2006-01-02"))
	return buf.Bytes(), filename, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func formatTimePtr(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("2006-01-02 15:04")
}
