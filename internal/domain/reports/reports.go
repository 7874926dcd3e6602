// Package reports renders the team PTO calendar for managers and admins:
// submitted and approved requests in the caller's scope, as JSON rows, CSV,
// or a printable PDF.
package reports

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strconv"
	"time"

	"github.com/jung-kurt/gofpdf"

	"ptohub/internal/domain/directory"
	"ptohub/internal/domain/pto"
)

type CalendarRow struct {
	RequestID string    `json:"requestId"`
	UserID    string    `json:"userId"`
	UserName  string    `json:"userName"`
	Type      string    `json:"type"`
	StartDate time.Time `json:"startDate"`
	EndDate   time.Time `json:"endDate"`
	TotalDays float64   `json:"totalDays"`
	Status    string    `json:"status"`
}

type Service struct {
	workflow *pto.Service
	dir      *directory.Service
}

func NewService(workflow *pto.Service, dir *directory.Service) *Service {
	return &Service{workflow: workflow, dir: dir}
}

// Calendar returns the submitted and approved requests visible to the actor,
// ordered by start date.
func (s *Service) Calendar(ctx context.Context, actor pto.Actor) ([]CalendarRow, error) {
	var rows []CalendarRow
	for _, status := range []string{pto.StatusSubmitted, pto.StatusApproved} {
		requests, err := s.workflow.List(ctx, actor, pto.Filter{Status: status})
		if err != nil {
			return nil, err
		}
		for _, req := range requests {
			name := req.UserID
			if user, err := s.dir.FindByID(ctx, req.UserID); err == nil {
				name = user.Name
			}
			rows = append(rows, CalendarRow{
				RequestID: req.ID,
				UserID:    req.UserID,
				UserName:  name,
				Type:      req.Type,
				StartDate: req.StartDate,
				EndDate:   req.EndDate,
				TotalDays: req.TotalDays,
				Status:    req.Status,
			})
		}
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].StartDate.Equal(rows[j].StartDate) {
			return rows[i].RequestID < rows[j].RequestID
		}
		return rows[i].StartDate.Before(rows[j].StartDate)
	})
	return rows, nil
}

func (s *Service) WriteCalendarCSV(w io.Writer, rows []CalendarRow) error {
	writer := csv.NewWriter(w)
	if err := writer.Write([]string{"requestId", "user", "type", "startDate", "endDate", "days", "status"}); err != nil {
		return err
	}
	for _, row := range rows {
		record := []string{
			row.RequestID,
			row.UserName,
			row.Type,
			row.StartDate.Format("2006-01-02"),
			row.EndDate.Format("2006-01-02"),
			strconv.FormatFloat(row.TotalDays, 'f', -1, 64),
			row.Status,
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

func (s *Service) WriteCalendarPDF(w io.Writer, rows []CalendarRow) error {
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(40, 10, "PTO Calendar")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "B", 10)
	widths := []float64{60, 30, 30, 30, 20, 40}
	headers := []string{"Employee", "Type", "Start", "End", "Days", "Status"}
	for i, title := range headers {
		pdf.CellFormat(widths[i], 8, title, "1", 0, "L", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 10)
	for _, row := range rows {
		cells := []string{
			row.UserName,
			row.Type,
			row.StartDate.Format("2006-01-02"),
			row.EndDate.Format("2006-01-02"),
			fmt.Sprintf("%.1f", row.TotalDays),
			row.Status,
		}
		for i, value := range cells {
			pdf.CellFormat(widths[i], 8, value, "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}
	return pdf.Output(w)
}
