package reports

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"

	"prepwise/interview/internal/models"
)

// RenderSessionPDF produces a downloadable report for a completed
// session: metadata, per-question evaluations and the aggregate
// summary. Only invoked on explicit user request.
func RenderSessionPDF(session *models.InterviewSession) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Interview Report", false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.CellFormat(0, 10, "Interview Report", "", 1, "L", false, 0, "")
	pdf.Ln(2)

	pdf.SetFont("Helvetica", "", 11)
	pdf.CellFormat(0, 6, fmt.Sprintf("Category: %s", session.Category), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, fmt.Sprintf("Difficulty: %s", session.Difficulty), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, fmt.Sprintf("Date: %s", session.CreatedAt.Format("2 Jan 2006 15:04")), "", 1, "L", false, 0, "")
	if session.Duration != "" {
		pdf.CellFormat(0, 6, fmt.Sprintf("Duration: %s", session.Duration), "", 1, "L", false, 0, "")
	}
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(0, 8, fmt.Sprintf("Overall score: %d / 100", session.OverallScore), "", 1, "L", false, 0, "")
	pdf.Ln(2)

	writeList(pdf, "Strengths", session.Strengths)
	writeList(pdf, "Areas to improve", session.Improvements)

	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(0, 8, "Questions", "", 1, "L", false, 0, "")

	for i, question := range session.Questions {
		pdf.SetFont("Helvetica", "B", 11)
		pdf.MultiCell(0, 6, fmt.Sprintf("%d. %s", i+1, question.Text), "", "L", false)

		answer, answered := session.Answers[question.ID]
		if !answered {
			pdf.SetFont("Helvetica", "I", 10)
			pdf.CellFormat(0, 6, "Not answered.", "", 1, "L", false, 0, "")
			pdf.Ln(2)
			continue
		}

		pdf.SetFont("Helvetica", "", 10)
		pdf.MultiCell(0, 5, "Answer: "+answer.Answer, "", "L", false)
		pdf.CellFormat(0, 6, fmt.Sprintf("Score: %d / 100", answer.Score), "", 1, "L", false, 0, "")
		pdf.MultiCell(0, 5, "Feedback: "+answer.Feedback, "", "L", false)

		for _, kp := range answer.KeyPoints {
			mark := "[ ]"
			if kp.Met {
				mark = "[x]"
			}
			pdf.MultiCell(0, 5, "  "+mark+" "+kp.Text, "", "L", false)
		}
		pdf.Ln(2)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render report: %w", err)
	}
	return buf.Bytes(), nil
}

func writeList(pdf *gofpdf.Fpdf, title string, items []string) {
	if len(items) == 0 {
		return
	}
	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(0, 7, title, "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	for _, item := range items {
		pdf.MultiCell(0, 5, "- "+item, "", "L", false)
	}
	pdf.Ln(2)
}
