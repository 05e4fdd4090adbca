package services

import (
	"fmt"
	"sort"
	"time"

	"github.com/SAP-F-2025/diagnosis-service/internal/models"
	"github.com/xuri/excelize/v2"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Sheet names of an exported report.
const (
	SheetSummary      = "Summary"
	SheetDomains      = "Domains"
	SheetImprovements = "Improvements"
	SheetStrengths    = "Strengths"
)

// ReportExporter renders a diagnosis as an xlsx workbook.
type ReportExporter struct{}

func NewReportExporter() *ReportExporter {
	return &ReportExporter{}
}

// Export builds the workbook for result.
func (e *ReportExporter) Export(result *models.Result) ([]byte, error) {
	if result == nil {
		return nil, fmt.Errorf("%w: no result", ErrExportFailed)
	}

	f := excelize.NewFile()
	defer f.Close()

	// The default sheet becomes the summary
	if err := f.SetSheetName("Sheet1", SheetSummary); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExportFailed, err)
	}

	summary := [][]interface{}{
		{"Field", "Value"},
		{"Diagnosis ID", result.ID},
		{"Date", result.Timestamp.UTC().Format(time.RFC3339)},
		{"Maturity level", string(result.PredictedLevel)},
		{"Level description", result.PredictedLevel.Description()},
		{"Success probability", result.SuccessProbability},
	}
	if err := writeRows(f, SheetSummary, summary); err != nil {
		return nil, err
	}

	domains := [][]interface{}{{"Domain", "Average score"}}
	labels := make([]string, 0, len(result.DomainBreakdown))
	for label := range result.DomainBreakdown {
		labels = append(labels, label)
	}
	sort.Strings(labels)
	for _, label := range labels {
		domains = append(domains, []interface{}{label, result.DomainBreakdown[label]})
	}
	if err := writeSheet(f, SheetDomains, domains); err != nil {
		return nil, err
	}

	if err := writeSheet(f, SheetImprovements, factorRows(result.TopImprovementFactors)); err != nil {
		return nil, err
	}
	if err := writeSheet(f, SheetStrengths, factorRows(result.TopStrengthFactors)); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("%w: write workbook: %v", ErrExportFailed, err)
	}
	return buf.Bytes(), nil
}

func factorRows(factors []models.ImpactFactor) [][]interface{} {
	rows := [][]interface{}{{"Rank", "Factor", "Impact weight", "Explanation", "Recommended action"}}
	for i, factor := range factors {
		rows = append(rows, []interface{}{
			i + 1, factor.Label, factor.Weight, factor.Explanation, factor.RecommendedAction,
		})
	}
	return rows
}

func writeSheet(f *excelize.File, sheet string, rows [][]interface{}) error {
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("%w: create sheet %s: %v", ErrExportFailed, sheet, err)
	}
	return writeRows(f, sheet, rows)
}

func writeRows(f *excelize.File, sheet string, rows [][]interface{}) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrExportFailed, err)
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("%w: write %s row %d: %v", ErrExportFailed, sheet, i+1, err)
		}
	}
	return nil
}
