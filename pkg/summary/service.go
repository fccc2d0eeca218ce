package summary

import (
	"context"

	"github.com/sirupsen/logrus"
	"github.com/xuri/excelize/v2"
)

const exportSheet = "Summary"

var exportHeaders = []string{"Asset Type", "Department", "Brand", "Model", "Count"}

type SummaryService interface {
	Summary(ctx context.Context) ([]SummaryRow, error)
	ExportXLSX(ctx context.Context) (*excelize.File, error)
	DatabaseStatus(ctx context.Context) string
}

type summaryService struct {
	repo SummaryRepository
	log  *logrus.Entry
}

func NewSummaryService(repo SummaryRepository, log *logrus.Entry) SummaryService {
	return &summaryService{repo: repo, log: log}
}

func (s *summaryService) Summary(ctx context.Context) ([]SummaryRow, error) {
	rows, err := s.repo.GetSummary(ctx)
	if err != nil {
		return nil, err
	}

	s.log.WithField("rows", len(rows)).Debug("summary fetched")
	return rows, nil
}

// ExportXLSX renders the summary rows as a single-sheet workbook with a
// header row.
func (s *summaryService) ExportXLSX(ctx context.Context) (*excelize.File, error) {
	rows, err := s.repo.GetSummary(ctx)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	index, err := f.NewSheet(exportSheet)
	if err != nil {
		return nil, err
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, err
	}

	for col, header := range exportHeaders {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellValue(exportSheet, cell, header); err != nil {
			return nil, err
		}
	}

	for i, row := range rows {
		values := []any{row.AssetType, row.Department, row.Brand, row.Model, row.Count}
		for col, value := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, i+2)
			if err != nil {
				return nil, err
			}
			if err := f.SetCellValue(exportSheet, cell, value); err != nil {
				return nil, err
			}
		}
	}

	s.log.WithField("rows", len(rows)).Info("summary exported")
	return f, nil
}

func (s *summaryService) DatabaseStatus(ctx context.Context) string {
	if err := s.repo.Ping(ctx); err != nil {
		s.log.WithError(err).Warn("database ping failed")
		return "disconnected"
	}
	return "connected"
}
