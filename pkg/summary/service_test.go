package summary

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockSummaryRepository struct {
	mock.Mock
}

func (m *mockSummaryRepository) GetSummary(ctx context.Context) ([]SummaryRow, error) {
	args := m.Called(ctx)
	rows, _ := args.Get(0).([]SummaryRow)
	return rows, args.Error(1)
}

func (m *mockSummaryRepository) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func testLogEntry() *logrus.Entry {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return logrus.NewEntry(log)
}

func sampleRows() []SummaryRow {
	return []SummaryRow{
		{AssetType: "Laptop", Department: "Engineering", Brand: "Dell", Model: "Latitude 5440", Count: 12},
		{AssetType: "Laptop", Department: "Not Assigned", Brand: "HP", Model: "EliteBook 840 G10", Count: 3},
		{AssetType: "Monitor", Department: "Engineering", Brand: "Dell", Model: "UltraSharp U2723QE", Count: 20},
	}
}

func TestSummaryService_Summary(t *testing.T) {
	repo := new(mockSummaryRepository)
	repo.On("GetSummary", mock.Anything).Return(sampleRows(), nil)

	svc := NewSummaryService(repo, testLogEntry())

	rows, err := svc.Summary(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 3)
	require.Equal(t, "Not Assigned", rows[1].Department)
}

func TestSummaryService_Summary_RepoError(t *testing.T) {
	repo := new(mockSummaryRepository)
	repo.On("GetSummary", mock.Anything).Return(nil, errors.New("db down"))

	svc := NewSummaryService(repo, testLogEntry())

	_, err := svc.Summary(context.Background())
	require.Error(t, err)
}

func TestSummaryService_ExportXLSX(t *testing.T) {
	repo := new(mockSummaryRepository)
	repo.On("GetSummary", mock.Anything).Return(sampleRows(), nil)

	svc := NewSummaryService(repo, testLogEntry())

	f, err := svc.ExportXLSX(context.Background())
	require.NoError(t, err)
	defer f.Close()

	require.Equal(t, []string{"Summary"}, f.GetSheetList())

	header, err := f.GetCellValue("Summary", "A1")
	require.NoError(t, err)
	require.Equal(t, "Asset Type", header)

	firstType, err := f.GetCellValue("Summary", "A2")
	require.NoError(t, err)
	require.Equal(t, "Laptop", firstType)

	count, err := f.GetCellValue("Summary", "E4")
	require.NoError(t, err)
	require.Equal(t, "20", count)
}

func TestSummaryService_ExportXLSX_EmptySummary(t *testing.T) {
	repo := new(mockSummaryRepository)
	repo.On("GetSummary", mock.Anything).Return([]SummaryRow{}, nil)

	svc := NewSummaryService(repo, testLogEntry())

	f, err := svc.ExportXLSX(context.Background())
	require.NoError(t, err)
	defer f.Close()

	header, err := f.GetCellValue("Summary", "E1")
	require.NoError(t, err)
	require.Equal(t, "Count", header)
}

func TestSummaryService_DatabaseStatus(t *testing.T) {
	repo := new(mockSummaryRepository)
	repo.On("Ping", mock.Anything).Return(nil).Once()

	svc := NewSummaryService(repo, testLogEntry())
	require.Equal(t, "connected", svc.DatabaseStatus(context.Background()))

	repo.On("Ping", mock.Anything).Return(errors.New("refused")).Once()
	require.Equal(t, "disconnected", svc.DatabaseStatus(context.Background()))
}
