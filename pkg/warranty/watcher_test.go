package warranty

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"itam/pkg/config"
	"itam/pkg/notify"
)

type mockWarrantyRepository struct {
	mock.Mock
}

func (m *mockWarrantyRepository) ListExpiring(ctx context.Context, until time.Time) ([]ExpiringWarranty, error) {
	args := m.Called(ctx, until)
	items, _ := args.Get(0).([]ExpiringWarranty)
	return items, args.Error(1)
}

type mockDigestSender struct {
	mock.Mock
}

func (m *mockDigestSender) SendWarrantyDigest(recipient string, items []notify.WarrantyItem) error {
	args := m.Called(recipient, items)
	return args.Error(0)
}

func testLogEntry() *logrus.Entry {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return logrus.NewEntry(log)
}

func testWarrantyConfig() config.WarrantyConfig {
	return config.WarrantyConfig{
		Enabled:    true,
		Schedule:   "0 8 * * *",
		WindowDays: 30,
		Recipient:  "it-admin@corp.example",
	}
}

func TestWatcher_RunOnce_SendsDigest(t *testing.T) {
	repo := new(mockWarrantyRepository)
	sender := new(mockDigestSender)
	watcher := NewWatcher(repo, sender, testWarrantyConfig(), testLogEntry())

	end := time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC)
	repo.On("ListExpiring", mock.Anything, mock.MatchedBy(func(until time.Time) bool {
		// The window must reach roughly WindowDays ahead of now.
		return until.After(time.Now().AddDate(0, 0, 29))
	})).Return([]ExpiringWarranty{
		{AssetID: "AST_1001", AssetType: "Laptop", Brand: "Dell", Model: "Latitude 5440", AssignedTo: "John Doe", WarrantyEnd: end},
	}, nil)
	sender.On("SendWarrantyDigest", "it-admin@corp.example", mock.MatchedBy(func(items []notify.WarrantyItem) bool {
		return len(items) == 1 && items[0].AssetID == "AST_1001" && items[0].WarrantyEnd.Equal(end)
	})).Return(nil)

	watcher.RunOnce(context.Background())

	repo.AssertExpectations(t)
	sender.AssertExpectations(t)
}

func TestWatcher_RunOnce_NothingExpiring(t *testing.T) {
	repo := new(mockWarrantyRepository)
	sender := new(mockDigestSender)
	watcher := NewWatcher(repo, sender, testWarrantyConfig(), testLogEntry())

	repo.On("ListExpiring", mock.Anything, mock.Anything).Return([]ExpiringWarranty{}, nil)

	watcher.RunOnce(context.Background())

	sender.AssertNotCalled(t, "SendWarrantyDigest", mock.Anything, mock.Anything)
}

func TestWatcher_RunOnce_ScanFailure(t *testing.T) {
	repo := new(mockWarrantyRepository)
	sender := new(mockDigestSender)
	watcher := NewWatcher(repo, sender, testWarrantyConfig(), testLogEntry())

	repo.On("ListExpiring", mock.Anything, mock.Anything).Return(nil, errors.New("db down"))

	watcher.RunOnce(context.Background())

	sender.AssertNotCalled(t, "SendWarrantyDigest", mock.Anything, mock.Anything)
}

func TestWatcher_RunOnce_SendFailureIsLoggedOnly(t *testing.T) {
	repo := new(mockWarrantyRepository)
	sender := new(mockDigestSender)
	watcher := NewWatcher(repo, sender, testWarrantyConfig(), testLogEntry())

	repo.On("ListExpiring", mock.Anything, mock.Anything).Return([]ExpiringWarranty{
		{AssetID: "AST_1001", WarrantyEnd: time.Now()},
	}, nil)
	sender.On("SendWarrantyDigest", mock.Anything, mock.Anything).Return(errors.New("sendgrid down"))

	// Must not panic; the next scheduled run picks the assets up again.
	watcher.RunOnce(context.Background())

	sender.AssertExpectations(t)
}

func TestWatcher_Start_InvalidSchedule(t *testing.T) {
	cfg := testWarrantyConfig()
	cfg.Schedule = "not-a-schedule"
	watcher := NewWatcher(new(mockWarrantyRepository), new(mockDigestSender), cfg, testLogEntry())

	err := watcher.Start()
	require.Error(t, err)
	require.Contains(t, err.Error(), "invalid warranty schedule")
}

func TestWatcher_Start_Disabled(t *testing.T) {
	cfg := testWarrantyConfig()
	cfg.Enabled = false
	watcher := NewWatcher(new(mockWarrantyRepository), new(mockDigestSender), cfg, testLogEntry())

	require.NoError(t, watcher.Start())
	// Stop on a never-started watcher must not block or panic.
	watcher.Stop()
}

func TestWatcher_StartAndStop(t *testing.T) {
	watcher := NewWatcher(new(mockWarrantyRepository), new(mockDigestSender), testWarrantyConfig(), testLogEntry())

	require.NoError(t, watcher.Start())
	watcher.Stop()
}
