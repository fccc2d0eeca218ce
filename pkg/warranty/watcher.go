package warranty

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"itam/pkg/config"
	"itam/pkg/notify"
)

// DigestSender delivers the rendered digest. The notify service satisfies it.
type DigestSender interface {
	SendWarrantyDigest(recipient string, items []notify.WarrantyItem) error
}

// Watcher periodically scans for warranties that are about to run out and
// mails the configured recipient one digest per run.
type Watcher struct {
	repo    WarrantyRepository
	sender  DigestSender
	cfg     config.WarrantyConfig
	log     *logrus.Entry
	cron    *cron.Cron
	entryID cron.EntryID
}

func NewWatcher(repo WarrantyRepository, sender DigestSender, cfg config.WarrantyConfig, log *logrus.Entry) *Watcher {
	return &Watcher{
		repo:   repo,
		sender: sender,
		cfg:    cfg,
		log:    log,
	}
}

// Start registers the cron entry and begins the schedule. A disabled watcher
// starts nothing and Stop stays a no-op.
func (w *Watcher) Start() error {
	if !w.cfg.Enabled {
		w.log.Info("Warranty watcher disabled")
		return nil
	}

	w.cron = cron.New()
	id, err := w.cron.AddFunc(w.cfg.Schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		w.RunOnce(ctx)
	})
	if err != nil {
		return fmt.Errorf("invalid warranty schedule %q: %w", w.cfg.Schedule, err)
	}
	w.entryID = id
	w.cron.Start()

	w.log.WithFields(logrus.Fields{
		"schedule":   w.cfg.Schedule,
		"windowDays": w.cfg.WindowDays,
	}).Info("Warranty watcher started")
	return nil
}

// Stop halts the schedule and waits for an in-flight run to finish.
func (w *Watcher) Stop() {
	if w.cron == nil {
		return
	}
	<-w.cron.Stop().Done()
	w.log.Info("Warranty watcher stopped")
}

// RunOnce performs one scan-and-send cycle. Failures are logged and left for
// the next scheduled run; there is no retry inside a cycle.
func (w *Watcher) RunOnce(ctx context.Context) {
	until := time.Now().AddDate(0, 0, w.cfg.WindowDays)
	expiring, err := w.repo.ListExpiring(ctx, until)
	if err != nil {
		w.log.WithError(err).Error("Warranty scan failed")
		return
	}
	if len(expiring) == 0 {
		w.log.Debug("No warranties expiring inside the window")
		return
	}

	items := make([]notify.WarrantyItem, 0, len(expiring))
	for _, e := range expiring {
		items = append(items, notify.WarrantyItem{
			AssetID:     e.AssetID,
			AssetType:   e.AssetType,
			Brand:       e.Brand,
			Model:       e.Model,
			AssignedTo:  e.AssignedTo,
			WarrantyEnd: e.WarrantyEnd,
		})
	}

	if err := w.sender.SendWarrantyDigest(w.cfg.Recipient, items); err != nil {
		w.log.WithError(err).Error("Failed to send warranty digest")
		return
	}
	w.log.WithField("count", len(items)).Info("Warranty digest sent")
}
