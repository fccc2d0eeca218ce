package repairs

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	EventRepairStarted = "REPAIR_STARTED"
	EventRepairEnded   = "REPAIR_ENDED"
)

// EventPublisher pushes repair events to connected dashboards.
type EventPublisher interface {
	Publish(event string, payload any)
}

type RepairService interface {
	StartRepair(ctx context.Context, input StartRepairInput) error
	EndRepair(ctx context.Context, assetID string) error
	OpenRepairs(ctx context.Context) ([]RepairView, error)
}

type repairService struct {
	repo   RepairRepository
	events EventPublisher
	log    *logrus.Entry
}

func NewRepairService(repo RepairRepository, events EventPublisher, log *logrus.Entry) RepairService {
	return &repairService{repo: repo, events: events, log: log}
}

func (s *repairService) StartRepair(ctx context.Context, input StartRepairInput) error {
	if err := s.repo.Start(ctx, input); err != nil {
		return err
	}

	s.log.WithFields(logrus.Fields{
		"asset_id":      input.AssetID,
		"temp_asset_id": input.TempAssetID,
	}).Info("repair started")

	s.publish(EventRepairStarted, map[string]any{
		"assetId":     input.AssetID,
		"tempAssetId": input.TempAssetID,
	})
	return nil
}

func (s *repairService) EndRepair(ctx context.Context, assetID string) error {
	if err := s.repo.End(ctx, assetID); err != nil {
		return err
	}

	s.log.WithField("asset_id", assetID).Info("repair ended")

	s.publish(EventRepairEnded, map[string]any{"assetId": assetID})
	return nil
}

func (s *repairService) OpenRepairs(ctx context.Context) ([]RepairView, error) {
	repairs, err := s.repo.ListOpen(ctx)
	if err != nil {
		return nil, err
	}

	views := make([]RepairView, 0, len(repairs))
	for _, r := range repairs {
		views = append(views, RepairView{
			AssetID:       r.AssetID,
			TempAssetID:   r.TempAssetID,
			RepairDetails: r.RepairDetails,
			RepairStart:   r.RepairStart.Format(time.RFC3339),
		})
	}
	return views, nil
}

func (s *repairService) publish(event string, payload any) {
	if s.events != nil {
		s.events.Publish(event, payload)
	}
}
