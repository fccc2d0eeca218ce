package assets

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sirupsen/logrus"
)

var ErrDuplicateAsset = errors.New("asset with this serial, brand and type already exists")

// Lifecycle events pushed to connected dashboards.
const (
	EventAssetCreated = "ASSET_CREATED"
	EventAssetUpdated = "ASSET_UPDATED"
	EventAssetDeleted = "ASSET_DELETED"
)

// EventPublisher fans asset lifecycle events out to websocket clients.
type EventPublisher interface {
	Publish(event string, payload any)
}

// AssignmentNotifier tells an employee an asset landed on their desk.
type AssignmentNotifier interface {
	NotifyAssignment(ctx context.Context, employeeID, assetID string)
}

type AssetService interface {
	ListAssets(ctx context.Context) (map[string]AssetView, error)
	GetAsset(ctx context.Context, assetID string) (AssetDetail, error)
	CreateAsset(ctx context.Context, input CreateAssetInput) (string, error)
	UpdateAssignment(ctx context.Context, assetID, assignedTo string, repairStatus bool) error
	DeleteAssets(ctx context.Context, assetIDs []string) (int64, error)
	AssetHistory(ctx context.Context, assetID string) ([]HistoryEntry, error)
	AllAssetHistory(ctx context.Context) (map[string][]HistoryEntry, error)
	AttachFile(ctx context.Context, assetID, kind, path string) error
}

type assetService struct {
	repo     AssetRepository
	events   EventPublisher
	notifier AssignmentNotifier
	log      *logrus.Entry
}

// NewAssetService wires the asset workflows. events and notifier may be nil
// when the deployment runs without websockets or mail.
func NewAssetService(repo AssetRepository, events EventPublisher, notifier AssignmentNotifier, log *logrus.Entry) AssetService {
	return &assetService{repo: repo, events: events, notifier: notifier, log: log}
}

func (s *assetService) ListAssets(ctx context.Context) (map[string]AssetView, error) {
	list, err := s.repo.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	specs, err := s.repo.GetSpecifications(ctx)
	if err != nil {
		return nil, err
	}

	result := make(map[string]AssetView, len(list))
	for _, a := range list {
		result[a.AssetID] = buildView(a, specs[a.AssetID])
	}

	s.log.WithField("count", len(result)).Debug("assets listed")
	return result, nil
}

func (s *assetService) GetAsset(ctx context.Context, assetID string) (AssetDetail, error) {
	a, err := s.repo.GetByID(ctx, assetID)
	if err != nil {
		return AssetDetail{}, err
	}
	specs, err := s.repo.GetSpecificationsForAsset(ctx, assetID)
	if err != nil {
		return AssetDetail{}, err
	}

	return AssetDetail{
		AssetView:            buildView(a, specs),
		PurchaseDate:         formatDate(a.DateOfPurchase),
		PurchaseCost:         a.ProductCost,
		GSTPaid:              a.GST,
		IsRental:             a.IsRental,
		LeaseCost:            a.LeaseCost,
		LeaseExpiry:          formatDate(a.LeaseExpiry),
		IsTempAsset:          a.IsTempAsset,
		AssetImagePath:       a.AssetImagePath,
		PurchaseReceiptsPath: a.PurchaseReceiptsPath,
		WarrantyCardPath:     a.WarrantyCardPath,
	}, nil
}

func (s *assetService) CreateAsset(ctx context.Context, input CreateAssetInput) (string, error) {
	assetID, err := s.repo.Create(ctx, input)
	if err != nil {
		if pgErr, ok := err.(*pgconn.PgError); ok && pgErr.Code == "23505" {
			return "", ErrDuplicateAsset
		}
		return "", err
	}

	s.log.WithFields(logrus.Fields{
		"asset_id": assetID,
		"type":     input.AssetType,
		"serial":   input.SerialNumber,
	}).Info("asset created")

	s.publish(EventAssetCreated, map[string]any{"assetId": assetID, "assetType": input.AssetType})
	if input.AssignedTo != "" {
		s.notifyAssignment(ctx, input.AssignedTo, assetID)
	}
	return assetID, nil
}

func (s *assetService) UpdateAssignment(ctx context.Context, assetID, assignedTo string, repairStatus bool) error {
	previous, err := s.repo.GetByID(ctx, assetID)
	if err != nil {
		return err
	}

	if err := s.repo.UpdateAssignment(ctx, assetID, assignedTo, repairStatus); err != nil {
		return err
	}

	s.log.WithFields(logrus.Fields{
		"asset_id":    assetID,
		"assigned_to": assignedTo,
	}).Info("asset updated")

	s.publish(EventAssetUpdated, map[string]any{"assetId": assetID, "assignedTo": assignedTo})

	oldAssignee := ""
	if previous.AssignedTo != nil {
		oldAssignee = *previous.AssignedTo
	}
	if assignedTo != "" && assignedTo != oldAssignee {
		s.notifyAssignment(ctx, assignedTo, assetID)
	}
	return nil
}

func (s *assetService) DeleteAssets(ctx context.Context, assetIDs []string) (int64, error) {
	deleted, err := s.repo.DeleteBulk(ctx, assetIDs)
	if err != nil {
		return 0, err
	}

	s.log.WithFields(logrus.Fields{
		"requested": len(assetIDs),
		"deleted":   deleted,
	}).Info("assets deleted")

	if deleted > 0 {
		s.publish(EventAssetDeleted, map[string]any{"assetIds": assetIDs, "deletedCount": deleted})
	}
	return deleted, nil
}

func (s *assetService) AssetHistory(ctx context.Context, assetID string) ([]HistoryEntry, error) {
	spans, err := s.repo.GetHistory(ctx, assetID)
	if err != nil {
		return nil, err
	}

	entries := make([]HistoryEntry, 0, len(spans))
	for _, span := range spans {
		entries = append(entries, formatSpan(span))
	}
	return entries, nil
}

func (s *assetService) AllAssetHistory(ctx context.Context) (map[string][]HistoryEntry, error) {
	spans, err := s.repo.GetAllHistory(ctx)
	if err != nil {
		return nil, err
	}

	result := make(map[string][]HistoryEntry)
	for _, span := range spans {
		result[span.AssetID] = append(result[span.AssetID], formatSpan(span))
	}
	return result, nil
}

func (s *assetService) AttachFile(ctx context.Context, assetID, kind, path string) error {
	if err := s.repo.UpdateFilePath(ctx, assetID, kind, path); err != nil {
		return err
	}

	s.log.WithFields(logrus.Fields{
		"asset_id": assetID,
		"kind":     kind,
	}).Info("asset file attached")
	return nil
}

func (s *assetService) publish(event string, payload any) {
	if s.events != nil {
		s.events.Publish(event, payload)
	}
}

func (s *assetService) notifyAssignment(ctx context.Context, employeeID, assetID string) {
	if s.notifier != nil {
		s.notifier.NotifyAssignment(ctx, employeeID, assetID)
	}
}

func buildView(a Asset, specs []SpecEntry) AssetView {
	specifications := make(map[string]string, len(specs)+2)
	for _, entry := range specs {
		specifications[entry.Name] = entry.Value
	}
	specifications["brand"] = a.Brand
	specifications["model"] = a.Model

	return AssetView{
		AssetID:        a.AssetID,
		SerialNumber:   a.SerialNo,
		AssetType:      a.AssetType,
		Specifications: specifications,
		AssignedTo:     a.AssignedTo,
		RepairStatus:   a.RepairStatus,
		WarrantyExpiry: formatDate(a.WarrantyExpiry),
	}
}

func formatSpan(s HistorySpan) HistoryEntry {
	entry := HistoryEntry{
		EmployeeID:   s.EmployeeID,
		EmployeeName: s.EmployeeName,
		AssignedOn:   formatDate(s.AssignedOn),
	}
	if s.IsActive {
		active := "Active"
		entry.ReturnedOn = &active
	} else {
		entry.ReturnedOn = formatDate(s.ReturnedOn)
	}
	return entry
}
