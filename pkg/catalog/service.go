package catalog

import (
	"context"

	"github.com/sirupsen/logrus"

	"itam/pkg/cache"
)

// Built-in asset types served when the catalog table is empty or the
// database is unreachable, so the create form always has choices.
var fallbackAssetTypes = []string{
	"Laptop", "Desktop", "Monitor", "Keyboard", "Mouse", "Printer",
	"Scanner", "Server", "Router", "Switch", "UPS", "Projector",
	"Tablet", "Mobile Phone", "Headset", "Webcam", "External Hard Drive", "Other",
}

const (
	cacheKeyAssetTypes     = "catalog:asset-types"
	cacheKeySpecifications = "catalog:specifications"
	cacheKeyBrands         = "catalog:brands"
)

type CatalogService interface {
	// ListAssetTypes returns the type names and whether the built-in
	// fallback list was used.
	ListAssetTypes(ctx context.Context) ([]string, bool)
	AllSpecifications(ctx context.Context) (map[string]TypeSpecifications, error)
	SpecificationsForType(ctx context.Context, typeName string) ([]SpecField, error)
	ListBrands(ctx context.Context) ([]Brand, error)
	AddBrand(ctx context.Context, name string, models []string) error
}

type catalogService struct {
	repo  CatalogRepository
	cache *cache.Cache
	log   *logrus.Entry
}

func NewCatalogService(repo CatalogRepository, c *cache.Cache, log *logrus.Entry) CatalogService {
	return &catalogService{repo: repo, cache: c, log: log}
}

func (s *catalogService) ListAssetTypes(ctx context.Context) ([]string, bool) {
	var cached []string
	if hit, err := s.cache.GetJSON(ctx, cacheKeyAssetTypes, &cached); err == nil && hit && len(cached) > 0 {
		return cached, false
	}

	types, err := s.repo.GetAssetTypes(ctx)
	if err != nil {
		s.log.WithError(err).Warn("asset type lookup failed, serving fallback list")
		return fallbackAssetTypes, true
	}
	if len(types) == 0 {
		return fallbackAssetTypes, true
	}

	if err := s.cache.SetJSON(ctx, cacheKeyAssetTypes, types); err != nil {
		s.log.WithError(err).Debug("asset type cache write failed")
	}
	return types, false
}

func (s *catalogService) AllSpecifications(ctx context.Context) (map[string]TypeSpecifications, error) {
	var cached map[string]TypeSpecifications
	if hit, err := s.cache.GetJSON(ctx, cacheKeySpecifications, &cached); err == nil && hit && len(cached) > 0 {
		return cached, nil
	}

	specs, err := s.repo.GetAllSpecifications(ctx)
	if err != nil {
		return nil, err
	}

	if len(specs) > 0 {
		if err := s.cache.SetJSON(ctx, cacheKeySpecifications, specs); err != nil {
			s.log.WithError(err).Debug("specification cache write failed")
		}
	}
	return specs, nil
}

func (s *catalogService) SpecificationsForType(ctx context.Context, typeName string) ([]SpecField, error) {
	return s.repo.GetSpecificationsForType(ctx, typeName)
}

func (s *catalogService) ListBrands(ctx context.Context) ([]Brand, error) {
	var cached []Brand
	if hit, err := s.cache.GetJSON(ctx, cacheKeyBrands, &cached); err == nil && hit && len(cached) > 0 {
		return cached, nil
	}

	brands, err := s.repo.GetBrands(ctx)
	if err != nil {
		return nil, err
	}

	if len(brands) > 0 {
		if err := s.cache.SetJSON(ctx, cacheKeyBrands, brands); err != nil {
			s.log.WithError(err).Debug("brand cache write failed")
		}
	}
	return brands, nil
}

func (s *catalogService) AddBrand(ctx context.Context, name string, models []string) error {
	if err := s.repo.CreateBrand(ctx, name, models); err != nil {
		return err
	}

	if err := s.cache.Delete(ctx, cacheKeyBrands); err != nil {
		s.log.WithError(err).Debug("brand cache invalidation failed")
	}

	s.log.WithFields(logrus.Fields{"brand": name, "models": len(models)}).Info("brand added")
	return nil
}
