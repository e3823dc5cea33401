package catalog

import (
	"context"
	"database/sql"
	"errors"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/clinicore/clinic-api/internal/model"
	"github.com/clinicore/clinic-api/internal/repository"
	apperrors "github.com/clinicore/clinic-api/pkg/errors"
)

const (
	cacheKeyTests           = "tests"
	cacheKeyMedications     = "medications"
	cacheKeySpecializations = "specializations"
)

// Service serves the read-mostly test, medication and specialization
// catalogs. Listings are cached; admin writes invalidate the cache.
type Service struct {
	repo  repository.CatalogRepository
	cache *gocache.Cache
}

func NewService(repo repository.CatalogRepository, ttl time.Duration) *Service {
	return &Service{
		repo:  repo,
		cache: gocache.New(ttl, 2*ttl),
	}
}

func (s *Service) ListTests(ctx context.Context) ([]*model.Test, error) {
	if cached, ok := s.cache.Get(cacheKeyTests); ok {
		return cached.([]*model.Test), nil
	}

	tests, err := s.repo.ListTests(ctx)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	s.cache.Set(cacheKeyTests, tests, gocache.DefaultExpiration)
	return tests, nil
}

func (s *Service) GetTest(ctx context.Context, id int64) (*model.Test, error) {
	test, err := s.repo.GetTest(ctx, id)
	if err != nil {
		return nil, notFoundOr("test", err)
	}
	return test, nil
}

func (s *Service) GetTestsByIDs(ctx context.Context, ids []int64) ([]*model.Test, error) {
	tests, err := s.repo.GetTestsByIDs(ctx, ids)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return tests, nil
}

func (s *Service) CreateTest(ctx context.Context, req *model.CreateTestRequest) (*model.Test, error) {
	test := &model.Test{Name: req.Name, Price: req.Price}
	if err := s.repo.CreateTest(ctx, test); err != nil {
		return nil, apperrors.Internal(err)
	}
	s.cache.Delete(cacheKeyTests)
	return test, nil
}

func (s *Service) UpdateTest(ctx context.Context, test *model.Test) error {
	if err := s.repo.UpdateTest(ctx, test); err != nil {
		return apperrors.Internal(err)
	}
	s.cache.Delete(cacheKeyTests)
	return nil
}

func (s *Service) ListMedications(ctx context.Context) ([]*model.Medication, error) {
	if cached, ok := s.cache.Get(cacheKeyMedications); ok {
		return cached.([]*model.Medication), nil
	}

	medications, err := s.repo.ListMedications(ctx)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	s.cache.Set(cacheKeyMedications, medications, gocache.DefaultExpiration)
	return medications, nil
}

func (s *Service) GetMedication(ctx context.Context, id int64) (*model.Medication, error) {
	medication, err := s.repo.GetMedication(ctx, id)
	if err != nil {
		return nil, notFoundOr("medication", err)
	}
	return medication, nil
}

func (s *Service) CreateMedication(ctx context.Context, req *model.CreateMedicationRequest) (*model.Medication, error) {
	medication := &model.Medication{Name: req.Name, PricePerUnit: req.PricePerUnit}
	if err := s.repo.CreateMedication(ctx, medication); err != nil {
		return nil, apperrors.Internal(err)
	}
	s.cache.Delete(cacheKeyMedications)
	return medication, nil
}

func (s *Service) UpdateMedication(ctx context.Context, medication *model.Medication) error {
	if err := s.repo.UpdateMedication(ctx, medication); err != nil {
		return apperrors.Internal(err)
	}
	s.cache.Delete(cacheKeyMedications)
	return nil
}

func (s *Service) ListSpecializations(ctx context.Context) ([]*model.Specialization, error) {
	if cached, ok := s.cache.Get(cacheKeySpecializations); ok {
		return cached.([]*model.Specialization), nil
	}

	specializations, err := s.repo.ListSpecializations(ctx)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	s.cache.Set(cacheKeySpecializations, specializations, gocache.DefaultExpiration)
	return specializations, nil
}

func notFoundOr(resource string, err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return apperrors.NotFound(resource, err)
	}
	return apperrors.Internal(err)
}
