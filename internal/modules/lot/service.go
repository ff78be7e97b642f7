package lot

import (
	"context"
	"errors"
	"sort"

	"gorm.io/gorm"

	"parkly/internal/domain"
	"parkly/internal/pkg/errs"
	"parkly/internal/repository"
)

const (
	defaultRadiusKm = 10.0
	maxRadiusKm     = 50.0
)

// Service serves read-only lot data and the caller's saved lots; lots and
// spots themselves are managed elsewhere.
type Service struct {
	lots  *repository.LotRepository
	spots *repository.SpotRepository
	saved *repository.SavedLotRepository
}

func NewService(lots *repository.LotRepository, spots *repository.SpotRepository, saved *repository.SavedLotRepository) *Service {
	return &Service{lots: lots, spots: spots, saved: saved}
}

// Nearby lists active lots within radiusKm of the point, closest first.
func (s *Service) Nearby(ctx context.Context, lat, lng, radiusKm float64) ([]LotResponse, error) {
	if radiusKm <= 0 {
		radiusKm = defaultRadiusKm
	}
	if radiusKm > maxRadiusKm {
		radiusKm = maxRadiusKm
	}

	minLat, maxLat, minLng, maxLng := boundingBox(lat, lng, radiusKm)
	candidates, err := s.lots.ListActiveWithin(ctx, repository.Bounds{
		MinLat: minLat, MaxLat: maxLat,
		MinLng: minLng, MaxLng: maxLng,
	})
	if err != nil {
		return nil, errs.Internal(err, "list lots")
	}

	out := make([]LotResponse, 0, len(candidates))
	ids := make([]int64, 0, len(candidates))
	for i := range candidates {
		d := DistanceKm(lat, lng, candidates[i].Latitude, candidates[i].Longitude)
		if d > radiusKm {
			continue
		}
		resp := toLotResponse(&candidates[i])
		resp.DistanceKm = &d
		out = append(out, resp)
		ids = append(ids, candidates[i].ID)
	}

	counts, err := s.spots.CountByLots(ctx, ids)
	if err != nil {
		return nil, errs.Internal(err, "count spots")
	}
	for i := range out {
		c := counts[out[i].ID]
		out[i].TotalSpots, out[i].AvailableSpots = c.Total, c.Available
	}

	sort.SliceStable(out, func(i, j int) bool { return *out[i].DistanceKm < *out[j].DistanceKm })
	return out, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*LotResponse, error) {
	l, err := s.lots.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLotNotFound
		}
		return nil, errs.Internal(err, "get lot")
	}

	counts, err := s.spots.CountByLots(ctx, []int64{l.ID})
	if err != nil {
		return nil, errs.Internal(err, "count spots")
	}

	resp := toLotResponse(l)
	resp.TotalSpots = counts[l.ID].Total
	resp.AvailableSpots = counts[l.ID].Available
	return &resp, nil
}

func (s *Service) Spots(ctx context.Context, lotID int64) ([]SpotResponse, error) {
	if _, err := s.lots.GetByID(ctx, lotID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLotNotFound
		}
		return nil, errs.Internal(err, "get lot")
	}

	spots, err := s.spots.ListByLot(ctx, lotID)
	if err != nil {
		return nil, errs.Internal(err, "list spots")
	}
	out := make([]SpotResponse, 0, len(spots))
	for _, sp := range spots {
		out = append(out, toSpotResponse(sp))
	}
	return out, nil
}

// Saved lists the caller's saved lots that are still active, most recently
// saved first.
func (s *Service) Saved(ctx context.Context, userID int64) ([]LotResponse, error) {
	rows, err := s.saved.ListActiveByUser(ctx, userID)
	if err != nil {
		return nil, errs.Internal(err, "list saved lots")
	}

	ids := make([]int64, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.ParkingLotID)
	}
	counts, err := s.spots.CountByLots(ctx, ids)
	if err != nil {
		return nil, errs.Internal(err, "count spots")
	}

	out := make([]LotResponse, 0, len(rows))
	for _, row := range rows {
		if row.Lot == nil {
			continue
		}
		resp := toLotResponse(row.Lot)
		resp.TotalSpots = counts[row.ParkingLotID].Total
		resp.AvailableSpots = counts[row.ParkingLotID].Available
		resp.IsSaved = boolPtr(true)
		out = append(out, resp)
	}
	return out, nil
}

// Save bookmarks an active lot. Saving it again is a no-op.
func (s *Service) Save(ctx context.Context, userID, lotID int64) (*LotResponse, error) {
	l, err := s.lots.GetByID(ctx, lotID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLotNotFound
		}
		return nil, errs.Internal(err, "get lot")
	}
	if l.Status != domain.LotActive {
		return nil, ErrLotNotFound
	}

	if err := s.saved.Add(ctx, userID, lotID); err != nil {
		return nil, errs.Internal(err, "save lot")
	}
	return s.decorate(ctx, l, true)
}

// Unsave drops the bookmark if there is one. The lot is returned when it
// still exists; a nil response means it is gone.
func (s *Service) Unsave(ctx context.Context, userID, lotID int64) (*LotResponse, error) {
	if _, err := s.saved.Remove(ctx, userID, lotID); err != nil {
		return nil, errs.Internal(err, "unsave lot")
	}

	l, err := s.lots.GetByID(ctx, lotID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, errs.Internal(err, "get lot")
	}
	return s.decorate(ctx, l, false)
}

func (s *Service) decorate(ctx context.Context, l *domain.ParkingLot, saved bool) (*LotResponse, error) {
	counts, err := s.spots.CountByLots(ctx, []int64{l.ID})
	if err != nil {
		return nil, errs.Internal(err, "count spots")
	}
	resp := toLotResponse(l)
	resp.TotalSpots = counts[l.ID].Total
	resp.AvailableSpots = counts[l.ID].Available
	resp.IsSaved = boolPtr(saved)
	return &resp, nil
}

func boolPtr(b bool) *bool { return &b }
