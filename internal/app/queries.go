package app

import (
	"context"
	"fmt"
	"time"

	"yisu_backoffice/internal/domain"
)

// Catalog is the development backend's view of hotels and accounts.
// Hotel detail reads go through the cache; every write evicts the entry.
type Catalog struct {
	hotels   domain.HotelRepository
	users    domain.UserRepository
	cache    domain.Cache
	cacheTTL time.Duration
}

func NewCatalog(h domain.HotelRepository, u domain.UserRepository, c domain.Cache, ttl time.Duration) *Catalog {
	return &Catalog{hotels: h, users: u, cache: c, cacheTTL: ttl}
}

func hotelKey(id int64) string { return fmt.Sprintf("hotel:%d", id) }

func (s *Catalog) GetHotel(ctx context.Context, id int64) (domain.Hotel, error) {
	key := hotelKey(id)
	var h domain.Hotel
	if s.cache != nil {
		if ok, _ := s.cache.Get(ctx, key, &h); ok {
			return h, nil
		}
	}
	h, err := s.hotels.GetHotel(ctx, id)
	if err != nil {
		return domain.Hotel{}, err
	}
	// copy slices so callers cannot mutate the cached value
	h = cloneHotel(h)
	if s.cache != nil {
		_ = s.cache.Set(ctx, key, h, int(s.cacheTTL.Seconds()))
	}
	return h, nil
}

// ListHotels is the admin directory query. Lists are not cached: a
// re-query right after an audit must see the new status.
func (s *Catalog) ListHotels(ctx context.Context, c domain.FilterCriteria) ([]domain.HotelListing, error) {
	if c.PageSize <= 0 || c.PageSize > 100 {
		c.PageSize = domain.DefaultPageSize
	}
	if c.Page < 1 {
		c.Page = 1
	}
	if c.Status != "" && !c.Status.Valid() {
		return nil, &domain.ValidationError{Field: "status", Msg: "unknown status " + string(c.Status)}
	}
	out, err := s.hotels.ListHotels(ctx, c)
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []domain.HotelListing{}
	}
	return out, nil
}

func (s *Catalog) MyHotels(ctx context.Context, ownerID int64) ([]domain.Hotel, error) {
	out, err := s.hotels.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []domain.Hotel{}
	}
	return out, nil
}

// MyHotel hides hotels of other merchants behind ErrNotFound.
func (s *Catalog) MyHotel(ctx context.Context, ownerID, id int64) (domain.Hotel, error) {
	h, err := s.GetHotel(ctx, id)
	if err != nil {
		return domain.Hotel{}, err
	}
	if h.OwnerID != ownerID {
		return domain.Hotel{}, domain.ErrNotFound
	}
	return h, nil
}

func (s *Catalog) UserInfo(ctx context.Context, id int64) (domain.UserInfo, error) {
	u, err := s.users.UserByID(ctx, id)
	if err != nil {
		return domain.UserInfo{}, err
	}
	return u.Info(), nil
}
