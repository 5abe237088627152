// Package memory is an in-process HotelRepository and UserRepository for the
// development backend and tests.
package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"yisu_backoffice/internal/domain"
)

type Store struct {
	mu       sync.RWMutex
	hotels   map[int64]domain.Hotel
	users    map[int64]domain.UserRecord
	lastID   int64
	lastRoom int64
	lastUser int64
}

func New() *Store {
	return &Store{hotels: map[int64]domain.Hotel{}, users: map[int64]domain.UserRecord{}}
}

// Load inserts users and hotels with their ids as given.
func (s *Store) Load(users []domain.UserRecord, hotels []domain.Hotel) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range users {
		s.users[u.ID] = u
		s.lastUser = max(s.lastUser, u.ID)
	}
	for _, h := range hotels {
		if u, ok := s.users[h.OwnerID]; ok {
			h.OwnerName = u.Name
		}
		for _, r := range h.Rooms {
			s.lastRoom = max(s.lastRoom, r.ID)
		}
		s.hotels[h.ID] = clone(h)
		s.lastID = max(s.lastID, h.ID)
	}
}

func (s *Store) CreateHotel(ctx context.Context, h domain.Hotel) (domain.Hotel, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastID++
	h.ID = s.lastID
	h.Rooms = s.assignRooms(nil, h.Rooms)
	s.hotels[h.ID] = clone(h)
	return clone(h), nil
}

func (s *Store) UpdateHotel(ctx context.Context, h domain.Hotel) (domain.Hotel, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.hotels[h.ID]
	if !ok {
		return domain.Hotel{}, domain.ErrNotFound
	}
	h.Rooms = s.assignRooms(cur.Rooms, h.Rooms)
	s.hotels[h.ID] = clone(h)
	return clone(h), nil
}

// assignRooms keeps ids of rooms that already belong to the hotel and gives
// every other room a new one.
func (s *Store) assignRooms(existing, rooms []domain.Room) []domain.Room {
	known := make(map[int64]bool, len(existing))
	for _, r := range existing {
		known[r.ID] = true
	}
	out := make([]domain.Room, len(rooms))
	for i, r := range rooms {
		if !known[r.ID] {
			s.lastRoom++
			r.ID = s.lastRoom
		}
		known[r.ID] = false
		out[i] = r
	}
	return out
}

func (s *Store) DeleteHotel(ctx context.Context, id, ownerID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	h, ok := s.hotels[id]
	if !ok || h.OwnerID != ownerID {
		return domain.ErrNotFound
	}
	delete(s.hotels, id)
	return nil
}

func (s *Store) SetStatus(ctx context.Context, id int64, from, to domain.HotelStatus, reason *string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	h, ok := s.hotels[id]
	if !ok {
		return domain.ErrNotFound
	}
	if h.Status != from {
		return fmt.Errorf("hotel %d is %s, not %s: %w", id, h.Status, from, domain.ErrConflict)
	}
	h.Status = to
	if reason != nil {
		if *reason == "" {
			h.RejectReason = nil
		} else {
			r := *reason
			h.RejectReason = &r
		}
	}
	s.hotels[id] = h
	return nil
}

func (s *Store) GetHotel(ctx context.Context, id int64) (domain.Hotel, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	h, ok := s.hotels[id]
	if !ok {
		return domain.Hotel{}, domain.ErrNotFound
	}
	return clone(h), nil
}

// ListHotels matches name and owner name by substring, status and city
// exactly, newest first.
func (s *Store) ListHotels(ctx context.Context, c domain.FilterCriteria) ([]domain.HotelListing, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var all []domain.HotelListing
	for _, h := range s.hotels {
		if match(h.HotelListing, c) {
			all = append(all, h.HotelListing)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID > all[j].ID })

	out := []domain.HotelListing{}
	start := c.Offset()
	if start >= len(all) {
		return out, nil
	}
	end := min(start+c.PageSize, len(all))
	return append(out, all[start:end]...), nil
}

func match(h domain.HotelListing, c domain.FilterCriteria) bool {
	if c.Name != "" && !containsFold(h.Name, c.Name) && !containsFold(h.EnglishName, c.Name) {
		return false
	}
	if c.OwnerName != "" && !containsFold(h.OwnerName, c.OwnerName) {
		return false
	}
	if c.Status != "" && h.Status != c.Status {
		return false
	}
	if c.City != "" && h.City != c.City {
		return false
	}
	return true
}

func containsFold(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}

func (s *Store) ListByOwner(ctx context.Context, ownerID int64) ([]domain.Hotel, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []domain.Hotel{}
	for _, h := range s.hotels {
		if h.OwnerID == ownerID {
			out = append(out, clone(h))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (s *Store) CreateUser(ctx context.Context, u domain.UserRecord) (domain.UserRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, x := range s.users {
		if strings.EqualFold(x.Email, u.Email) {
			return domain.UserRecord{}, domain.ErrConflict
		}
	}
	s.lastUser++
	u.ID = s.lastUser
	s.users[u.ID] = u
	return u, nil
}

func (s *Store) UserByEmail(ctx context.Context, email string) (domain.UserRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if strings.EqualFold(u.Email, email) {
			return u, nil
		}
	}
	return domain.UserRecord{}, domain.ErrNotFound
}

func (s *Store) UserByID(ctx context.Context, id int64) (domain.UserRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return domain.UserRecord{}, domain.ErrNotFound
	}
	return u, nil
}

// SetPassword replaces the stored hash of an existing account.
func (s *Store) SetPassword(id int64, hash []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return domain.ErrNotFound
	}
	u.PasswordHash = hash
	s.users[id] = u
	return nil
}

func clone(h domain.Hotel) domain.Hotel {
	h.Rooms = append([]domain.Room(nil), h.Rooms...)
	h.Tags = append([]string(nil), h.Tags...)
	h.DetailImages = append([]string(nil), h.DetailImages...)
	if h.RejectReason != nil {
		r := *h.RejectReason
		h.RejectReason = &r
	}
	return h
}
