package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"yisu_backoffice/internal/domain"
)

// MerchantHotels holds a merchant's own listings and the hotel open in the
// editor. Room edits stay local until Save.
type MerchantHotels struct {
	gw     domain.MerchantGateway
	notify domain.Notifier
	now    func() time.Time

	mu        sync.Mutex
	list      []domain.Hotel
	current   *domain.Hotel
	tempRooms map[int64]bool
	loading   bool
	err       string
}

func NewMerchantHotels(gw domain.MerchantGateway, n domain.Notifier) *MerchantHotels {
	if n == nil {
		n = nopNotifier{}
	}
	return &MerchantHotels{gw: gw, notify: n, now: time.Now, tempRooms: map[int64]bool{}}
}

func (m *MerchantHotels) FetchList(ctx context.Context) error {
	m.begin()
	list, err := m.gw.ListMyHotels(ctx)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loading = false
	if err != nil {
		m.err = domain.UserMessage(err)
		return err
	}
	m.list = list
	return nil
}

func (m *MerchantHotels) FetchDetail(ctx context.Context, id int64) (domain.Hotel, error) {
	m.begin()
	h, err := m.gw.GetMyHotel(ctx, id)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loading = false
	if err != nil {
		m.err = domain.UserMessage(err)
		return domain.Hotel{}, err
	}
	cur := cloneHotel(h)
	m.current = &cur
	m.tempRooms = map[int64]bool{}
	return cloneHotel(h), nil
}

// ClearCurrent empties the editor for a new hotel.
func (m *MerchantHotels) ClearCurrent() {
	m.mu.Lock()
	m.current = nil
	m.tempRooms = map[int64]bool{}
	m.err = ""
	m.mu.Unlock()
}

// Forget drops everything held for the signed-in merchant, including an
// unsaved draft, so the next account starts empty.
func (m *MerchantHotels) Forget() {
	m.mu.Lock()
	m.list = nil
	m.current = nil
	m.tempRooms = map[int64]bool{}
	m.loading = false
	m.err = ""
	m.mu.Unlock()
}

// StartNew opens an empty hotel in the editor.
func (m *MerchantHotels) StartNew() {
	m.mu.Lock()
	m.current = &domain.Hotel{HotelListing: domain.HotelListing{Star: 5}}
	m.tempRooms = map[int64]bool{}
	m.err = ""
	m.mu.Unlock()
}

func (m *MerchantHotels) Delete(ctx context.Context, id int64) error {
	if err := m.gw.DeleteHotel(ctx, id); err != nil {
		m.mu.Lock()
		m.err = domain.UserMessage(err)
		m.mu.Unlock()
		m.notify.Error("Delete failed", domain.UserMessage(err))
		return err
	}
	m.mu.Lock()
	kept := m.list[:0]
	for _, h := range m.list {
		if h.ID != id {
			kept = append(kept, h)
		}
	}
	m.list = kept
	if m.current != nil && m.current.ID == id {
		m.current = nil
	}
	m.mu.Unlock()
	m.notify.Success("Deleted", fmt.Sprintf("hotel %d removed", id))
	return nil
}

var errNoCurrent = &domain.ValidationError{Msg: "open or create a hotel first"}

// AddRoom appends r to the open hotel under a temporary id.
func (m *MerchantHotels) AddRoom(r domain.Room) (domain.Room, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current == nil {
		return domain.Room{}, errNoCurrent
	}
	r.ID = m.now().UnixMilli()
	for m.tempRooms[r.ID] || m.hasRoom(r.ID) {
		r.ID++
	}
	m.tempRooms[r.ID] = true
	m.current.Rooms = append(m.current.Rooms, r)
	return r, nil
}

// UpdateRoom replaces the room with the given id, keeping the id.
func (m *MerchantHotels) UpdateRoom(id int64, r domain.Room) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current == nil {
		return errNoCurrent
	}
	for i := range m.current.Rooms {
		if m.current.Rooms[i].ID == id {
			r.ID = id
			m.current.Rooms[i] = r
			return nil
		}
	}
	return fmt.Errorf("room %d: %w", id, domain.ErrNotFound)
}

func (m *MerchantHotels) DeleteRoom(id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current == nil {
		return errNoCurrent
	}
	rooms := m.current.Rooms[:0]
	found := false
	for _, r := range m.current.Rooms {
		if r.ID == id {
			found = true
			continue
		}
		rooms = append(rooms, r)
	}
	if !found {
		return fmt.Errorf("room %d: %w", id, domain.ErrNotFound)
	}
	m.current.Rooms = rooms
	delete(m.tempRooms, id)
	return nil
}

// Save validates h and creates it (no id) or updates it. Rooms added in
// this editing session are sent without their temporary ids.
func (m *MerchantHotels) Save(ctx context.Context, h domain.Hotel) (domain.Hotel, error) {
	if err := Validate(h); err != nil {
		m.notify.Error("Please check the form", domain.UserMessage(err))
		return domain.Hotel{}, err
	}

	h = cloneHotel(h)
	m.mu.Lock()
	for i := range h.Rooms {
		if m.tempRooms[h.Rooms[i].ID] {
			h.Rooms[i].ID = 0
		}
	}
	m.mu.Unlock()

	var (
		saved domain.Hotel
		err   error
	)
	if h.ID == 0 {
		saved, err = m.gw.CreateHotel(ctx, h)
	} else {
		saved, err = m.gw.UpdateHotel(ctx, h.ID, h)
	}
	if err != nil {
		log.Warn().Err(err).Int64("hotel_id", h.ID).Msg("save hotel failed")
		if !errors.Is(err, domain.ErrUnauthorized) {
			m.notify.Error("Save failed", domain.UserMessage(err))
		}
		return domain.Hotel{}, err
	}

	m.mu.Lock()
	cur := cloneHotel(saved)
	m.current = &cur
	m.tempRooms = map[int64]bool{}
	m.upsert(saved)
	m.mu.Unlock()

	if h.ID == 0 {
		m.notify.Success("Submitted", fmt.Sprintf("%s was submitted for review", saved.Name))
	} else {
		m.notify.Success("Saved", fmt.Sprintf("%s was updated", saved.Name))
	}
	return cloneHotel(saved), nil
}

// SaveCurrent saves the hotel open in the editor.
func (m *MerchantHotels) SaveCurrent(ctx context.Context) (domain.Hotel, error) {
	m.mu.Lock()
	if m.current == nil {
		m.mu.Unlock()
		return domain.Hotel{}, errNoCurrent
	}
	h := cloneHotel(*m.current)
	m.mu.Unlock()
	return m.Save(ctx, h)
}

// Edit applies fn to the hotel open in the editor.
func (m *MerchantHotels) Edit(fn func(h *domain.Hotel)) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current == nil {
		return errNoCurrent
	}
	fn(m.current)
	return nil
}

func (m *MerchantHotels) List() []domain.Hotel {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.Hotel, len(m.list))
	copy(out, m.list)
	return out
}

func (m *MerchantHotels) Current() (domain.Hotel, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current == nil {
		return domain.Hotel{}, false
	}
	return cloneHotel(*m.current), true
}

// Err is the last failure message, "" after a successful load.
func (m *MerchantHotels) Err() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.err
}

func (m *MerchantHotels) Loading() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.loading
}

func (m *MerchantHotels) begin() {
	m.mu.Lock()
	m.loading = true
	m.err = ""
	m.mu.Unlock()
}

func (m *MerchantHotels) hasRoom(id int64) bool {
	for _, r := range m.current.Rooms {
		if r.ID == id {
			return true
		}
	}
	return false
}

func (m *MerchantHotels) upsert(h domain.Hotel) {
	for i := range m.list {
		if m.list[i].ID == h.ID {
			m.list[i] = h
			return
		}
	}
	m.list = append(m.list, h)
}

func cloneHotel(h domain.Hotel) domain.Hotel {
	h.Rooms = append([]domain.Room(nil), h.Rooms...)
	h.Tags = append([]string(nil), h.Tags...)
	h.DetailImages = append([]string(nil), h.DetailImages...)
	return h
}
