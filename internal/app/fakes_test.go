package app_test

import (
	"context"
	"sync"

	"yisu_backoffice/internal/domain"
)

// ---- fakes ----

// fakeGateway records every call in order.
type fakeGateway struct {
	mu      sync.Mutex
	calls   []string
	lists   []domain.FilterCriteria
	audits  []domain.AuditRequest
	pages   map[int][]domain.HotelListing
	listErr error
	audErr  error
}

func (f *fakeGateway) ListHotels(ctx context.Context, c domain.FilterCriteria) ([]domain.HotelListing, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "list")
	f.lists = append(f.lists, c)
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.pages[c.Page], nil
}

func (f *fakeGateway) AuditHotel(ctx context.Context, req domain.AuditRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "audit")
	f.audits = append(f.audits, req)
	return f.audErr
}

func (f *fakeGateway) lastList() domain.FilterCriteria {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lists[len(f.lists)-1]
}

type toast struct {
	ok            bool
	title, detail string
}

type fakeNotifier struct {
	mu     sync.Mutex
	toasts []toast
}

func (n *fakeNotifier) Success(title, detail string) {
	n.mu.Lock()
	n.toasts = append(n.toasts, toast{true, title, detail})
	n.mu.Unlock()
}

func (n *fakeNotifier) Error(title, detail string) {
	n.mu.Lock()
	n.toasts = append(n.toasts, toast{false, title, detail})
	n.mu.Unlock()
}

func (n *fakeNotifier) last() toast {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.toasts) == 0 {
		return toast{}
	}
	return n.toasts[len(n.toasts)-1]
}

func ptr[T any](v T) *T { return &v }

func listing(id int64, name string, st domain.HotelStatus) domain.HotelListing {
	return domain.HotelListing{ID: id, Name: name, Status: st, Star: 5, Address: "上海市浦东新区"}
}
