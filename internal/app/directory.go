package app

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"

	"yisu_backoffice/internal/adapters/observability"
	"yisu_backoffice/internal/domain"
)

// Draft is what the operator has typed into the filter bar. It only becomes
// a query on Search.
type Draft struct {
	Name      string
	OwnerName string
	Status    domain.HotelStatus
	City      string
}

// DirectoryView is a read-only copy of the directory state.
type DirectoryView struct {
	Criteria domain.FilterCriteria
	Draft    Draft
	Items    []domain.HotelListing
	Loading  bool
	Err      string
}

// Directory owns the admin hotel list: the active criteria, the current page
// and its loading/error state. Every operation issues at most one list call.
//
// Each call gets a sequence number; a response is applied only if no newer
// call was issued after it, so the page always reflects the last request made.
type Directory struct {
	gw       domain.DirectoryGateway
	notify   domain.Notifier
	pageSize int

	mu       sync.Mutex
	draft    Draft
	criteria domain.FilterCriteria
	items    []domain.HotelListing
	err      string
	issued   uint64
	inflight int
}

func NewDirectory(gw domain.DirectoryGateway, n domain.Notifier, pageSize int) *Directory {
	if n == nil {
		n = nopNotifier{}
	}
	crit := domain.DefaultCriteria(pageSize)
	return &Directory{gw: gw, notify: n, pageSize: crit.PageSize, criteria: crit}
}

// Load is the initial query on mount.
func (d *Directory) Load(ctx context.Context) error {
	return d.Query(ctx, domain.DefaultCriteria(d.pageSize))
}

// Query makes c the active criteria and fetches its page. On failure the
// previous page stays in place.
func (d *Directory) Query(ctx context.Context, c domain.FilterCriteria) error {
	if c.PageSize <= 0 {
		c.PageSize = d.pageSize
	}
	if c.Page < 1 {
		c.Page = 1
	}

	d.mu.Lock()
	d.issued++
	seq := d.issued
	d.criteria = c
	d.inflight++
	d.mu.Unlock()

	items, err := d.gw.ListHotels(ctx, c)

	d.mu.Lock()
	d.inflight--
	if seq != d.issued {
		d.mu.Unlock()
		observability.ObserveQuery("superseded")
		log.Debug().Uint64("seq", seq).Int("page", c.Page).Msg("discarding superseded directory response")
		return domain.ErrSuperseded
	}
	if err != nil {
		msg := domain.UserMessage(err)
		d.err = msg
		d.mu.Unlock()
		observability.ObserveQuery("failed")
		log.Warn().Err(err).Int("page", c.Page).Msg("hotel list query failed")
		if !errors.Is(err, domain.ErrUnauthorized) {
			d.notify.Error("Failed to load hotels", msg)
		}
		return err
	}
	d.items = items
	d.err = ""
	d.mu.Unlock()
	observability.ObserveQuery("ok")
	return nil
}

// Forget returns the directory to its initial empty state. Responses still in
// flight are discarded when they arrive.
func (d *Directory) Forget() {
	d.mu.Lock()
	d.issued++
	d.draft = Draft{}
	d.criteria = domain.DefaultCriteria(d.pageSize)
	d.items = nil
	d.err = ""
	d.mu.Unlock()
}

// Search runs the draft from the first page.
func (d *Directory) Search(ctx context.Context) error {
	d.mu.Lock()
	c := d.fromDraft()
	d.mu.Unlock()
	return d.Query(ctx, c.WithPage(1))
}

// Reset clears the draft and queries the unfiltered first page.
func (d *Directory) Reset(ctx context.Context) error {
	d.mu.Lock()
	d.draft = Draft{}
	d.mu.Unlock()
	return d.Query(ctx, domain.DefaultCriteria(d.pageSize))
}

// NextPage has no upper bound; past the end the backend returns a short or empty page.
func (d *Directory) NextPage(ctx context.Context) error {
	d.mu.Lock()
	c := d.criteria
	d.mu.Unlock()
	return d.Query(ctx, c.WithPage(c.Page+1))
}

// PrevPage does nothing on the first page.
func (d *Directory) PrevPage(ctx context.Context) error {
	d.mu.Lock()
	c := d.criteria
	d.mu.Unlock()
	if c.Page <= 1 {
		return nil
	}
	return d.Query(ctx, c.WithPage(c.Page-1))
}

// Refresh re-runs the active criteria, keeping filters and page.
func (d *Directory) Refresh(ctx context.Context) error {
	d.mu.Lock()
	c := d.criteria
	d.mu.Unlock()
	return d.Query(ctx, c)
}

func (d *Directory) SetName(s string) {
	d.mu.Lock()
	d.draft.Name = s
	d.mu.Unlock()
}

func (d *Directory) SetOwnerName(s string) {
	d.mu.Lock()
	d.draft.OwnerName = s
	d.mu.Unlock()
}

// SetStatus sets the status filter; "" removes it.
func (d *Directory) SetStatus(s domain.HotelStatus) {
	d.mu.Lock()
	d.draft.Status = s
	d.mu.Unlock()
}

// SetCity sets the city filter; "" removes it.
func (d *Directory) SetCity(s string) {
	d.mu.Lock()
	d.draft.City = s
	d.mu.Unlock()
}

func (d *Directory) Snapshot() DirectoryView {
	d.mu.Lock()
	defer d.mu.Unlock()
	items := make([]domain.HotelListing, len(d.items))
	copy(items, d.items)
	return DirectoryView{
		Criteria: d.criteria,
		Draft:    d.draft,
		Items:    items,
		Loading:  d.inflight > 0,
		Err:      d.err,
	}
}

// Lookup finds a listing on the current page.
func (d *Directory) Lookup(id int64) (domain.HotelListing, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, h := range d.items {
		if h.ID == id {
			return h, true
		}
	}
	return domain.HotelListing{}, false
}

// fromDraft must be called with mu held.
func (d *Directory) fromDraft() domain.FilterCriteria {
	return domain.FilterCriteria{
		Name:      strings.TrimSpace(d.draft.Name),
		OwnerName: strings.TrimSpace(d.draft.OwnerName),
		Status:    d.draft.Status,
		City:      strings.TrimSpace(d.draft.City),
		Page:      d.criteria.Page,
		PageSize:  d.pageSize,
	}
}

type nopNotifier struct{}

func (nopNotifier) Success(string, string) {}
func (nopNotifier) Error(string, string)   {}
