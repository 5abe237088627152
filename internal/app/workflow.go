package app

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"yisu_backoffice/internal/adapters/observability"
	"yisu_backoffice/internal/domain"
)

// Refresher re-runs the active directory query.
type Refresher interface {
	Refresh(ctx context.Context) error
	Lookup(id int64) (domain.HotelListing, bool)
}

type WorkflowOptions struct {
	// ClearReasonOnExit sends an empty reject_reason when a listing leaves
	// rejected, so an old reason does not linger behind a new status.
	ClearReasonOnExit bool
}

// Workflow applies approval transitions. Legality is checked here against
// the transition table, whatever the presentation layer chose to offer.
type Workflow struct {
	gw     domain.DirectoryGateway
	dir    Refresher
	notify domain.Notifier
	opts   WorkflowOptions
}

func NewWorkflow(gw domain.DirectoryGateway, dir Refresher, n domain.Notifier, opts WorkflowOptions) *Workflow {
	if n == nil {
		n = nopNotifier{}
	}
	return &Workflow{gw: gw, dir: dir, notify: n, opts: opts}
}

func (w *Workflow) Approve(ctx context.Context, id int64) error {
	return w.Apply(ctx, domain.ActionApprove, id, "")
}

func (w *Workflow) Reject(ctx context.Context, id int64, reason string) error {
	return w.Apply(ctx, domain.ActionReject, id, reason)
}

func (w *Workflow) Reapprove(ctx context.Context, id int64) error {
	return w.Apply(ctx, domain.ActionReapprove, id, "")
}

func (w *Workflow) TakeOffline(ctx context.Context, id int64) error {
	return w.Apply(ctx, domain.ActionTakeOffline, id, "")
}

func (w *Workflow) Restore(ctx context.Context, id int64) error {
	return w.Apply(ctx, domain.ActionRestore, id, "")
}

// Apply runs a named action; the listing must be in the action's source state.
func (w *Workflow) Apply(ctx context.Context, a domain.Action, id int64, reason string) error {
	h, ok := w.dir.Lookup(id)
	if !ok {
		return w.fail(a.To(), "invalid", fmt.Errorf("hotel %d: %w", id, domain.ErrNotFound))
	}
	if h.Status != a.From() {
		return w.fail(a.To(), "illegal", &domain.TransitionError{HotelID: id, From: h.Status, To: a.To()})
	}
	return w.transition(ctx, h, a.To(), reason, a.Title(), fmt.Sprintf(a.Done(), h.Name))
}

// Transition moves hotel id to status to. Nothing is sent when the move is
// not in the transition table or a rejection has no reason.
func (w *Workflow) Transition(ctx context.Context, id int64, to domain.HotelStatus, reason string) error {
	h, ok := w.dir.Lookup(id)
	if !ok {
		return w.fail(to, "invalid", fmt.Errorf("hotel %d: %w", id, domain.ErrNotFound))
	}
	return w.transition(ctx, h, to, reason, "Status updated", fmt.Sprintf("%s is now %s", h.Name, to.Label()))
}

func (w *Workflow) transition(ctx context.Context, h domain.HotelListing, to domain.HotelStatus, reason, title, done string) error {
	if !domain.CanTransition(h.Status, to) {
		return w.fail(to, "illegal", &domain.TransitionError{HotelID: h.ID, From: h.Status, To: to})
	}

	req := domain.AuditRequest{HotelID: h.ID, Status: to}
	switch {
	case to == domain.StatusRejected:
		r := strings.TrimSpace(reason)
		if r == "" {
			return w.fail(to, "invalid", &domain.ValidationError{Field: "reject_reason", Msg: "please give a reason for rejecting"})
		}
		req.RejectReason = &r
	case h.Status == domain.StatusRejected && w.opts.ClearReasonOnExit:
		empty := ""
		req.RejectReason = &empty
	}

	if err := w.gw.AuditHotel(ctx, req); err != nil {
		observability.ObserveTransition(string(to), "failed")
		log.Warn().Err(err).Int64("hotel_id", h.ID).Str("from", string(h.Status)).Str("to", string(to)).Msg("audit failed")
		if !errors.Is(err, domain.ErrUnauthorized) {
			w.notify.Error("Action failed", domain.UserMessage(err))
		}
		return err
	}

	observability.ObserveTransition(string(to), "ok")
	log.Info().Int64("hotel_id", h.ID).Str("from", string(h.Status)).Str("to", string(to)).Msg("audit ok")

	// the directory reports its own failures; the transition itself succeeded
	if err := w.dir.Refresh(ctx); err != nil && !errors.Is(err, domain.ErrSuperseded) {
		log.Warn().Err(err).Msg("refresh after audit failed")
	}
	w.notify.Success(title, done)
	return nil
}

func (w *Workflow) fail(to domain.HotelStatus, result string, err error) error {
	observability.ObserveTransition(string(to), result)
	w.notify.Error("Cannot apply action", domain.UserMessage(err))
	return err
}
