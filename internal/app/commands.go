package app

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"yisu_backoffice/internal/domain"
)

var errBadLogin = &domain.AppError{Msg: "wrong email or password"}

// Audit moves a hotel along the approval workflow. A rejection needs a reason;
// leaving rejected keeps the old reason unless the request carries one.
func (s *Catalog) Audit(ctx context.Context, req domain.AuditRequest) error {
	h, err := s.hotels.GetHotel(ctx, req.HotelID)
	if err != nil {
		return err
	}
	if !req.Status.Valid() {
		return &domain.ValidationError{Field: "status", Msg: "unknown status " + string(req.Status)}
	}
	if !domain.CanTransition(h.Status, req.Status) {
		return &domain.TransitionError{HotelID: h.ID, From: h.Status, To: req.Status}
	}

	reason := req.RejectReason
	if req.Status == domain.StatusRejected {
		r := strings.TrimSpace(deref(reason))
		if r == "" {
			return &domain.ValidationError{Field: "reject_reason", Msg: "please give a reason for rejecting"}
		}
		reason = &r
	} else if reason != nil && *reason != "" {
		// only an explicit "" (clear) is honoured outside rejected
		reason = nil
	}

	if err := s.hotels.SetStatus(ctx, h.ID, h.Status, req.Status, reason); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return s.staleAudit(ctx, h, req.Status, err)
		}
		return err
	}
	s.invalidateHotel(ctx, h.ID)
	log.Info().Int64("hotel_id", h.ID).Str("from", string(h.Status)).Str("to", string(req.Status)).Msg("hotel audited")
	return nil
}

// staleAudit reports an audit that lost a race with another one, against
// the status the hotel has now.
func (s *Catalog) staleAudit(ctx context.Context, h domain.Hotel, to domain.HotelStatus, cause error) error {
	log.Warn().Err(cause).Int64("hotel_id", h.ID).Msg("concurrent audit")
	cur, err := s.hotels.GetHotel(ctx, h.ID)
	if err != nil {
		return err
	}
	s.invalidateHotel(ctx, h.ID)
	return &domain.TransitionError{HotelID: h.ID, From: cur.Status, To: to}
}

// CreateHotel stores a new listing for ownerID. It starts in review.
func (s *Catalog) CreateHotel(ctx context.Context, ownerID int64, h domain.Hotel) (domain.Hotel, error) {
	h = normalizeHotel(h)
	if err := Validate(h); err != nil {
		return domain.Hotel{}, err
	}
	owner, err := s.users.UserByID(ctx, ownerID)
	if err != nil {
		return domain.Hotel{}, err
	}
	h.ID = 0
	h.OwnerID = owner.ID
	h.OwnerName = owner.Name
	h.Status = domain.StatusPending
	h.RejectReason = nil
	if h.Score == 0 {
		h.Score = 5.0
	}
	return s.hotels.CreateHotel(ctx, h)
}

// UpdateHotel replaces the editable fields of an owned hotel. Status, reject
// reason and ownership are kept.
func (s *Catalog) UpdateHotel(ctx context.Context, ownerID, id int64, h domain.Hotel) (domain.Hotel, error) {
	cur, err := s.MyHotel(ctx, ownerID, id)
	if err != nil {
		return domain.Hotel{}, err
	}
	h = normalizeHotel(h)
	if err := Validate(h); err != nil {
		return domain.Hotel{}, err
	}
	h.ID = cur.ID
	h.OwnerID = cur.OwnerID
	h.OwnerName = cur.OwnerName
	h.Status = cur.Status
	h.RejectReason = cur.RejectReason
	if h.Score == 0 {
		h.Score = cur.Score
	}

	out, err := s.hotels.UpdateHotel(ctx, h)
	if err != nil {
		return domain.Hotel{}, err
	}
	s.invalidateHotel(ctx, id)
	return out, nil
}

func (s *Catalog) DeleteHotel(ctx context.Context, ownerID, id int64) error {
	if err := s.hotels.DeleteHotel(ctx, id, ownerID); err != nil {
		return err
	}
	s.invalidateHotel(ctx, id)
	return nil
}

// Register stores a new account with a bcrypt password hash.
func (s *Catalog) Register(ctx context.Context, r domain.Registration) (domain.UserInfo, error) {
	r.Name = strings.TrimSpace(r.Name)
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	if err := Validate(r); err != nil {
		return domain.UserInfo{}, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(r.Password), bcrypt.DefaultCost)
	if err != nil {
		return domain.UserInfo{}, err
	}
	u, err := s.users.CreateUser(ctx, domain.UserRecord{Name: r.Name, Email: r.Email, Role: r.Role, PasswordHash: hash})
	if err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return domain.UserInfo{}, &domain.AppError{Msg: domain.UserMessage(err)}
		}
		return domain.UserInfo{}, err
	}
	return u.Info(), nil
}

// Authenticate checks credentials. Unknown email and wrong password fail the same way.
func (s *Catalog) Authenticate(ctx context.Context, c domain.Credentials) (domain.UserRecord, error) {
	c.Email = strings.ToLower(strings.TrimSpace(c.Email))
	if err := Validate(c); err != nil {
		return domain.UserRecord{}, err
	}
	u, err := s.users.UserByEmail(ctx, c.Email)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.UserRecord{}, errBadLogin
	}
	if err != nil {
		return domain.UserRecord{}, err
	}
	if bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(c.Password)) != nil {
		return domain.UserRecord{}, errBadLogin
	}
	return u, nil
}

func (s *Catalog) invalidateHotel(ctx context.Context, id int64) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, hotelKey(id)); err != nil {
		log.Warn().Err(err).Int64("hotel_id", id).Msg("cache evict failed")
	}
}
