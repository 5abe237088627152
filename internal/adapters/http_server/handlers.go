package httpserver

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"yisu_backoffice/internal/app"
	"yisu_backoffice/internal/domain"
)

const maxBody = 1 << 20

type Handlers struct {
	C *app.Catalog
	T *Tokens
}

// envelope is the response shape every /api route uses.
type envelope struct {
	Success bool   `json:"success"`
	Msg     string `json:"msg,omitempty"`
	Data    any    `json:"data,omitempty"`
}

func (s *Server) MountHandlers(h *Handlers) {
	s.mux.Route("/api", func(api chi.Router) {
		api.Post("/user/login", h.login)
		api.Post("/user/register", h.register)

		api.Group(func(authed chi.Router) {
			authed.Use(Authenticate(h.T))
			authed.Get("/user/info", h.userInfo)

			authed.With(RequireRole(domain.RoleAdmin)).Post("/admin/hotels", h.listHotels)
			authed.With(RequireRole(domain.RoleAdmin)).Post("/admin/audit", h.audit)

			authed.Route("/merchant/hotels", func(m chi.Router) {
				m.Use(RequireRole(domain.RoleMerchant))
				m.Get("/", h.myHotels)
				m.Post("/", h.createHotel)
				m.Get("/{id}", h.myHotel)
				m.Put("/{id}", h.updateHotel)
				m.Delete("/{id}", h.deleteHotel)
			})
		})
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("write JSON response failed")
	}
}

func ok(w http.ResponseWriter, msg string, data any) {
	writeJSON(w, http.StatusOK, envelope{Success: true, Msg: msg, Data: data})
}

// writeError maps domain errors onto status codes with a success=false body.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		ve *domain.ValidationError
		te *domain.TransitionError
		ae *domain.AppError
	)
	status, msg := http.StatusInternalServerError, "internal error"
	switch {
	case errors.As(err, &ve):
		status, msg = http.StatusBadRequest, ve.Msg
	case errors.As(err, &te):
		status, msg = http.StatusConflict, domain.UserMessage(te)
	case errors.As(err, &ae):
		status, msg = http.StatusBadRequest, ae.Error()
	case errors.Is(err, domain.ErrUnauthorized):
		status, msg = http.StatusUnauthorized, "login required"
	case errors.Is(err, domain.ErrForbidden):
		status, msg = http.StatusForbidden, "forbidden"
	case errors.Is(err, domain.ErrNotFound):
		status, msg = http.StatusNotFound, "hotel not found"
	default:
		log.Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
	}
	writeJSON(w, status, envelope{Success: false, Msg: msg})
}

func decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBody)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, r, &domain.ValidationError{Msg: "malformed request body"})
		return false
	}
	return true
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, r, &domain.ValidationError{Field: "id", Msg: "id must be a number"})
		return 0, false
	}
	return id, true
}

// calcETagAndBody marshals once and hashes once, returning both ETag and body.
func calcETagAndBody(v any) (string, []byte) {
	body, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal object for ETag/body")
		return "", nil
	}
	sum := sha1.Sum(body)
	return `W/"` + hex.EncodeToString(sum[:]) + `"`, body
}

func (h *Handlers) login(w http.ResponseWriter, r *http.Request) {
	var in domain.Credentials
	if !decode(w, r, &in) {
		return
	}
	u, err := h.C.Authenticate(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	tok, err := h.T.Issue(u)
	if err != nil {
		writeError(w, r, err)
		return
	}
	ok(w, "login ok", domain.LoginResult{Token: tok, ID: strconv.FormatInt(u.ID, 10), Username: u.Name, Role: u.Role})
}

func (h *Handlers) register(w http.ResponseWriter, r *http.Request) {
	var in domain.Registration
	if !decode(w, r, &in) {
		return
	}
	u, err := h.C.Register(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	ok(w, "registered", u)
}

// userInfo answers with a bare profile object, as the upstream API does.
func (h *Handlers) userInfo(w http.ResponseWriter, r *http.Request) {
	u, err := h.C.UserInfo(r.Context(), ClaimsFrom(r.Context()).UserID())
	if errors.Is(err, domain.ErrNotFound) {
		err = domain.ErrUnauthorized
	}
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

func (h *Handlers) listHotels(w http.ResponseWriter, r *http.Request) {
	var c domain.FilterCriteria
	if !decode(w, r, &c) {
		return
	}
	out, err := h.C.ListHotels(r.Context(), c)
	if err != nil {
		writeError(w, r, err)
		return
	}
	// data must be present even for an empty page
	writeJSON(w, http.StatusOK, struct {
		Success bool                  `json:"success"`
		Data    []domain.HotelListing `json:"data"`
	}{true, out})
}

func (h *Handlers) audit(w http.ResponseWriter, r *http.Request) {
	var in domain.AuditRequest
	if !decode(w, r, &in) {
		return
	}
	if err := h.C.Audit(r.Context(), in); err != nil {
		writeError(w, r, err)
		return
	}
	ok(w, "status updated", nil)
}

func (h *Handlers) myHotels(w http.ResponseWriter, r *http.Request) {
	out, err := h.C.MyHotels(r.Context(), ClaimsFrom(r.Context()).UserID())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Success bool           `json:"success"`
		Data    []domain.Hotel `json:"data"`
	}{true, out})
}

func (h *Handlers) myHotel(w http.ResponseWriter, r *http.Request) {
	id, valid := pathID(w, r)
	if !valid {
		return
	}
	hotel, err := h.C.MyHotel(r.Context(), ClaimsFrom(r.Context()).UserID(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}

	etag, body := calcETagAndBody(envelope{Success: true, Data: hotel})
	// if the client already has this version, short-circuit
	if inm := r.Header.Get("If-None-Match"); inm != "" && inm == etag {
		w.Header().Set("ETag", etag)
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("ETag", etag)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		log.Error().Err(err).Msg("failed to write hotel body")
	}
}

func (h *Handlers) createHotel(w http.ResponseWriter, r *http.Request) {
	var in domain.Hotel
	if !decode(w, r, &in) {
		return
	}
	out, err := h.C.CreateHotel(r.Context(), ClaimsFrom(r.Context()).UserID(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	ok(w, "created", out)
}

func (h *Handlers) updateHotel(w http.ResponseWriter, r *http.Request) {
	id, valid := pathID(w, r)
	if !valid {
		return
	}
	var in domain.Hotel
	if !decode(w, r, &in) {
		return
	}
	out, err := h.C.UpdateHotel(r.Context(), ClaimsFrom(r.Context()).UserID(), id, in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	ok(w, "updated", out)
}

func (h *Handlers) deleteHotel(w http.ResponseWriter, r *http.Request) {
	id, valid := pathID(w, r)
	if !valid {
		return
	}
	if err := h.C.DeleteHotel(r.Context(), ClaimsFrom(r.Context()).UserID(), id); err != nil {
		writeError(w, r, err)
		return
	}
	ok(w, "deleted", nil)
}
