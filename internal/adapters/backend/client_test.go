package backend_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"yisu_backoffice/internal/adapters/backend"
	"yisu_backoffice/internal/domain"
)

type fakeAuth struct {
	token   string
	cleared int32
}

func (f *fakeAuth) Token() string { return f.token }
func (f *fakeAuth) Unauthorized(ctx context.Context) {
	atomic.AddInt32(&f.cleared, 1)
	f.token = ""
}

func newClient(t *testing.T, h http.HandlerFunc, auth backend.Auth) *backend.Client {
	t.Helper()
	ts := httptest.NewServer(h)
	t.Cleanup(ts.Close)
	return backend.New(ts.URL, auth, 2*time.Second, 100) // high RPS for tests
}

func TestListHotels_SendsCriteria(t *testing.T) {
	var body domain.FilterCriteria
	cl := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/admin/hotels" {
			t.Errorf("unexpected %s %s", r.Method, r.URL.Path)
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		_, _ = io.WriteString(w, `{"success":true,"data":[{"id":3,"name":"广州四季酒店","status":"pending","price":2388,"star":5}]}`)
	}, &fakeAuth{token: "t"})

	got, err := cl.ListHotels(context.Background(), domain.FilterCriteria{City: "北京", Page: 3, PageSize: 10})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(got) != 1 || got[0].ID != 3 || got[0].Status != domain.StatusPending || got[0].Price.IntPart() != 2388 {
		t.Fatalf("unexpected payload: %+v", got)
	}
	if body.City != "北京" || body.Page != 3 || body.PageSize != 10 || body.Name != "" {
		t.Fatalf("unexpected request body: %+v", body)
	}
}

func TestListHotels_SingleAttempt(t *testing.T) {
	var hits int32
	cl := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(http.StatusBadGateway)
	}, &fakeAuth{token: "t"})

	_, err := cl.ListHotels(context.Background(), domain.DefaultCriteria(10))
	var te *domain.TransportError
	if !errors.As(err, &te) || te.Status != http.StatusBadGateway {
		t.Fatalf("expected transport error, got %v", err)
	}
	if n := atomic.LoadInt32(&hits); n != 1 {
		t.Fatalf("list must be sent once, got %d calls", n)
	}
}

func TestListHotels_SlowBackendFailsWithinOneTimeout(t *testing.T) {
	var hits int32
	release := make(chan struct{})
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		select {
		case <-release:
		case <-time.After(400 * time.Millisecond):
		}
	}))
	defer ts.Close()
	defer close(release)
	cl := backend.New(ts.URL, nil, 200*time.Millisecond, 100)

	start := time.Now()
	_, err := cl.ListHotels(context.Background(), domain.DefaultCriteria(10))
	elapsed := time.Since(start)

	var te *domain.TransportError
	if !errors.As(err, &te) {
		t.Fatalf("expected transport error, got %v", err)
	}
	if n := atomic.LoadInt32(&hits); n != 1 {
		t.Fatalf("expected one request, got %d", n)
	}
	if elapsed > 350*time.Millisecond {
		t.Fatalf("call took %v, want about one timeout", elapsed)
	}
}

func TestListMyHotels_RetriesThenSuccess(t *testing.T) {
	var hits int32
	cl := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&hits, 1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = io.WriteString(w, `{"success":true,"data":[{"id":7,"name":"上海陆家嘴禧玥酒店","status":"published"}]}`)
	}, &fakeAuth{token: "t"})

	got, err := cl.ListMyHotels(context.Background())
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(got) != 1 || got[0].ID != 7 {
		t.Fatalf("unexpected payload: %+v", got)
	}
	if n := atomic.LoadInt32(&hits); n != 2 {
		t.Fatalf("expected 2 calls due to retry, got %d", n)
	}
}

func TestListMyHotels_RetriesShareOneDeadline(t *testing.T) {
	var hits int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		time.Sleep(120 * time.Millisecond)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer ts.Close()
	cl := backend.New(ts.URL, nil, 200*time.Millisecond, 100)

	start := time.Now()
	_, err := cl.ListMyHotels(context.Background())
	elapsed := time.Since(start)

	var te *domain.TransportError
	if !errors.As(err, &te) {
		t.Fatalf("expected transport error, got %v", err)
	}
	if elapsed > 350*time.Millisecond {
		t.Fatalf("retries took %v, want them bounded by one timeout", elapsed)
	}
	if n := atomic.LoadInt32(&hits); n > 2 {
		t.Fatalf("expected at most 2 attempts inside the deadline, got %d", n)
	}
}

func TestListHotels_OmitsUnsetFilters(t *testing.T) {
	var raw map[string]any
	cl := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&raw)
		_, _ = io.WriteString(w, `{"success":true,"data":null}`)
	}, nil)

	got, err := cl.ListHotels(context.Background(), domain.DefaultCriteria(10))
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Fatalf("expected empty non-nil page, got %#v", got)
	}
	if len(raw) != 2 || raw["page"] != 1.0 || raw["page_size"] != 10.0 {
		t.Fatalf("unexpected body %v", raw)
	}
}

func TestAuditHotel_DoesNotRetryWrites(t *testing.T) {
	var hits int32
	cl := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}, &fakeAuth{token: "t"})

	err := cl.AuditHotel(context.Background(), domain.AuditRequest{HotelID: 1, Status: domain.StatusPublished})
	var te *domain.TransportError
	if !errors.As(err, &te) || te.Status != 500 {
		t.Fatalf("expected transport error, got %v", err)
	}
	if hits != 1 {
		t.Fatalf("audit must not be retried, got %d calls", hits)
	}
}

func TestAuditHotel_ApplicationFailure(t *testing.T) {
	cl := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		var req map[string]any
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req["reject_reason"] != "图片不清晰" || req["hotel_id"] != 3.0 || req["status"] != "rejected" {
			t.Errorf("unexpected body %v", req)
		}
		_, _ = io.WriteString(w, `{"success":false,"msg":"hotel is not pending"}`)
	}, &fakeAuth{token: "t"})

	reason := "图片不清晰"
	err := cl.AuditHotel(context.Background(), domain.AuditRequest{HotelID: 3, Status: domain.StatusRejected, RejectReason: &reason})
	var ae *domain.AppError
	if !errors.As(err, &ae) || ae.Msg != "hotel is not pending" {
		t.Fatalf("expected app error, got %v", err)
	}
}

func TestAppError_EmptyMessageFallsBack(t *testing.T) {
	cl := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = io.WriteString(w, `{"success":false}`)
	}, nil)

	err := cl.AuditHotel(context.Background(), domain.AuditRequest{HotelID: 1, Status: domain.StatusOffline})
	if err == nil || err.Error() != "operation failed" {
		t.Fatalf("expected generic message, got %v", err)
	}
}

func TestUnauthorized_ClearsSession(t *testing.T) {
	auth := &fakeAuth{token: "stale"}
	cl := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer stale" {
			t.Errorf("authorization header: %q", got)
		}
		if r.Header.Get("X-Request-ID") == "" {
			t.Errorf("missing request id")
		}
		w.WriteHeader(http.StatusUnauthorized)
	}, auth)

	_, err := cl.ListHotels(context.Background(), domain.DefaultCriteria(10))
	if !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
	if atomic.LoadInt32(&auth.cleared) != 1 || auth.token != "" {
		t.Fatalf("session should be cleared once, cleared=%d", auth.cleared)
	}
}

func TestLogin_IsPublic(t *testing.T) {
	auth := &fakeAuth{token: "old"}
	cl := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "" {
			t.Errorf("login must not carry a bearer token")
		}
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = io.WriteString(w, `{"success":false,"msg":"wrong password"}`)
	}, auth)

	_, err := cl.Login(context.Background(), domain.Credentials{Email: "a@b.c", Password: "x"})
	if err == nil {
		t.Fatalf("expected error")
	}
	if auth.cleared != 0 {
		t.Fatalf("a failed login must not end the session")
	}
}

func TestUserInfo_BareObject(t *testing.T) {
	cl := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"id":"9","name":"ops","email":"ops@yisu.local","role":"admin"}`)
	}, &fakeAuth{token: "t"})

	u, err := cl.UserInfo(context.Background())
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if u.ID != "9" || u.Role != domain.RoleAdmin {
		t.Fatalf("unexpected user %+v", u)
	}
}

func TestGetMyHotel_NotFound(t *testing.T) {
	cl := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, `{"success":false,"msg":"hotel not found"}`)
	}, &fakeAuth{token: "t"})

	_, err := cl.GetMyHotel(context.Background(), 42)
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestTimeout_IsTransportError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
	}))
	defer ts.Close()
	cl := backend.New(ts.URL, nil, 50*time.Millisecond, 100)

	err := cl.AuditHotel(context.Background(), domain.AuditRequest{HotelID: 1, Status: domain.StatusPublished})
	var te *domain.TransportError
	if !errors.As(err, &te) {
		t.Fatalf("expected transport error, got %v", err)
	}
	if domain.UserMessage(err) != "network error, please try again later" {
		t.Fatalf("unexpected user message %q", domain.UserMessage(err))
	}
}
