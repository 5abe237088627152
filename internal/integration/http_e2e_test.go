//go:build integration || !unit

package integration

import (
	"context"
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/shopspring/decimal"

	"yisu_backoffice/internal/adapters/backend"
	server "yisu_backoffice/internal/adapters/http_server"
	redisad "yisu_backoffice/internal/adapters/redis"
	"yisu_backoffice/internal/adapters/session"
	"yisu_backoffice/internal/app"
	"yisu_backoffice/internal/domain"
	"yisu_backoffice/internal/fixtures"
	"yisu_backoffice/internal/storage/memory"
)

const password = "merchant123"

type stack struct {
	ts *httptest.Server
	mr *miniredis.Miniredis
}

// newStack runs the development backend on a seeded memory store with a
// redis cache.
func newStack(t *testing.T) stack {
	t.Helper()
	mr := miniredis.RunT(t)
	st := memory.New()
	if err := st.Seed(password); err != nil {
		t.Fatalf("seed: %v", err)
	}
	rc := redisad.NewClient(mr.Addr(), "", 0)
	cat := app.NewCatalog(st, st, redisad.New(rc), time.Minute)

	srv := server.New()
	srv.MountHandlers(&server.Handlers{C: cat, T: server.NewTokens("e2e-secret", time.Hour)})
	ts := httptest.NewServer(srv.Mux())
	t.Cleanup(ts.Close)
	return stack{ts: ts, mr: mr}
}

type client struct {
	sess *session.Session
	gw   *backend.Client
	auth *app.AuthService
}

func (s stack) client(t *testing.T, profile string) client {
	t.Helper()
	rc := redisad.NewClient(s.mr.Addr(), "", 0)
	sess := session.New(redisad.NewTokenStore(rc, profile))
	gw := backend.New(s.ts.URL, sess, 2*time.Second, 50)
	return client{sess: sess, gw: gw, auth: app.NewAuthService(gw, sess)}
}

type toasts struct{ ok, failed []string }

func (n *toasts) Success(title, detail string) { n.ok = append(n.ok, detail) }
func (n *toasts) Error(title, detail string)   { n.failed = append(n.failed, detail) }

func TestE2E_AdminRejectsPendingHotel(t *testing.T) {
	s := newStack(t)
	ctx := context.Background()
	admin := s.client(t, "admin")

	if _, err := admin.auth.RequireRole(ctx, domain.RoleAdmin); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected unauthorized before login, got %v", err)
	}
	if _, err := admin.auth.Login(ctx, fixtures.AdminEmail, password); err != nil {
		t.Fatalf("login: %v", err)
	}
	if _, err := admin.auth.RequireRole(ctx, domain.RoleAdmin); err != nil {
		t.Fatalf("require admin: %v", err)
	}

	n := &toasts{}
	dir := app.NewDirectory(admin.gw, n, 10)
	wf := app.NewWorkflow(admin.gw, dir, n, app.WorkflowOptions{})

	dir.SetStatus(domain.StatusPending)
	if err := dir.Search(ctx); err != nil {
		t.Fatalf("search: %v", err)
	}
	view := dir.Snapshot()
	if len(view.Items) != 2 {
		t.Fatalf("expected two pending hotels, got %+v", view.Items)
	}

	var gz domain.HotelListing
	for _, h := range view.Items {
		if h.City == "广州" {
			gz = h
		}
	}
	if gz.ID == 0 {
		t.Fatalf("广州 hotel missing from %+v", view.Items)
	}

	if err := wf.Reject(ctx, gz.ID, "  图片不清晰或不合规 "); err != nil {
		t.Fatalf("reject: %v", err)
	}
	view = dir.Snapshot()
	if len(view.Items) != 1 || view.Items[0].ID == gz.ID {
		t.Fatalf("rejected hotel should leave the pending page, got %+v", view.Items)
	}
	if len(n.ok) != 1 {
		t.Fatalf("expected one success toast, got %+v", n)
	}

	dir.SetStatus(domain.StatusRejected)
	if err := dir.Search(ctx); err != nil {
		t.Fatalf("search rejected: %v", err)
	}
	h, ok := dir.Lookup(gz.ID)
	if !ok || h.Reason() != "图片不清晰或不合规" {
		t.Fatalf("unexpected rejected row %+v", h)
	}

	// the backend refuses what the client would also refuse
	err := admin.gw.AuditHotel(ctx, domain.AuditRequest{HotelID: gz.ID, Status: domain.StatusOffline})
	var ae *domain.AppError
	if !errors.As(err, &ae) {
		t.Fatalf("expected app error for rejected -> offline, got %v", err)
	}
}

func TestE2E_MerchantSubmissionReachesReview(t *testing.T) {
	s := newStack(t)
	ctx := context.Background()

	merchant := s.client(t, "merchant")
	if _, err := merchant.auth.Login(ctx, fixtures.MerchantEmail, password); err != nil {
		t.Fatalf("merchant login: %v", err)
	}
	mh := app.NewMerchantHotels(merchant.gw, nil)
	mh.StartNew()
	if err := mh.Edit(func(h *domain.Hotel) {
		h.Name = "杭州西湖国宾馆"
		h.Address = "浙江省杭州市西湖区杨公堤18号"
		h.CoverImage = "https://example.com/xihu.jpg"
		h.OpenDate = "2019-09-01"
	}); err != nil {
		t.Fatalf("edit: %v", err)
	}
	if _, err := mh.AddRoom(domain.Room{Name: "湖景房", Area: 45, BedInfo: "1张1.8米床", Price: decimal.NewFromInt(1680), Stock: 4}); err != nil {
		t.Fatalf("add room: %v", err)
	}
	saved, err := mh.SaveCurrent(ctx)
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if saved.Status != domain.StatusPending || saved.City != "杭州" || !saved.Price.Equal(decimal.NewFromInt(1680)) {
		t.Fatalf("unexpected saved hotel %+v", saved)
	}

	admin := s.client(t, "admin")
	if _, err := admin.auth.Login(ctx, fixtures.AdminEmail, password); err != nil {
		t.Fatalf("admin login: %v", err)
	}
	dir := app.NewDirectory(admin.gw, nil, 10)
	dir.SetName("西湖")
	if err := dir.Search(ctx); err != nil {
		t.Fatalf("search: %v", err)
	}
	view := dir.Snapshot()
	if len(view.Items) != 1 || view.Items[0].ID != saved.ID || view.Items[0].OwnerName != "易宿商户" {
		t.Fatalf("submission not visible to review: %+v", view.Items)
	}

	wf := app.NewWorkflow(admin.gw, dir, nil, app.WorkflowOptions{})
	if err := wf.Approve(ctx, saved.ID); err != nil {
		t.Fatalf("approve: %v", err)
	}
	got, err := merchant.gw.GetMyHotel(ctx, saved.ID)
	if err != nil || got.Status != domain.StatusPublished {
		t.Fatalf("merchant should see the approval, got %+v %v", got, err)
	}
}

func TestE2E_ForgedTokenEndsSession(t *testing.T) {
	s := newStack(t)
	ctx := context.Background()
	c := s.client(t, "forged")

	redirected := false
	c.sess.OnUnauthorized(func() { redirected = true })
	if err := c.sess.SetToken(ctx, "not-a-real-token"); err != nil {
		t.Fatalf("set token: %v", err)
	}

	err := app.NewDirectory(c.gw, nil, 10).Load(ctx)
	if !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
	if !redirected || c.sess.Token() != "" {
		t.Fatalf("401 must clear the session and redirect to login")
	}
	if s.mr.Exists("yisu_token:forged") {
		t.Fatalf("stored token should be removed")
	}
}
