package httpserver_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	httpserver "yisu_backoffice/internal/adapters/http_server"
	"yisu_backoffice/internal/app"
	"yisu_backoffice/internal/domain"
	"yisu_backoffice/internal/fixtures"
	"yisu_backoffice/internal/storage/memory"
)

const pw = "secret123"

func newAPI(t *testing.T) *httptest.Server {
	t.Helper()
	st := memory.New()
	require.NoError(t, st.Seed(pw))
	cat := app.NewCatalog(st, st, memory.NewCache(time.Minute), time.Minute)

	srv := httpserver.New()
	srv.MountHandlers(&httpserver.Handlers{C: cat, T: httpserver.NewTokens("test-secret", time.Hour)})
	ts := httptest.NewServer(srv.Mux())
	t.Cleanup(ts.Close)
	return ts
}

type reply struct {
	Success bool            `json:"success"`
	Msg     string          `json:"msg"`
	Data    json.RawMessage `json:"data"`
}

func call(t *testing.T, ts *httptest.Server, method, path, token string, body any) (int, reply) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequestWithContext(context.Background(), method, ts.URL+path, &buf)
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	res, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer res.Body.Close()
	var out reply
	_ = json.NewDecoder(res.Body).Decode(&out)
	return res.StatusCode, out
}

func login(t *testing.T, ts *httptest.Server, email string) string {
	t.Helper()
	status, r := call(t, ts, http.MethodPost, "/api/user/login", "", domain.Credentials{Email: email, Password: pw})
	require.Equal(t, http.StatusOK, status, r.Msg)
	var res domain.LoginResult
	require.NoError(t, json.Unmarshal(r.Data, &res))
	require.NotEmpty(t, res.Token)
	return res.Token
}

func TestLogin_WrongPassword(t *testing.T) {
	ts := newAPI(t)
	status, r := call(t, ts, http.MethodPost, "/api/user/login", "", domain.Credentials{Email: fixtures.AdminEmail, Password: "nope"})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.False(t, r.Success)
	assert.Equal(t, "wrong email or password", r.Msg)
}

func TestAdminRoutes_RequireAdmin(t *testing.T) {
	ts := newAPI(t)

	status, _ := call(t, ts, http.MethodPost, "/api/admin/hotels", "", domain.DefaultCriteria(10))
	assert.Equal(t, http.StatusUnauthorized, status)

	status, _ = call(t, ts, http.MethodPost, "/api/admin/hotels", "garbage", domain.DefaultCriteria(10))
	assert.Equal(t, http.StatusUnauthorized, status)

	merchant := login(t, ts, fixtures.MerchantEmail)
	status, _ = call(t, ts, http.MethodPost, "/api/admin/hotels", merchant, domain.DefaultCriteria(10))
	assert.Equal(t, http.StatusForbidden, status)
}

func TestAdmin_ListAndAudit(t *testing.T) {
	ts := newAPI(t)
	admin := login(t, ts, fixtures.AdminEmail)

	status, r := call(t, ts, http.MethodPost, "/api/admin/hotels", admin,
		domain.FilterCriteria{Status: domain.StatusPending, Page: 1, PageSize: 10})
	require.Equal(t, http.StatusOK, status)
	var page []domain.HotelListing
	require.NoError(t, json.Unmarshal(r.Data, &page))
	require.Len(t, page, 2)

	status, r = call(t, ts, http.MethodPost, "/api/admin/audit", admin,
		map[string]any{"hotel_id": 3, "status": "rejected", "reject_reason": "图片不清晰"})
	require.Equal(t, http.StatusOK, status, r.Msg)
	assert.True(t, r.Success)

	// rejected -> offline is not an edge of the workflow
	status, r = call(t, ts, http.MethodPost, "/api/admin/audit", admin, map[string]any{"hotel_id": 3, "status": "offline"})
	assert.Equal(t, http.StatusConflict, status)
	assert.False(t, r.Success)

	status, r = call(t, ts, http.MethodPost, "/api/admin/audit", admin, map[string]any{"hotel_id": 2, "status": "rejected", "reject_reason": " "})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "please give a reason for rejecting", r.Msg)

	status, r = call(t, ts, http.MethodPost, "/api/admin/hotels", admin,
		domain.FilterCriteria{Status: domain.StatusRejected, Page: 1, PageSize: 10})
	require.Equal(t, http.StatusOK, status)
	require.NoError(t, json.Unmarshal(r.Data, &page))
	require.Len(t, page, 2)
	assert.Equal(t, "图片不清晰", page[0].Reason())
}

func TestAdmin_EmptyPageHasData(t *testing.T) {
	ts := newAPI(t)
	admin := login(t, ts, fixtures.AdminEmail)
	_, r := call(t, ts, http.MethodPost, "/api/admin/hotels", admin, domain.FilterCriteria{Page: 50, PageSize: 10})
	assert.JSONEq(t, `[]`, string(r.Data))
}

func TestUserInfo_BareProfile(t *testing.T) {
	ts := newAPI(t)
	tok := login(t, ts, fixtures.MerchantEmail)

	req, _ := http.NewRequest(http.MethodGet, ts.URL+"/api/user/info", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	res, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer res.Body.Close()

	var u domain.UserInfo
	require.NoError(t, json.NewDecoder(res.Body).Decode(&u))
	assert.Equal(t, "101", u.ID)
	assert.Equal(t, domain.RoleMerchant, u.Role)
}

func TestMerchant_CRUD(t *testing.T) {
	ts := newAPI(t)
	tok := login(t, ts, fixtures.MerchantEmail)

	status, r := call(t, ts, http.MethodGet, "/api/merchant/hotels", tok, nil)
	require.Equal(t, http.StatusOK, status)
	var mine []domain.Hotel
	require.NoError(t, json.Unmarshal(r.Data, &mine))
	assert.Len(t, mine, 5)

	h := fixtures.Hotels()[1]
	h.ID = 0
	h.Name = "深圳瑞吉酒店"
	status, r = call(t, ts, http.MethodPost, "/api/merchant/hotels", tok, h)
	require.Equal(t, http.StatusOK, status, r.Msg)
	var created domain.Hotel
	require.NoError(t, json.Unmarshal(r.Data, &created))
	assert.Equal(t, domain.StatusPending, created.Status)

	path := "/api/merchant/hotels/" + itoa(created.ID)
	created.Description = "湾区景观"
	status, r = call(t, ts, http.MethodPut, path, tok, created)
	require.Equal(t, http.StatusOK, status, r.Msg)

	status, r = call(t, ts, http.MethodGet, path, tok, nil)
	require.Equal(t, http.StatusOK, status)
	var got domain.Hotel
	require.NoError(t, json.Unmarshal(r.Data, &got))
	assert.Equal(t, "湾区景观", got.Description)

	status, _ = call(t, ts, http.MethodDelete, path, tok, nil)
	require.Equal(t, http.StatusOK, status)
	status, r = call(t, ts, http.MethodGet, path, tok, nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.False(t, r.Success)
}

func TestMerchant_ETag(t *testing.T) {
	ts := newAPI(t)
	tok := login(t, ts, fixtures.MerchantEmail)

	get := func(inm string) *http.Response {
		req, _ := http.NewRequest(http.MethodGet, ts.URL+"/api/merchant/hotels/5", nil)
		req.Header.Set("Authorization", "Bearer "+tok)
		if inm != "" {
			req.Header.Set("If-None-Match", inm)
		}
		res, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		res.Body.Close()
		return res
	}
	first := get("")
	etag := first.Header.Get("ETag")
	require.NotEmpty(t, etag)
	assert.Equal(t, http.StatusNotModified, get(etag).StatusCode)
}

func TestRegister_Validation(t *testing.T) {
	ts := newAPI(t)
	status, r := call(t, ts, http.MethodPost, "/api/user/register", "",
		domain.Registration{Name: "x", Email: "x@yisu.local", Password: "123", Role: domain.RoleMerchant})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "password must be at least 6 characters", r.Msg)

	status, r = call(t, ts, http.MethodPost, "/api/user/register", "",
		domain.Registration{Name: "x", Email: fixtures.AdminEmail, Password: "123456", Role: domain.RoleAdmin})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.False(t, r.Success)
}

func itoa(n int64) string {
	b, _ := json.Marshal(n)
	return string(b)
}
