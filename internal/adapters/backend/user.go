package backend

import (
	"context"
	"net/http"

	"yisu_backoffice/internal/domain"
)

func (c *Client) Login(ctx context.Context, cr domain.Credentials) (domain.LoginResult, error) {
	var out domain.LoginResult
	err := c.do(ctx, call{method: http.MethodPost, path: "/api/user/login", body: cr, out: &out, public: true})
	return out, err
}

func (c *Client) Register(ctx context.Context, r domain.Registration) error {
	return c.do(ctx, call{method: http.MethodPost, path: "/api/user/register", body: r, public: true})
}

// UserInfo accepts both a bare profile object and an enveloped one.
func (c *Client) UserInfo(ctx context.Context) (domain.UserInfo, error) {
	var out domain.UserInfo
	err := c.do(ctx, call{method: http.MethodGet, path: "/api/user/info", out: &out, readOnly: true})
	return out, err
}
