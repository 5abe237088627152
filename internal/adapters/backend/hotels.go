package backend

import (
	"context"
	"fmt"
	"net/http"

	"yisu_backoffice/internal/domain"
)

const (
	pathAdminHotels = "/api/admin/hotels"
	pathAdminAudit  = "/api/admin/audit"
	pathMerchant    = "/api/merchant/hotels"
)

// ListHotels makes exactly one attempt. The directory reports a failed page
// to the operator instead of holding it behind retries.
func (c *Client) ListHotels(ctx context.Context, crit domain.FilterCriteria) ([]domain.HotelListing, error) {
	var out []domain.HotelListing
	err := c.do(ctx, call{method: http.MethodPost, path: pathAdminHotels, body: crit, out: &out})
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []domain.HotelListing{}
	}
	return out, nil
}

func (c *Client) AuditHotel(ctx context.Context, req domain.AuditRequest) error {
	return c.do(ctx, call{method: http.MethodPost, path: pathAdminAudit, body: req})
}

func (c *Client) ListMyHotels(ctx context.Context) ([]domain.Hotel, error) {
	var out []domain.Hotel
	if err := c.do(ctx, call{method: http.MethodGet, path: pathMerchant, out: &out, readOnly: true}); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetMyHotel(ctx context.Context, id int64) (domain.Hotel, error) {
	var out domain.Hotel
	err := c.do(ctx, call{method: http.MethodGet, path: merchantPath(id), out: &out, readOnly: true})
	return out, err
}

func (c *Client) CreateHotel(ctx context.Context, h domain.Hotel) (domain.Hotel, error) {
	var out domain.Hotel
	err := c.do(ctx, call{method: http.MethodPost, path: pathMerchant, body: h, out: &out})
	return out, err
}

func (c *Client) UpdateHotel(ctx context.Context, id int64, h domain.Hotel) (domain.Hotel, error) {
	var out domain.Hotel
	err := c.do(ctx, call{method: http.MethodPut, path: merchantPath(id), body: h, out: &out})
	return out, err
}

func (c *Client) DeleteHotel(ctx context.Context, id int64) error {
	return c.do(ctx, call{method: http.MethodDelete, path: merchantPath(id)})
}

func merchantPath(id int64) string { return fmt.Sprintf("%s/%d", pathMerchant, id) }
