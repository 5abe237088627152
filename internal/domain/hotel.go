package domain

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

func init() {
	// backend speaks plain JSON numbers for prices (decimal(10,2) columns)
	decimal.MarshalJSONWithoutQuotes = true
}

type HotelStatus string

const (
	StatusPending   HotelStatus = "pending"
	StatusPublished HotelStatus = "published"
	StatusRejected  HotelStatus = "rejected"
	StatusOffline   HotelStatus = "offline"
)

// Statuses lists every status in display order.
var Statuses = []HotelStatus{StatusPending, StatusPublished, StatusRejected, StatusOffline}

func ParseStatus(s string) (HotelStatus, error) {
	switch HotelStatus(strings.ToLower(strings.TrimSpace(s))) {
	case StatusPending, StatusPublished, StatusRejected, StatusOffline:
		return HotelStatus(strings.ToLower(strings.TrimSpace(s))), nil
	default:
		return "", fmt.Errorf("unknown hotel status: %q", s)
	}
}

func (s HotelStatus) Valid() bool {
	_, err := ParseStatus(string(s))
	return err == nil
}

// Label is the operator-facing name shown in the review list.
func (s HotelStatus) Label() string {
	switch s {
	case StatusPending:
		return "In review"
	case StatusPublished:
		return "Approved"
	case StatusRejected:
		return "Rejected"
	case StatusOffline:
		return "Offline"
	}
	return string(s)
}

// HotelListing is one row of the admin review directory.
type HotelListing struct {
	ID           int64           `json:"id"`
	Name         string          `json:"name" validate:"required"`
	EnglishName  string          `json:"english_name,omitempty"`
	Address      string          `json:"address" validate:"required"`
	City         string          `json:"city,omitempty"`
	Star         int             `json:"star" validate:"gte=1,lte=5"`
	Price        decimal.Decimal `json:"price"` // lowest room price, computed by the backend
	Status       HotelStatus     `json:"status"`
	OwnerName    string          `json:"owner_name,omitempty"`
	RejectReason *string         `json:"reject_reason,omitempty"`
}

// Reason returns the rejection reason, or "" when none is recorded.
func (h HotelListing) Reason() string {
	if h.RejectReason == nil {
		return ""
	}
	return *h.RejectReason
}

// Hotel is the full record a merchant edits.
type Hotel struct {
	HotelListing
	OwnerID      int64    `json:"owner_id"`
	Score        float64  `json:"score"`
	Description  string   `json:"description,omitempty"`
	CoverImage   string   `json:"cover_image" validate:"required"`
	DetailImages []string `json:"detail_images"`
	OpenDate     string   `json:"open_date" validate:"required"`
	Tags         []string `json:"tags"`
	Longitude    string   `json:"longitude,omitempty"`
	Latitude     string   `json:"latitude,omitempty"`
	Rooms        []Room   `json:"rooms" validate:"dive"`
}

type Room struct {
	ID      int64           `json:"id,omitempty"`
	Name    string          `json:"name" validate:"required"`
	Area    int             `json:"area" validate:"gte=1"` // m²
	BedInfo string          `json:"bed_info" validate:"required"`
	Price   decimal.Decimal `json:"price" validate:"gte=0"`
	Stock   int             `json:"stock" validate:"gte=0"`
	Image   string          `json:"image,omitempty"`
}

// MinRoomPrice is the listing price: the cheapest room, or zero without rooms.
func MinRoomPrice(rooms []Room) decimal.Decimal {
	if len(rooms) == 0 {
		return decimal.Zero
	}
	min := rooms[0].Price
	for _, r := range rooms[1:] {
		if r.Price.LessThan(min) {
			min = r.Price
		}
	}
	return min.Round(2)
}
