package domain

import "context"

// DirectoryGateway is the admin side of the backend.
type DirectoryGateway interface {
	ListHotels(ctx context.Context, c FilterCriteria) ([]HotelListing, error)
	AuditHotel(ctx context.Context, req AuditRequest) error
}

// AuditRequest is the body of a status change.
type AuditRequest struct {
	HotelID      int64       `json:"hotel_id"`
	Status       HotelStatus `json:"status"`
	RejectReason *string     `json:"reject_reason,omitempty"`
}

type MerchantGateway interface {
	ListMyHotels(ctx context.Context) ([]Hotel, error)
	GetMyHotel(ctx context.Context, id int64) (Hotel, error)
	CreateHotel(ctx context.Context, h Hotel) (Hotel, error)
	UpdateHotel(ctx context.Context, id int64, h Hotel) (Hotel, error)
	DeleteHotel(ctx context.Context, id int64) error
}

type AuthGateway interface {
	Login(ctx context.Context, c Credentials) (LoginResult, error)
	Register(ctx context.Context, r Registration) error
	UserInfo(ctx context.Context) (UserInfo, error)
}

// Notifier shows toasts to the operator.
type Notifier interface {
	Success(title, detail string)
	Error(title, detail string)
}

// SessionStore persists the bearer token between runs.
type SessionStore interface {
	Load(ctx context.Context) (string, error)
	Save(ctx context.Context, token string) error
	Clear(ctx context.Context) error
}

type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttlSec int) error
	Del(ctx context.Context, key string) error
}

// HotelRepository backs the development backend.
type HotelRepository interface {
	// Write paths
	CreateHotel(ctx context.Context, h Hotel) (Hotel, error)
	UpdateHotel(ctx context.Context, h Hotel) (Hotel, error)
	DeleteHotel(ctx context.Context, id, ownerID int64) error
	// SetStatus moves the hotel from one status to another. It fails with
	// ErrConflict when the hotel is no longer in from.
	SetStatus(ctx context.Context, id int64, from, to HotelStatus, reason *string) error

	// Read paths
	GetHotel(ctx context.Context, id int64) (Hotel, error)
	ListHotels(ctx context.Context, c FilterCriteria) ([]HotelListing, error)
	ListByOwner(ctx context.Context, ownerID int64) ([]Hotel, error)
}

type UserRepository interface {
	CreateUser(ctx context.Context, u UserRecord) (UserRecord, error)
	UserByEmail(ctx context.Context, email string) (UserRecord, error)
	UserByID(ctx context.Context, id int64) (UserRecord, error)
}

// UserRecord is a stored account on the development backend.
type UserRecord struct {
	ID           int64
	Name         string
	Email        string
	Role         Role
	PasswordHash []byte
}

func (u UserRecord) Info() UserInfo {
	return UserInfo{ID: itoa(u.ID), Name: u.Name, Email: u.Email, Role: u.Role}
}
