// Package mysql is the HotelRepository and UserRepository of the development
// backend when it runs against MySQL.
package mysql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	mysqldrv "github.com/go-sql-driver/mysql"

	"yisu_backoffice/internal/domain"
)

const errDupEntry = 1062

func valStr(p *string) any {
	if p == nil {
		return nil
	}
	return *p
}

func valJSON(ss []string) any {
	if ss == nil {
		ss = []string{}
	}
	b, _ := json.Marshal(ss)
	return string(b)
}

func nullable(s sql.NullString) *string {
	if !s.Valid || s.String == "" {
		return nil
	}
	v := s.String
	return &v
}

// likeArg wraps s for a substring LIKE, escaping its wildcards.
func likeArg(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(s) + "%"
}

func isDup(err error) bool {
	var me *mysqldrv.MySQLError
	return errors.As(err, &me) && me.Number == errDupEntry
}

type Repo struct{ db *sql.DB }

func New(db *sql.DB) *Repo { return &Repo{db: db} }

type scanner interface {
	Scan(dest ...any) error
}

func scanHotel(s scanner) (domain.Hotel, error) {
	var (
		h          domain.Hotel
		reason     sql.NullString
		desc       sql.NullString
		imgs, tags []byte
	)
	err := s.Scan(
		&h.ID, &h.OwnerID, &h.OwnerName, &h.Name, &h.EnglishName, &h.Address, &h.City, &h.Star, &h.Price,
		&h.Status, &reason, &h.Score, &desc, &h.CoverImage, &imgs,
		&tags, &h.OpenDate, &h.Longitude, &h.Latitude,
	)
	if err != nil {
		return domain.Hotel{}, err
	}
	h.RejectReason = nullable(reason)
	h.Description = desc.String
	h.DetailImages = []string{}
	h.Tags = []string{}
	if len(imgs) > 0 {
		_ = json.Unmarshal(imgs, &h.DetailImages)
	}
	if len(tags) > 0 {
		_ = json.Unmarshal(tags, &h.Tags)
	}
	return h, nil
}

func (r *Repo) GetHotel(ctx context.Context, id int64) (domain.Hotel, error) {
	h, err := scanHotel(r.db.QueryRowContext(ctx, getHotelSQL, id))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Hotel{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.Hotel{}, err
	}
	if h.Rooms, err = r.rooms(ctx, h.ID); err != nil {
		return domain.Hotel{}, err
	}
	return h, nil
}

func (r *Repo) rooms(ctx context.Context, hotelID int64) ([]domain.Room, error) {
	rows, err := r.db.QueryContext(ctx, roomsSQL, hotelID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.Room{}
	for rows.Next() {
		var rm domain.Room
		if err := rows.Scan(&rm.ID, &rm.Name, &rm.Area, &rm.BedInfo, &rm.Price, &rm.Stock, &rm.Image); err != nil {
			return nil, err
		}
		out = append(out, rm)
	}
	return out, rows.Err()
}

// ListHotels matches name (Chinese or English) and owner name by substring,
// status and city exactly, newest first.
func (r *Repo) ListHotels(ctx context.Context, c domain.FilterCriteria) ([]domain.HotelListing, error) {
	var (
		where []string
		args  []any
	)
	if c.Name != "" {
		where = append(where, "(h.name LIKE ? OR h.english_name LIKE ?)")
		args = append(args, likeArg(c.Name), likeArg(c.Name))
	}
	if c.OwnerName != "" {
		where = append(where, "u.name LIKE ?")
		args = append(args, likeArg(c.OwnerName))
	}
	if c.Status != "" {
		where = append(where, "h.status = ?")
		args = append(args, string(c.Status))
	}
	if c.City != "" {
		where = append(where, "h.city = ?")
		args = append(args, c.City)
	}

	q := listHotelsPrefix
	if len(where) > 0 {
		q += "\nWHERE " + strings.Join(where, " AND ")
	}
	q += listHotelsSuffix
	args = append(args, c.Offset(), c.PageSize)

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.HotelListing{}
	for rows.Next() {
		var (
			l      domain.HotelListing
			reason sql.NullString
		)
		if err := rows.Scan(&l.ID, &l.Name, &l.EnglishName, &l.Address, &l.City, &l.Star, &l.Price,
			&l.Status, &l.OwnerName, &reason); err != nil {
			return nil, err
		}
		l.RejectReason = nullable(reason)
		out = append(out, l)
	}
	return out, rows.Err()
}

func (r *Repo) ListByOwner(ctx context.Context, ownerID int64) ([]domain.Hotel, error) {
	rows, err := r.db.QueryContext(ctx, listByOwnerSQL, ownerID)
	if err != nil {
		return nil, err
	}
	out := []domain.Hotel{}
	for rows.Next() {
		h, err := scanHotel(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		out = append(out, h)
	}
	err = rows.Err()
	rows.Close()
	if err != nil {
		return nil, err
	}

	for i := range out {
		if out[i].Rooms, err = r.rooms(ctx, out[i].ID); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (r *Repo) CreateHotel(ctx context.Context, h domain.Hotel) (domain.Hotel, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.Hotel{}, err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, insertHotelSQL,
		h.OwnerID, h.Name, h.EnglishName, h.Address, h.City, h.Star, h.Price, string(h.Status), valStr(h.RejectReason),
		h.Score, h.Description, h.CoverImage, valJSON(h.DetailImages), valJSON(h.Tags), h.OpenDate, h.Longitude, h.Latitude,
	)
	if err != nil {
		return domain.Hotel{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return domain.Hotel{}, err
	}
	for i := range h.Rooms {
		h.Rooms[i].ID = 0
	}
	if err := insertRooms(ctx, tx, id, h.Rooms); err != nil {
		return domain.Hotel{}, err
	}
	if err := tx.Commit(); err != nil {
		return domain.Hotel{}, err
	}
	return r.GetHotel(ctx, id)
}

// UpdateHotel rewrites the editable columns and replaces the room set. Rooms
// that already belonged to the hotel keep their ids.
func (r *Repo) UpdateHotel(ctx context.Context, h domain.Hotel) (domain.Hotel, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.Hotel{}, err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, updateHotelSQL,
		h.Name, h.EnglishName, h.Address, h.City, h.Star, h.Price, h.Score, h.Description,
		h.CoverImage, valJSON(h.DetailImages), valJSON(h.Tags), h.OpenDate, h.Longitude, h.Latitude,
		h.ID,
	)
	if err != nil {
		return domain.Hotel{}, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		if err := exists(ctx, tx, h.ID); err != nil {
			return domain.Hotel{}, err
		}
	}

	owned, err := roomIDs(ctx, tx, h.ID)
	if err != nil {
		return domain.Hotel{}, err
	}
	for i := range h.Rooms {
		if !owned[h.Rooms[i].ID] {
			h.Rooms[i].ID = 0
		}
	}
	if _, err := tx.ExecContext(ctx, deleteRoomsSQL, h.ID); err != nil {
		return domain.Hotel{}, err
	}
	if err := insertRooms(ctx, tx, h.ID, h.Rooms); err != nil {
		return domain.Hotel{}, err
	}
	if err := tx.Commit(); err != nil {
		return domain.Hotel{}, err
	}
	return r.GetHotel(ctx, h.ID)
}

func roomIDs(ctx context.Context, tx *sql.Tx, hotelID int64) (map[int64]bool, error) {
	rows, err := tx.QueryContext(ctx, `SELECT id FROM rooms WHERE hotel_id=? FOR UPDATE`, hotelID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := map[int64]bool{}
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out[id] = true
	}
	return out, rows.Err()
}

func insertRooms(ctx context.Context, tx *sql.Tx, hotelID int64, rooms []domain.Room) error {
	if len(rooms) == 0 {
		return nil
	}
	values := make([]string, 0, len(rooms))
	args := make([]any, 0, len(rooms)*8)
	for _, rm := range rooms {
		values = append(values, "(NULLIF(?,0),?,?,?,?,?,?,?)")
		args = append(args, rm.ID, hotelID, rm.Name, rm.Area, rm.BedInfo, rm.Price, rm.Stock, rm.Image)
	}
	_, err := tx.ExecContext(ctx, insertRoomsPrefix+strings.Join(values, ","), args...)
	return err
}

func exists(ctx context.Context, tx *sql.Tx, id int64) error {
	var one int
	err := tx.QueryRowContext(ctx, `SELECT 1 FROM hotels WHERE id=?`, id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrNotFound
	}
	return err
}

func (r *Repo) DeleteHotel(ctx context.Context, id, ownerID int64) error {
	res, err := r.db.ExecContext(ctx, deleteHotelSQL, id, ownerID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// SetStatus changes the status of a row still in from. A nil reason keeps the
// stored one, "" clears it. Zero affected rows means the hotel is gone or
// another audit moved it first.
func (r *Repo) SetStatus(ctx context.Context, id int64, from, to domain.HotelStatus, reason *string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var res sql.Result
	if reason == nil {
		res, err = tx.ExecContext(ctx, setStatusSQL, string(to), id, string(from))
	} else {
		res, err = tx.ExecContext(ctx, setStatusReasonSQL, string(to), *reason, id, string(from))
	}
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		if err := exists(ctx, tx, id); err != nil {
			return err
		}
		return fmt.Errorf("hotel %d is no longer %s: %w", id, from, domain.ErrConflict)
	}
	return tx.Commit()
}

func (r *Repo) CreateUser(ctx context.Context, u domain.UserRecord) (domain.UserRecord, error) {
	res, err := r.db.ExecContext(ctx, insertUserSQL, u.Name, u.Email, string(u.Role), u.PasswordHash)
	if isDup(err) {
		return domain.UserRecord{}, domain.ErrConflict
	}
	if err != nil {
		return domain.UserRecord{}, err
	}
	if u.ID, err = res.LastInsertId(); err != nil {
		return domain.UserRecord{}, err
	}
	return u, nil
}

func (r *Repo) UserByEmail(ctx context.Context, email string) (domain.UserRecord, error) {
	return r.user(ctx, userByEmailSQL, strings.ToLower(email))
}

func (r *Repo) UserByID(ctx context.Context, id int64) (domain.UserRecord, error) {
	return r.user(ctx, userByIDSQL, id)
}

func (r *Repo) user(ctx context.Context, q string, arg any) (domain.UserRecord, error) {
	var u domain.UserRecord
	err := r.db.QueryRowContext(ctx, q, arg).Scan(&u.ID, &u.Name, &u.Email, &u.Role, &u.PasswordHash)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.UserRecord{}, domain.ErrNotFound
	}
	return u, err
}
