package mysql

const hotelColumns = `
  h.id, h.owner_id, u.name, h.name, h.english_name, h.address, h.city, h.star, h.price,
  h.status, h.reject_reason, h.score, h.description, h.cover_image, h.detail_images,
  h.tags, h.open_date, h.longitude, h.latitude`

const listingColumns = `
  h.id, h.name, h.english_name, h.address, h.city, h.star, h.price, h.status, u.name, h.reject_reason`

const getHotelSQL = `
SELECT` + hotelColumns + `
FROM hotels h
JOIN users u ON u.id = h.owner_id
WHERE h.id = ?`

const listByOwnerSQL = `
SELECT` + hotelColumns + `
FROM hotels h
JOIN users u ON u.id = h.owner_id
WHERE h.owner_id = ?
ORDER BY h.id DESC`

// listHotelsPrefix is completed with a WHERE clause built from the filters.
const listHotelsPrefix = `
SELECT` + listingColumns + `
FROM hotels h
JOIN users u ON u.id = h.owner_id`

const listHotelsSuffix = `
ORDER BY h.id DESC
LIMIT ?, ?`

const insertHotelSQL = `
INSERT INTO hotels
  (owner_id, name, english_name, address, city, star, price, status, reject_reason,
   score, description, cover_image, detail_images, tags, open_date, longitude, latitude)
VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`

const updateHotelSQL = `
UPDATE hotels SET
  name=?, english_name=?, address=?, city=?, star=?, price=?, score=?, description=?,
  cover_image=?, detail_images=?, tags=?, open_date=?, longitude=?, latitude=?
WHERE id=?`

const setStatusSQL = `UPDATE hotels SET status=? WHERE id=? AND status=?`

const setStatusReasonSQL = `UPDATE hotels SET status=?, reject_reason=NULLIF(?, '') WHERE id=? AND status=?`

const deleteHotelSQL = `DELETE FROM hotels WHERE id=? AND owner_id=?`

const roomsSQL = `
SELECT id, name, area, bed_info, price, stock, image
FROM rooms WHERE hotel_id=? ORDER BY id`

const deleteRoomsSQL = `DELETE FROM rooms WHERE hotel_id=?`

// insertRoomsPrefix takes one "(?,?,?,?,?,?,?,?)" group per room; an id of
// 0 becomes NULL so AUTO_INCREMENT assigns one.
const insertRoomsPrefix = `
INSERT INTO rooms (id, hotel_id, name, area, bed_info, price, stock, image) VALUES `

const insertUserSQL = `INSERT INTO users (name, email, role, password_hash) VALUES (?,?,?,?)`

const userByEmailSQL = `SELECT id, name, email, role, password_hash FROM users WHERE email=?`

const userByIDSQL = `SELECT id, name, email, role, password_hash FROM users WHERE id=?`
