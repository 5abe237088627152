package app

import (
	"strings"

	"yisu_backoffice/internal/domain"
)

func deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

// normalizeHotel trims free text, drops blank tags and images, and derives
// the listing price from the cheapest room.
func normalizeHotel(h domain.Hotel) domain.Hotel {
	h = cloneHotel(h)
	h.Name = strings.TrimSpace(h.Name)
	h.EnglishName = strings.TrimSpace(h.EnglishName)
	h.Address = strings.TrimSpace(h.Address)
	h.City = strings.TrimSpace(h.City)
	h.Description = strings.TrimSpace(h.Description)
	h.CoverImage = strings.TrimSpace(h.CoverImage)
	h.OpenDate = strings.TrimSpace(h.OpenDate)
	if h.City == "" {
		h.City = cityOf(h.Address)
	}
	h.Tags = nonEmptyUnique(h.Tags)
	h.DetailImages = nonEmptyUnique(h.DetailImages)
	for i := range h.Rooms {
		h.Rooms[i].Name = strings.TrimSpace(h.Rooms[i].Name)
		h.Rooms[i].BedInfo = strings.TrimSpace(h.Rooms[i].BedInfo)
		h.Rooms[i].Price = h.Rooms[i].Price.Round(2)
	}
	h.Price = domain.MinRoomPrice(h.Rooms)
	return h
}

func nonEmptyUnique(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]struct{}, len(in))
	for _, s := range in {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

// cityOf guesses the city from a Chinese street address:
// "广东省广州市天河区..." -> "广州", "北京市海淀区..." -> "北京".
func cityOf(addr string) string {
	if i := strings.Index(addr, "省"); i >= 0 {
		addr = addr[i+len("省"):]
	}
	if i := strings.Index(addr, "市"); i > 0 {
		return addr[:i]
	}
	return ""
}
