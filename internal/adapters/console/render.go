// Package console is the interactive terminal front end of the back-office.
package console

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/mattn/go-runewidth"

	"yisu_backoffice/internal/app"
	"yisu_backoffice/internal/domain"
)

const (
	ansiReset  = "\x1b[0m"
	ansiRed    = "\x1b[31m"
	ansiGreen  = "\x1b[32m"
	ansiYellow = "\x1b[33m"
	ansiGray   = "\x1b[90m"
	ansiBold   = "\x1b[1m"
)

type painter struct{ color bool }

func (p painter) paint(code, s string) string {
	if !p.color || code == "" {
		return s
	}
	return code + s + ansiReset
}

var statusColors = map[domain.HotelStatus]string{
	domain.StatusPending:   ansiYellow,
	domain.StatusPublished: ansiGreen,
	domain.StatusRejected:  ansiRed,
	domain.StatusOffline:   ansiGray,
}

func badgeCell(s domain.HotelStatus) cell {
	if code, ok := statusColors[s]; ok {
		return cell{text: s.Label(), color: code}
	}
	return cell{text: string(s)}
}

// Badge is the colored status label shown in the review list.
func (p painter) Badge(s domain.HotelStatus) string {
	c := badgeCell(s)
	return p.paint(c.color, c.text)
}

// cell is one table value. Color wraps the text only, never the padding.
type cell struct{ text, color string }

func plain(format string, a ...any) cell { return cell{text: fmt.Sprintf(format, a...)} }

// table writes rows aligned by display width, so wide CJK characters take
// two columns as they do on a terminal.
func (p painter) table(w io.Writer, indent string, head []string, rows [][]cell) {
	widths := make([]int, len(head))
	for i, h := range head {
		widths[i] = runewidth.StringWidth(h)
	}
	for _, r := range rows {
		for i, c := range r {
			widths[i] = max(widths[i], runewidth.StringWidth(c.text))
		}
	}

	line := func(cs []cell) {
		var b strings.Builder
		b.WriteString(indent)
		for i, c := range cs {
			b.WriteString(p.paint(c.color, c.text))
			if i < len(cs)-1 {
				b.WriteString(strings.Repeat(" ", widths[i]-runewidth.StringWidth(c.text)+2))
			}
		}
		fmt.Fprintln(w, strings.TrimRight(b.String(), " "))
	}

	hc := make([]cell, len(head))
	for i, h := range head {
		hc[i] = cell{text: h}
	}
	line(hc)
	for _, r := range rows {
		line(r)
	}
}

// Notifier prints toasts on w. It is safe for concurrent use.
type Notifier struct {
	mu sync.Mutex
	w  io.Writer
	p  painter
}

func NewNotifier(w io.Writer, color bool) *Notifier {
	return &Notifier{w: w, p: painter{color: color}}
}

func (n *Notifier) Success(title, detail string) {
	n.print(n.p.paint(ansiGreen, "✓ "+title), detail)
}

func (n *Notifier) Error(title, detail string) {
	n.print(n.p.paint(ansiRed, "✗ "+title), detail)
}

func (n *Notifier) print(head, detail string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if detail == "" {
		fmt.Fprintln(n.w, head)
		return
	}
	fmt.Fprintf(n.w, "%s: %s\n", head, detail)
}

func (p painter) directory(w io.Writer, v app.DirectoryView) {
	c := v.Criteria
	var filters []string
	for _, f := range []struct{ k, v string }{
		{"name", c.Name}, {"owner", c.OwnerName}, {"status", string(c.Status)}, {"city", c.City},
	} {
		if f.v != "" {
			filters = append(filters, f.k+"="+f.v)
		}
	}
	head := fmt.Sprintf("page %d", c.Page)
	if len(filters) > 0 {
		head += " | " + strings.Join(filters, " ")
	}
	fmt.Fprintln(w, p.paint(ansiBold, head))

	if v.Err != "" {
		fmt.Fprintln(w, p.paint(ansiRed, v.Err))
	}
	if len(v.Items) == 0 {
		fmt.Fprintln(w, "no hotels")
		return
	}

	rows := make([][]cell, 0, len(v.Items))
	for _, h := range v.Items {
		acts := make([]string, 0, 2)
		for _, a := range domain.ActionsFor(h.Status) {
			acts = append(acts, string(a))
		}
		rows = append(rows, []cell{
			plain("%d", h.ID), plain("%s", h.Name), plain("%s", h.City), plain("%d", h.Star),
			plain("¥%s", h.Price.StringFixed(0)), plain("%s", h.OwnerName), badgeCell(h.Status),
			plain("%s", strings.Join(acts, ",")),
		})
	}
	p.table(w, "", []string{"ID", "NAME", "CITY", "STAR", "PRICE", "OWNER", "STATUS", "ACTIONS"}, rows)
}

func (p painter) listing(w io.Writer, h domain.HotelListing) {
	fmt.Fprintf(w, "%s %s\n", p.paint(ansiBold, h.Name), h.EnglishName)
	fmt.Fprintf(w, "  id %d, %d stars, from ¥%s\n", h.ID, h.Star, h.Price.StringFixed(2))
	fmt.Fprintf(w, "  %s\n", h.Address)
	fmt.Fprintf(w, "  owner %s, status %s\n", h.OwnerName, p.Badge(h.Status))
	if r := h.Reason(); r != "" {
		fmt.Fprintf(w, "  reject reason: %s\n", r)
	}
	var acts []string
	for _, a := range domain.ActionsFor(h.Status) {
		acts = append(acts, string(a))
	}
	fmt.Fprintf(w, "  actions: %s\n", strings.Join(acts, ", "))
}

func (p painter) hotels(w io.Writer, hs []domain.Hotel) {
	if len(hs) == 0 {
		fmt.Fprintln(w, "no hotels yet, use `new` to create one")
		return
	}
	rows := make([][]cell, 0, len(hs))
	for _, h := range hs {
		rows = append(rows, []cell{
			plain("%d", h.ID), plain("%s", h.Name), plain("%d", len(h.Rooms)),
			plain("¥%s", h.Price.StringFixed(0)), badgeCell(h.Status), plain("%s", h.Reason()),
		})
	}
	p.table(w, "", []string{"ID", "NAME", "ROOMS", "PRICE", "STATUS", "REASON"}, rows)
}

func (p painter) hotel(w io.Writer, h domain.Hotel) {
	id := "new"
	if h.ID != 0 {
		id = fmt.Sprint(h.ID)
	}
	fmt.Fprintf(w, "%s [%s] %s\n", p.paint(ansiBold, h.Name), id, p.Badge(h.Status))
	fmt.Fprintf(w, "  english: %s\n  address: %s\n  star: %d  open: %s\n", h.EnglishName, h.Address, h.Star, h.OpenDate)
	fmt.Fprintf(w, "  cover: %s\n", h.CoverImage)
	if len(h.Tags) > 0 {
		fmt.Fprintf(w, "  tags: %s\n", strings.Join(h.Tags, ", "))
	}
	if r := h.Reason(); r != "" {
		fmt.Fprintf(w, "  %s %s\n", p.paint(ansiRed, "rejected:"), r)
	}
	if len(h.Rooms) == 0 {
		fmt.Fprintln(w, "  no rooms")
		return
	}
	rows := make([][]cell, 0, len(h.Rooms))
	for _, r := range h.Rooms {
		rows = append(rows, []cell{
			plain("%d", r.ID), plain("%s", r.Name), plain("%dm²", r.Area), plain("%s", r.BedInfo),
			plain("¥%s", r.Price.StringFixed(2)), plain("%d", r.Stock),
		})
	}
	p.table(w, "  ", []string{"ROOM", "NAME", "AREA", "BED", "PRICE", "STOCK"}, rows)
}
