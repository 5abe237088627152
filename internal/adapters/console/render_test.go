package console

import (
	"bytes"
	"strings"
	"testing"

	"github.com/mattn/go-runewidth"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"yisu_backoffice/internal/app"
	"yisu_backoffice/internal/domain"
)

// column returns the display column at which sub starts on line.
func column(t *testing.T, line, sub string) int {
	t.Helper()
	i := strings.Index(line, sub)
	require.GreaterOrEqual(t, i, 0, "%q not in %q", sub, line)
	return runewidth.StringWidth(line[:i])
}

func TestDirectory_AlignsWideCharacters(t *testing.T) {
	var buf bytes.Buffer
	painter{}.directory(&buf, app.DirectoryView{
		Criteria: domain.DefaultCriteria(10),
		Items: []domain.HotelListing{
			{ID: 1, Name: "Hilton Pudong", City: "上海", Star: 5, Price: decimal.NewFromInt(1200), OwnerName: "ops", Status: domain.StatusPublished},
			{ID: 2, Name: "广州四季酒店", City: "广州", Star: 5, Price: decimal.NewFromInt(2388), OwnerName: "易宿商户", Status: domain.StatusPending},
		},
	})

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 4)
	head, first, second := lines[1], lines[2], lines[3]

	assert.Equal(t, column(t, head, "CITY"), column(t, first, "上海"))
	assert.Equal(t, column(t, head, "CITY"), column(t, second, "广州"))
	assert.Equal(t, column(t, head, "STATUS"), column(t, first, domain.StatusPublished.Label()))
	assert.Equal(t, column(t, head, "STATUS"), column(t, second, domain.StatusPending.Label()))
}

func TestHotels_ColorDoesNotShiftColumns(t *testing.T) {
	var buf bytes.Buffer
	painter{color: true}.hotels(&buf, []domain.Hotel{
		{HotelListing: domain.HotelListing{ID: 1, Name: "杭州西湖国宾馆", Price: decimal.NewFromInt(1680), Status: domain.StatusRejected, RejectReason: ptr("图片不清晰")}},
		{HotelListing: domain.HotelListing{ID: 12, Name: "Lakeview", Price: decimal.NewFromInt(900), Status: domain.StatusOffline}},
	})

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 3)
	strip := func(s string) string {
		for _, code := range []string{ansiReset, ansiRed, ansiGray, ansiYellow, ansiGreen} {
			s = strings.ReplaceAll(s, code, "")
		}
		return s
	}
	assert.Contains(t, lines[1], ansiRed+domain.StatusRejected.Label()+ansiReset)
	assert.Equal(t, column(t, lines[0], "PRICE"), column(t, strip(lines[1]), "¥1680"))
	assert.Equal(t, column(t, lines[0], "PRICE"), column(t, strip(lines[2]), "¥900"))
	assert.Equal(t, column(t, lines[0], "REASON"), column(t, strip(lines[1]), "图片不清晰"))
}

func ptr(s string) *string { return &s }
