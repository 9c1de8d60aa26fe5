package feed

import (
	"context"
	"errors"
	"math"
	"strconv"
	"strings"

	"github.com/cppla/yatube/models"
	"github.com/cppla/yatube/store"
)

// Window is the position of one page inside a listing of Total items.
type Window struct {
	Number      int
	Size        int
	Offset      int
	Total       int64
	TotalPages  int
	HasNext     bool
	HasPrevious bool
}

// NewWindow clamps requested into [1, TotalPages]. An empty listing still has one page.
func NewWindow(total int64, size, requested int) Window {
	if size < 1 {
		size = 1
	}
	if total < 0 {
		total = 0
	}
	pages := int((total + int64(size) - 1) / int64(size))
	if pages < 1 {
		pages = 1
	}
	number := requested
	if number < 1 {
		number = 1
	}
	if number > pages {
		number = pages
	}
	return Window{
		Number:      number,
		Size:        size,
		Offset:      (number - 1) * size,
		Total:       total,
		TotalPages:  pages,
		HasNext:     number < pages,
		HasPrevious: number > 1,
	}
}

// ParsePage reads a page number from a query value. Missing or non-numeric
// values mean page 1. Numbers too large for an int saturate so NewWindow can
// clamp them to the last page.
func ParsePage(raw string) int {
	raw = strings.TrimSpace(raw)
	n, err := strconv.Atoi(raw)
	if err != nil {
		if errors.Is(err, strconv.ErrRange) && !strings.HasPrefix(raw, "-") {
			return math.MaxInt
		}
		return 1
	}
	return n
}

// ParseAnchor reads a listing anchor. Anything unparsable means "not pinned".
func ParseAnchor(raw string) uint {
	n, err := strconv.ParseUint(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return 0
	}
	return uint(n)
}

// Page is one slice of a listing plus the metadata needed to walk it.
// Anchor is echoed back by clients to keep later pages stable while new posts arrive.
type Page struct {
	Items       []models.Post `json:"items"`
	Number      int           `json:"page"`
	Size        int           `json:"page_size"`
	Total       int64         `json:"total"`
	TotalPages  int           `json:"total_pages"`
	HasNext     bool          `json:"has_next"`
	HasPrevious bool          `json:"has_previous"`
	Anchor      uint          `json:"anchor"`
}

// Paginate returns page number of listing. When anchor is zero the listing is
// pinned at its current head, so the returned Anchor identifies this snapshot.
func Paginate(ctx context.Context, listing store.Listing, size, number int, anchor uint) (*Page, error) {
	if anchor == 0 {
		head, err := listing.Head(ctx)
		if err != nil {
			return nil, err
		}
		anchor = head
	}
	pinned := listing.Until(anchor)

	total, err := pinned.Count(ctx)
	if err != nil {
		return nil, err
	}
	w := NewWindow(total, size, number)

	items := []models.Post{}
	if total > 0 {
		items, err = pinned.Slice(ctx, w.Offset, w.Size)
		if err != nil {
			return nil, err
		}
	}
	return &Page{
		Items:       items,
		Number:      w.Number,
		Size:        w.Size,
		Total:       w.Total,
		TotalPages:  w.TotalPages,
		HasNext:     w.HasNext,
		HasPrevious: w.HasPrevious,
		Anchor:      anchor,
	}, nil
}
