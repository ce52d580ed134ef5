// Package table is the shared sort/filter/paginate engine behind every
// data table in the dashboard. It operates purely on already-fetched
// in-memory rows; nothing in here can fail.
package table

import (
	"sort"
	"strings"
	"time"
)

// Order is the tri-state sort direction of one table instance.
type Order string

const (
	OrderNone Order = "none"
	OrderAsc  Order = "asc"
	OrderDesc Order = "desc"
)

// Mode says who owns pagination for the current row set.
type Mode string

const (
	// ModeClient means the caller fetched every matching row up front and
	// the engine slices pages locally, ignoring server page metadata.
	ModeClient Mode = "client"
	// ModeServer means the rows are already one server-side page; page
	// count and navigation come from the server pagination envelope.
	ModeServer Mode = "server"
)

// State is the UI-local query state of one table instance.
type State struct {
	FilterText string
	SortField  string
	SortOrder  Order
	Page       int
	PerPage    int
}

// Column describes one sortable field. Compare orders two rows that both
// have the value; Missing marks rows without one, which always sort after
// rows that have one, in either direction.
type Column[T any] struct {
	Key     string
	Compare func(a, b T) int
	Missing func(T) bool
}

// Descriptor declares the sortable columns and filterable fields of one
// entity type. One descriptor instance serves every table of that entity.
type Descriptor[T any] struct {
	Columns      []Column[T]
	FilterFields func(T) []string
}

// Meta is the server-supplied pagination envelope, used in ModeServer.
type Meta struct {
	Page       int
	Total      int
	TotalPages int
}

// Page is one rendered table view.
type Page[T any] struct {
	Rows       []T  `json:"rows"`
	Page       int  `json:"page"`
	PerPage    int  `json:"perPage"`
	Total      int  `json:"total"`
	TotalPages int  `json:"totalPages"`
	Mode       Mode `json:"mode"`
}

// Filter keeps rows whose declared filter fields contain the query,
// case-insensitively. Empty query returns the input unchanged.
func (d Descriptor[T]) Filter(records []T, filterText string) []T {
	q := strings.ToLower(strings.TrimSpace(filterText))
	if q == "" {
		return records
	}

	out := make([]T, 0, len(records))
	for _, rec := range records {
		for _, field := range d.FilterFields(rec) {
			if strings.Contains(strings.ToLower(field), q) {
				out = append(out, rec)
				break
			}
		}
	}
	return out
}

// Sort returns a stably sorted copy. OrderNone or an unknown field keeps
// the incoming order. Rows missing the sort value go last regardless of
// direction.
func (d Descriptor[T]) Sort(records []T, field string, order Order) []T {
	out := append([]T(nil), records...)
	if order == OrderNone || order == "" || field == "" {
		return out
	}

	col, ok := d.column(field)
	if !ok {
		return out
	}

	dir := 1
	if order == OrderDesc {
		dir = -1
	}

	sort.SliceStable(out, func(i, j int) bool {
		var mi, mj bool
		if col.Missing != nil {
			mi, mj = col.Missing(out[i]), col.Missing(out[j])
		}
		if mi != mj {
			return !mi
		}
		if mi {
			return false
		}
		return dir*col.Compare(out[i], out[j]) < 0
	})
	return out
}

// Paginate slices one page out of the row set.
func Paginate[T any](records []T, page, perPage int) []T {
	if perPage <= 0 {
		return records
	}
	if page < 1 {
		page = 1
	}
	start := (page - 1) * perPage
	if start >= len(records) {
		return nil
	}
	end := start + perPage
	if end > len(records) {
		end = len(records)
	}
	return records[start:end]
}

// View produces the visible page for the given state. In ModeClient the
// engine filters, sorts, clamps and slices; in ModeServer the rows pass
// through (still locally filtered and sorted, since the set is one page)
// and the counts come from the server envelope.
func (d Descriptor[T]) View(records []T, st State, mode Mode, server Meta) Page[T] {
	rows := d.Sort(d.Filter(records, st.FilterText), st.SortField, st.SortOrder)

	if mode == ModeServer {
		page := server.Page
		if page < 1 {
			page = 1
		}
		return Page[T]{
			Rows:       rows,
			Page:       page,
			PerPage:    st.PerPage,
			Total:      server.Total,
			TotalPages: server.TotalPages,
			Mode:       ModeServer,
		}
	}

	total := len(rows)
	totalPages := 0
	if st.PerPage > 0 {
		totalPages = (total + st.PerPage - 1) / st.PerPage
	}
	page := st.Page
	// Out-of-range pages reset to the first page, not the last one.
	if page < 1 || page > totalPages {
		page = 1
	}

	return Page[T]{
		Rows:       Paginate(rows, page, st.PerPage),
		Page:       page,
		PerPage:    st.PerPage,
		Total:      total,
		TotalPages: totalPages,
		Mode:       ModeClient,
	}
}

// NextSort advances the per-table sort cycle for a click on field:
// none -> asc -> desc -> none on the same column; a different column
// always restarts at asc.
func NextSort(cur State, field string) State {
	next := cur
	if cur.SortField != field {
		next.SortField = field
		next.SortOrder = OrderAsc
		return next
	}
	switch cur.SortOrder {
	case OrderNone, "":
		next.SortOrder = OrderAsc
	case OrderAsc:
		next.SortOrder = OrderDesc
	default:
		next.SortField = ""
		next.SortOrder = OrderNone
	}
	return next
}

// DetectMode is the legacy inference used when no explicit mode signal is
// available: more than one page's worth of rows means the caller fetched
// everything. A server page of exactly perPage+1 rows would be
// misdetected; callers that know how they fetched should pass the mode
// explicitly instead.
func DetectMode(recordCount, perPage int) Mode {
	if perPage > 0 && recordCount > perPage {
		return ModeClient
	}
	return ModeServer
}

func (d Descriptor[T]) column(key string) (Column[T], bool) {
	for _, c := range d.Columns {
		if c.Key == key {
			return c, true
		}
	}
	return Column[T]{}, false
}

// StringColumn sorts by a lowercased string key.
func StringColumn[T any](key string, f func(T) string) Column[T] {
	return Column[T]{
		Key: key,
		Compare: func(a, b T) int {
			return strings.Compare(strings.ToLower(f(a)), strings.ToLower(f(b)))
		},
	}
}

// NumberColumn sorts by a numeric key; ok=false marks the value missing.
func NumberColumn[T any](key string, f func(T) (float64, bool)) Column[T] {
	return Column[T]{
		Key: key,
		Compare: func(a, b T) int {
			va, _ := f(a)
			vb, _ := f(b)
			switch {
			case va < vb:
				return -1
			case va > vb:
				return 1
			default:
				return 0
			}
		},
		Missing: func(r T) bool {
			_, ok := f(r)
			return !ok
		},
	}
}

// RankColumn sorts by a fixed rank table; rank 0 marks the value unset.
func RankColumn[T any](key string, f func(T) int) Column[T] {
	return Column[T]{
		Key: key,
		Compare: func(a, b T) int {
			return f(a) - f(b)
		},
		Missing: func(r T) bool {
			return f(r) == 0
		},
	}
}

// TimeColumn sorts by a nullable timestamp; nil sorts last either way.
func TimeColumn[T any](key string, f func(T) *time.Time) Column[T] {
	return Column[T]{
		Key: key,
		Compare: func(a, b T) int {
			ta, tb := f(a), f(b)
			switch {
			case ta.Before(*tb):
				return -1
			case ta.After(*tb):
				return 1
			default:
				return 0
			}
		},
		Missing: func(r T) bool {
			return f(r) == nil
		},
	}
}
