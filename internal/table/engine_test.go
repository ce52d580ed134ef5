package table

import (
	"reflect"
	"testing"
)

type row struct {
	Name  string
	Score *float64
}

func score(v float64) *float64 { return &v }

var rowDesc = Descriptor[row]{
	Columns: []Column[row]{
		StringColumn("name", func(r row) string { return r.Name }),
		NumberColumn("score", func(r row) (float64, bool) {
			if r.Score == nil {
				return 0, false
			}
			return *r.Score, true
		}),
	},
	FilterFields: func(r row) []string { return []string{r.Name} },
}

func names(rows []row) []string {
	out := make([]string, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.Name)
	}
	return out
}

func TestFilterCaseInsensitive(t *testing.T) {
	rows := []row{{Name: "Sumur Batu"}, {Name: "Gunung Kidul"}, {Name: "batumarta"}}

	got := rowDesc.Filter(rows, "BATU")
	if want := []string{"Sumur Batu", "batumarta"}; !reflect.DeepEqual(names(got), want) {
		t.Fatalf("filter = %v, want %v", names(got), want)
	}

	if got := rowDesc.Filter(rows, "   "); len(got) != len(rows) {
		t.Fatalf("blank filter must keep all rows, got %d", len(got))
	}
}

func TestSortMissingValuesLastBothDirections(t *testing.T) {
	rows := []row{
		{Name: "a", Score: score(5)},
		{Name: "b"},
		{Name: "c", Score: score(3)},
		{Name: "d"},
		{Name: "e", Score: score(1)},
	}

	asc := rowDesc.Sort(rows, "score", OrderAsc)
	if want := []string{"e", "c", "a", "b", "d"}; !reflect.DeepEqual(names(asc), want) {
		t.Fatalf("asc = %v, want %v", names(asc), want)
	}

	desc := rowDesc.Sort(rows, "score", OrderDesc)
	if want := []string{"a", "c", "e", "b", "d"}; !reflect.DeepEqual(names(desc), want) {
		t.Fatalf("desc = %v, want %v", names(desc), want)
	}

	// Input order is never mutated.
	if rows[0].Name != "a" || rows[4].Name != "e" {
		t.Fatalf("sort mutated its input: %v", names(rows))
	}
}

func TestSortUnknownFieldKeepsOrder(t *testing.T) {
	rows := []row{{Name: "b"}, {Name: "a"}}
	got := rowDesc.Sort(rows, "nope", OrderAsc)
	if !reflect.DeepEqual(names(got), []string{"b", "a"}) {
		t.Fatalf("unknown field must keep order, got %v", names(got))
	}
}

func TestNextSortCycle(t *testing.T) {
	st := State{}

	st = NextSort(st, "name")
	if st.SortField != "name" || st.SortOrder != OrderAsc {
		t.Fatalf("first click: %+v", st)
	}

	st = NextSort(st, "name")
	if st.SortOrder != OrderDesc {
		t.Fatalf("second click: %+v", st)
	}

	st = NextSort(st, "name")
	if st.SortField != "" || st.SortOrder != OrderNone {
		t.Fatalf("third click must clear sort: %+v", st)
	}
}

func TestNextSortDifferentColumnRestartsAsc(t *testing.T) {
	st := State{SortField: "name", SortOrder: OrderDesc}

	st = NextSort(st, "score")
	if st.SortField != "score" || st.SortOrder != OrderAsc {
		t.Fatalf("column switch must restart at asc: %+v", st)
	}
}

func TestViewClientModePaginates(t *testing.T) {
	rows := make([]row, 0, 20)
	for i := 0; i < 20; i++ {
		rows = append(rows, row{Name: string(rune('a' + i))})
	}

	view := rowDesc.View(rows, State{Page: 2, PerPage: 5}, ModeClient, Meta{})
	if view.TotalPages != 4 || view.Total != 20 {
		t.Fatalf("meta wrong: %+v", view)
	}
	if len(view.Rows) != 5 || view.Rows[0].Name != "f" {
		t.Fatalf("page 2 wrong: %v", names(view.Rows))
	}
	if view.Mode != ModeClient {
		t.Fatalf("mode = %q", view.Mode)
	}
}

func TestViewOutOfRangePageResetsToFirst(t *testing.T) {
	rows := []row{
		{Name: "batu satu"}, {Name: "batu dua"}, {Name: "batu tiga"},
		{Name: "gunung"}, {Name: "lembah"}, {Name: "batu empat"},
	}

	// Page 3 was valid before the filter shrank the set; it must reset to
	// 1, not clamp to the new last page.
	view := rowDesc.View(rows, State{FilterText: "batu", Page: 3, PerPage: 2}, ModeClient, Meta{})
	if view.Page != 1 {
		t.Fatalf("page = %d, want 1", view.Page)
	}
	if view.Total != 4 || view.TotalPages != 2 {
		t.Fatalf("meta wrong: %+v", view)
	}
	if view.Rows[0].Name != "batu satu" {
		t.Fatalf("rows wrong: %v", names(view.Rows))
	}
}

func TestViewServerModeUsesEnvelope(t *testing.T) {
	rows := []row{{Name: "c"}, {Name: "a"}, {Name: "b"}}

	view := rowDesc.View(rows, State{SortField: "name", SortOrder: OrderAsc, PerPage: 20}, ModeServer, Meta{
		Page: 4, Total: 95, TotalPages: 5,
	})
	if view.Page != 4 || view.Total != 95 || view.TotalPages != 5 {
		t.Fatalf("server envelope ignored: %+v", view)
	}
	if len(view.Rows) != 3 {
		t.Fatalf("server mode must pass all rows through, got %d", len(view.Rows))
	}
	if view.Rows[0].Name != "a" {
		t.Fatalf("local sort must still apply: %v", names(view.Rows))
	}
}

func TestDetectMode(t *testing.T) {
	if got := DetectMode(100, 20); got != ModeClient {
		t.Fatalf("100 rows at 20/page must detect client, got %q", got)
	}
	if got := DetectMode(20, 20); got != ModeServer {
		t.Fatalf("exactly one page must detect server, got %q", got)
	}
	if got := DetectMode(3, 20); got != ModeServer {
		t.Fatalf("partial page must detect server, got %q", got)
	}
}

func TestPaginate(t *testing.T) {
	rows := []row{{Name: "a"}, {Name: "b"}, {Name: "c"}}

	if got := Paginate(rows, 2, 2); len(got) != 1 || got[0].Name != "c" {
		t.Fatalf("last partial page wrong: %v", names(got))
	}
	if got := Paginate(rows, 5, 2); got != nil {
		t.Fatalf("past-the-end page must be empty, got %v", names(got))
	}
	if got := Paginate(rows, 1, 0); len(got) != 3 {
		t.Fatalf("perPage 0 must return everything, got %d", len(got))
	}
}
