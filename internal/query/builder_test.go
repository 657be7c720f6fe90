package query

import (
	"net/url"
	"reflect"
	"strings"
	"testing"
)

func TestBuild_NoFiltersDefaultSort(t *testing.T) {
	q := Users.Build(Request{})

	if len(q.Args) != 0 {
		t.Fatalf("expected no args, got %v", q.Args)
	}
	if strings.Contains(q.SQL, "WHERE") {
		t.Fatalf("unexpected WHERE clause: %s", q.SQL)
	}
	if !strings.HasSuffix(q.SQL, "ORDER BY u.name ASC, u.id ASC") {
		t.Fatalf("unexpected ordering: %s", q.SQL)
	}
	if q.SortBy != "name" || q.Direction != Asc {
		t.Fatalf("unexpected sort %s %s", q.SortBy, q.Direction)
	}
}

func TestBuild_FiltersAreBound(t *testing.T) {
	hostile := "x'; DROP TABLE users; --"
	q := Users.Build(Request{
		Filters: map[string]string{
			"name":    hostile,
			"role":    "store_owner",
			"address": "Main",
		},
	})

	if strings.Contains(q.SQL, hostile) || strings.Contains(q.SQL, "DROP") {
		t.Fatalf("caller value leaked into SQL: %s", q.SQL)
	}
	wantWhere := `WHERE u.name ILIKE $1 ESCAPE '\' AND u.address ILIKE $2 ESCAPE '\' AND u.role = $3`
	if !strings.Contains(q.SQL, wantWhere) {
		t.Fatalf("expected %q in %s", wantWhere, q.SQL)
	}
	want := []any{"%" + hostile + "%", "%Main%", "store_owner"}
	if !reflect.DeepEqual(q.Args, want) {
		t.Fatalf("expected args %v, got %v", want, q.Args)
	}
}

func TestBuild_LikeWildcardsEscaped(t *testing.T) {
	q := AdminStores.Build(Request{Filters: map[string]string{"name": `100%_off\`}})

	want := `%100\%\_off\\%`
	if len(q.Args) != 1 || q.Args[0] != want {
		t.Fatalf("expected escaped pattern %q, got %v", want, q.Args)
	}
}

func TestBuild_UnknownAndEmptyFiltersIgnored(t *testing.T) {
	q := Users.Build(Request{Filters: map[string]string{
		"password_hash": "abc",
		"name":          "   ",
		"1=1 OR":        "x",
	}})

	if strings.Contains(q.SQL, "WHERE") || len(q.Args) != 0 {
		t.Fatalf("expected no conditions, got %s %v", q.SQL, q.Args)
	}
}

func TestBuild_SortAllowList(t *testing.T) {
	cases := []struct {
		name    string
		listing Listing
		sortBy  string
		order   string
		suffix  string
		field   string
	}{
		{"users email desc", Users, "email", "desc", "ORDER BY u.email DESC, u.id ASC", "email"},
		{"users created_at mixed case", Users, "created_at", "DeSc", "ORDER BY u.created_at DESC, u.id ASC", "created_at"},
		{"users password falls back", Users, "password", "asc", "ORDER BY u.name ASC, u.id ASC", "name"},
		{"users injection falls back", Users, "name; DROP TABLE users", "desc", "ORDER BY u.name DESC, u.id ASC", "name"},
		{"users bad direction", Users, "role", "sideways", "ORDER BY u.role ASC, u.id ASC", "role"},
		{"users direction injection", Users, "role", "ASC; DELETE FROM users", "ORDER BY u.role ASC, u.id ASC", "role"},
		{"stores by average", AdminStores, "average_rating", "desc", "ORDER BY average_rating DESC, s.id ASC", "average_rating"},
		{"stores role not allowed", AdminStores, "role", "asc", "ORDER BY s.name ASC, s.id ASC", "name"},
		{"public stores by total", PublicStores(1), "total_ratings", "asc", "ORDER BY total_ratings ASC, s.id ASC", "total_ratings"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			q := tc.listing.Build(Request{SortBy: tc.sortBy, SortOrder: tc.order})
			if !strings.HasSuffix(q.SQL, tc.suffix) {
				t.Fatalf("expected suffix %q, got %s", tc.suffix, q.SQL)
			}
			if q.SortBy != tc.field {
				t.Fatalf("expected sort field %q, got %q", tc.field, q.SortBy)
			}
		})
	}
}

func TestBuild_ZeroRatingDefaults(t *testing.T) {
	for name, l := range map[string]Listing{"users": Users, "admin": AdminStores, "public": PublicStores(1)} {
		q := l.Build(Request{})
		if !strings.Contains(q.SQL, "COALESCE(AVG(r.rating), 0)") {
			t.Fatalf("%s: average must default to 0: %s", name, q.SQL)
		}
		if !strings.Contains(q.SQL, "LEFT JOIN ratings r ON r.store_id = s.id") {
			t.Fatalf("%s: ratings must be left-joined: %s", name, q.SQL)
		}
		if !strings.Contains(q.SQL, "GROUP BY") {
			t.Fatalf("%s: expected GROUP BY: %s", name, q.SQL)
		}
	}
	if !strings.Contains(AdminStores.Build(Request{}).SQL, "COUNT(r.id) AS total_ratings") {
		t.Fatal("store listing must count rating rows, not store rows")
	}
}

func TestPublicStores_ViewerBoundFirst(t *testing.T) {
	q := PublicStores(77).Build(Request{Filters: map[string]string{"address": "Park"}})

	if !strings.Contains(q.SQL, "LEFT JOIN ratings ur ON ur.store_id = s.id AND ur.user_id = $1") {
		t.Fatalf("expected viewer join on $1: %s", q.SQL)
	}
	if !strings.Contains(q.SQL, `s.address ILIKE $2`) {
		t.Fatalf("expected filter on $2: %s", q.SQL)
	}
	want := []any{int64(77), "%Park%"}
	if !reflect.DeepEqual(q.Args, want) {
		t.Fatalf("expected args %v, got %v", want, q.Args)
	}
	if !strings.Contains(q.SQL, "GROUP BY s.id, s.name, s.email, s.address, s.created_at, ur.rating") {
		t.Fatalf("own rating must be part of the grouping: %s", q.SQL)
	}
}

func TestFromValues(t *testing.T) {
	v := url.Values{}
	v.Set("name", "corner")
	v.Set("sortBy", "email")
	v.Set("sortOrder", "desc")

	req := FromValues(v)
	if req.SortBy != "email" || req.SortOrder != "desc" {
		t.Fatalf("unexpected sort: %+v", req)
	}
	if req.Filters["name"] != "corner" {
		t.Fatalf("unexpected filters: %+v", req.Filters)
	}
	if _, ok := req.Filters["sortBy"]; ok {
		t.Fatal("sort params must not become filters")
	}
}

func TestParseDirection(t *testing.T) {
	for in, want := range map[string]Direction{"asc": Asc, "DESC": Desc, " desc ": Desc, "": Asc, "down": Asc} {
		if got := ParseDirection(in); got != want {
			t.Errorf("ParseDirection(%q) = %s, want %s", in, got, want)
		}
	}
}
