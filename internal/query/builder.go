// Package query builds the filtered, sorted listing statements for users and
// stores.
//
// Only identifiers from a listing's own allow-lists are ever written into the
// SQL text. Every caller-supplied value is bound as a parameter.
package query

import (
	"net/url"
	"strings"

	"github.com/jmoiron/sqlx"
)

type Direction string

const (
	Asc  Direction = "ASC"
	Desc Direction = "DESC"
)

// ParseDirection accepts "asc" or "desc" in any case; anything else is Asc.
func ParseDirection(s string) Direction {
	if strings.EqualFold(strings.TrimSpace(s), "desc") {
		return Desc
	}
	return Asc
}

type Match int

const (
	// Contains is a case-insensitive substring match.
	Contains Match = iota
	// Equals is an exact match, used for enum columns.
	Equals
)

// Filter binds a request parameter to a column.
type Filter struct {
	Param  string
	Column string
	Match  Match
}

const (
	DefaultSort  = "name"
	SortByParam  = "sortBy"
	SortDirParam = "sortOrder"
)

// Listing describes one list query: its projection, joins, grouping and the
// filter and sort fields callers may use.
type Listing struct {
	from     string
	columns  []string
	joins    []string
	joinArgs []any
	groupBy  []string
	filters  []Filter
	sorts    map[string]string
	tieBreak string
}

// Request carries caller-supplied filter values and sort choice.
type Request struct {
	Filters   map[string]string
	SortBy    string
	SortOrder string
}

// FromValues reads a Request from URL query parameters.
func FromValues(v url.Values) Request {
	req := Request{
		Filters:   make(map[string]string, len(v)),
		SortBy:    v.Get(SortByParam),
		SortOrder: v.Get(SortDirParam),
	}
	for key := range v {
		if key == SortByParam || key == SortDirParam {
			continue
		}
		req.Filters[key] = v.Get(key)
	}
	return req
}

// Query is a ready-to-run statement with its positional arguments.
type Query struct {
	SQL       string
	Args      []any
	SortBy    string
	Direction Direction
}

// SortColumn resolves a requested sort field against the allow-list and
// falls back to DefaultSort.
func (l Listing) SortColumn(field string) (string, string) {
	if col, ok := l.sorts[field]; ok {
		return field, col
	}
	return DefaultSort, l.sorts[DefaultSort]
}

// Build assembles the statement for req. It never fails: unknown filters are
// dropped and invalid sort input falls back to name ascending.
func (l Listing) Build(req Request) Query {
	var sb strings.Builder
	args := make([]any, 0, len(l.joinArgs)+len(l.filters))

	sb.WriteString("SELECT ")
	sb.WriteString(strings.Join(l.columns, ", "))
	sb.WriteString(" FROM ")
	sb.WriteString(l.from)
	for _, j := range l.joins {
		sb.WriteString(" ")
		sb.WriteString(j)
	}
	args = append(args, l.joinArgs...)

	conds := make([]string, 0, len(l.filters))
	for _, f := range l.filters {
		v := strings.TrimSpace(req.Filters[f.Param])
		if v == "" {
			continue
		}
		switch f.Match {
		case Equals:
			conds = append(conds, f.Column+" = ?")
			args = append(args, v)
		default:
			conds = append(conds, f.Column+` ILIKE ? ESCAPE '\'`)
			args = append(args, "%"+escapeLike(v)+"%")
		}
	}
	if len(conds) > 0 {
		sb.WriteString(" WHERE ")
		sb.WriteString(strings.Join(conds, " AND "))
	}

	if len(l.groupBy) > 0 {
		sb.WriteString(" GROUP BY ")
		sb.WriteString(strings.Join(l.groupBy, ", "))
	}

	field, col := l.SortColumn(req.SortBy)
	dir := ParseDirection(req.SortOrder)
	sb.WriteString(" ORDER BY ")
	sb.WriteString(col)
	sb.WriteString(" ")
	sb.WriteString(string(dir))
	if l.tieBreak != "" {
		sb.WriteString(", ")
		sb.WriteString(l.tieBreak)
		sb.WriteString(" ASC")
	}

	return Query{
		SQL:       sqlx.Rebind(sqlx.DOLLAR, sb.String()),
		Args:      args,
		SortBy:    field,
		Direction: dir,
	}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

const avgRating = "ROUND(COALESCE(AVG(r.rating), 0), 2)::float8 AS average_rating"

// Users lists users with the average rating of the stores they own.
var Users = Listing{
	from: "users u",
	columns: []string{
		"u.id", "u.name", "u.email", "u.address", "u.role", "u.created_at",
		avgRating,
	},
	joins: []string{
		"LEFT JOIN stores s ON s.owner_id = u.id",
		"LEFT JOIN ratings r ON r.store_id = s.id",
	},
	groupBy: []string{"u.id", "u.name", "u.email", "u.address", "u.role", "u.created_at"},
	filters: []Filter{
		{Param: "name", Column: "u.name", Match: Contains},
		{Param: "email", Column: "u.email", Match: Contains},
		{Param: "address", Column: "u.address", Match: Contains},
		{Param: "role", Column: "u.role", Match: Equals},
	},
	sorts: map[string]string{
		"name":       "u.name",
		"email":      "u.email",
		"address":    "u.address",
		"role":       "u.role",
		"created_at": "u.created_at",
	},
	tieBreak: "u.id",
}

var storeFilters = []Filter{
	{Param: "name", Column: "s.name", Match: Contains},
	{Param: "email", Column: "s.email", Match: Contains},
	{Param: "address", Column: "s.address", Match: Contains},
}

var storeSorts = map[string]string{
	"name":           "s.name",
	"email":          "s.email",
	"address":        "s.address",
	"created_at":     "s.created_at",
	"average_rating": "average_rating",
	"total_ratings":  "total_ratings",
}

// AdminStores lists stores with their rating aggregates and owner name.
var AdminStores = Listing{
	from: "stores s",
	columns: []string{
		"s.id", "s.name", "s.email", "s.address", "s.owner_id", "s.created_at",
		avgRating,
		"COUNT(r.id) AS total_ratings",
		"u.name AS owner_name",
	},
	joins: []string{
		"LEFT JOIN ratings r ON r.store_id = s.id",
		"LEFT JOIN users u ON u.id = s.owner_id",
	},
	groupBy:  []string{"s.id", "s.name", "s.email", "s.address", "s.owner_id", "s.created_at", "u.name"},
	filters:  storeFilters,
	sorts:    storeSorts,
	tieBreak: "s.id",
}

// PublicStores lists stores with their rating aggregates and the viewer's
// own rating, which is NULL when the viewer has not rated the store.
func PublicStores(viewerID int64) Listing {
	return Listing{
		from: "stores s",
		columns: []string{
			"s.id", "s.name", "s.email", "s.address", "s.created_at",
			avgRating,
			"COUNT(r.id) AS total_ratings",
			"ur.rating AS user_rating",
		},
		joins: []string{
			"LEFT JOIN ratings r ON r.store_id = s.id",
			"LEFT JOIN ratings ur ON ur.store_id = s.id AND ur.user_id = ?",
		},
		joinArgs: []any{viewerID},
		groupBy:  []string{"s.id", "s.name", "s.email", "s.address", "s.created_at", "ur.rating"},
		filters:  storeFilters,
		sorts:    storeSorts,
		tieBreak: "s.id",
	}
}
