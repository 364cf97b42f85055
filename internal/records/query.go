package records

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"parking-console/pkg/models"
)

type SortKey string

const (
	SortID       SortKey = "id"
	SortPlate    SortKey = "plate"
	SortDate     SortKey = "date"
	SortTime     SortKey = "time"
	SortStatus   SortKey = "status"
	SortLocation SortKey = "location"
)

type Order string

const (
	Asc  Order = "asc"
	Desc Order = "desc"
)

const dateLayout = "2006-01-02"

// Query is a filter predicate set plus a sort. Zero-valued predicates match everything.
type Query struct {
	Search string // case-insensitive substring of plate or location
	Date   string // prefix of the record date
	Status string // exact match

	SortBy SortKey
	Order  Order
}

// DefaultQuery sorts newest date first, matching the records view default.
func DefaultQuery() Query {
	return Query{SortBy: SortDate, Order: Desc}
}

func ParseSortKey(s string) (SortKey, error) {
	switch k := SortKey(strings.ToLower(strings.TrimSpace(s))); k {
	case SortID, SortPlate, SortDate, SortTime, SortStatus, SortLocation:
		return k, nil
	case "":
		return SortDate, nil
	default:
		return "", fmt.Errorf("unknown sort key %q", s)
	}
}

func ParseOrder(s string) (Order, error) {
	switch o := Order(strings.ToLower(strings.TrimSpace(s))); o {
	case Asc, Desc:
		return o, nil
	case "":
		return Desc, nil
	default:
		return "", fmt.Errorf("unknown sort order %q", s)
	}
}

// Matches reports whether r satisfies every predicate.
func (q Query) Matches(r models.Record) bool {
	if q.Search != "" {
		needle := strings.ToLower(q.Search)
		if !strings.Contains(strings.ToLower(r.Plate), needle) &&
			!strings.Contains(strings.ToLower(r.Location), needle) {
			return false
		}
	}
	if q.Date != "" && !strings.HasPrefix(r.Date, q.Date) {
		return false
	}
	if q.Status != "" && r.Status != q.Status {
		return false
	}
	return true
}

// Filter keeps matching records in their original order.
func Filter(recs []models.Record, q Query) []models.Record {
	out := make([]models.Record, 0, len(recs))
	for _, r := range recs {
		if q.Matches(r) {
			out = append(out, r)
		}
	}
	return out
}

// Compare is the two-valued record comparator: for ascending order it returns
// 1 when a > b and -1 otherwise, for descending 1 when a < b and -1 otherwise.
// It never returns 0, so it is not a strict ordering on its own; Sort only
// consults it for records whose keys differ.
func Compare(a, b models.Record, key SortKey, order Order) int {
	c := compareKey(a, b, key)
	if order == Asc {
		if c > 0 {
			return 1
		}
		return -1
	}
	if c < 0 {
		return 1
	}
	return -1
}

// compareKey is a three-way comparison on one key.
func compareKey(a, b models.Record, key SortKey) int {
	switch key {
	case SortID:
		return compareInt(a.ID, b.ID)
	case SortPlate:
		return strings.Compare(a.Plate, b.Plate)
	case SortTime:
		// Fixed-width HH:MM:SS compares correctly as text.
		return strings.Compare(a.Time, b.Time)
	case SortStatus:
		return strings.Compare(a.Status, b.Status)
	case SortLocation:
		return strings.Compare(a.Location, b.Location)
	default:
		return parseDate(a.Date).Compare(parseDate(b.Date))
	}
}

// parseDate reads the date part of the value. Unparseable dates become the zero time.
func parseDate(s string) time.Time {
	s = strings.TrimSpace(s)
	if len(s) > len(dateLayout) {
		s = s[:len(dateLayout)]
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

func compareInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// Sort returns a sorted copy; the input is left untouched. Records with equal
// keys keep their input order in both directions.
func Sort(recs []models.Record, key SortKey, order Order) []models.Record {
	out := append([]models.Record{}, recs...)
	sort.SliceStable(out, func(i, j int) bool {
		if compareKey(out[i], out[j], key) == 0 {
			return false
		}
		return Compare(out[i], out[j], key, order) < 0
	})
	return out
}

// Apply filters then sorts.
func Apply(recs []models.Record, q Query) []models.Record {
	key, order := q.SortBy, q.Order
	if key == "" {
		key = SortDate
	}
	if order == "" {
		order = Desc
	}
	return Sort(Filter(recs, q), key, order)
}

// Counts are derived from an already filtered set.
type Counts struct {
	Total  int `json:"total"`
	Parked int `json:"parked"`
	Exited int `json:"exited"`
}

func Summarize(recs []models.Record) Counts {
	c := Counts{Total: len(recs)}
	for _, r := range recs {
		switch r.Status {
		case models.RecordParked:
			c.Parked++
		case models.RecordExited:
			c.Exited++
		}
	}
	return c
}
