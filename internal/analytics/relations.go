package analytics

import (
	"sort"
	"strconv"
	"strings"

	dp "olistdash/internal/dataprocessing"
)

// index maps each present key value of a column to the rows holding it, in
// row order. Missing keys never take part in a join.
func index(t *dp.Table, col int) map[string][]int {
	idx := make(map[string][]int)
	for i, row := range t.Rows {
		c := row[col]
		if c.Missing() {
			continue
		}
		k := c.String()
		idx[k] = append(idx[k], i)
	}
	return idx
}

// countBy counts the rows of each present key value
func countBy(t *dp.Table, col int) map[string]int {
	counts := make(map[string]int)
	for _, row := range t.Rows {
		if c := row[col]; !c.Missing() {
			counts[c.String()]++
		}
	}
	return counts
}

// orderScope is the set of orders a query may see
type orderScope struct {
	rows []int
	ids  map[string]struct{}
	// all is true when no date range restricts the orders
	all bool
}

func (s *orderScope) contains(orderID string) bool {
	if s.all {
		return true
	}
	_, ok := s.ids[orderID]
	return ok
}

func (s *orderScope) empty() bool {
	return !s.all && len(s.ids) == 0
}

// scopeOrders selects the orders whose purchase day lies in the date range.
// Without a range every order is in scope.
func scopeOrders(orders *dp.Table, dates *DateRange) (*orderScope, error) {
	cols, err := orders.Cols(dp.ColOrderID, dp.ColPurchaseTimestamp)
	if err != nil {
		return nil, err
	}
	idCol, tsCol := cols[0], cols[1]

	scope := &orderScope{ids: make(map[string]struct{}), all: dates == nil}
	for i, row := range orders.Rows {
		if dates != nil {
			ts, ok := row[tsCol].Timestamp()
			if !ok || !dates.Contains(ts) {
				continue
			}
		}
		scope.rows = append(scope.rows, i)
		if id := row[idCol]; !id.Missing() {
			scope.ids[id.String()] = struct{}{}
		}
	}
	return scope, nil
}

// customersInScope returns the customer ids with at least one order in
// scope, or nil when every customer is in scope.
func customersInScope(orders *dp.Table, scope *orderScope) (map[string]struct{}, error) {
	if scope.all {
		return nil, nil
	}
	col, err := orders.Col(dp.ColCustomerID)
	if err != nil {
		return nil, err
	}
	ids := make(map[string]struct{}, len(scope.rows))
	for _, i := range scope.rows {
		if c := orders.Rows[i][col]; !c.Missing() {
			ids[c.String()] = struct{}{}
		}
	}
	return ids, nil
}

// meanAcc accumulates a weighted mean over present values
type meanAcc struct {
	sum    float64
	weight float64
}

func (m *meanAcc) add(v, w float64) {
	m.sum += v * w
	m.weight += w
}

func (m *meanAcc) value() (float64, bool) {
	if m.weight == 0 {
		return 0, false
	}
	return m.sum / m.weight, true
}

// sumAcc accumulates a sum that stays absent until a value is added
type sumAcc struct {
	sum     float64
	present bool
}

func (s *sumAcc) add(v float64) {
	s.sum += v
	s.present = true
}

func (s *sumAcc) value() (float64, bool) {
	return s.sum, s.present
}

// median returns the median of values, averaging the two middle values
// for an even count.
func median(values []float64) (float64, bool) {
	n := len(values)
	if n == 0 {
		return 0, false
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	if n%2 == 1 {
		return sorted[n/2], true
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2, true
}

// zipNumber parses a zip code prefix as an integer
func zipNumber(zip string) (int64, bool) {
	n, err := strconv.ParseInt(strings.TrimSpace(zip), 10, 64)
	return n, err == nil
}

// compareZip orders zip prefixes numerically when both parse, textually otherwise
func compareZip(a, b string) int {
	na, okA := zipNumber(a)
	nb, okB := zipNumber(b)
	switch {
	case okA && okB:
		if na != nb {
			if na < nb {
				return -1
			}
			return 1
		}
		return strings.Compare(a, b)
	case okA:
		return -1
	case okB:
		return 1
	default:
		return strings.Compare(a, b)
	}
}

// zipStateKey is a (zip, state) grouping key
type zipStateKey struct {
	zip   string
	state string
}

func lessZipState(a, b zipStateKey) bool {
	if c := compareZip(a.zip, b.zip); c != 0 {
		return c < 0
	}
	return a.state < b.state
}
