package analytics

import (
	"context"
	"sort"

	dp "olistdash/internal/dataprocessing"
	"olistdash/pkg/contracts/domain"
)

// AvgDeliveryTime averages delivery days per customer (zip, state).
//
// Orders join customers on customer_id and geolocation on zip code prefix;
// every matching geolocation row contributes one joined row, so zips with
// many geolocation records weigh more in their group. Groups whose delivery
// times are all absent are dropped. In top mode the groups with the largest
// average are kept; in range mode the zip range bounds the result.
func (p *Pipeline) AvgDeliveryTime(ctx context.Context, params Params) ([]domain.DeliveryTime, error) {
	orders, customers, geo, err := p.tables(dp.TableOrders, dp.TableCustomers, dp.TableGeolocation)
	if err != nil {
		return nil, err
	}

	scope, err := scopeOrders(orders, params.Dates)
	if err != nil {
		return nil, err
	}
	if scope.empty() {
		return nil, nil
	}

	oc, err := orders.Cols(dp.ColCustomerID, dp.ColPurchaseTimestamp, dp.ColDeliveredCustomerDate)
	if err != nil {
		return nil, err
	}
	cc, err := customers.Cols(dp.ColCustomerID, dp.ColZipCodePrefix, dp.ColState)
	if err != nil {
		return nil, err
	}
	gZip, err := geo.Col(dp.ColZipCodePrefix)
	if err != nil {
		return nil, err
	}

	customersByID := index(customers, cc[0])
	geoRows := countBy(geo, gZip)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	groups := make(map[zipStateKey]*meanAcc)
	for _, i := range scope.rows {
		order := orders.Rows[i]
		if order[oc[0]].Missing() {
			continue
		}
		days, hasDays := deliveryDays(order[oc[1]], order[oc[2]])
		for _, ci := range customersByID[order[oc[0]].String()] {
			customer := customers.Rows[ci]
			zip, state := customer[cc[1]], customer[cc[2]]
			if zip.Missing() || state.Missing() {
				continue
			}
			n := geoRows[zip.String()]
			if n == 0 {
				continue
			}
			key := zipStateKey{zip: zip.String(), state: state.String()}
			acc, ok := groups[key]
			if !ok {
				acc = &meanAcc{}
				groups[key] = acc
			}
			if hasDays {
				acc.add(float64(days), float64(n))
			}
		}
	}

	keys := make([]zipStateKey, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(a, b int) bool { return lessZipState(keys[a], keys[b]) })

	rows := make([]domain.DeliveryTime, 0, len(keys))
	for _, k := range keys {
		avg, ok := groups[k].value()
		if !ok {
			continue
		}
		rows = append(rows, domain.DeliveryTime{ZipCodePrefix: k.zip, State: k.state, AvgDays: avg})
	}

	switch p.variant.mode(params) {
	case domain.FilterModeTop:
		sort.SliceStable(rows, func(a, b int) bool { return rows[a].AvgDays > rows[b].AvgDays })
		if len(rows) > params.limit() {
			rows = rows[:params.limit()]
		}
	default:
		if params.Zip != nil {
			kept := rows[:0]
			for _, r := range rows {
				if n, ok := zipNumber(r.ZipCodePrefix); ok && params.Zip.Contains(float64(n)) {
					kept = append(kept, r)
				}
			}
			rows = kept
		}
	}
	return rows, nil
}

// deliveryDays is the whole number of days between purchase and delivery
func deliveryDays(purchased, delivered dp.Cell) (int, bool) {
	from, ok := purchased.Timestamp()
	if !ok {
		return 0, false
	}
	to, ok := delivered.Timestamp()
	if !ok {
		return 0, false
	}
	return dp.WholeDays(to.Sub(from)), true
}
