package analytics

import (
	"context"
	"sort"

	dp "olistdash/internal/dataprocessing"
	"olistdash/pkg/contracts/domain"
)

// CustomerDistribution resolves customer locations with the variant's
// geo strategy.
func (p *Pipeline) CustomerDistribution(ctx context.Context, params Params) ([]domain.GeoPoint, error) {
	if p.variant.GeoStrategy == domain.GeoStrategyStateMean {
		return p.stateMeanPoints(ctx, params)
	}
	return p.silverMedianPoints(ctx, params)
}

type geoColumns struct {
	zip, city, state, lat, lng int
}

func geoCols(geo *dp.Table) (geoColumns, error) {
	cols, err := geo.Cols(dp.ColZipCodePrefix, dp.ColCity, dp.ColState, dp.ColLat, dp.ColLng)
	if err != nil {
		return geoColumns{}, err
	}
	return geoColumns{zip: cols[0], city: cols[1], state: cols[2], lat: cols[3], lng: cols[4]}, nil
}

// scopedZips returns the zip prefixes of customers with an order in scope,
// or nil when no date range applies.
func (p *Pipeline) scopedZips(orders, customers *dp.Table, scope *orderScope) (map[string]struct{}, error) {
	ids, err := customersInScope(orders, scope)
	if err != nil || ids == nil {
		return nil, err
	}
	cc, err := customers.Cols(dp.ColCustomerID, dp.ColZipCodePrefix)
	if err != nil {
		return nil, err
	}
	zips := make(map[string]struct{})
	for _, row := range customers.Rows {
		id, zip := row[cc[0]], row[cc[1]]
		if id.Missing() || zip.Missing() {
			continue
		}
		if _, ok := ids[id.String()]; ok {
			zips[zip.String()] = struct{}{}
		}
	}
	return zips, nil
}

// stateMeanPoints averages coordinates per (zip, state) and keeps the
// points of the states with the most zip groups.
func (p *Pipeline) stateMeanPoints(ctx context.Context, params Params) ([]domain.GeoPoint, error) {
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
	zips, err := p.scopedZips(orders, customers, scope)
	if err != nil {
		return nil, err
	}
	gc, err := geoCols(geo)
	if err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	type coords struct{ lat, lng meanAcc }
	groups := make(map[zipStateKey]*coords)
	for _, row := range geo.Rows {
		zip, state := row[gc.zip], row[gc.state]
		if zip.Missing() || state.Missing() {
			continue
		}
		if zips != nil {
			if _, ok := zips[zip.String()]; !ok {
				continue
			}
		}
		key := zipStateKey{zip: zip.String(), state: state.String()}
		g, ok := groups[key]
		if !ok {
			g = &coords{}
			groups[key] = g
		}
		if v, ok := row[gc.lat].Float(); ok {
			g.lat.add(v, 1)
		}
		if v, ok := row[gc.lng].Float(); ok {
			g.lng.add(v, 1)
		}
	}

	keys := make([]zipStateKey, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(a, b int) bool { return lessZipState(keys[a], keys[b]) })

	var points []domain.GeoPoint
	type stateCount struct {
		state string
		n     int
	}
	var counts []stateCount
	pos := make(map[string]int)
	for _, k := range keys {
		lat, okLat := groups[k].lat.value()
		lng, okLng := groups[k].lng.value()
		if !okLat || !okLng {
			continue
		}
		points = append(points, domain.GeoPoint{ZipCodePrefix: k.zip, State: k.state, Lat: lat, Lng: lng})
		i, ok := pos[k.state]
		if !ok {
			i = len(counts)
			pos[k.state] = i
			counts = append(counts, stateCount{state: k.state})
		}
		counts[i].n++
	}

	sort.SliceStable(counts, func(a, b int) bool { return counts[a].n > counts[b].n })
	if len(counts) > params.limit() {
		counts = counts[:params.limit()]
	}
	top := make(map[string]struct{}, len(counts))
	for _, c := range counts {
		top[c.state] = struct{}{}
	}

	kept := points[:0]
	for _, pt := range points {
		if _, ok := top[pt.State]; ok {
			kept = append(kept, pt)
		}
	}
	return kept, nil
}

// CanonicalStates picks one state per zip prefix: the first state after
// sorting the (zip, state) groups by zip and then state, ascending.
func CanonicalStates(geo *dp.Table) (map[string]string, error) {
	gc, err := geoCols(geo)
	if err != nil {
		return nil, err
	}
	canonical := make(map[string]string)
	for _, row := range geo.Rows {
		zip, state := row[gc.zip], row[gc.state]
		if zip.Missing() || state.Missing() {
			continue
		}
		if cur, ok := canonical[zip.String()]; !ok || state.String() < cur {
			canonical[zip.String()] = state.String()
		}
	}
	return canonical, nil
}

// silverMedianPoints places every customer at the median coordinates of
// their zip prefix within its canonical state.
func (p *Pipeline) silverMedianPoints(ctx context.Context, params Params) ([]domain.GeoPoint, error) {
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
	inScope, err := customersInScope(orders, scope)
	if err != nil {
		return nil, err
	}
	gc, err := geoCols(geo)
	if err != nil {
		return nil, err
	}
	cc, err := customers.Cols(dp.ColCustomerID, dp.ColZipCodePrefix)
	if err != nil {
		return nil, err
	}

	canonical, err := CanonicalStates(geo)
	if err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	type cityKey struct {
		zip, city string
	}
	type samples struct{ lat, lng []float64 }
	groups := make(map[cityKey]*samples)
	for _, row := range geo.Rows {
		zip, city, state := row[gc.zip], row[gc.city], row[gc.state]
		if zip.Missing() || city.Missing() || state.Missing() {
			continue
		}
		if canonical[zip.String()] != state.String() {
			continue
		}
		key := cityKey{zip: zip.String(), city: city.String()}
		g, ok := groups[key]
		if !ok {
			g = &samples{}
			groups[key] = g
		}
		if v, ok := row[gc.lat].Float(); ok {
			g.lat = append(g.lat, v)
		}
		if v, ok := row[gc.lng].Float(); ok {
			g.lng = append(g.lng, v)
		}
	}

	// One point per zip: the first city in sort order with usable coordinates.
	keys := make([]cityKey, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(a, b int) bool {
		if c := compareZip(keys[a].zip, keys[b].zip); c != 0 {
			return c < 0
		}
		return keys[a].city < keys[b].city
	})
	byZip := make(map[string]domain.GeoPoint)
	for _, k := range keys {
		if _, done := byZip[k.zip]; done {
			continue
		}
		lat, okLat := median(groups[k].lat)
		lng, okLng := median(groups[k].lng)
		if !okLat || !okLng {
			continue
		}
		byZip[k.zip] = domain.GeoPoint{
			ZipCodePrefix: k.zip,
			City:          k.city,
			State:         canonical[k.zip],
			Lat:           lat,
			Lng:           lng,
		}
	}

	var points []domain.GeoPoint
	for _, row := range customers.Rows {
		id, zip := row[cc[0]], row[cc[1]]
		if id.Missing() || zip.Missing() {
			continue
		}
		if inScope != nil {
			if _, ok := inScope[id.String()]; !ok {
				continue
			}
		}
		pt, ok := byZip[zip.String()]
		if !ok {
			continue
		}
		pt.CustomerID = id.String()
		points = append(points, pt)
	}
	return points, nil
}
