package analytics

import (
	"context"
	"sort"

	dp "olistdash/internal/dataprocessing"
	"olistdash/pkg/contracts/domain"
)

// CategoryRevenueReviews pairs total item revenue with review volume per
// product category.
//
// Items join products on product_id and reviews on order_id. Both
// aggregates run over the same joined rows, so an item is counted once per
// review of its order. Categories without any price are dropped.
func (p *Pipeline) CategoryRevenueReviews(ctx context.Context, params Params) ([]domain.CategoryRevenue, error) {
	orders, items, products, reviews, err := p.tables4(dp.TableOrders, dp.TableOrderItems, dp.TableProducts, dp.TableOrderReviews)
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

	ic, err := items.Cols(dp.ColOrderID, dp.ColProductID, dp.ColPrice)
	if err != nil {
		return nil, err
	}
	category, err := p.categoryLookup(products)
	if err != nil {
		return nil, err
	}
	rc, err := reviews.Cols(dp.ColOrderID, dp.ColReviewID)
	if err != nil {
		return nil, err
	}
	reviewsByOrder := index(reviews, rc[0])

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	type acc struct {
		revenue sumAcc
		reviews int
	}
	groups := make(map[string]*acc)
	for _, item := range items.Rows {
		orderID, productID := item[ic[0]], item[ic[1]]
		if orderID.Missing() || productID.Missing() || !scope.contains(orderID.String()) {
			continue
		}
		matches := reviewsByOrder[orderID.String()]
		if len(matches) == 0 {
			continue
		}
		price, hasPrice := item[ic[2]].Float()
		for _, name := range category(productID.String()) {
			g, ok := groups[name]
			if !ok {
				g = &acc{}
				groups[name] = g
			}
			for _, ri := range matches {
				if hasPrice {
					g.revenue.add(price)
				}
				if !reviews.Rows[ri][rc[1]].Missing() {
					g.reviews++
				}
			}
		}
	}

	names := make([]string, 0, len(groups))
	for n := range groups {
		names = append(names, n)
	}
	sort.Strings(names)

	rows := make([]domain.CategoryRevenue, 0, len(names))
	for _, n := range names {
		revenue, ok := groups[n].revenue.value()
		if !ok {
			continue
		}
		r := domain.CategoryRevenue{Category: n, TotalRevenue: revenue, TotalReviews: groups[n].reviews}
		if params.Revenue != nil && !params.Revenue.Contains(r.TotalRevenue) {
			continue
		}
		if params.Reviews != nil && !params.Reviews.Contains(float64(r.TotalReviews)) {
			continue
		}
		rows = append(rows, r)
	}
	return rows, nil
}

// TopSellingCategories counts sold items per category and keeps the best
// sellers. Ties keep the order in which categories were first seen.
func (p *Pipeline) TopSellingCategories(ctx context.Context, params Params) ([]domain.CategorySales, error) {
	orders, items, products, err := p.tables(dp.TableOrders, dp.TableOrderItems, dp.TableProducts)
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

	ic, err := items.Cols(dp.ColOrderID, dp.ColProductID)
	if err != nil {
		return nil, err
	}
	category, err := p.categoryLookup(products)
	if err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var rows []domain.CategorySales
	pos := make(map[string]int)
	for _, item := range items.Rows {
		orderID, productID := item[ic[0]], item[ic[1]]
		if productID.Missing() {
			continue
		}
		if !scope.all && (orderID.Missing() || !scope.contains(orderID.String())) {
			continue
		}
		for _, name := range category(productID.String()) {
			i, ok := pos[name]
			if !ok {
				i = len(rows)
				pos[name] = i
				rows = append(rows, domain.CategorySales{Category: name})
			}
			rows[i].ItemsSold++
		}
	}

	sort.SliceStable(rows, func(a, b int) bool { return rows[a].ItemsSold > rows[b].ItemsSold })
	if len(rows) > params.limit() {
		rows = rows[:params.limit()]
	}
	return rows, nil
}

// categoryLookup resolves a product id to the display names of its matching
// product rows. Products without a category name take no part in the join.
func (p *Pipeline) categoryLookup(products *dp.Table) (func(productID string) []string, error) {
	pc, err := products.Cols(dp.ColProductID, dp.ColCategoryName)
	if err != nil {
		return nil, err
	}
	byID := make(map[string][]string)
	for _, row := range products.Rows {
		id, name := row[pc[0]], row[pc[1]]
		if id.Missing() || name.Missing() {
			continue
		}
		byID[id.String()] = append(byID[id.String()], p.translator.Translate(name.String()))
	}
	return func(productID string) []string { return byID[productID] }, nil
}
