package analytics

import (
	"context"
	"sort"

	dp "olistdash/internal/dataprocessing"
	"olistdash/pkg/contracts/domain"
)

// AvgReviewByPayment averages review scores per payment type.
//
// Each order joins all of its reviews and all of its payments, so an order
// paid in two installments of the same type counts its review twice.
func (p *Pipeline) AvgReviewByPayment(ctx context.Context, params Params) ([]domain.PaymentReview, error) {
	orders, reviews, payments, err := p.tables(dp.TableOrders, dp.TableOrderReviews, dp.TableOrderPayments)
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

	oID, err := orders.Col(dp.ColOrderID)
	if err != nil {
		return nil, err
	}
	rc, err := reviews.Cols(dp.ColOrderID, dp.ColReviewScore)
	if err != nil {
		return nil, err
	}
	pc, err := payments.Cols(dp.ColOrderID, dp.ColPaymentType)
	if err != nil {
		return nil, err
	}

	reviewsByOrder := index(reviews, rc[0])
	paymentsByOrder := index(payments, pc[0])

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	groups := make(map[string]*meanAcc)
	for _, i := range scope.rows {
		id := orders.Rows[i][oID]
		if id.Missing() {
			continue
		}
		for _, ri := range reviewsByOrder[id.String()] {
			score, hasScore := reviews.Rows[ri][rc[1]].Float()
			for _, pi := range paymentsByOrder[id.String()] {
				kind := payments.Rows[pi][pc[1]]
				if kind.Missing() {
					continue
				}
				acc, ok := groups[kind.String()]
				if !ok {
					acc = &meanAcc{}
					groups[kind.String()] = acc
				}
				if hasScore {
					acc.add(score, 1)
				}
			}
		}
	}

	types := make([]string, 0, len(groups))
	for t := range groups {
		types = append(types, t)
	}
	sort.Strings(types)

	rows := make([]domain.PaymentReview, 0, len(types))
	for _, t := range types {
		avg, ok := groups[t].value()
		if !ok {
			continue
		}
		rows = append(rows, domain.PaymentReview{PaymentType: t, AvgScore: avg})
	}

	switch p.variant.mode(params) {
	case domain.FilterModeTop:
		sort.SliceStable(rows, func(a, b int) bool { return rows[a].AvgScore > rows[b].AvgScore })
		if len(rows) > params.limit() {
			rows = rows[:params.limit()]
		}
	default:
		rows = filterByScore(rows, params.Score)
	}
	return rows, nil
}

func filterByScore(rows []domain.PaymentReview, bounds *Range) []domain.PaymentReview {
	if bounds == nil {
		return rows
	}
	kept := rows[:0]
	for _, r := range rows {
		if bounds.Contains(r.AvgScore) {
			kept = append(kept, r)
		}
	}
	return kept
}
