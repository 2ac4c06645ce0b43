// Package analytics implements the dashboard query pipeline.
//
// A Pipeline answers five questions over the cleaned dataset store:
// average delivery time per zip and state, average review score per payment
// type, revenue against review volume per category, top selling categories
// and the geographic distribution of customers. Every call is a full
// recompute against immutable tables.
//
// All joins are inner joins. Aggregates skip absent values, and a group whose
// values are all absent is left out of the result instead of counting as
// zero. An optional date range restricts orders by purchase day before any
// join; when it matches no order every question returns an empty result.
//
// Variants configure the filter mode (top ten or user range) and the
// customer location strategy:
//
//	p := analytics.NewPipeline(store, analytics.WithVariant(analytics.VariantClassic))
//	rs, err := p.Run(ctx, domain.QuestionDeliveryTime, analytics.Params{})
package analytics
