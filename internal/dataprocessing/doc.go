// Package dataprocessing loads and cleans the e-commerce dataset tables.
//
// # Architecture
//
// The package is organized into three components:
//
// 1. Loader: reads CSV (or XLSX) files into Tables of tagged cells
// 2. Cleaner: applies the per-table null policy, timestamp parsing and duplicate removal
// 3. Store: the immutable set of cleaned tables handed to the query pipeline
//
// # Usage
//
//	loader := dataprocessing.NewLoader("data", dataprocessing.DefaultFiles, logger)
//	store, err := dataprocessing.Initialize(ctx, loader, dataprocessing.NewCleaner(), logger)
//	if err != nil {
//	    log.Fatal(err) // *LoadError names the failing table and file
//	}
//	orders, _ := store.Table(dataprocessing.TableOrders)
//
// # Null policy
//
// customers, orders and order_items drop rows missing their key columns.
// Every other table forward-fills absent cells in file order. This policy is
// applied uniformly to those tables, including columns such as review_score
// where a filled value may not be meaningful.
//
// # Timestamps
//
// Columns listed in DateColumns are parsed with ParseTimestamp. Text that does
// not parse becomes a KindUnparseable cell, which queries read as absent.
package dataprocessing
