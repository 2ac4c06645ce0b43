package services

import "errors"

// ErrNoOrders is returned when the orders table holds no parseable purchase date
var ErrNoOrders = errors.New("no orders with a purchase date")
