package dataprocessing

import "errors"

// ErrTableNotLoaded is returned when a query asks for a table the store lacks
var ErrTableNotLoaded = errors.New("table not loaded")
