package influx

import "errors"

// Error taxonomy for the stats reporter. Connection and authentication
// failures abort the run; a missing named database is reported as such.
var (
	ErrUnreachable      = errors.New("influxdb server unreachable")
	ErrUnauthorized     = errors.New("influxdb authentication rejected")
	ErrDatabaseNotFound = errors.New("database not found")
)
