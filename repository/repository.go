// Package repository holds the data access layer over MongoDB. Handlers
// receive repositories as injected collaborators; the only process-wide
// state is the client pool in config.
package repository

import "errors"

// Collection names
const (
	CollLocations    = "locations"
	CollServices     = "services"
	CollServiceTypes = "service_types"
	CollAdmins       = "admins"
)

// ErrNotFound is returned when a lookup by id or username matches no
// document. Handlers translate it to a 404.
var ErrNotFound = errors.New("not found")
