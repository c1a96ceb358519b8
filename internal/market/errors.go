package market

import "errors"

var (
	// ErrSyncInProgress is returned when a price sync is requested while another is running.
	ErrSyncInProgress = errors.New("price sync already in progress")

	// ErrUpdaterClosed is returned when a price sync is requested after the updater was closed.
	ErrUpdaterClosed = errors.New("price updater is closed")

	// ErrInvalidSteamID is returned for identifiers that are not a SteamID64.
	ErrInvalidSteamID = errors.New("invalid steam id")

	// ErrInventoryPrivate is returned when Steam refuses to show the inventory.
	ErrInventoryPrivate = errors.New("inventory is private")

	// ErrRateLimited is returned when an upstream answers 429.
	ErrRateLimited = errors.New("upstream rate limit exceeded")
)
