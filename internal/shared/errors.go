package shared

import "fmt"

var (
	// Configuration errors
	ErrMissingConfig      = fmt.Errorf("configuration not found")
	ErrInvalidConfig      = fmt.Errorf("invalid configuration")
	ErrMissingCredentials = fmt.Errorf("missing credentials")

	// Transport and parsing errors
	ErrTransport          = fmt.Errorf("transport failure")
	ErrFeedParse          = fmt.Errorf("feed parse failure")
	ErrServiceUnavailable = fmt.Errorf("service unavailable")

	// Sync pipeline errors
	ErrNoRecommendations = fmt.Errorf("no recommendations resolved")
	ErrDownloadFailed    = fmt.Errorf("download failed")
	ErrNoDownloads       = fmt.Errorf("no tracks downloaded")

	// Persistence errors
	ErrRunNotFound = fmt.Errorf("sync run not found")
)
