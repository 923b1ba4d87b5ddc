package common

const (
	// MaxRecordRequestBody limits JSON request bodies for record endpoints.
	MaxRecordRequestBody = 1 << 20
	// DefaultRecentLimit is the fallback page size for the record list.
	DefaultRecentLimit = 20
)
