package types

// HTTP Header Constants
const (
	HeaderAuthorization = "Authorization"
	HeaderContentType   = "Content-Type"
	HeaderRequestID     = "X-Request-ID"
	HeaderTimezone      = "X-Timezone"
	HeaderDateFormat    = "X-Date-Format"
)

// Authentication Constants
const (
	BearerPrefix = "Bearer "
)

// Default request values
const (
	DefaultTimezone   = "UTC"
	DefaultDateFormat = "YYYY-MM-DD"
)
