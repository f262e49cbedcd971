package constants

// Guest Sync Error Codes
// These constants define specific error scenarios for the guest sync pipeline

// Provider-related errors
const (
	ErrCodeProviderNotConfigured = "PROVIDER_NOT_CONFIGURED"
	ErrCodeInvalidAPIKey         = "INVALID_API_KEY"
	ErrCodeRateLimited           = "RATE_LIMITED"
	ErrCodeNetworkError          = "NETWORK_ERROR"
	ErrCodeInvalidDataFormat     = "INVALID_DATA_FORMAT"
)

// Sync-related errors
const (
	ErrCodeEventNotFound    = "EVENT_NOT_FOUND"
	ErrCodeQueueUnavailable = "QUEUE_UNAVAILABLE"
)

// Error Messages
// Human-readable messages corresponding to error codes

var SyncErrorMessages = map[string]string{
	ErrCodeProviderNotConfigured: "No guest provider is configured for this provider type",
	ErrCodeInvalidAPIKey:         "The provider API key is invalid or has been revoked",
	ErrCodeRateLimited:           "Rate limit exceeded. Please try again later",
	ErrCodeNetworkError:          "Unable to reach the guest provider. Please check connectivity",
	ErrCodeInvalidDataFormat:     "The provider returned data in an unexpected format",
	ErrCodeEventNotFound:         "The event referenced by the sync job no longer exists",
	ErrCodeQueueUnavailable:      "The sync queue is unavailable",
}

// GetErrorMessage returns the human-readable message for an error code
func GetErrorMessage(code string) string {
	if msg, exists := SyncErrorMessages[code]; exists {
		return msg
	}
	return "An unknown error occurred"
}
