package dtos

import "time"

// ServiceStatus reports the health of one dependency
type ServiceStatus struct {
	Status  string `json:"status"`
	Details string `json:"details"`
}

// HealthCheckResponse is the payload for GET /healthCheck
type HealthCheckResponse struct {
	Status   string                   `json:"status"`
	Services map[string]ServiceStatus `json:"services"`
	UpSince  time.Time                `json:"up_since"`
	Uptime   string                   `json:"uptime"`
}

// ProvidersResponse lists provider types that currently resolve
type ProvidersResponse struct {
	Providers []string `json:"providers"`
}

// TriggerSyncResponse is returned by the manual sync trigger endpoint
type TriggerSyncResponse struct {
	EventID  string `json:"event_id"`
	Enqueued bool   `json:"enqueued"`
	Message  string `json:"message,omitempty"`
}

// ErrorResponse is the generic error payload for the ops API
type ErrorResponse struct {
	Error string `json:"error"`
}
