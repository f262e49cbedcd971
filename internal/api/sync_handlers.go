package api

import (
	"net/http"

	"gatherhub/guestsync/internal/jobs"
	"gatherhub/guestsync/internal/logging"
	"gatherhub/guestsync/internal/models/dtos"

	"github.com/go-chi/chi/v5"
)

// SyncHandlers exposes the ops surface of the guest sync pipeline
type SyncHandlers struct {
	registry   jobs.ProviderResolver
	eventRepo  jobs.EventStore
	queue      jobs.SyncQueue
	streamName string
}

// NewSyncHandlers creates the ops handlers
func NewSyncHandlers(registry jobs.ProviderResolver, eventRepo jobs.EventStore, queue jobs.SyncQueue, streamName string) *SyncHandlers {
	return &SyncHandlers{
		registry:   registry,
		eventRepo:  eventRepo,
		queue:      queue,
		streamName: streamName,
	}
}

// ListProviders handles GET /api/v1/providers
func (h *SyncHandlers) ListProviders(w http.ResponseWriter, r *http.Request) {
	providers := h.registry.ListConfiguredProviders()
	if providers == nil {
		providers = []string{}
	}
	respondJSON(w, http.StatusOK, dtos.ProvidersResponse{Providers: providers})
}

// TriggerEventSync handles POST /api/v1/events/{eventID}/sync.
// Manual triggers skip the scheduler's end-date predicate (operators may
// resync past events) but still require a configured provider, an
// external id and a location. The dedup window is skipped so a manual
// trigger always sends.
func (h *SyncHandlers) TriggerEventSync(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "eventID")

	event, err := h.eventRepo.FindByID(r.Context(), eventID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to load event")
		return
	}
	if event == nil {
		respondError(w, http.StatusNotFound, "event not found")
		return
	}

	if event.ProviderType == nil || event.ExternalEventID == nil || *event.ExternalEventID == "" || event.LocationID == nil {
		respondError(w, http.StatusUnprocessableEntity, "event is not configured for guest sync")
		return
	}

	if _, err := h.registry.GetProvider(*event.ProviderType); err != nil {
		respondError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	job := &dtos.SyncJob{
		EventID:         event.ID,
		ExternalEventID: *event.ExternalEventID,
		LocationID:      *event.LocationID,
		ProviderType:    *event.ProviderType,
	}

	if _, err := h.queue.EnqueueSyncJob(r.Context(), h.streamName, job, 0); err != nil {
		logging.Error("Manual sync enqueue failed", "event_id", eventID, "error", err.Error())
		respondError(w, http.StatusServiceUnavailable, "failed to enqueue sync job")
		return
	}

	logging.Info("Manual sync enqueued", "event_id", eventID, "provider_type", *event.ProviderType)
	respondJSON(w, http.StatusAccepted, dtos.TriggerSyncResponse{
		EventID:  eventID,
		Enqueued: true,
	})
}
