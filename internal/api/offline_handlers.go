package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/vrsandeep/noor-go/internal/interceptor"
	"github.com/vrsandeep/noor-go/internal/jobs"
	"github.com/vrsandeep/noor-go/internal/models"
)

type offlineStatusResponse struct {
	Available bool                 `json:"available"`
	Running   bool                 `json:"running"`
	Status    models.OfflineStatus `json:"status"`
}

func (s *Server) handleGetOfflineStatus(w http.ResponseWriter, r *http.Request) {
	status := s.app.Offline().Status(r.Context())
	RespondWithJSON(w, http.StatusOK, offlineStatusResponse{
		Available: status.Available(),
		Running:   s.app.Offline().Running(),
		Status:    status,
	})
}

// runJob starts a background job and answers 202, or 409 when busy.
func (s *Server) runJob(w http.ResponseWriter, jobID string) {
	if s.app.Offline().Running() {
		RespondWithError(w, http.StatusConflict, models.ErrPrefetchRunning.Error())
		return
	}
	if err := s.app.JobManager().RunJob(jobID, s.app); err != nil {
		RespondWithError(w, http.StatusConflict, err.Error()) // 409 Conflict if a job is already running
		return
	}
	RespondWithJSON(w, http.StatusAccepted, map[string]string{
		"message": "Job '" + jobID + "' started successfully.",
	})
}

func (s *Server) handlePrefetch(w http.ResponseWriter, r *http.Request) {
	s.runJob(w, jobs.OfflinePrefetchJob)
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	s.runJob(w, jobs.OfflineRefreshJob)
}

func (s *Server) handleClearOffline(w http.ResponseWriter, r *http.Request) {
	err := s.app.Offline().ClearAll(r.Context())
	switch {
	case errors.Is(err, models.ErrPrefetchRunning):
		RespondWithError(w, http.StatusConflict, err.Error())
	case errors.Is(err, models.ErrStorageUnavailable):
		RespondWithError(w, http.StatusServiceUnavailable, "Offline storage is unavailable")
	case err != nil:
		RespondWithError(w, http.StatusInternalServerError, "Failed to clear offline data")
	default:
		RespondWithJSON(w, http.StatusOK, map[string]string{"message": "Offline data cleared"})
	}
}

func (s *Server) handleGetConnectivity(w http.ResponseWriter, r *http.Request) {
	RespondWithJSON(w, http.StatusOK, map[string]bool{"online": s.app.Connectivity().Online()})
}

func (s *Server) handleGetJobsStatus(w http.ResponseWriter, r *http.Request) {
	statuses := s.app.JobManager().GetStatus()
	RespondWithJSON(w, http.StatusOK, statuses)
}

func (s *Server) handleWorkerControl(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Type string `json:"type"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		RespondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if err := s.app.Worker().PostMessage(payload.Type); err != nil {
		if errors.Is(err, interceptor.ErrUnknownMessage) {
			RespondWithError(w, http.StatusBadRequest, err.Error())
			return
		}
		RespondWithError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

func (s *Server) handleListCaches(w http.ResponseWriter, r *http.Request) {
	RespondWithJSON(w, http.StatusOK, s.app.Worker().Caches(r.Context()))
}
