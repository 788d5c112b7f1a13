package annotator

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"

	"rallycut/internal/annotations"
	"rallycut/internal/download"
	"rallycut/internal/logging"
)

// NewRouter assembles the correction API routes.
func NewRouter(deps Deps) *chi.Mux {
	if deps.Logger == nil {
		deps.Logger = slog.New(logging.NoopHandler{})
	}
	r := chi.NewRouter()

	r.Use(RequestIDMiddleware())
	r.Use(RecoveryMiddleware(deps.Logger))
	r.Use(LoggingMiddleware(deps.Logger))

	r.Get("/health", healthHandler())
	r.Route("/api/videos", func(r chi.Router) {
		r.Get("/", listVideosHandler(deps))
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/annotations", getAnnotationsHandler(deps))
			r.Put("/annotations", putAnnotationsHandler(deps))
			r.Delete("/annotations", deleteAnnotationsHandler(deps))
			r.Get("/stream", streamHandler(deps))
		})
	})

	return r
}

func healthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

func listVideosHandler(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		summaries, err := deps.Store.Videos(r.Context())
		if err != nil {
			WriteError(w, http.StatusInternalServerError, "failed to list videos", "INTERNAL_ERROR")
			return
		}

		resp := VideosResponse{Videos: make([]VideoResponse, len(summaries))}
		for i, summary := range summaries {
			resp.Videos[i] = VideoResponse{
				VideoID:         summary.VideoID,
				Title:           download.DisplayTitle(summary.VideoID),
				SourcePath:      summary.SourcePath,
				DurationSeconds: summary.DurationSeconds,
				AutoSegments:    summary.AutoSegments,
				Corrected:       summary.Corrected,
			}
		}
		WriteJSON(w, http.StatusOK, resp)
	}
}

func getAnnotationsHandler(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		videoID := chi.URLParam(r, "id")
		if videoID == "" {
			WriteError(w, http.StatusBadRequest, "video id required", "BAD_REQUEST")
			return
		}

		meta, err := deps.Store.Video(r.Context(), videoID)
		if err != nil {
			WriteError(w, http.StatusInternalServerError, err.Error(), "INTERNAL_ERROR")
			return
		}
		corrected, err := deps.Store.Corrected(r.Context(), videoID)
		if err != nil {
			WriteError(w, http.StatusInternalServerError, err.Error(), "INTERNAL_ERROR")
			return
		}
		record, err := deps.Store.Resolved(r.Context(), videoID)
		if err != nil {
			WriteError(w, http.StatusInternalServerError, err.Error(), "INTERNAL_ERROR")
			return
		}
		if meta == nil && len(record.Segments) == 0 && corrected == nil {
			WriteError(w, http.StatusNotFound, "video not found", "NOT_FOUND")
			return
		}

		WriteJSON(w, http.StatusOK, annotationsResponse(meta, record, corrected != nil))
	}
}

func putAnnotationsHandler(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		videoID := chi.URLParam(r, "id")
		if videoID == "" {
			WriteError(w, http.StatusBadRequest, "video id required", "BAD_REQUEST")
			return
		}

		var req SaveAnnotationsRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
			return
		}
		if err := annotations.ValidateSegments(req.Segments); err != nil {
			WriteError(w, http.StatusUnprocessableEntity, err.Error(), "INVALID_SEGMENTS")
			return
		}

		if err := deps.Store.SaveCorrected(r.Context(), videoID, req.Segments); err != nil {
			WriteError(w, http.StatusInternalServerError, err.Error(), "INTERNAL_ERROR")
			return
		}
		WriteJSON(w, http.StatusOK, SaveAnnotationsResponse{VideoID: videoID, Segments: len(req.Segments)})
	}
}

func deleteAnnotationsHandler(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		videoID := chi.URLParam(r, "id")
		if videoID == "" {
			WriteError(w, http.StatusBadRequest, "video id required", "BAD_REQUEST")
			return
		}
		if err := deps.Store.ClearCorrected(r.Context(), videoID); err != nil {
			WriteError(w, http.StatusInternalServerError, err.Error(), "INTERNAL_ERROR")
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func streamHandler(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		videoID := chi.URLParam(r, "id")
		if videoID == "" {
			WriteError(w, http.StatusBadRequest, "video id required", "BAD_REQUEST")
			return
		}

		meta, err := deps.Store.Video(r.Context(), videoID)
		if err != nil {
			WriteError(w, http.StatusInternalServerError, err.Error(), "INTERNAL_ERROR")
			return
		}
		if meta == nil || meta.SourcePath == "" {
			WriteError(w, http.StatusNotFound, "video not found", "NOT_FOUND")
			return
		}
		if _, err := os.Stat(meta.SourcePath); errors.Is(err, os.ErrNotExist) {
			WriteError(w, http.StatusNotFound, "source file missing", "NOT_FOUND")
			return
		}

		// ServeFile handles range requests, which the review UI needs for
		// scrubbing.
		http.ServeFile(w, r, meta.SourcePath)
	}
}
