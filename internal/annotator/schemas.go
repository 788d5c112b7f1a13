package annotator

import (
	"encoding/json"
	"net/http"

	"rallycut/internal/annotations"
	"rallycut/internal/timeline"
)

// VideoResponse is one row in the video listing.
type VideoResponse struct {
	VideoID         string  `json:"video_id"`
	Title           string  `json:"title"`
	SourcePath      string  `json:"source_path"`
	DurationSeconds float64 `json:"duration_seconds"`
	AutoSegments    int     `json:"auto_segments"`
	Corrected       bool    `json:"corrected"`
}

// VideosResponse wraps the listing.
type VideosResponse struct {
	Videos []VideoResponse `json:"videos"`
}

// AnnotationsResponse carries the reconciled record for a video.
type AnnotationsResponse struct {
	VideoID         string                  `json:"video_id"`
	DurationSeconds float64                 `json:"duration_seconds"`
	Source          string                  `json:"source"`
	Corrected       bool                    `json:"corrected"`
	Segments        []timeline.RallySegment `json:"segments"`
}

// SaveAnnotationsRequest replaces a video's corrected record.
type SaveAnnotationsRequest struct {
	Segments []timeline.RallySegment `json:"segments"`
}

// SaveAnnotationsResponse acknowledges a stored correction.
type SaveAnnotationsResponse struct {
	VideoID  string `json:"video_id"`
	Segments int    `json:"segments"`
}

// ErrorResponse is the uniform error envelope.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// WriteJSON writes data as a JSON response with the given status.
func WriteJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// WriteError writes a JSON error envelope with the given status.
func WriteError(w http.ResponseWriter, status int, message, code string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(ErrorResponse{Error: message, Code: code})
}

func annotationsResponse(meta *annotations.VideoMeta, record annotations.Record, corrected bool) AnnotationsResponse {
	resp := AnnotationsResponse{
		VideoID:   record.VideoID,
		Corrected: corrected,
		Segments:  record.Segments,
	}
	if resp.Segments == nil {
		resp.Segments = []timeline.RallySegment{}
	}
	if meta != nil {
		resp.DurationSeconds = meta.DurationSeconds
		resp.Source = meta.SourcePath
	}
	return resp
}
