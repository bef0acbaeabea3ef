package server

import (
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/apex/log"
	"github.com/google/uuid"

	"github.com/franckalain/platecheck/internal/ml"
	"github.com/franckalain/platecheck/internal/models"
	"github.com/franckalain/platecheck/internal/normalize"
)

// multipartMemoryLimit is how much of the upload is held in memory while
// parsing; anything larger spills to a temporary file that is removed before
// the request completes.
const multipartMemoryLimit = 4 << 20

// handleAnalyze dispatches on method for the /api/analyze route.
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		s.analyzePost(w, r)
	case http.MethodOptions:
		w.Header().Set("Allow", "POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		w.WriteHeader(http.StatusNoContent)
	default:
		w.Header().Set("Allow", http.MethodPost)
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// analyze ingests one multipart image upload, asks the inference backend for
// a verdict and returns the normalized JSON to the caller.
func (s *Server) analyze(w http.ResponseWriter, r *http.Request) {
	// Bound the whole body read. The slack over the file cap covers the
	// multipart framing and headers around the payload.
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUpload+multipartMemoryLimit)

	if err := r.ParseMultipartForm(multipartMemoryLimit); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			writeError(w, http.StatusRequestEntityTooLarge, s.sizeLimitMessage())
			return
		}
		writeError(w, http.StatusBadRequest, "invalid form data")
		return
	}
	// Multipart parsing may have spilled the upload to disk. Remove it on
	// every exit path; a failed cleanup is not the caller's problem.
	defer func() {
		if r.MultipartForm != nil {
			if err := r.MultipartForm.RemoveAll(); err != nil {
				log.WithError(err).Warn("failed to remove temporary upload")
			}
		}
	}()

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "No file provided")
		return
	}
	defer file.Close()

	if header.Size > s.maxUpload {
		writeError(w, http.StatusRequestEntityTooLarge, s.sizeLimitMessage())
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read uploaded file")
		return
	}

	mimeType := header.Header.Get("Content-Type")
	if mimeType == "" {
		mimeType = ml.DefaultMimeType
	}

	rawText, err := s.model.Complete(r.Context(), base64.StdEncoding.EncodeToString(data), mimeType)
	if err != nil {
		if errors.Is(err, ml.ErrMissingCredentials) {
			// Loud for the operator, generic for the caller.
			log.WithError(err).Error("inference backend is not configured")
			writeError(w, http.StatusInternalServerError, ml.ErrMissingCredentials.Error())
			return
		}
		log.WithError(err).Error("inference request failed")
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	result, raw, err := normalize.Normalize(rawText)
	if err != nil {
		log.WithError(err).Error("could not normalize model response")
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	record := &models.AnalysisRecord{
		ID:                uuid.New().String(),
		IsFood:            result.IsFood,
		FoodName:          result.FoodName,
		EstimatedCalories: result.EstimatedCalories,
		HealthScore:       result.HealthScore,
		MimeType:          mimeType,
		ImageSize:         header.Size,
		CreatedAt:         time.Now(),
	}
	// History and the live feed are side channels; their failures never
	// change the caller's response.
	if err := s.db.SaveAnalysis(r.Context(), record); err != nil {
		log.WithError(err).Error("failed to record analysis")
	}
	s.clients.broadcast("analysis", raw)

	log.WithFields(log.Fields{
		"id":      record.ID,
		"is_food": result.IsFood,
		"size":    header.Size,
	}).Info("analysis completed")

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(raw)
}

func (s *Server) sizeLimitMessage() string {
	return fmt.Sprintf("uploaded file exceeds the %d MiB size limit", s.maxUpload>>20)
}
