package rest

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/dmitrijs2005/oasis/internal/common"
	"github.com/dmitrijs2005/oasis/internal/server/models"
	"github.com/go-chi/chi/v5"
)

// badRequest marks malformed transport input (bad JSON, bad query).
var badRequest = fmt.Errorf("bad request: %w", common.ErrRejected)

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "OK"})
}

func (s *Server) beginUpload(w http.ResponseWriter, r *http.Request) {
	identity, _ := identityFrom(r.Context())

	var req models.BeginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, r, fmt.Errorf("%w: %v", badRequest, err))
		return
	}

	id, err := s.uploads.Begin(r.Context(), identity, req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, models.BeginResponse{UploadID: id})
}

func (s *Server) putSlice(w http.ResponseWriter, r *http.Request) {
	identity, _ := identityFrom(r.Context())
	uploadID := chi.URLParam(r, "uploadID")

	q := r.URL.Query()
	index, err := strconv.ParseUint(q.Get("index"), 10, 64)
	if err != nil {
		s.writeError(w, r, fmt.Errorf("%w: index: %v", badRequest, err))
		return
	}
	hash := q.Get("hash")
	if hash == "" {
		s.writeError(w, r, fmt.Errorf("%w: missing hash", badRequest))
		return
	}

	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.maxSliceBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSON(w, http.StatusRequestEntityTooLarge, errorResponse{Error: "slice too large"})
			return
		}
		s.writeError(w, r, fmt.Errorf("%w: read body: %v", badRequest, err))
		return
	}

	err = s.uploads.PutSlice(r.Context(), identity, uploadID, models.SliceRequest{
		Index: index,
		Hash:  hash,
		Data:  data,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusOK)
}

func (s *Server) finishUpload(w http.ResponseWriter, r *http.Request) {
	identity, _ := identityFrom(r.Context())

	var req models.FinishRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, r, fmt.Errorf("%w: %v", badRequest, err))
		return
	}

	record, err := s.uploads.Finish(r.Context(), identity, req.UploadID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, record)
}
