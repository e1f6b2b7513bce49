package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"

	"easedrop/backend/db"
	"easedrop/backend/lifecycle"
	"easedrop/shared"
	"easedrop/shared/constants"
)

// genericCodeError is the one message used for unknown, expired and
// exhausted codes alike, so responses never confirm that a code once
// existed.
const genericCodeError = "invalid or expired code"

// SaltHandler returns the process-wide KDF salt. Anyone can read it; the
// protocol's confidentiality rests on the code, not the salt.
func (s *Server) SaltHandler(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, shared.SaltResponse{Salt: s.cfg.ServerSalt})
}

// UploadHandler accepts a multipart upload of one encrypted envelope plus
// its transfer parameters and registers the new record.
func (s *Server) UploadHandler(w http.ResponseWriter, req *http.Request) {
	req.Body = http.MaxBytesReader(w, req.Body, s.cfg.MaxFileSize+4096)

	if err := req.ParseMultipartForm(32 << 20); err != nil {
		writeError(w, http.StatusBadRequest, "No file provided")
		return
	}

	file, header, err := req.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "No file provided")
		return
	}
	defer file.Close()

	maxDownloads, err := formInt(req, "maxDownloads", constants.DefaultMaxDownloads)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid download limit")
		return
	}

	expiryMinutes, err := formInt(req, "expiryMinutes", constants.DefaultExpiryMinutes)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid expiry")
		return
	}

	record, err := s.mgr.CreateTransfer(lifecycle.UploadRequest{
		Code:          req.FormValue("smartCode"),
		OriginalName:  req.FormValue("originalName"),
		MaxDownloads:  maxDownloads,
		ExpiryMinutes: expiryMinutes,
		Size:          header.Size,
		Data:          file,
	})

	switch {
	case err == nil:
	case errors.Is(err, lifecycle.ErrInvalidRequest):
		writeError(w, http.StatusBadRequest, "Invalid transfer parameters")
		return
	case errors.Is(err, db.ErrDuplicateCode):
		writeError(w, http.StatusConflict, "Code already in use")
		return
	default:
		log.Printf("Upload error: %v\n", err)
		writeError(w, http.StatusInternalServerError, "Upload failed")
		return
	}

	writeJSON(w, shared.UploadResponse{
		SmartCode: record.SmartCode,
		ExpiresAt: record.ExpiresAt,
		FileSize:  record.FileSize,
	})
}

// ValidateHandler reports whether a code points at a live transfer, along
// with the metadata a receiver needs before committing to a download.
func (s *Server) ValidateHandler(w http.ResponseWriter, req *http.Request) {
	code := trailingSegment(req.URL.Path)

	record, err := s.mgr.Validate(code)
	if err != nil {
		writeCodeError(w, err)
		return
	}

	writeJSON(w, shared.ValidateResponse{
		Valid:              true,
		FileName:           record.OriginalName,
		FileSize:           record.FileSize,
		ExpiresAt:          record.ExpiresAt,
		DownloadsRemaining: record.DownloadsRemaining(),
	})
}

// DownloadHandler streams the raw envelope bytes for a code. The download
// slot is consumed before the first byte is written; an aborted stream
// still counts.
func (s *Server) DownloadHandler(w http.ResponseWriter, req *http.Request) {
	code := trailingSegment(req.URL.Path)

	record, reader, err := s.mgr.OpenDownload(code)
	if err != nil {
		writeCodeError(w, err)
		return
	}
	defer reader.Close()

	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", constants.DownloadFilename))
	w.Header().Set("Content-Length", strconv.FormatInt(record.FileSize, 10))

	if _, err = io.Copy(w, reader); err != nil {
		// The slot is already spent; nothing to roll back
		log.Printf("Error streaming %s: %v\n", record.Locator, err)
	}
}

// UpHandler is a trivial liveness check.
func (s *Server) UpHandler(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}

// writeCodeError maps record errors onto the minimal HTTP surface: 404 for
// unknown, 410 for dead, 500 for anything the server got wrong. The body
// text is identical for 404 and 410.
func writeCodeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, db.ErrNotFound):
		writeError(w, http.StatusNotFound, genericCodeError)
	case errors.Is(err, lifecycle.ErrExpired), errors.Is(err, db.ErrExhausted):
		writeError(w, http.StatusGone, genericCodeError)
	case errors.Is(err, lifecycle.ErrStorageInconsistent):
		log.Printf("Storage inconsistency: %v\n", err)
		writeError(w, http.StatusInternalServerError, "Server error")
	default:
		log.Printf("Error handling code request: %v\n", err)
		writeError(w, http.StatusInternalServerError, "Server error")
	}
}

func writeJSON(w http.ResponseWriter, value any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(value); err != nil {
		log.Printf("Error sending response: %v\n", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(shared.ErrorResponse{Error: msg})
}

func formInt(req *http.Request, field string, fallback int) (int, error) {
	value := req.FormValue(field)
	if len(value) == 0 {
		return fallback, nil
	}

	return strconv.Atoi(value)
}

func trailingSegment(path string) string {
	segments := strings.Split(strings.TrimSuffix(path, "/"), "/")
	return segments[len(segments)-1]
}
