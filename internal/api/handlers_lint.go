package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/dgallion1/lintdoc/internal/lint"
	"github.com/dgallion1/lintdoc/internal/report"
)

// errTooLarge marks uploads over cfg.MaxUploadBytes.
var errTooLarge = errors.New("file exceeds max size")

// handleLint accepts either a multipart "file" field or a raw body with
// ?filename= naming the format.
func (s *Server) handleLint(w http.ResponseWriter, r *http.Request) {
	// Extra 1MB for form overhead.
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes+1024*1024)

	var (
		filename string
		data     []byte
		err      error
	)
	if isMultipart(r) {
		filename, data, err = s.readFormFile(r)
	} else {
		filename = r.URL.Query().Get("filename")
		if filename == "" {
			jsonError(w, "filename query parameter is required", http.StatusBadRequest)
			return
		}
		filename = sanitizeFilename(filename)
		data, err = s.readUpload(r.Body)
	}
	if err != nil {
		uploadError(w, err)
		return
	}

	rep, err := s.linter.LintReader(bytes.NewReader(data), filename)
	if err != nil {
		lintError(w, filename, err)
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

func (s *Server) readFormFile(r *http.Request) (string, []byte, error) {
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		return "", nil, fmt.Errorf("invalid multipart form: %w", err)
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		return "", nil, fmt.Errorf("file is required: %w", err)
	}
	defer file.Close()

	data, err := s.readUpload(file)
	return sanitizeFilename(header.Filename), data, err
}

func (s *Server) readUpload(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, s.cfg.MaxUploadBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	if int64(len(data)) > s.cfg.MaxUploadBytes {
		return nil, fmt.Errorf("%w (%d bytes)", errTooLarge, s.cfg.MaxUploadBytes)
	}
	return data, nil
}

type batchResult struct {
	Filename string         `json:"filename"`
	Report   *report.Report `json:"report,omitempty"`
	Error    string         `json:"error,omitempty"`
	Kind     string         `json:"kind,omitempty"`
	ExitCode int            `json:"exit_code"`
}

func (s *Server) handleBatchLint(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes*10+10*1024*1024)

	if err := r.ParseMultipartForm(64 << 20); err != nil {
		uploadError(w, fmt.Errorf("invalid multipart form: %w", err))
		return
	}
	defer r.MultipartForm.RemoveAll()

	files := r.MultipartForm.File["files"]
	if len(files) == 0 {
		jsonError(w, "at least one file is required", http.StatusBadRequest)
		return
	}

	results := make([]batchResult, len(files))
	var inputs []lint.Input
	var slots []int
	for i, fh := range files {
		filename := sanitizeFilename(fh.Filename)
		results[i] = batchResult{Filename: filename, ExitCode: report.ExitError}

		f, err := fh.Open()
		if err != nil {
			results[i].Error = "failed to open file"
			continue
		}
		data, err := s.readUpload(f)
		f.Close()
		if err != nil {
			results[i].Error = err.Error()
			continue
		}
		inputs = append(inputs, lint.Input{Name: filename, Data: bytes.NewReader(data)})
		slots = append(slots, i)
	}

	for j, out := range s.linter.LintBatch(r.Context(), inputs, s.cfg.BatchWorkers) {
		res := &results[slots[j]]
		if out.Err != nil {
			res.Error = out.Err.Error()
			res.Kind = report.Kind(out.Err)
			continue
		}
		res.Report = out.Report
		res.ExitCode = out.Report.ExitCode
	}

	exit := report.ExitOK
	for _, res := range results {
		exit = max(exit, res.ExitCode)
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"results":   results,
		"exit_code": exit,
	})
}

func isMultipart(r *http.Request) bool {
	mt, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mt == "multipart/form-data"
}

func uploadError(w http.ResponseWriter, err error) {
	var mbe *http.MaxBytesError
	if errors.Is(err, errTooLarge) || errors.As(err, &mbe) {
		jsonError(w, err.Error(), http.StatusRequestEntityTooLarge)
		return
	}
	jsonError(w, err.Error(), http.StatusBadRequest)
}

// lintError maps load failures: undecodable or unsectioned documents are 422.
func lintError(w http.ResponseWriter, name string, err error) {
	code := http.StatusInternalServerError
	switch report.Kind(err) {
	case "format":
		code = http.StatusUnprocessableEntity
	case "io":
		code = http.StatusBadRequest
	}
	writeJSON(w, code, report.ErrorReport{
		Source:   name,
		Error:    err.Error(),
		Kind:     report.Kind(err),
		ExitCode: report.ExitError,
	})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	writeJSON(w, code, map[string]string{"error": msg})
}

func sanitizeFilename(name string) string {
	// Strip path components, keep only the base name.
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	name = strings.ReplaceAll(name, "..", "_")
	if name == "" || name == "." || name == "/" {
		name = "unnamed"
	}
	return name
}
