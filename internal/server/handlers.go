package server

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/KaramelBytes/tabloom-cli/internal/config"
	"github.com/KaramelBytes/tabloom-cli/internal/pipeline"
	"github.com/KaramelBytes/tabloom-cli/internal/utils"
)

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	w.Write([]byte("OK"))
}

// statusFor maps a failure kind to an HTTP status.
func statusFor(kind string) int {
	switch kind {
	case pipeline.KindUnreadable, pipeline.KindEmpty:
		return http.StatusUnprocessableEntity
	case pipeline.KindConfig:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}

func writeFailure(w http.ResponseWriter, err error) {
	if f, ok := pipeline.AsFailure(err); ok {
		writeJSON(w, statusFor(f.Kind), f)
		return
	}
	writeError(w, http.StatusInternalServerError, err.Error())
}

// saveUpload stores the multipart "file" field in the upload directory,
// keeping its extension so the loader can dispatch on it.
func (s *Server) saveUpload(w http.ResponseWriter, r *http.Request) (string, error) {
	limit := int64(s.opt.MaxUploadMB) << 20
	r.Body = http.MaxBytesReader(w, r.Body, limit)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		return "", fmt.Errorf("parse upload: %w", err)
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		return "", fmt.Errorf("missing file field: %w", err)
	}
	defer file.Close()

	ext := strings.ToLower(filepath.Ext(header.Filename))
	dst, err := os.CreateTemp(s.opt.UploadDir, "upload-*"+ext)
	if err != nil {
		return "", fmt.Errorf("create upload: %w", err)
	}
	defer dst.Close()
	if _, err := io.Copy(dst, file); err != nil {
		_ = os.Remove(dst.Name())
		return "", fmt.Errorf("store upload: %w", err)
	}
	return dst.Name(), nil
}

// pipelineOptions overlays per-request form fields on the base options.
func (s *Server) pipelineOptions(r *http.Request) (pipeline.Options, error) {
	opt := s.opt.Pipeline
	if v := r.FormValue("sample_rows"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return opt, fmt.Errorf("sample_rows: %w", err)
		}
		opt.Profile.SampleRows = n
		opt.Profile.TopWords = true
	}
	if v := r.FormValue("sheet_name"); v != "" {
		opt.Loader.SheetName = v
	}
	if v := r.FormValue("delimiter"); v != "" {
		d, err := utils.ParseDelimiter(v)
		if err != nil {
			return opt, err
		}
		opt.Loader.Delimiter = d
	}
	if v := r.FormValue("importances"); v != "" {
		scores, err := utils.ParseFloats(v)
		if err != nil {
			return opt, err
		}
		opt.Importances = scores
	}
	return opt, nil
}

func (s *Server) profile(w http.ResponseWriter, r *http.Request) {
	path, err := s.saveUpload(w, r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	defer os.Remove(path)

	opt, err := s.pipelineOptions(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	opt.Profile.Name = filepath.Base(r.MultipartForm.File["file"][0].Filename)
	opt.Logger = &s.log
	res, err := pipeline.New(opt).Profile(path)
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// transform runs the feature pipeline. The form field "config" carries an
// inline JSON preprocessing configuration. With "Accept: text/csv" the
// feature matrix is returned instead of the status document.
func (s *Server) transform(w http.ResponseWriter, r *http.Request) {
	path, err := s.saveUpload(w, r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	defer os.Remove(path)

	opt, err := s.pipelineOptions(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	doc := strings.TrimSpace(r.FormValue("config"))
	if doc != "" && !strings.HasPrefix(doc, "{") {
		writeError(w, http.StatusBadRequest, "config must be an inline JSON object")
		return
	}
	cfg, err := config.LoadPreprocessing(doc)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	opt.Preprocessing = &cfg
	opt.Logger = &s.log

	out := path + ".features.csv"
	defer os.Remove(out)
	st, err := pipeline.New(opt).Transform(path, out)
	if err != nil {
		writeFailure(w, err)
		return
	}

	if strings.Contains(r.Header.Get("Accept"), "text/csv") {
		b, err := os.ReadFile(out)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("X-Run-ID", st.RunID)
		w.Write(b)
		return
	}
	st.File = filepath.Base(out)
	writeJSON(w, http.StatusOK, st)
}
