package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/phyten/i18nscan/internal/engine"
	engineopts "github.com/phyten/i18nscan/internal/engine/opts"
	"github.com/phyten/i18nscan/internal/model"
	"github.com/phyten/i18nscan/internal/progress"
	"github.com/phyten/i18nscan/internal/textrange"
	"github.com/phyten/i18nscan/internal/walker"
)

const defaultMaxBody = 4 << 20

// Server serves the UI and the JSON API for one repository.
type Server struct {
	// Defaults は /api/scan の基準となるオプションです。RepoDir は固定されます。
	Defaults     engine.Options
	Detector     *engine.Detector
	Logger       *zerolog.Logger
	MaxBodyBytes int64
}

type detectRequest struct {
	File string `json:"file"`
	Code string `json:"code"`
}

type detectResponse struct {
	ScanID  string        `json:"scan_id"`
	File    string        `json:"file"`
	Matches []model.Match `json:"matches"`
}

type errorResponse struct {
	Error string `json:"error"`
	Stage string `json:"stage,omitempty"`
	Line  int    `json:"line,omitempty"`
}

// Handler returns a mux with the UI and every API route.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	s.registerUI(mux)
	mux.HandleFunc("/api/detect", s.detectHandler)
	mux.HandleFunc("/api/scan", s.scanHandler)
	mux.HandleFunc("/api/scan/stream", s.scanStreamHandler)
	return mux
}

func (s *Server) detectHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Error: "method not allowed"})
		return
	}
	limit := s.MaxBodyBytes
	if limit <= 0 {
		limit = defaultMaxBody
	}
	var req detectRequest
	dec := json.NewDecoder(io.LimitReader(r.Body, limit+1))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body: " + err.Error()})
		return
	}
	if int64(len(req.Code)) > limit {
		writeJSON(w, http.StatusRequestEntityTooLarge, errorResponse{Error: "code too large"})
		return
	}
	if strings.TrimSpace(req.File) == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "file is required"})
		return
	}

	det := s.Detector
	if det == nil {
		det = &engine.Detector{Logger: s.Logger}
	}
	matches, err := det.Detect(r.Context(), []byte(req.Code), req.File)
	if err != nil {
		resp := errorResponse{Error: err.Error(), Stage: "detect"}
		var pe *walker.ParseError
		switch {
		case errors.As(err, &pe):
			resp.Stage, resp.Line = "parse", pe.Line
		case errors.Is(err, walker.ErrParseFailure):
			resp.Stage = "parse"
		case errors.Is(err, textrange.ErrEmptySpan), errors.Is(err, textrange.ErrInvalidSpan):
			resp.Stage = "normalize"
		}
		writeJSON(w, http.StatusUnprocessableEntity, resp)
		return
	}
	if matches == nil {
		matches = []model.Match{}
	}
	writeJSON(w, http.StatusOK, detectResponse{ScanID: uuid.NewString(), File: req.File, Matches: matches})
}

func (s *Server) options(r *http.Request) (engine.Options, error) {
	opts, err := engineopts.ApplyWebQueryToOptions(s.Defaults, r.URL.Query())
	if err != nil {
		return opts, err
	}
	// serve is pinned to its repository
	opts.RepoDir = s.Defaults.RepoDir
	opts.Progress = false
	if opts.Logger == nil {
		opts.Logger = s.Logger
	}
	if err := engineopts.NormalizeAndValidate(&opts); err != nil {
		return opts, err
	}
	return opts, nil
}

func (s *Server) scanHandler(w http.ResponseWriter, r *http.Request) {
	opts, err := s.options(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	res, err := engine.Run(r.Context(), opts)
	if err != nil {
		s.logger().Error().Err(err).Msg("scan failed")
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// sseObserver forwards progress snapshots as server-sent events.
type sseObserver struct {
	w  io.Writer
	fl http.Flusher
}

func (o sseObserver) Publish(s progress.Snapshot) { writeEvent(o.w, o.fl, "progress", s) }
func (o sseObserver) Done(s progress.Snapshot)    { writeEvent(o.w, o.fl, "progress", s) }

func (s *Server) scanStreamHandler(w http.ResponseWriter, r *http.Request) {
	fl, ok := w.(http.Flusher)
	if !ok {
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "streaming unsupported"})
		return
	}
	opts, err := s.options(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	fl.Flush()

	opts.ProgressObserver = sseObserver{w: w, fl: fl}
	res, err := engine.Run(r.Context(), opts)
	if err != nil {
		writeEvent(w, fl, "error", errorResponse{Error: err.Error()})
		return
	}
	writeEvent(w, fl, "result", res)
}

func writeEvent(w io.Writer, fl http.Flusher, name string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		data, _ = json.Marshal(errorResponse{Error: err.Error()})
		name = "error"
	}
	fmt.Fprintf(w, "event: %s\ndata: %s\n\n", name, data)
	fl.Flush()
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(v)
}

func (s *Server) logger() *zerolog.Logger {
	if s.Logger == nil {
		nop := zerolog.Nop()
		return &nop
	}
	return s.Logger
}
