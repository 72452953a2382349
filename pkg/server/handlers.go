package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/panetree/pkg/buildinfo"
	perrors "github.com/matzehuels/panetree/pkg/errors"
	"github.com/matzehuels/panetree/pkg/layout"
	"github.com/matzehuels/panetree/pkg/render"
	"github.com/matzehuels/panetree/pkg/workspace"
)

// opResponse is the body returned by POST /workspaces/{name}/ops.
type opResponse struct {
	workspace.Result
	Reason string `json:"reason,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": buildinfo.Version,
		"commit":  buildinfo.Commit,
	})
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	names, err := s.opts.Store.List(r.Context())
	if err != nil {
		writeError(w, perrors.Wrap(perrors.ErrCodeStorage, err, "list workspaces"))
		return
	}
	if names == nil {
		names = []string{}
	}
	writeJSON(w, http.StatusOK, map[string][]string{"workspaces": names})
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	_, snap, err := s.existing(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	opts := s.wsOptions()
	if o := r.URL.Query().Get("orientation"); o != "" {
		parsed, err := layout.ParseOrientation(o)
		if err != nil {
			writeError(w, perrors.Wrap(perrors.ErrCodeInvalidInput, err, "orientation"))
			return
		}
		opts.Orientation = parsed
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	ws, err := workspace.Create(r.Context(), name, opts)
	if err != nil {
		writeError(w, err)
		return
	}
	s.workspaces[name] = ws
	writeJSON(w, http.StatusCreated, ws.Snapshot())
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if err := perrors.ValidateName(name); err != nil {
		writeError(w, err)
		return
	}
	if err := s.opts.Store.Delete(r.Context(), name); err != nil {
		writeError(w, perrors.Wrap(perrors.ErrCodeStorage, err, "delete workspace %s", name))
		return
	}
	s.forget(name)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleOp(w http.ResponseWriter, r *http.Request) {
	var req workspace.Request
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, perrors.Wrap(perrors.ErrCodeInvalidInput, err, "decode request"))
		return
	}
	op, err := req.Decode()
	if err != nil {
		writeError(w, err)
		return
	}

	ws, err := s.workspace(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		writeError(w, err)
		return
	}
	res, err := ws.Apply(r.Context(), op)
	if perrors.Is(err, perrors.ErrCodeConflict) {
		// Another instance wrote first; catch up and try once more.
		if _, rerr := ws.Reload(r.Context()); rerr == nil {
			res, err = ws.Apply(r.Context(), op)
		}
	}
	if err != nil {
		writeError(w, err)
		return
	}

	resp := opResponse{Result: res}
	if res.Reason != nil {
		resp.Reason = res.Reason.Error()
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleDOT(w http.ResponseWriter, r *http.Request) {
	_, snap, err := s.existing(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		writeError(w, err)
		return
	}
	dot := render.ToDOT(snap.Tree, render.DOTOptions{
		Detailed:  r.URL.Query().Get("detailed") == "true",
		Highlight: r.URL.Query().Get("highlight"),
	})
	w.Header().Set("Content-Type", "text/vnd.graphviz; charset=utf-8")
	w.Write([]byte(dot))
}

func (s *Server) handleSVG(w http.ResponseWriter, r *http.Request) {
	_, snap, err := s.existing(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		writeError(w, err)
		return
	}
	dot := render.ToDOT(snap.Tree, render.DOTOptions{Highlight: r.URL.Query().Get("highlight")})
	svg, err := render.RenderSVGCached(r.Context(), s.opts.Cache, dot)
	if err != nil {
		writeError(w, perrors.Wrap(perrors.ErrCodeInternal, err, "render svg"))
		return
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	w.Write(svg)
}

func (s *Server) handleText(w http.ResponseWriter, r *http.Request) {
	_, snap, err := s.existing(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		writeError(w, err)
		return
	}
	width, err := intParam(r, "width", 80)
	if err != nil {
		writeError(w, err)
		return
	}
	height, err := intParam(r, "height", 24)
	if err != nil {
		writeError(w, err)
		return
	}
	out := render.Text(snap.Tree, width, height, render.TextOptions{Focused: r.URL.Query().Get("focus")})
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte(out + "\n"))
}

// intParam reads a positive integer query parameter no larger than 1000.
func intParam(r *http.Request, key string, def int) (int, error) {
	v := r.URL.Query().Get(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 || n > 1000 {
		return 0, perrors.New(perrors.ErrCodeInvalidInput, "%s must be an integer between 1 and 1000", key)
	}
	return n, nil
}

type errorBody struct {
	Code    perrors.Code `json:"code"`
	Message string       `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	code := perrors.GetCode(err)
	if code == "" {
		code = perrors.ErrCodeInternal
	}
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		writeJSON(w, http.StatusRequestEntityTooLarge, map[string]errorBody{
			"error": {Code: perrors.ErrCodeInvalidInput, Message: "request body too large"},
		})
		return
	}
	writeJSON(w, StatusFor(code), map[string]errorBody{
		"error": {Code: code, Message: perrors.UserMessage(err)},
	})
}

// StatusFor maps an error code to an HTTP status.
func StatusFor(code perrors.Code) int {
	switch code {
	case perrors.ErrCodeInvalidInput, perrors.ErrCodeInvalidID, perrors.ErrCodeInvalidName,
		perrors.ErrCodeInvalidPosition, perrors.ErrCodeInvalidConfig:
		return http.StatusBadRequest
	case perrors.ErrCodeNotFound, perrors.ErrCodeWorkspaceNotFound:
		return http.StatusNotFound
	case perrors.ErrCodeNotALeaf:
		return http.StatusUnprocessableEntity
	case perrors.ErrCodeConflict:
		return http.StatusConflict
	case perrors.ErrCodeStorage:
		return http.StatusServiceUnavailable
	case perrors.ErrCodeUnsupported:
		return http.StatusNotImplemented
	default:
		return http.StatusInternalServerError
	}
}
