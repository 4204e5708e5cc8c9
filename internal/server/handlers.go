package server

import (
	"encoding/json"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/topograph/pkg/buildinfo"
	"github.com/matzehuels/topograph/pkg/errors"
	"github.com/matzehuels/topograph/pkg/render/nodelink"
	"github.com/matzehuels/topograph/pkg/topology"
	"github.com/matzehuels/topograph/pkg/topology/highlight"
	"github.com/matzehuels/topograph/pkg/view"
)

type handlers struct {
	ctrl   *view.Controller
	logger *log.Logger
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type errorResponse struct {
	Error errorBody        `json:"error"`
	State *highlight.State `json:"state,omitempty"`
}

type hoverRequest struct {
	NodeID string `json:"nodeId"`
}

func (h *handlers) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"build":  buildinfo.Get(),
	})
}

func (h *handlers) status(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.ctrl.Status())
}

func (h *handlers) topology(w http.ResponseWriter, r *http.Request) {
	res, err := h.ctrl.Layout()
	if err != nil {
		h.fail(w, err, nil)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *handlers) topologySVG(w http.ResponseWriter, r *http.Request) {
	res, err := h.ctrl.Layout()
	if err != nil {
		h.fail(w, err, nil)
		return
	}
	var st *highlight.State
	if id := r.URL.Query().Get("viewer"); id != "" {
		s, err := h.ctrl.State(id)
		if err != nil {
			h.fail(w, err, nil)
			return
		}
		st = &s
	}
	svg, err := nodelink.RenderSVG(r.Context(), nodelink.ToDOT(res, st, nodelink.Options{}))
	if err != nil {
		h.fail(w, errors.Wrap(errors.ErrCodeRenderFailed, err, "render topology"), nil)
		return
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(svg)
}

func (h *handlers) openViewer(w http.ResponseWriter, r *http.Request) {
	id, err := h.ctrl.OpenViewer()
	if err != nil {
		h.fail(w, err, nil)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"id": id})
}

func (h *handlers) viewerState(w http.ResponseWriter, r *http.Request) {
	st, err := h.ctrl.State(chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, err, nil)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (h *handlers) hoverEnter(w http.ResponseWriter, r *http.Request) {
	var req hoverRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<16)).Decode(&req); err != nil {
		h.fail(w, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode hover request"), nil)
		return
	}
	if err := errors.ValidateNodeID(req.NodeID); err != nil {
		h.fail(w, err, nil)
		return
	}
	st, err := h.ctrl.HoverEnter(r.Context(), chi.URLParam(r, "id"), topology.NodeID(req.NodeID))
	if err != nil {
		if errors.Is(err, errors.ErrCodeStaleFocusNode) {
			h.fail(w, err, &st)
			return
		}
		h.fail(w, err, nil)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (h *handlers) hoverLeave(w http.ResponseWriter, r *http.Request) {
	st, err := h.ctrl.HoverLeave(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, err, nil)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (h *handlers) closeViewer(w http.ResponseWriter, r *http.Request) {
	if err := h.ctrl.CloseViewer(chi.URLParam(r, "id")); err != nil {
		h.fail(w, err, nil)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handlers) fail(w http.ResponseWriter, err error, st *highlight.State) {
	status := statusFor(errors.GetCode(err))
	if status >= http.StatusInternalServerError {
		h.logger.Error("request failed", "err", err)
	}
	code := errors.GetCode(err)
	if code == "" {
		code = errors.ErrCodeInternal
	}
	writeJSON(w, status, errorResponse{
		Error: errorBody{Code: string(code), Message: errors.UserMessage(err)},
		State: st,
	})
}

func statusFor(code errors.Code) int {
	switch code {
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidNodeID:
		return http.StatusBadRequest
	case errors.ErrCodeViewerNotFound, errors.ErrCodeStaleFocusNode, errors.ErrCodeNotFound:
		return http.StatusNotFound
	case errors.ErrCodeNoSnapshot:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
