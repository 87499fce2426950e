package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"area-api/internal/areadao"
	"area-api/internal/logger"
	"area-api/internal/revgeo"
)

type handler struct {
	e   Engine
	geo *GeoService
}

func (h *handler) healthz(w http.ResponseWriter, r *http.Request) {
	st := h.e.Stats()
	code := http.StatusOK
	if st.State != areadao.StateReady.String() {
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, st)
}

func (h *handler) stats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.e.Stats())
}

// children：code 缺省时返回顶级区域
func (h *handler) children(w http.ResponseWriter, r *http.Request) {
	res, err := h.e.Children(strings.TrimSpace(r.URL.Query().Get("code")))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *handler) find(w http.ResponseWriter, r *http.Request) {
	code, ok := requireParam(w, r, "code")
	if !ok {
		return
	}
	res, err := h.e.Find(code)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// search：无命中返回 200 与空数组
func (h *handler) search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit := 0
	if s := strings.TrimSpace(q.Get("limit")); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			writeBadRequest(w, "limit must be an integer")
			return
		}
		limit = n
	}
	res, err := h.e.Search(q.Get("q"), limit)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *handler) related(w http.ResponseWriter, r *http.Request) {
	code, ok := requireParam(w, r, "code")
	if !ok {
		return
	}
	res, err := h.e.Related(code)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// geoSearch：lat/lng 必填；coord_sys 可选（WGS-84 / GCJ-02 / BD-09）
func (h *handler) geoSearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	lat, err1 := strconv.ParseFloat(strings.TrimSpace(q.Get("lat")), 64)
	lng, err2 := strconv.ParseFloat(strings.TrimSpace(q.Get("lng")), 64)
	if err1 != nil || err2 != nil {
		writeBadRequest(w, "lat and lng must be numbers")
		return
	}
	res, cached, err := h.geo.Query(r.Context(), lat, lng, q.Get("coord_sys"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, geoResponse{GeoResult: res, Cached: cached})
}

func (h *handler) reloadCode(w http.ResponseWriter, r *http.Request) {
	if err := h.e.ReloadCode(r.Context()); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, reloadResponse{Index: areadao.IndexCode, Generation: h.e.Generation()})
}

func (h *handler) reloadGeo(w http.ResponseWriter, r *http.Request) {
	if err := h.e.ReloadGeo(r.Context()); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, reloadResponse{Index: areadao.IndexGeo, Generation: h.e.Generation()})
}

func requireParam(w http.ResponseWriter, r *http.Request, name string) (string, bool) {
	v := strings.TrimSpace(r.URL.Query().Get(name))
	if v == "" {
		writeBadRequest(w, name+" is required")
		return "", false
	}
	return v, true
}

// 文档注释：引擎错误 → HTTP 状态
// 约束：坐标非法 400；NotFound 404；NotReady 503；重载失败及其他 500。
func writeError(w http.ResponseWriter, err error) {
	var re *areadao.ReloadError
	switch {
	case errors.Is(err, revgeo.ErrInvalidCoordinate):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error(), Code: "bad_request"})
	case errors.Is(err, areadao.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error(), Code: "not_found"})
	case errors.Is(err, areadao.ErrNotReady):
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: err.Error(), Code: "not_ready"})
	case errors.As(err, &re):
		logger.L().Error("reload_request_failed", "index", re.Index, "err", re.Cause)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error(), Code: "reload_failed"})
	default:
		logger.L().Error("request_failed", "err", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error(), Code: "internal"})
	}
}

func writeBadRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, errorResponse{Error: msg, Code: "bad_request"})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("content-type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
