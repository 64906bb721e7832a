package httpx

import (
	"errors"
	"net/http"

	"github.com/target/studio-ui-auth/internal/ports"
)

// PrefsHandlers serves per-user UI preferences. Routes are registered behind
// the member gate, so the user ID is always present in the request context.
type PrefsHandlers struct {
	Prefs ports.PrefsStore
}

type prefValueRequest struct {
	Value string `json:"value"`
}

type prefValueResponse struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Get handles GET /app/prefs/{key}.
func (h *PrefsHandlers) Get(w http.ResponseWriter, r *http.Request) {
	userID := UserIDFromContext(r.Context())
	if userID == "" {
		writeNoSession(w)
		return
	}
	key := r.PathValue("key")

	value, err := h.Prefs.Get(r.Context(), userID, key)
	if err != nil {
		WriteAppError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, prefValueResponse{Key: key, Value: value})
}

// Put handles PUT /app/prefs/{key}.
func (h *PrefsHandlers) Put(w http.ResponseWriter, r *http.Request) {
	userID := UserIDFromContext(r.Context())
	if userID == "" {
		writeNoSession(w)
		return
	}
	key := r.PathValue("key")

	var req prefValueRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	if err := h.Prefs.Set(r.Context(), userID, key, req.Value); err != nil {
		WriteAppError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, prefValueResponse{Key: key, Value: req.Value})
}

// Delete handles DELETE /app/prefs/{key}.
func (h *PrefsHandlers) Delete(w http.ResponseWriter, r *http.Request) {
	userID := UserIDFromContext(r.Context())
	if userID == "" {
		writeNoSession(w)
		return
	}

	if err := h.Prefs.Delete(r.Context(), userID, r.PathValue("key")); err != nil {
		WriteAppError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func writeNoSession(w http.ResponseWriter) {
	WriteError(w, ErrorParams{
		Code:    http.StatusUnauthorized,
		ErrCode: "no_session",
		Err:     errors.New("no authenticated user in request context"),
	})
}

func registerPrefsRoutes(mux *http.ServeMux, h *PrefsHandlers) {
	mux.HandleFunc("GET /app/prefs/{key}", h.Get)
	mux.HandleFunc("PUT /app/prefs/{key}", h.Put)
	mux.HandleFunc("DELETE /app/prefs/{key}", h.Delete)
}
