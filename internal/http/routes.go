package httpx

import (
	"log/slog"
	"net/http"

	"github.com/target/studio-ui-auth/internal/ports"
)

// RouterServices groups the dependencies of the HTTP surface.
type RouterServices struct {
	Sessions SessionAPI
	Gate     GateEvaluator
	Prefs    ports.PrefsStore
	Logger   *slog.Logger
}

// NewRouter builds the full HTTP handler. Auth and health routes are open;
// everything under /app/ passes the member gate and everything under /admin/
// passes the admin gate.
func NewRouter(s RouterServices) http.Handler {
	mux := http.NewServeMux()

	registerHealthRoutes(mux)
	registerAuthRoutes(mux, &AuthHandlers{Sessions: s.Sessions, Logger: s.Logger})

	appMux := http.NewServeMux()
	registerPrefsRoutes(appMux, &PrefsHandlers{Prefs: s.Prefs})
	appMux.HandleFunc("GET /app/me", serveContextState)
	mux.Handle("/app/", RequireMemberAccess(s.Gate, s.Sessions)(appMux))

	adminMux := http.NewServeMux()
	adminMux.HandleFunc("GET /admin/overview", serveContextState)
	mux.Handle("/admin/", RequireAdminAccess(s.Gate, s.Sessions)(adminMux))

	var handler http.Handler = mux
	handler = Recover(s.Logger)(handler)
	handler = Logging(s.Logger)(handler)
	return handler
}

// serveContextState echoes the state snapshot the gate middleware attached.
func serveContextState(w http.ResponseWriter, r *http.Request) {
	st, ok := GetStateFromContext(r.Context())
	if !ok {
		writeNoSession(w)
		return
	}
	WriteJSON(w, http.StatusOK, toStateResponse(st))
}
