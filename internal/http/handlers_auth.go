package httpx

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	domainauth "github.com/target/studio-ui-auth/internal/domain/auth"
	"github.com/target/studio-ui-auth/internal/ports"
)

// SessionAPI is the session service surface the auth handlers need.
type SessionAPI interface {
	Initialize(ctx context.Context) domainauth.State
	Login(ctx context.Context, email, password string) (domainauth.State, error)
	Signup(ctx context.Context, in ports.SignUpInput) (domainauth.State, error)
	Logout(ctx context.Context) domainauth.State
	RefreshProfile(ctx context.Context) error
	Snapshot() domainauth.State
}

// AuthHandlers exposes the session lifecycle over HTTP.
type AuthHandlers struct {
	Sessions SessionAPI
	Logger   *slog.Logger
}

// stateResponse is the wire form of a session state snapshot.
type stateResponse struct {
	Authenticated bool                `json:"authenticated"`
	Loading       bool                `json:"loading"`
	User          *userResponse       `json:"user,omitempty"`
	Profile       *domainauth.Profile `json:"profile,omitempty"`
}

type userResponse struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

func toStateResponse(st domainauth.State) stateResponse {
	resp := stateResponse{
		Authenticated: st.IsAuthenticated,
		Loading:       st.IsLoading,
		Profile:       st.Profile,
	}
	if st.User != nil {
		resp.User = &userResponse{ID: st.User.ID, Email: st.User.Email}
	}
	return resp
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login handles POST /auth/login.
func (h *AuthHandlers) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" || req.Password == "" {
		WriteError(w, ErrorParams{
			Code:    http.StatusBadRequest,
			ErrCode: "validation",
			Err:     errors.New("email and password are required"),
		})
		return
	}

	st, err := h.Sessions.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		WriteAppError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, toStateResponse(st))
}

type signupRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

// Signup handles POST /auth/signup.
func (h *AuthHandlers) Signup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" || req.Password == "" {
		WriteError(w, ErrorParams{
			Code:    http.StatusBadRequest,
			ErrCode: "validation",
			Err:     errors.New("email and password are required"),
		})
		return
	}

	st, err := h.Sessions.Signup(r.Context(), ports.SignUpInput{
		Email:    req.Email,
		Password: req.Password,
		Name:     strings.TrimSpace(req.Name),
	})
	if err != nil {
		WriteAppError(w, err)
		return
	}
	WriteJSON(w, http.StatusCreated, toStateResponse(st))
}

// Logout handles POST /auth/logout. It always succeeds.
func (h *AuthHandlers) Logout(w http.ResponseWriter, r *http.Request) {
	h.Sessions.Logout(r.Context())
	w.WriteHeader(http.StatusNoContent)
}

// Session handles GET /auth/session. It triggers bootstrap on first call;
// concurrent callers share the in-flight initialization.
func (h *AuthHandlers) Session(w http.ResponseWriter, r *http.Request) {
	st := h.Sessions.Initialize(r.Context())
	WriteJSON(w, http.StatusOK, toStateResponse(st))
}

// RefreshProfile handles POST /auth/refresh-profile. The refresh outcome is
// observable through the session endpoint; failures here are deliberate
// no-surface, so the response is accepted-and-moving-on.
func (h *AuthHandlers) RefreshProfile(w http.ResponseWriter, r *http.Request) {
	if err := h.Sessions.RefreshProfile(r.Context()); err != nil && h.Logger != nil {
		h.Logger.Warn("profile refresh via http failed", slog.String("error", err.Error()))
	}
	WriteJSON(w, http.StatusAccepted, toStateResponse(h.Sessions.Snapshot()))
}

func registerAuthRoutes(mux *http.ServeMux, h *AuthHandlers) {
	mux.HandleFunc("POST /auth/login", h.Login)
	mux.HandleFunc("POST /auth/signup", h.Signup)
	mux.HandleFunc("POST /auth/logout", h.Logout)
	mux.HandleFunc("GET /auth/session", h.Session)
	mux.HandleFunc("POST /auth/refresh-profile", h.RefreshProfile)
}
