package httpx

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"runtime/debug"
	"time"

	domainauth "github.com/target/studio-ui-auth/internal/domain/auth"
)

// GateEvaluator is the access-gate surface the route middleware needs.
type GateEvaluator interface {
	EvaluateMember(ctx context.Context, path string) domainauth.Decision
	EvaluateAdmin(ctx context.Context, path string) domainauth.Decision
}

// SessionReader provides the state snapshot attached to allowed requests.
type SessionReader interface {
	Snapshot() domainauth.State
}

// Logging returns a middleware that logs HTTP requests and responses.
func Logging(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			const defaultHTTPStatus = 200
			ww := &respWriter{ResponseWriter: w, status: defaultHTTPStatus}
			next.ServeHTTP(ww, r)
			logger.Info("http",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", ww.status),
				slog.Duration("duration", time.Since(start)),
			)
		})
	}
}

type respWriter struct {
	http.ResponseWriter
	status int
}

func (w *respWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

// Recover returns a middleware that recovers from panics and logs them.
func Recover(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					logger.Error("panic",
						slog.Any("error", err),
						slog.String("path", r.URL.Path),
						slog.String("method", r.Method),
						slog.String("stack", string(debug.Stack())))
					http.Error(w, "Internal Server Error", http.StatusInternalServerError)
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// RequireMemberAccess gates member-area routes through the access gate and
// projects the decision onto HTTP.
func RequireMemberAccess(gate GateEvaluator, sessions SessionReader) func(http.Handler) http.Handler {
	return gateMiddleware(sessions, func(ctx context.Context, path string) domainauth.Decision {
		return gate.EvaluateMember(ctx, path)
	})
}

// RequireAdminAccess gates admin-area routes through the access gate.
func RequireAdminAccess(gate GateEvaluator, sessions SessionReader) func(http.Handler) http.Handler {
	return gateMiddleware(sessions, func(ctx context.Context, path string) domainauth.Decision {
		return gate.EvaluateAdmin(ctx, path)
	})
}

func gateMiddleware(sessions SessionReader, evaluate func(context.Context, string) domainauth.Decision) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			d := evaluate(r.Context(), r.URL.Path)
			if d.Allowed() {
				ctx := SetStateInContext(r.Context(), sessions.Snapshot())
				next.ServeHTTP(w, r.WithContext(ctx))
				return
			}
			writeDecision(w, r, d)
		})
	}
}

// writeDecision maps non-allow gate outcomes onto HTTP responses:
//
//	loading     503 with Retry-After, the client should re-request shortly
//	redirect    303 to the decision target
//	redirecting 202, a redirect for this episode was already issued
//	blocked     402 with the call-to-action URL in the body
func writeDecision(w http.ResponseWriter, r *http.Request, d domainauth.Decision) {
	switch d.Outcome {
	case domainauth.OutcomeLoading:
		w.Header().Set("Retry-After", "1")
		WriteError(w, ErrorParams{
			Code:    http.StatusServiceUnavailable,
			ErrCode: "session_loading",
			Err:     errors.New("session bootstrap in progress"),
		})
	case domainauth.OutcomeRedirect:
		http.Redirect(w, r, d.Target, http.StatusSeeOther)
	case domainauth.OutcomeRedirecting:
		WriteJSON(w, http.StatusAccepted, map[string]string{
			"status": "redirecting",
			"target": d.Target,
		})
	case domainauth.OutcomeBlocked:
		WriteJSON(w, http.StatusPaymentRequired, map[string]string{
			"error":        string(d.Reason),
			"checkout_url": d.Target,
		})
	default:
		WriteError(w, ErrorParams{
			Code:    http.StatusForbidden,
			ErrCode: "access_denied",
			Err:     errors.New("access denied"),
		})
	}
}
