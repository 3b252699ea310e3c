package catalog

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mensahub/mensahub/internal/shared"
	"github.com/mensahub/mensahub/internal/view"
)

// commitOnFirstWrite mirrors the production session middleware: the session
// is flushed to the store right before the status line goes out.
type commitOnFirstWrite struct {
	http.ResponseWriter
	commit        func(http.ResponseWriter)
	headerWritten bool
}

func (w *commitOnFirstWrite) WriteHeader(statusCode int) {
	if !w.headerWritten {
		w.headerWritten = true
		w.commit(w.ResponseWriter)
	}
	w.ResponseWriter.WriteHeader(statusCode)
}

func (w *commitOnFirstWrite) Write(data []byte) (int, error) {
	if !w.headerWritten {
		w.WriteHeader(http.StatusOK)
	}
	return w.ResponseWriter.Write(data)
}

func TestNotFoundPageCommitsSession(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	sessions := shared.NewSessionManager(client, "mensahub_session", "test-secret", time.Hour, 30*24*time.Hour, false)
	templates, err := view.NewEngine()
	require.NoError(t, err)

	svc, _ := newTestService()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	handler := NewHandler(logger, svc, templates, shared.NewCSRFManager("csrf-secret"))

	router := chi.NewRouter()
	router.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess, err := sessions.Load(r.Context(), r)
			require.NoError(t, err)
			ctx := shared.ContextWithSession(r.Context(), sess)
			wrapped := &commitOnFirstWrite{ResponseWriter: w, commit: func(dst http.ResponseWriter) {
				require.NoError(t, sessions.Commit(ctx, dst, r, sess))
			}}
			next.ServeHTTP(wrapped, r.WithContext(ctx))
		})
	})
	router.Route("/management", handler.MountRoutes)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/management/dishes/not-a-number/edit", nil))

	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "Page not found")

	// The token minted while rendering the error page must survive into the
	// stored session, which requires the commit to run after view data is
	// built but before the status line.
	var cookie *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == "mensahub_session" && c.Value != "" {
			cookie = c
		}
	}
	require.NotNil(t, cookie, "session cookie missing from error response")

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookie)
	sess, err := sessions.Load(context.Background(), req)
	require.NoError(t, err)
	assert.NotEmpty(t, sess.Get(shared.CSRFSessionKey))
}
