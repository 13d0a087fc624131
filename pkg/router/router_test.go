package router

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/onramp-labs/backend/config"
	"github.com/onramp-labs/backend/pkg/errorx"
	"github.com/onramp-labs/backend/pkg/logger"
)

type echoRequest struct {
	Name string `json:"name"`
}

type echoResponse struct {
	Greeting string `json:"greeting"`
}

func newTestRouter(t *testing.T) *Router {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	return New(db, config.Configs{}, logger.NewLogger(logger.SILENCE))
}

func Test_Router_POST(t *testing.T) {
	r := newTestRouter(t)
	POST(r, "/echo", func(ctx context.Context, req *echoRequest) (*echoResponse, error) {
		return &echoResponse{Greeting: "hello " + req.Name}, nil
	})

	body, err := json.Marshal(echoRequest{Name: "world"})
	require.NoError(t, err)

	w := httptest.NewRecorder()
	r.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/echo", bytes.NewReader(body)))
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var resp struct {
		Code int64        `json:"code"`
		Data echoResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, int64(0), resp.Code)
	require.Equal(t, "hello world", resp.Data.Greeting)
}

func Test_Router_GET_bindsQuery(t *testing.T) {
	r := newTestRouter(t)
	GET(r, "/echo", func(ctx context.Context, req *echoRequest) (*echoResponse, error) {
		return &echoResponse{Greeting: "hello " + req.Name}, nil
	})

	w := httptest.NewRecorder()
	r.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/echo?name=query", nil))

	var resp struct {
		Data echoResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, "hello query", resp.Data.Greeting)
}

func Test_Router_errorEnvelope(t *testing.T) {
	r := newTestRouter(t)
	GET(r, "/fail", func(ctx context.Context, req *echoRequest) (*echoResponse, error) {
		return nil, errorx.New(errorx.NotFound, "Not found the thing")
	})

	w := httptest.NewRecorder()
	r.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/fail", nil))

	var resp struct {
		Code  int64  `json:"code"`
		Error string `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, int64(errorx.NotFound), resp.Code)
	require.Equal(t, "Not found the thing", resp.Error)
}

func Test_Router_methodHandling(t *testing.T) {
	r := newTestRouter(t)
	POST(r, "/echo", func(ctx context.Context, req *echoRequest) (*echoResponse, error) {
		return &echoResponse{}, nil
	})

	w := httptest.NewRecorder()
	r.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/echo", nil))
	require.Equal(t, http.StatusMethodNotAllowed, w.Code)

	w = httptest.NewRecorder()
	r.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodOptions, "/echo", nil))
	require.Equal(t, http.StatusNoContent, w.Code)
}

func Test_Router_middlewareAndClosers(t *testing.T) {
	r := newTestRouter(t)

	type middlewareKey struct{}
	r.Before(func(ctx context.Context) (context.Context, error) {
		return context.WithValue(ctx, middlewareKey{}, "set"), nil
	})

	closed := false
	r.AddCloser(func(ctx context.Context) {
		closed = true
	})

	GET(r, "/echo", func(ctx context.Context, req *echoRequest) (*echoResponse, error) {
		value, _ := ctx.Value(middlewareKey{}).(string)
		return &echoResponse{Greeting: value}, nil
	})

	w := httptest.NewRecorder()
	r.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/echo", nil))

	var resp struct {
		Data echoResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, "set", resp.Data.Greeting)
	require.True(t, closed)
}

func Test_Router_branchSharesMux(t *testing.T) {
	r := newTestRouter(t)

	branch := r.Branch()
	branch.Before(func(ctx context.Context) (context.Context, error) {
		return nil, errorx.New(errorx.TooManyRequests, "Slow down")
	})

	GET(r, "/open", func(ctx context.Context, req *echoRequest) (*echoResponse, error) {
		return &echoResponse{Greeting: "open"}, nil
	})
	GET(branch, "/guarded", func(ctx context.Context, req *echoRequest) (*echoResponse, error) {
		return &echoResponse{Greeting: "guarded"}, nil
	})

	// The branch middleware does not leak into the parent's routes.
	w := httptest.NewRecorder()
	r.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/open", nil))
	var open struct {
		Code int64 `json:"code"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &open))
	require.Equal(t, int64(0), open.Code)

	w = httptest.NewRecorder()
	r.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/guarded", nil))
	var guarded struct {
		Code int64 `json:"code"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &guarded))
	require.Equal(t, int64(errorx.TooManyRequests), guarded.Code)
}
