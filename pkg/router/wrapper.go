package router

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/onramp-labs/backend/pkg/errorx"
	"github.com/onramp-labs/backend/pkg/xcontext"
)

func wrapHandler[Request, Response any](
	router *Router,
	method string,
	handler HandlerFunc[Request, Response],
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		if r.Method != method {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		ctx := router.newContext(r, w)

		ctx, err := func() (context.Context, error) {
			for _, middleware := range router.befores {
				newCtx, err := middleware(ctx)
				if err != nil {
					return ctx, err
				}

				if newCtx != nil {
					ctx = newCtx
				}
			}

			var req Request
			if err := bindRequest(r, method, &req); err != nil {
				xcontext.Logger(ctx).Warnf("Cannot bind the request: %v", err)
				return ctx, errorx.New(errorx.BadRequest, "Cannot parse the request")
			}

			resp, err := handler(ctx, &req)
			if err != nil {
				return ctx, err
			}

			if err := writeResponse(w, newResponse(resp)); err != nil {
				xcontext.Logger(ctx).Errorf("Cannot write the response: %v", err)
				return ctx, nil
			}

			for _, middleware := range router.afters {
				newCtx, err := middleware(ctx)
				if err != nil {
					return ctx, err
				}

				if newCtx != nil {
					ctx = newCtx
				}
			}

			return ctx, nil
		}()

		if err != nil {
			ctx = xcontext.WithError(ctx, err)
			if werr := writeResponse(w, newErrorResponse(err)); werr != nil {
				xcontext.Logger(ctx).Errorf("Cannot write the error response: %v", werr)
			}
		}

		for _, closer := range router.closers {
			closer(ctx)
		}
	}
}

// bindRequest decodes query parameters for GET requests and the JSON body
// for everything else. Query values bind to the same json tags the body
// would use.
func bindRequest(r *http.Request, method string, req any) error {
	if method == http.MethodGet {
		values := map[string]string{}
		for key, value := range r.URL.Query() {
			if len(value) > 0 {
				values[key] = value[0]
			}
		}

		b, err := json.Marshal(values)
		if err != nil {
			return err
		}

		return json.Unmarshal(b, req)
	}

	if r.Body == nil || r.ContentLength == 0 {
		return nil
	}

	return json.NewDecoder(r.Body).Decode(req)
}
