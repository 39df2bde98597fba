// Package httpengine implements render.HTTPEngine: it turns a rendered
// Recipe into a real net/http request and records the resulting exchange
// (spec §6 "Request chains"). It depends on internal/render (to render the
// recipe's own templated method/URL/headers/body) but render never imports
// this package back, so the two sides never form a cycle; see
// internal/render's HTTPEngine interface for the seam.
package httpengine

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"forge/internal/collection"
	"forge/internal/render"
	"forge/internal/store"
)

// Client is a thin net/http-based implementation of render.HTTPEngine.
type Client struct {
	http *http.Client
}

// NewClient returns a Client using a default http.Client with no timeout of
// its own; callers control deadlines via the context passed to Send.
func NewClient() *Client {
	return &Client{http: &http.Client{}}
}

// Send renders recipe's method, URL, headers, and body against renderCtx,
// performs the request, and returns the resulting exchange. A build failure
// (an unrenderable field, an invalid method/URL) is wrapped with
// render.ErrBuild; a transport failure is wrapped with render.ErrSend.
func (c *Client) Send(ctx context.Context, recipe *collection.Recipe, renderCtx *render.Context) (store.Exchange, error) {
	method, err := render.RenderString(ctx, renderCtx, recipe.Method)
	if err != nil {
		return store.Exchange{}, fmt.Errorf("%w: rendering method: %v", render.ErrBuild, err)
	}
	rawURL, err := render.RenderString(ctx, renderCtx, recipe.URL)
	if err != nil {
		return store.Exchange{}, fmt.Errorf("%w: rendering url: %v", render.ErrBuild, err)
	}

	var bodyBytes []byte
	if recipe.Body != nil {
		bodyBytes, err = render.Render(ctx, renderCtx, *recipe.Body)
		if err != nil {
			return store.Exchange{}, fmt.Errorf("%w: rendering body: %v", render.ErrBuild, err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, strings.ToUpper(method), rawURL, bytes.NewReader(bodyBytes))
	if err != nil {
		return store.Exchange{}, fmt.Errorf("%w: %v", render.ErrBuild, err)
	}

	for name, tmpl := range recipe.Headers {
		val, err := render.RenderString(ctx, renderCtx, tmpl)
		if err != nil {
			return store.Exchange{}, fmt.Errorf("%w: rendering header %q: %v", render.ErrBuild, name, err)
		}
		req.Header.Set(name, val)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return store.Exchange{}, fmt.Errorf("%w: %v", render.ErrSend, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return store.Exchange{}, fmt.Errorf("%w: reading response body: %v", render.ErrSend, err)
	}
	end := time.Now()

	headers := make(map[string]string, len(resp.Header))
	for name := range resp.Header {
		headers[name] = resp.Header.Get(name)
	}

	return store.Exchange{
		ID:          uuid.New(),
		RecipeID:    recipe.ID.String(),
		RequestBody: bodyBytes,
		Status:      resp.StatusCode,
		Headers:     headers,
		Body:        respBody,
		StartTime:   start,
		EndTime:     end,
	}, nil
}
