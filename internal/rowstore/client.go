// Package rowstore wraps postgrest-go for the REST surface of a hosted
// Postgres database (PostgREST, as exposed under /rest/v1).  It covers the
// two calls this service needs, a filtered update and a filtered select, and
// turns every failure into a typed *Error.
package rowstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	postgrest "github.com/supabase-community/postgrest-go"
)

// maxBodyBytes caps how much of a remote answer is read.
const maxBodyBytes = 1 << 20

// Config holds everything needed to reach the remote.  It is passed in
// explicitly; the package keeps no global client.
type Config struct {
	BaseURL   string            // project URL, e.g. https://<ref>.supabase.co
	APIKey    string            // static access key, sent as apikey and bearer token
	Schema    string            // defaults to "public"
	Timeout   time.Duration     // per-call deadline; 0 means the caller's context only
	Transport http.RoundTripper // optional; http.DefaultTransport when nil
}

// Client talks to one project.  It is safe for concurrent use: every call
// builds its own postgrest client, whose error state is sticky.
type Client struct {
	restURL string
	schema  string
	key     string
	timeout time.Duration
	rt      http.RoundTripper
}

// Filter is a single column predicate.
type Filter struct {
	Column string
	Op     string
	Value  string
}

// Eq builds the "column = value" predicate.
func Eq(column string, value any) Filter {
	return Filter{Column: column, Op: "eq", Value: fmt.Sprint(value)}
}

// New validates cfg and returns a Client.
func New(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, errors.New("rowstore: base URL is required")
	}
	if cfg.APIKey == "" {
		return nil, errors.New("rowstore: API key is required")
	}
	u, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("rowstore: parse base URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("rowstore: unsupported URL scheme %q", u.Scheme)
	}
	rt := cfg.Transport
	if rt == nil {
		rt = http.DefaultTransport
	}
	return &Client{
		restURL: u.String() + "/rest/v1",
		schema:  cfg.Schema,
		key:     cfg.APIKey,
		timeout: cfg.Timeout,
		rt:      rt,
	}, nil
}

// Update sets values on every row of table matching filters and returns the
// updated rows.  No filter means no request: the remote would otherwise
// rewrite the whole table.
func (c *Client) Update(ctx context.Context, table string, values map[string]any, filters ...Filter) (Result, error) {
	if len(filters) == 0 {
		return Result{}, &Error{Kind: ErrRejected, Op: "update", Table: table, Message: "update without filter"}
	}
	// postgrest-go hands back an unusable builder when values do not encode.
	if _, err := json.Marshal(values); err != nil {
		return Result{}, &Error{Kind: ErrRejected, Op: "update", Table: table, Err: err}
	}
	return c.exec(ctx, "update", table, func(pc *postgrest.Client) *postgrest.FilterBuilder {
		return pc.From(table).Update(values, "representation", "")
	}, filters)
}

// Select returns the rows of table matching filters.
func (c *Client) Select(ctx context.Context, table string, filters ...Filter) (Result, error) {
	return c.exec(ctx, "select", table, func(pc *postgrest.Client) *postgrest.FilterBuilder {
		return pc.From(table).Select("*", "", false)
	}, filters)
}

func (c *Client) exec(ctx context.Context, op, table string, build func(*postgrest.Client) *postgrest.FilterBuilder, filters []Filter) (Result, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	rec := &recorder{ctx: ctx, next: c.rt}
	pc := postgrest.NewClient(c.restURL, c.schema, map[string]string{
		"apikey":        c.key,
		"Authorization": "Bearer " + c.key,
	})
	pc.Transport.Parent = rec

	q := build(pc)
	for _, f := range filters {
		q = q.Filter(f.Column, f.Op, f.Value)
	}
	body, _, err := q.Execute()
	if err != nil {
		return Result{}, classify(op, table, rec, err)
	}

	res, err := decodeResult(body, rec.contentRange)
	if err != nil {
		return Result{}, &Error{Kind: ErrMalformed, Op: op, Table: table, StatusCode: rec.status, Err: err}
	}
	return res, nil
}

// recorder is the round tripper under one postgrest call.  postgrest-go
// neither takes a context nor reports the HTTP status, so both pass through
// here.
type recorder struct {
	ctx  context.Context
	next http.RoundTripper

	status       int
	contentRange string
}

func (r *recorder) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, err := r.next.RoundTrip(req.WithContext(r.ctx))
	if err != nil {
		return nil, err
	}
	r.status = resp.StatusCode
	r.contentRange = resp.Header.Get("Content-Range")
	resp.Body = limitedBody{io.LimitReader(resp.Body, maxBodyBytes), resp.Body}
	return resp, nil
}

type limitedBody struct {
	io.Reader
	io.Closer
}

// classify maps an error from postgrest-go onto an *Error.
func classify(op, table string, rec *recorder, err error) error {
	e := &Error{Op: op, Table: table, StatusCode: rec.status}
	var ue *url.Error
	switch {
	case rec.status >= 400:
		e.Kind = kindForStatus(rec.status)
		if code, msg, ok := splitRemoteError(err); ok {
			e.Code, e.Message = code, msg
		} else {
			e.Err = err
		}
	case errors.As(err, &ue):
		e.Kind, e.Err = kindForTransport(err), err
	case rec.status == 0:
		// Refused before sending, e.g. an unknown filter operator.
		e.Kind, e.Err = ErrRejected, err
	case errors.Is(err, context.DeadlineExceeded):
		e.Kind, e.Err = ErrTimeout, err
	default:
		// A 2xx answer whose body could not be read or whose
		// Content-Range is not a number.
		e.Kind, e.Err = ErrMalformed, err
	}
	return e
}

// splitRemoteError undoes postgrest-go's "(code) message" formatting of a
// PostgREST error body.
func splitRemoteError(err error) (code, msg string, ok bool) {
	s := err.Error()
	if !strings.HasPrefix(s, "(") {
		return "", "", false
	}
	code, msg, ok = strings.Cut(s[1:], ") ")
	return code, msg, ok
}
