package shopapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"strings"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/storefront/domain"
	appLogger "github.com/fastygo/storefront/pkg/logger"
)

// User-facing messages for transport failures. The underlying cause is only logged.
const (
	msgCannotConnect   = "Cannot connect to server. Please check your internet connection or try again later."
	msgTimeout         = "The server took too long to respond. Please try again later."
	msgNotFound        = "Service not found. Please contact administrator."
	msgServerError     = "Server error occurred. Please try again later."
	msgForbidden       = "Access denied. Please check your permissions."
	msgBadRequest      = "Invalid request. Please check your input data."
	msgInvalidResponse = "Server returned invalid response"
	msgUnexpected      = "An unexpected error occurred. Please try again later."
)

// Outcomes reported to CallObserver.
const (
	OutcomeSuccess     = "success"
	OutcomeRejected    = "rejected"
	OutcomeUnavailable = "unavailable"
)

type Config struct {
	AuthBaseURL  string
	AdminBaseURL string
	ShopBaseURL  string
	Timeout      time.Duration
	UserAgent    string
}

// CallObserver is notified once per remote call.
type CallObserver interface {
	RemoteCall(endpoint, outcome string, elapsed time.Duration)
}

// Form is a flat set of form fields sent to the API.
type Form map[string]string

// File is an uploaded attachment; its presence switches the body to multipart.
type File struct {
	Field    string
	Filename string
	Content  []byte
}

// Client talks to the PHP shop API.
type Client struct {
	http     *fasthttp.Client
	cfg      Config
	logger   *zap.Logger
	observer CallObserver
}

func New(cfg Config, logger *zap.Logger, observer CallObserver) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = "storefront-bff"
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	cfg.AuthBaseURL = strings.TrimRight(cfg.AuthBaseURL, "/")
	cfg.AdminBaseURL = strings.TrimRight(cfg.AdminBaseURL, "/")
	cfg.ShopBaseURL = strings.TrimRight(cfg.ShopBaseURL, "/")

	return &Client{
		http: &fasthttp.Client{
			Name:                cfg.UserAgent,
			ReadTimeout:         cfg.Timeout,
			WriteTimeout:        cfg.Timeout,
			MaxIdleConnDuration: time.Minute,
		},
		cfg:      cfg,
		logger:   logger,
		observer: observer,
	}
}

// WithHTTPClient swaps the underlying fasthttp client.
func (c *Client) WithHTTPClient(client *fasthttp.Client) *Client {
	c.http = client
	return c
}

// Ping checks the shop API is reachable. Any HTTP answer counts as reachable.
func (c *Client) Ping(ctx context.Context) error {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(c.cfg.ShopBaseURL + "/get_blogs")
	req.Header.SetMethod(fasthttp.MethodGet)
	return c.http.DoDeadline(req, resp, c.deadline(ctx))
}

func (c *Client) get(ctx context.Context, base, endpoint string, query Form) (*Response, error) {
	req := fasthttp.AcquireRequest()
	defer fasthttp.ReleaseRequest(req)

	uri := base + "/" + endpoint
	if len(query) > 0 {
		args := fasthttp.AcquireArgs()
		defer fasthttp.ReleaseArgs(args)
		for k, v := range query {
			args.Add(k, v)
		}
		uri += "?" + args.String()
	}
	req.SetRequestURI(uri)
	req.Header.SetMethod(fasthttp.MethodGet)
	return c.do(ctx, endpoint, req)
}

func (c *Client) post(ctx context.Context, base, endpoint string, form Form, files ...File) (*Response, error) {
	req := fasthttp.AcquireRequest()
	defer fasthttp.ReleaseRequest(req)

	req.SetRequestURI(base + "/" + endpoint)
	req.Header.SetMethod(fasthttp.MethodPost)

	if len(files) > 0 {
		body, contentType, err := multipartBody(form, files)
		if err != nil {
			return nil, domain.WrapError(domain.ErrCodeInvalid, "Could not read the uploaded file", err)
		}
		req.Header.SetContentType(contentType)
		req.SetBody(body)
	} else {
		args := fasthttp.AcquireArgs()
		defer fasthttp.ReleaseArgs(args)
		for k, v := range form {
			args.Add(k, v)
		}
		req.Header.SetContentType("application/x-www-form-urlencoded")
		req.SetBody(args.QueryString())
	}
	return c.do(ctx, endpoint, req)
}

func (c *Client) do(ctx context.Context, endpoint string, req *fasthttp.Request) (*Response, error) {
	logger := appLogger.WithRequestID(ctx, c.logger).With(zap.String("endpoint", endpoint))
	start := time.Now()

	if err := ctx.Err(); err != nil {
		c.observe(endpoint, OutcomeUnavailable, start)
		return nil, domain.WrapError(domain.ErrCodeUnavailable, msgTimeout, err)
	}

	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseResponse(resp)

	if err := c.http.DoDeadline(req, resp, c.deadline(ctx)); err != nil {
		c.observe(endpoint, OutcomeUnavailable, start)
		if errors.Is(err, fasthttp.ErrTimeout) {
			logger.Warn("shop api timeout", zap.Error(err))
			return nil, domain.WrapError(domain.ErrCodeUnavailable, msgTimeout, err)
		}
		logger.Warn("shop api connection failed", zap.Error(err))
		return nil, domain.WrapError(domain.ErrCodeUnavailable, msgCannotConnect, err)
	}

	status := resp.StatusCode()
	if status < 200 || status > 299 {
		c.observe(endpoint, OutcomeUnavailable, start)
		logger.Warn("shop api http error", zap.Int("status", status))
		return nil, domain.WrapError(domain.ErrCodeUnavailable, statusMessage(status), fmt.Errorf("http status %d", status))
	}

	var out Response
	if err := json.Unmarshal(resp.Body(), &out); err != nil {
		c.observe(endpoint, OutcomeUnavailable, start)
		logger.Warn("shop api returned invalid json", zap.Error(err), zap.Int("body_size", len(resp.Body())))
		return nil, domain.WrapError(domain.ErrCodeUnavailable, msgInvalidResponse, err)
	}

	if !out.OK() {
		c.observe(endpoint, OutcomeRejected, start)
		logger.Info("shop api rejected request", zap.String("message", out.Message))
		return &out, out.rejection()
	}

	c.observe(endpoint, OutcomeSuccess, start)
	return &out, nil
}

func (c *Client) deadline(ctx context.Context) time.Time {
	deadline := time.Now().Add(c.cfg.Timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		return d
	}
	return deadline
}

func (c *Client) observe(endpoint, outcome string, start time.Time) {
	if c.observer != nil {
		c.observer.RemoteCall(endpoint, outcome, time.Since(start))
	}
}

func statusMessage(status int) string {
	switch {
	case status == fasthttp.StatusNotFound:
		return msgNotFound
	case status == fasthttp.StatusForbidden:
		return msgForbidden
	case status == fasthttp.StatusBadRequest:
		return msgBadRequest
	case status >= 500:
		return msgServerError
	default:
		return msgUnexpected
	}
}

func multipartBody(form Form, files []File) ([]byte, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range form {
		if err := w.WriteField(k, v); err != nil {
			return nil, "", err
		}
	}
	for _, f := range files {
		part, err := w.CreateFormFile(f.Field, f.Filename)
		if err != nil {
			return nil, "", err
		}
		if _, err := part.Write(f.Content); err != nil {
			return nil, "", err
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return buf.Bytes(), w.FormDataContentType(), nil
}
