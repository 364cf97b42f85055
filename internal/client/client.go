package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"parking-console/internal/logger"
)

const (
	DefaultTimeout  = 10 * time.Second
	RequestIDHeader = "X-Request-ID"
)

// Error categories. Every error returned by the client wraps exactly one of these.
var (
	ErrTransport = errors.New("transport failure")
	ErrStatus    = errors.New("non-success response")
	ErrDecode    = errors.New("malformed response body")
)

// StatusError carries the HTTP status and body of a rejected request.
type StatusError struct {
	Op   string
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: status %d: %s", e.Op, e.Code, e.Body)
}

func (e *StatusError) Unwrap() error { return ErrStatus }

type ParkingClient struct {
	HTTP   *resty.Client
	Config ClientConfig
	log    zerolog.Logger
}

type ClientConfig struct {
	BaseURL      string
	SessionToken string
	Timeout      time.Duration
}

func New(cfg ClientConfig) *ParkingClient {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	log := logger.WithComponent("client")

	r := resty.New()
	r.SetBaseURL(cfg.BaseURL)
	r.SetTimeout(cfg.Timeout)
	r.SetHeader("Content-Type", "application/json")
	r.SetHeader("Accept", "application/json")
	r.SetLogger(logger.Resty(log))

	if cfg.SessionToken != "" {
		r.SetAuthToken(cfg.SessionToken)
	}

	// Tag every request so backend logs can be matched to poll cycles.
	r.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
		if req.Header.Get(RequestIDHeader) == "" {
			req.SetHeader(RequestIDHeader, uuid.NewString())
		}
		return nil
	})

	return &ParkingClient{
		HTTP:   r,
		Config: cfg,
		log:    log,
	}
}

// do executes req and decodes a successful JSON body into out (when non-nil).
func (c *ParkingClient) do(ctx context.Context, req *resty.Request, method, path, op string, out any) error {
	resp, err := req.SetContext(ctx).Execute(method, path)
	if err != nil {
		return fmt.Errorf("%s: %w: %v", op, ErrTransport, err)
	}

	if resp.IsError() {
		return &StatusError{Op: op, Code: resp.StatusCode(), Body: resp.String()}
	}

	c.log.Debug().
		Str("op", op).
		Int("status", resp.StatusCode()).
		Dur("elapsed", resp.Time()).
		Msg("request complete")

	if out == nil {
		return nil
	}
	if len(resp.Body()) == 0 {
		return fmt.Errorf("%s: %w: empty body", op, ErrDecode)
	}
	if err := json.Unmarshal(resp.Body(), out); err != nil {
		return fmt.Errorf("%s: %w: %v", op, ErrDecode, err)
	}
	return nil
}

// rejected converts an application-level {"status":"error"} into a StatusError.
func rejected(op string, code int, status, message string) error {
	if status == "" || status == "success" {
		return nil
	}
	if message == "" {
		message = status
	}
	return &StatusError{Op: op, Code: code, Body: message}
}

// Category names the error class for logging: transport, status, decode or unknown.
func Category(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrTransport):
		return "transport"
	case errors.Is(err, ErrStatus):
		return "status"
	case errors.Is(err, ErrDecode):
		return "decode"
	default:
		return "unknown"
	}
}
