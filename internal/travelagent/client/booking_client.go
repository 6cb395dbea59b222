// Copyright © 2025 jackelyj <dreamerlyj@gmail.com>
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
// THE SOFTWARE.
//

package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/go-cleanhttp"
	"github.com/hashicorp/go-retryablehttp"
	"go.uber.org/zap"

	"github.com/innovationmech/travelagent/internal/travelagent/model"
	"github.com/innovationmech/travelagent/internal/travelagent/tracing"
	"github.com/innovationmech/travelagent/internal/travelagent/types"
)

const (
	operationBook   = "book"
	operationCancel = "cancel"

	// maxErrorBody bounds how much of an unexpected response is kept in errors.
	maxErrorBody = 512
)

// BookingClient creates and deletes bookings on one remote booking service.
type BookingClient interface {
	// Service returns the remote service this client talks to.
	Service() model.Service
	// Book creates a booking and returns its remote reference. Any outcome
	// other than 201 Created is a *types.BookingFailedError.
	Book(ctx context.Context, customerID, resourceID int64, date model.BookingDate) (model.BookingRef, error)
	// Cancel deletes a booking. Any outcome other than 204 No Content is a
	// *types.CompensationFailedError.
	Cancel(ctx context.Context, ref model.BookingRef) error
}

// CallObserver is notified after every remote call, retries included.
type CallObserver interface {
	RemoteCallFinished(service model.Service, operation string, duration time.Duration, err error)
}

// Options configures a booking client.
type Options struct {
	BaseURL      string
	Timeout      time.Duration
	RetryMax     int
	RetryWaitMin time.Duration
	RetryWaitMax time.Duration
	Logger       *zap.Logger
	Observer     CallObserver
}

type bookingClient struct {
	service  model.Service
	baseURL  string
	book     *retryablehttp.Client
	cancel   *retryablehttp.Client
	logger   *zap.Logger
	observer CallObserver
}

// New creates a client for the given remote service.
func New(service model.Service, opts Options) (BookingClient, error) {
	if !service.IsValid() {
		return nil, fmt.Errorf("unknown booking service %q", service)
	}
	if opts.BaseURL == "" {
		return nil, fmt.Errorf("%s client: base url is required", service)
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	logger := opts.Logger.Named(service.String())

	httpClient := cleanhttp.DefaultPooledClient()
	httpClient.Timeout = opts.Timeout

	newRetryClient := func(policy retryablehttp.CheckRetry) *retryablehttp.Client {
		rc := retryablehttp.NewClient()
		rc.HTTPClient = httpClient
		rc.Logger = leveledLogger{logger.Sugar()}
		rc.RetryMax = opts.RetryMax
		if opts.RetryWaitMin > 0 {
			rc.RetryWaitMin = opts.RetryWaitMin
		}
		if opts.RetryWaitMax > 0 {
			rc.RetryWaitMax = opts.RetryWaitMax
		}
		rc.CheckRetry = policy
		rc.ErrorHandler = retryablehttp.PassthroughErrorHandler
		return rc
	}

	return &bookingClient{
		service:  service,
		baseURL:  strings.TrimRight(opts.BaseURL, "/"),
		book:     newRetryClient(bookRetryPolicy),
		cancel:   newRetryClient(retryablehttp.DefaultRetryPolicy),
		logger:   logger,
		observer: opts.Observer,
	}, nil
}

// NewHotelClient creates a client for the hotel booking service.
func NewHotelClient(opts Options) (BookingClient, error) {
	return New(model.ServiceHotel, opts)
}

// NewFlightClient creates a client for the flight booking service.
func NewFlightClient(opts Options) (BookingClient, error) {
	return New(model.ServiceFlight, opts)
}

// NewTaxiClient creates a client for the taxi booking service.
func NewTaxiClient(opts Options) (BookingClient, error) {
	return New(model.ServiceTaxi, opts)
}

// bookRetryPolicy retries transport errors only. A response of any status
// means the remote side processed the request, and repeating a create could
// double book.
func bookRetryPolicy(ctx context.Context, resp *http.Response, err error) (bool, error) {
	if ctx.Err() != nil {
		return false, ctx.Err()
	}
	if err != nil {
		return retryablehttp.DefaultRetryPolicy(ctx, resp, err)
	}
	return false, nil
}

func (c *bookingClient) Service() model.Service {
	return c.service
}

func (c *bookingClient) Book(ctx context.Context, customerID, resourceID int64, date model.BookingDate) (ref model.BookingRef, err error) {
	ctx, span := tracing.StartSpan(ctx, c.service.String()+".book",
		tracing.BookingAttributes{Service: c.service.String(), Operation: operationBook, ResourceID: resourceID}.ToAttributes()...)
	start := time.Now()
	defer func() {
		c.finished(operationBook, start, err)
		tracing.End(span, err)
	}()

	id, err := c.doBook(ctx, customerID, resourceID, date)
	if err != nil {
		c.logger.Info("booking failed",
			zap.String("service", c.service.String()),
			zap.Int64("resource_id", resourceID),
			zap.Error(err))
		return model.BookingRef{}, &types.BookingFailedError{Service: c.service, Cause: err}
	}

	c.logger.Info("booking created",
		zap.String("service", c.service.String()),
		zap.Int64("resource_id", resourceID),
		zap.Int64("booking_id", id))
	return model.BookingRef{Service: c.service, ID: id}, nil
}

func (c *bookingClient) doBook(ctx context.Context, customerID, resourceID int64, date model.BookingDate) (int64, error) {
	// The remote services expect every value as a JSON string.
	body, err := json.Marshal(map[string]string{
		"customerId":              strconv.FormatInt(customerID, 10),
		c.service.ResourceField(): strconv.FormatInt(resourceID, 10),
		"bookingDate":             date.String(),
	})
	if err != nil {
		return 0, err
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/bookings", body)
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.book.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		return 0, unexpectedStatus(resp)
	}

	var created struct {
		ID int64 `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		return 0, fmt.Errorf("malformed response body: %w", err)
	}
	if created.ID <= 0 {
		return 0, fmt.Errorf("malformed response body: invalid booking id %d", created.ID)
	}
	return created.ID, nil
}

func (c *bookingClient) Cancel(ctx context.Context, ref model.BookingRef) (err error) {
	ctx, span := tracing.StartSpan(ctx, c.service.String()+".cancel",
		tracing.BookingAttributes{Service: c.service.String(), Operation: operationCancel, BookingID: ref.ID}.ToAttributes()...)
	start := time.Now()
	defer func() {
		c.finished(operationCancel, start, err)
		tracing.End(span, err)
	}()

	if err := c.doCancel(ctx, ref); err != nil {
		c.logger.Warn("booking cancellation failed",
			zap.String("service", c.service.String()),
			zap.Int64("booking_id", ref.ID),
			zap.Error(err))
		return &types.CompensationFailedError{Service: c.service, BookingID: ref.ID, Cause: err}
	}

	c.logger.Info("booking cancelled",
		zap.String("service", c.service.String()),
		zap.Int64("booking_id", ref.ID))
	return nil
}

func (c *bookingClient) doCancel(ctx context.Context, ref model.BookingRef) error {
	if ref.Service != c.service {
		return fmt.Errorf("%w: %s", types.ErrForeignReference, ref)
	}
	if ref.ID <= 0 {
		return fmt.Errorf("invalid booking id %d", ref.ID)
	}

	url := c.baseURL + "/bookings/" + strconv.FormatInt(ref.ID, 10)
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodDelete, url, nil)
	if err != nil {
		return err
	}

	resp, err := c.cancel.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNoContent {
		return unexpectedStatus(resp)
	}
	return nil
}

func (c *bookingClient) finished(operation string, start time.Time, err error) {
	if c.observer != nil {
		c.observer.RemoteCallFinished(c.service, operation, time.Since(start), err)
	}
}

// StatusError reports a response with an unexpected HTTP status.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("unexpected status %d", e.StatusCode)
	}
	return fmt.Sprintf("unexpected status %d: %s", e.StatusCode, e.Body)
}

func unexpectedStatus(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	return &StatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
}

// IsStatus reports whether err carries a response with the given status.
func IsStatus(err error, status int) bool {
	var se *StatusError
	return errors.As(err, &se) && se.StatusCode == status
}

// leveledLogger routes retryablehttp logging into zap.
type leveledLogger struct {
	s *zap.SugaredLogger
}

func (l leveledLogger) Error(msg string, keysAndValues ...interface{}) {
	l.s.Errorw(msg, keysAndValues...)
}

func (l leveledLogger) Warn(msg string, keysAndValues ...interface{}) {
	l.s.Warnw(msg, keysAndValues...)
}

func (l leveledLogger) Info(msg string, keysAndValues ...interface{}) {
	l.s.Infow(msg, keysAndValues...)
}

func (l leveledLogger) Debug(msg string, keysAndValues ...interface{}) {
	l.s.Debugw(msg, keysAndValues...)
}

var _ retryablehttp.LeveledLogger = leveledLogger{}
