// Package decode looks up decoded vehicle attributes for a VIN from the
// NHTSA vPIC service. Failures are always recoverable for callers: a save
// or create operation records the error and carries on.
package decode

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/vintrade/internal/vin"
)

// DefaultBaseURL is the vPIC flat-format decode endpoint; the normalized
// VIN is appended as the final path segment.
const DefaultBaseURL = "https://vpic.nhtsa.dot.gov/api/vehicles/DecodeVinValuesExtended"

// DefaultTimeout bounds a single decode round trip. There is no retry: a
// failure is surfaced once per operation.
const DefaultTimeout = 10 * time.Second

// Result holds the decoded attributes for one VIN, normalized so that the
// service's "" and "0" placeholder values come back as empty strings.
type Result struct {
	Make                 string    `json:"make"`
	Model                string    `json:"model"`
	ModelYear            string    `json:"model_year"`
	BodyType             string    `json:"body_type"`
	Manufacturer         string    `json:"manufacturer"`
	PlantCountry         string    `json:"plant_country"`
	EngineCylinders      string    `json:"engine_cylinders"`
	Displacement         string    `json:"displacement"`
	FuelTypePrimary      string    `json:"fuel_type_primary"`
	FuelTypeSecondary    string    `json:"fuel_type_secondary"`
	ElectrificationLevel string    `json:"electrification_level"`
	Raw                  []byte    `json:"-"`
	DecodedAt            time.Time `json:"decoded_at"`
}

// NoResultsError reports a well-formed response with an empty Results array.
type NoResultsError struct {
	VIN string
}

func (e *NoResultsError) Error() string {
	return fmt.Sprintf("decode: no results returned for VIN %s", e.VIN)
}

// TransportError reports a network, timeout, status, or malformed-body
// failure, wrapping the underlying cause.
type TransportError struct {
	VIN        string
	StatusCode int
	Cause      error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("decode: request for VIN %s failed with status %d: %v", e.VIN, e.StatusCode, e.Cause)
	}
	return fmt.Sprintf("decode: request for VIN %s failed: %v", e.VIN, e.Cause)
}

func (e *TransportError) Unwrap() error { return e.Cause }

// Decoder is the capability the vehicle orchestration consumes. Callers
// invoke it only on VINs that already pass vin.IsValid.
type Decoder interface {
	Decode(ctx context.Context, v vin.VIN) (*Result, error)
}

// Client is the HTTP Decoder.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the decode endpoint (tests point this at a local
// server).
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(u, "/") }
}

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithTimeout overrides the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.Timeout = d }
}

// NewClient builds a Decoder against the vPIC service.
func NewClient(logger *slog.Logger, opts ...Option) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	c := &Client{
		baseURL: DefaultBaseURL,
		http:    &http.Client{Timeout: DefaultTimeout},
		logger:  logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Decode fetches and extracts attributes for one VIN. One attempt only.
func (c *Client) Decode(ctx context.Context, v vin.VIN) (*Result, error) {
	rid := uuid.New().String()
	start := time.Now()
	url := fmt.Sprintf("%s/%s?format=json", c.baseURL, v.Value)

	c.logger.Info("decode.http.request", "req_id", rid, "vin", v.Value)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &TransportError{VIN: v.Value, Cause: fmt.Errorf("build request: %w", err)}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Error("decode.http.send_error", "req_id", rid, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds())
		return nil, &TransportError{VIN: v.Value, Cause: err}
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			c.logger.Warn("decode.http.body_close_error", "req_id", rid, "error", cerr)
		}
	}()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{VIN: v.Value, StatusCode: resp.StatusCode, Cause: err}
	}

	c.logger.Info("decode.http.response", "req_id", rid,
		"status", resp.StatusCode, "bytes", len(raw),
		"elapsed_ms", time.Since(start).Milliseconds())

	if resp.StatusCode/100 != 2 {
		return nil, &TransportError{VIN: v.Value, StatusCode: resp.StatusCode,
			Cause: fmt.Errorf("non-2xx status")}
	}

	if err := validateResponse(raw); err != nil {
		return nil, &TransportError{VIN: v.Value, StatusCode: resp.StatusCode,
			Cause: fmt.Errorf("response schema: %w", err)}
	}

	var body struct {
		Results []map[string]any `json:"Results"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return nil, &TransportError{VIN: v.Value, StatusCode: resp.StatusCode,
			Cause: fmt.Errorf("decode body: %w", err)}
	}
	if len(body.Results) == 0 {
		return nil, &NoResultsError{VIN: v.Value}
	}

	first := body.Results[0]
	res := &Result{
		Make:                 fieldValue(first, "Make"),
		Model:                fieldValue(first, "Model"),
		ModelYear:            fieldValue(first, "ModelYear"),
		BodyType:             fieldValue(first, "BodyClass"),
		Manufacturer:         fieldValue(first, "Manufacturer"),
		PlantCountry:         fieldValue(first, "PlantCountry"),
		EngineCylinders:      fieldValue(first, "EngineCylinders"),
		Displacement:         fieldValue(first, "DisplacementL"),
		FuelTypePrimary:      fieldValue(first, "FuelTypePrimary"),
		FuelTypeSecondary:    fieldValue(first, "FuelTypeSecondary"),
		ElectrificationLevel: fieldValue(first, "ElectrificationLevel"),
		Raw:                  raw,
		DecodedAt:            time.Now().UTC(),
	}
	return res, nil
}

// fieldValue reads a named field, treating the service's placeholder values
// "" and "0" as absent.
func fieldValue(m map[string]any, key string) string {
	v, ok := m[key]
	if !ok || v == nil {
		return ""
	}
	s, ok := v.(string)
	if !ok {
		s = fmt.Sprintf("%v", v)
	}
	if s == "" || s == "0" {
		return ""
	}
	return s
}
