package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/flightcast/flightcast/internal/flight"
	"github.com/flightcast/flightcast/internal/resilience"
)

// RemoteName identifies the remote pipeline and its circuit breaker.
const RemoteName = "inference"

// RemoteConfig holds configuration for Remote.
type RemoteConfig struct {
	// URL receives a POST with the encoded row (required).
	URL string

	// HTTPClient defaults to a single-attempt resilient client.
	HTTPClient *resilience.Client

	// Registry, if set, records call outcomes for readiness reporting.
	Registry *resilience.Registry

	Logger zerolog.Logger
}

// Remote delegates prediction to an external inference endpoint that hosts
// the fitted artifacts.
type Remote struct {
	url        string
	httpClient *resilience.Client
	registry   *resilience.Registry
	logger     zerolog.Logger
}

type remoteRequest struct {
	Columns []string  `json:"columns"`
	Row     []float64 `json:"row"`
}

type remoteResponse struct {
	Label *int `json:"label"`
}

// NewRemote creates a remote pipeline client.
func NewRemote(cfg RemoteConfig) *Remote {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = resilience.NewClient(resilience.DefaultClientConfig(RemoteName))
	}
	if cfg.Registry != nil {
		cfg.Registry.Register(httpClient)
	}

	return &Remote{
		url:        cfg.URL,
		httpClient: httpClient,
		registry:   cfg.Registry,
		logger:     cfg.Logger,
	}
}

// Name returns the client name.
func (r *Remote) Name() string {
	return r.httpClient.Name()
}

// Predict posts the row and decodes the label.
func (r *Remote) Predict(ctx context.Context, vec flight.FeatureVector) (Label, error) {
	start := time.Now()
	label, err := r.predict(ctx, vec)

	if r.registry != nil {
		if err != nil {
			r.registry.RecordFailure(r.Name(), err)
		} else {
			r.registry.RecordSuccess(r.Name())
		}
	}

	if err != nil {
		r.logger.Error().Err(err).
			Dur("duration", time.Since(start)).
			Msg("inference request failed")
		return 0, err
	}

	r.logger.Debug().
		Int("label", int(label)).
		Dur("duration", time.Since(start)).
		Msg("inference request completed")
	return label, nil
}

func (r *Remote) predict(ctx context.Context, vec flight.FeatureVector) (Label, error) {
	body, err := json.Marshal(remoteRequest{Columns: flight.Columns(), Row: vec.Row()})
	if err != nil {
		return 0, fmt.Errorf("encoding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.url, bytes.NewReader(body))
	if err != nil {
		return 0, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrInferenceFailure, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return 0, fmt.Errorf("%w: unexpected status code %d", ErrInferenceFailure, resp.StatusCode)
	}

	var out remoteResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return 0, fmt.Errorf("%w: decoding response: %w", ErrInferenceFailure, err)
	}
	if out.Label == nil {
		return 0, fmt.Errorf("%w: response has no label", ErrInferenceFailure)
	}

	return checkLabel(*out.Label)
}
