package calculator

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/atadzan/calc-operation-api/internal/constants"
)

// RandomStringClient fetches a random string with a plain GET on a configured endpoint.
type RandomStringClient struct {
	endpoint string
	client   *http.Client
	log      zerolog.Logger
}

func NewRandomStringClient(endpoint string, timeout time.Duration, log zerolog.Logger) *RandomStringClient {
	return &RandomStringClient{
		endpoint: endpoint,
		client:   &http.Client{Timeout: timeout},
		log:      log.With().Str("client", "random_string").Logger(),
	}
}

func (c *RandomStringClient) Generate(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint, nil)
	if err != nil {
		return "", fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	c.log.Info().Int("status", resp.StatusCode).Msg("random string response")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf(constants.RandomStringFailed, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}
	return strings.TrimSpace(string(body)), nil
}
