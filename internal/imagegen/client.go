package imagegen

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/keagan/beatreel/internal/frame"
)

const (
	DefaultSteps    = 50
	DefaultGuidance = 7.5
	DefaultTimeout  = 2 * time.Minute

	// maxErrorBody caps how much of a failed response is quoted in errors
	maxErrorBody = 512
)

// Options configures the inference client
type Options struct {
	Endpoint       string
	APIKey         string
	NegativePrompt string
	Steps          int
	Guidance       float64
	Timeout        time.Duration
	HTTPClient     *http.Client
}

// Client calls a text-to-image inference endpoint
type Client struct {
	logger zerolog.Logger
	http   *http.Client
	opts   Options
}

type request struct {
	Inputs     string     `json:"inputs"`
	Parameters parameters `json:"parameters"`
}

type parameters struct {
	NegativePrompt    string  `json:"negative_prompt,omitempty"`
	NumInferenceSteps int     `json:"num_inference_steps"`
	GuidanceScale     float64 `json:"guidance_scale"`
}

// NewClient creates a client. Zero steps, guidance and timeout use defaults.
func NewClient(logger zerolog.Logger, opts Options) (*Client, error) {
	if opts.Endpoint == "" {
		return nil, fmt.Errorf("image generation endpoint is required")
	}
	if opts.Steps <= 0 {
		opts.Steps = DefaultSteps
	}
	if opts.Guidance <= 0 {
		opts.Guidance = DefaultGuidance
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}

	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{
			Timeout: opts.Timeout,
			Transport: &http.Transport{
				Proxy:                 http.ProxyFromEnvironment,
				ResponseHeaderTimeout: opts.Timeout,
			},
		}
	}

	return &Client{
		logger: logger.With().Str("component", "imagegen").Logger(),
		http:   hc,
		opts:   opts,
	}, nil
}

// Generate renders prompt into an image
func (c *Client) Generate(ctx context.Context, prompt string) (image.Image, error) {
	body, err := json.Marshal(request{
		Inputs: prompt,
		Parameters: parameters{
			NegativePrompt:    c.opts.NegativePrompt,
			NumInferenceSteps: c.opts.Steps,
			GuidanceScale:     c.opts.Guidance,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.opts.Endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "image/png")
	if c.opts.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.opts.APIKey)
	}

	c.logger.Debug().Str("prompt", prompt).Int("steps", c.opts.Steps).Msg("requesting image")
	start := time.Now()

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("image request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, fmt.Errorf("image request failed: %s: %s", resp.Status, bytes.TrimSpace(snippet))
	}

	img, format, err := image.Decode(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to decode generated image: %w", err)
	}

	c.logger.Info().
		Str("format", format).
		Int("width", img.Bounds().Dx()).
		Int("height", img.Bounds().Dy()).
		Dur("elapsed", time.Since(start)).
		Msg("image generated")

	return img, nil
}

// GenerateScene builds the prompt for description, generates it and fits the
// result to a width x height frame
func (c *Client) GenerateScene(ctx context.Context, description string, style Style, width, height int) (*frame.Buffer, error) {
	prompt, err := BuildPrompt(description, style)
	if err != nil {
		return nil, err
	}
	img, err := c.Generate(ctx, prompt)
	if err != nil {
		return nil, err
	}
	return frame.FromImage(img, width, height), nil
}
