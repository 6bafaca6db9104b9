// ABOUTME: Stable Diffusion text2img client used to render generated prompts into images
// ABOUTME: Posts the profile, key and prompt as JSON and retries transient failures
package diffusion

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/harper/prompt-randomizer/internal/config"
	"github.com/harper/prompt-randomizer/internal/logging"
	"github.com/harper/prompt-randomizer/internal/util"
)

// DefaultEndpoint is the hosted text2img API
const DefaultEndpoint = "https://stablediffusionapi.com/api/v3/text2img"

// ErrGeneration is returned when the API answers with status "error"
var ErrGeneration = errors.New("image generation failed")

// Profile holds the generation settings sent with every request.
// The API expects most numeric settings as strings.
type Profile struct {
	Endpoint        string  `json:"-"`
	Width           string  `json:"width"`
	Height          string  `json:"height"`
	Samples         string  `json:"samples"`
	Steps           string  `json:"num_inference_steps"`
	SafetyChecker   string  `json:"safety_checker"`
	EnhancePrompt   string  `json:"enhance_prompt"`
	GuidanceScale   float64 `json:"guidance_scale"`
	MultiLingual    string  `json:"multi_lingual"`
	Panorama        string  `json:"panorama"`
	SelfAttention   string  `json:"self_attention"`
	Upscale         string  `json:"upscale"`
	EmbeddingsModel *string `json:"embeddings_model"`
}

// DefaultProfile returns a 720x480 single sample profile
func DefaultProfile() Profile {
	return Profile{
		Endpoint:      DefaultEndpoint,
		Width:         "720",
		Height:        "480",
		Samples:       "1",
		Steps:         "100",
		SafetyChecker: "no",
		EnhancePrompt: "no",
		GuidanceScale: 10.0,
		MultiLingual:  "no",
		Panorama:      "no",
		SelfAttention: "no",
		Upscale:       "no",
	}
}

// ProfileFromConfig applies the SD_* settings to the default profile
func ProfileFromConfig(cfg *config.Config) Profile {
	p := DefaultProfile()
	if cfg.SDEndpoint != "" {
		p.Endpoint = cfg.SDEndpoint
	}
	p.Width = strconv.Itoa(cfg.SDWidth)
	p.Height = strconv.Itoa(cfg.SDHeight)
	p.Steps = strconv.Itoa(cfg.SDSteps)
	p.GuidanceScale = cfg.SDGuidance
	return p
}

// GenerateRequest is one image request
type GenerateRequest struct {
	Prompt         string
	NegativePrompt string
	// Seed is optional; nil lets the API pick one
	Seed *uint64
}

type requestBody struct {
	Profile
	Key            string  `json:"key"`
	Prompt         string  `json:"prompt"`
	NegativePrompt *string `json:"negative_prompt"`
	Seed           *uint64 `json:"seed"`
	Webhook        *string `json:"webhook"`
	TrackID        string  `json:"track_id"`
}

// GenerateResponse is the API answer
type GenerateResponse struct {
	Status  string          `json:"status"`
	ID      int64           `json:"id"`
	Output  []string        `json:"output"`
	Meta    json.RawMessage `json:"meta,omitempty"`
	Message json.RawMessage `json:"message,omitempty"`
	TrackID string          `json:"-"`
}

// Client talks to the text2img endpoint
type Client struct {
	apiKey  string
	profile Profile
	http    *http.Client
	policy  util.Policy
	logger  *log.Logger
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the default http client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithRetry sets the retry policy
func WithRetry(p util.Policy) Option {
	return func(c *Client) { c.policy = p }
}

// WithLogger sets the logger used for retries
func WithLogger(l *log.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// NewClient creates a client for the given key and profile
func NewClient(apiKey string, profile Profile, opts ...Option) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("stable diffusion API key is required")
	}
	if profile.Endpoint == "" {
		profile.Endpoint = DefaultEndpoint
	}
	c := &Client{
		apiKey:  apiKey,
		profile: profile,
		http:    &http.Client{Timeout: 60 * time.Second},
		policy:  util.Policy{MaxRetries: 3, BaseDelay: 2 * time.Second},
		logger:  logging.Discard(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Profile returns the profile sent with requests
func (c *Client) Profile() Profile {
	return c.profile
}

// GenerateImage submits a prompt and returns the generated image urls
func (c *Client) GenerateImage(ctx context.Context, req GenerateRequest) (*GenerateResponse, error) {
	if strings.TrimSpace(req.Prompt) == "" {
		return nil, fmt.Errorf("prompt cannot be empty")
	}

	body := requestBody{
		Profile: c.profile,
		Key:     c.apiKey,
		Prompt:  req.Prompt,
		Seed:    req.Seed,
		TrackID: uuid.New().String(),
	}
	if req.NegativePrompt != "" {
		body.NegativePrompt = &req.NegativePrompt
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	var resp *GenerateResponse
	err = util.Do(ctx, c.policy, c.logger, "text2img", func(ctx context.Context) error {
		r, err := c.post(ctx, payload)
		if err != nil {
			return err
		}
		resp = r
		return nil
	})
	if err != nil {
		return nil, err
	}
	resp.TrackID = body.TrackID

	if resp.Status == "error" {
		return resp, fmt.Errorf("%w: %s", ErrGeneration, resp.ErrorMessage())
	}
	c.logger.Debug("image generated", "id", resp.ID, "status", resp.Status, "outputs", len(resp.Output))
	return resp, nil
}

func (c *Client) post(ctx context.Context, payload []byte) (*GenerateResponse, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.profile.Endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, util.Permanent(fmt.Errorf("failed to build request: %w", err))
	}
	httpReq.Header.Set("Content-Type", "application/json")

	httpResp, err := c.http.Do(httpReq)
	if err != nil {
		if ctx.Err() != nil {
			return nil, util.Permanent(err)
		}
		return nil, err
	}
	defer httpResp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(httpResp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if httpResp.StatusCode >= 500 {
		return nil, fmt.Errorf("server returned %s", httpResp.Status)
	}
	if httpResp.StatusCode < 200 || httpResp.StatusCode > 299 {
		return nil, util.Permanent(fmt.Errorf("request rejected: %s: %s", httpResp.Status, strings.TrimSpace(string(data))))
	}

	var resp GenerateResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, util.Permanent(fmt.Errorf("failed to decode response: %w", err))
	}
	return &resp, nil
}

// ErrorMessage renders the message field whether the API sent a string or an object
func (r *GenerateResponse) ErrorMessage() string {
	if len(r.Message) == 0 {
		return "no message"
	}
	var s string
	if err := json.Unmarshal(r.Message, &s); err == nil {
		return s
	}
	return string(r.Message)
}
