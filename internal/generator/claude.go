package generator

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/verte-zerg/dotdaily/internal/puzzle"
)

// Defaults for the remote generator.
const (
	DefaultEndpoint  = "https://api.anthropic.com/v1/messages"
	DefaultModel     = "claude-3-5-sonnet-latest"
	DefaultAPIKeyEnv = "ANTHROPIC_API_KEY"
	DefaultTimeout   = 30 * time.Second
	apiVersion       = "2023-06-01"
)

// Bounds for generated drawings.
const (
	MinX    = 140
	MaxX    = 420
	MinY    = 105
	MaxY    = 385
	MinDots = 5
	MaxDots = 20
)

// Errors returned by the generators.
var (
	ErrEmptyPrompt = errors.New("generator: prompt is empty")
	ErrNoAPIKey    = errors.New("generator: no API key configured")
	ErrNoJSON      = errors.New("generator: no JSON object in reply")
)

const instructions = `You create dot-to-dot drawings.

Given a text description, create a simple dot-to-dot drawing. Return ONLY valid JSON in this exact format:

{
  "name": "DRAWING_NAME",
  "categoryName": "CATEGORY",
  "dots": [{"x": 100, "y": 100}, ...],
  "sequence": [{"from": 0, "to": 1}, ...]
}

Rules:
- X coordinates: 140-420
- Y coordinates: 105-385
- Keep it simple with 5-20 dots
- Make logical connection sequences
- Use descriptive names in UPPERCASE
- Categories: Shapes, Animals, Objects, Symbols, etc.`

var jsonObject = regexp.MustCompile(`\{[\s\S]*\}`)

// ClaudeOptions configure the remote client.
type ClaudeOptions struct {
	Endpoint  string
	Model     string
	APIKey    string
	MaxTokens int
	Timeout   time.Duration
}

// Claude asks the Anthropic messages API for a drawing.
type Claude struct {
	opts   ClaudeOptions
	client *http.Client
}

// NewClaude builds a client. A nil client uses one with opts.Timeout.
func NewClaude(opts ClaudeOptions, client *http.Client) *Claude {
	if opts.Endpoint == "" {
		opts.Endpoint = DefaultEndpoint
	}
	if opts.Model == "" {
		opts.Model = DefaultModel
	}
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = 1000
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if client == nil {
		client = &http.Client{Timeout: opts.Timeout}
	}
	return &Claude{opts: opts, client: client}
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type messagesRequest struct {
	Model     string    `json:"model"`
	MaxTokens int       `json:"max_tokens"`
	Messages  []message `json:"messages"`
}

// Generate implements Generator.
func (c *Claude) Generate(ctx context.Context, prompt string) (puzzle.Document, error) {
	if c.opts.APIKey == "" {
		return puzzle.Document{}, ErrNoAPIKey
	}
	body, err := json.Marshal(messagesRequest{
		Model:     c.opts.Model,
		MaxTokens: c.opts.MaxTokens,
		Messages: []message{{
			Role:    "user",
			Content: fmt.Sprintf("%s\n\nCreate a dot-to-dot drawing for: %q", instructions, prompt),
		}},
	})
	if err != nil {
		return puzzle.Document{}, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.opts.Endpoint, bytes.NewReader(body))
	if err != nil {
		return puzzle.Document{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.opts.APIKey)
	req.Header.Set("anthropic-version", apiVersion)

	resp, err := c.client.Do(req)
	if err != nil {
		return puzzle.Document{}, fmt.Errorf("generator: request failed: %w", err)
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			// Best-effort body close.
			_ = cerr
		}
	}()
	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return puzzle.Document{}, fmt.Errorf("generator: read reply: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := gjson.GetBytes(raw, "error.message").String()
		if msg == "" {
			msg = strings.TrimSpace(string(raw))
		}
		return puzzle.Document{}, fmt.Errorf("generator: remote returned %d: %s", resp.StatusCode, msg)
	}
	return ParseReply(raw)
}

// ParseReply extracts a drawing from a messages API response body.
func ParseReply(raw []byte) (puzzle.Document, error) {
	var text strings.Builder
	gjson.GetBytes(raw, "content").ForEach(func(_, block gjson.Result) bool {
		if block.Get("type").String() == "text" {
			text.WriteString(block.Get("text").String())
		}
		return true
	})
	return ParseDrawing(text.String())
}

// ParseDrawing pulls the JSON object out of free text, decodes it and clamps
// it to the drawing bounds.
func ParseDrawing(text string) (puzzle.Document, error) {
	match := jsonObject.FindString(text)
	if match == "" {
		return puzzle.Document{}, ErrNoJSON
	}
	doc, err := puzzle.Decode(strings.NewReader(match))
	if err != nil {
		return puzzle.Document{}, fmt.Errorf("generator: invalid drawing JSON: %w", err)
	}
	if n := len(doc.Dots); n < MinDots || n > MaxDots {
		return puzzle.Document{}, fmt.Errorf("generator: drawing has %d dots, want %d-%d", n, MinDots, MaxDots)
	}
	for i, d := range doc.Dots {
		doc.Dots[i] = puzzle.Dot{X: clamp(d.X, MinX, MaxX), Y: clamp(d.Y, MinY, MaxY)}
	}
	doc.Name = strings.ToUpper(strings.TrimSpace(doc.Name))
	if issues := doc.Validate(); len(issues) > 0 {
		return puzzle.Document{}, fmt.Errorf("generator: invalid drawing: %s", issues[0])
	}
	return doc, nil
}

func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return lo
	}
	return math.Max(lo, math.Min(hi, v))
}
