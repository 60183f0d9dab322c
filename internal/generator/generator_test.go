package generator

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/verte-zerg/dotdaily/internal/puzzle"
)

func TestFallbackKeywords(t *testing.T) {
	cases := []struct {
		prompt   string
		name     string
		category string
		dots     int
	}{
		{"a big Circle", "CIRCLE", "Shapes", 8},
		{"something round", "CIRCLE", "Shapes", 8},
		{"shooting star", "STAR", "Shapes", 10},
		{"  pineapple express ", "PINEAPPLE", "Custom", 4},
		{"cat", "CAT", "Custom", 4},
	}
	for _, tc := range cases {
		doc, err := Fallback{}.Generate(context.Background(), tc.prompt)
		if err != nil {
			t.Fatalf("fallback %q: %v", tc.prompt, err)
		}
		if doc.Name != tc.name || doc.CategoryName != tc.category || len(doc.Dots) != tc.dots {
			t.Fatalf("fallback %q: expected %s/%s/%d, got %s/%s/%d",
				tc.prompt, tc.name, tc.category, tc.dots, doc.Name, doc.CategoryName, len(doc.Dots))
		}
		if len(doc.Sequence) != len(doc.Dots) {
			t.Fatalf("expected a closed shape for %q", tc.prompt)
		}
		last := doc.Sequence[len(doc.Sequence)-1]
		if last.To != 0 {
			t.Fatalf("expected the last edge to return to the first dot, got %+v", last)
		}
		if issues := doc.Validate(); len(issues) != 0 {
			t.Fatalf("fallback %q produced invalid document: %v", tc.prompt, issues)
		}
	}
}

func TestParseDrawingExtractsAndClamps(t *testing.T) {
	text := "Here you go:\n```json\n" + `{"name":"kite","categoryName":"Objects","dots":[{"x":100,"y":90},{"x":280,"y":200},{"x":500,"y":200},{"x":280,"y":400},{"x":300,"y":300}],"sequence":[{"from":0,"to":1},{"from":1,"to":2},{"from":2,"to":3},{"from":3,"to":4}]}` + "\n```\nEnjoy!"
	doc, err := ParseDrawing(text)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if doc.Name != "KITE" {
		t.Fatalf("expected uppercased name, got %q", doc.Name)
	}
	if doc.Dots[0].X != MinX || doc.Dots[0].Y != MinY {
		t.Fatalf("expected first dot clamped to the minimum, got %+v", doc.Dots[0])
	}
	if doc.Dots[2].X != MaxX || doc.Dots[3].Y != MaxY {
		t.Fatalf("expected dots clamped to the maximum, got %+v %+v", doc.Dots[2], doc.Dots[3])
	}
}

func TestParseDrawingRejects(t *testing.T) {
	if _, err := ParseDrawing("no json here"); !errors.Is(err, ErrNoJSON) {
		t.Fatalf("expected ErrNoJSON, got %v", err)
	}
	few := `{"name":"X","categoryName":"Y","dots":[{"x":150,"y":150},{"x":200,"y":200}],"sequence":[{"from":0,"to":1}]}`
	if _, err := ParseDrawing(few); err == nil || !strings.Contains(err.Error(), "2 dots") {
		t.Fatalf("expected dot count error, got %v", err)
	}
	bad := `{"name":"X","categoryName":"Y","dots":[{"x":150,"y":150},{"x":200,"y":200},{"x":250,"y":200},{"x":300,"y":200},{"x":350,"y":200}],"sequence":[{"from":0,"to":9}]}`
	if _, err := ParseDrawing(bad); err == nil {
		t.Fatalf("expected out-of-range edge to be rejected")
	}
}

func claudeReply(text string) []byte {
	body, _ := json.Marshal(map[string]any{
		"id":   "msg_1",
		"type": "message",
		"content": []map[string]string{
			{"type": "text", "text": text},
		},
	})
	return body
}

func TestClaudeRequestAndReply(t *testing.T) {
	drawing := `{"name":"HOUSE","categoryName":"Buildings","dots":[{"x":200,"y":300},{"x":200,"y":200},{"x":280,"y":140},{"x":360,"y":200},{"x":360,"y":300}],"sequence":[{"from":0,"to":1},{"from":1,"to":2},{"from":2,"to":3},{"from":3,"to":4},{"from":4,"to":0}]}`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if r.Header.Get("x-api-key") != "test-key" || r.Header.Get("anthropic-version") != apiVersion {
			t.Errorf("missing auth headers: %v", r.Header)
		}
		body, _ := io.ReadAll(r.Body)
		if !strings.Contains(string(body), `"max_tokens":1000`) || !strings.Contains(string(body), "house") {
			t.Errorf("unexpected request body %s", body)
		}
		_, _ = w.Write(claudeReply("Sure!\n" + drawing))
	}))
	t.Cleanup(srv.Close)

	c := NewClaude(ClaudeOptions{Endpoint: srv.URL, APIKey: "test-key"}, srv.Client())
	doc, err := c.Generate(context.Background(), "house")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if doc.Name != "HOUSE" || len(doc.Dots) != 5 || len(doc.Sequence) != 5 {
		t.Fatalf("unexpected document %+v", doc)
	}
}

func TestClaudeErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"type":"error","error":{"type":"authentication_error","message":"invalid x-api-key"}}`))
	}))
	t.Cleanup(srv.Close)
	c := NewClaude(ClaudeOptions{Endpoint: srv.URL, APIKey: "bad"}, srv.Client())
	_, err := c.Generate(context.Background(), "boat")
	if err == nil || !strings.Contains(err.Error(), "401") || !strings.Contains(err.Error(), "invalid x-api-key") {
		t.Fatalf("expected status error with message, got %v", err)
	}
}

func TestClaudeWithoutKey(t *testing.T) {
	c := NewClaude(ClaudeOptions{}, nil)
	if _, err := c.Generate(context.Background(), "boat"); !errors.Is(err, ErrNoAPIKey) {
		t.Fatalf("expected ErrNoAPIKey, got %v", err)
	}
}

type failingGenerator struct{ err error }

func (f failingGenerator) Generate(context.Context, string) (puzzle.Document, error) {
	return puzzle.Document{}, f.err
}

func TestAssistantFallsBack(t *testing.T) {
	boom := errors.New("boom")
	a := NewAssistant(failingGenerator{err: boom}, zerolog.Nop())
	res, err := a.Generate(context.Background(), "a star please")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if res.Source != SourceFallback || !errors.Is(res.RemoteErr, boom) {
		t.Fatalf("expected fallback after remote error, got %+v", res)
	}
	if res.Document.Name != "STAR" {
		t.Fatalf("expected STAR fallback, got %q", res.Document.Name)
	}
	if _, err := a.Generate(context.Background(), "   "); !errors.Is(err, ErrEmptyPrompt) {
		t.Fatalf("expected ErrEmptyPrompt, got %v", err)
	}
}

func TestAssistantWithoutRemote(t *testing.T) {
	res, err := NewAssistant(nil, zerolog.Nop()).Generate(context.Background(), "tree")
	if err != nil || res.Source != SourceFallback || res.RemoteErr != nil {
		t.Fatalf("expected plain fallback, got %+v %v", res, err)
	}
}
