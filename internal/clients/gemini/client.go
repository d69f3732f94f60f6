package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/accredify/accredify-backend/internal/pkg/logger"
)

// AnalyzeRequest carries the textual coordinates of one obligation; the
// classifier sees text only, never database identity.
type AnalyzeRequest struct {
	Section          string
	Standard         string
	Requirement      string
	EvidenceRequired string
	FrequencyText    string
}

// Suggestion is advisory output. Callers must treat it as a second opinion:
// it is validated against the closed enums before use and discarded when it
// does not parse.
type Suggestion struct {
	ScheduleKind        string  `json:"schedule_type"`
	NormalizedFrequency string  `json:"normalized_frequency"`
	Reasoning           string  `json:"reasoning"`
	Confidence          float64 `json:"confidence_score"`
}

// Client is the advisory frequency classifier. The backend functions fully
// without it; construction fails fast when unconfigured so callers can wire
// a nil client and rely on rule-based resolution alone.
type Client interface {
	AnalyzeFrequency(ctx context.Context, req AnalyzeRequest) (*Suggestion, error)
}

type client struct {
	log        *logger.Logger
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
}

func NewClient(log *logger.Logger) (Client, error) {
	apiKey := strings.TrimSpace(os.Getenv("GEMINI_API_KEY"))
	if apiKey == "" {
		return nil, fmt.Errorf("missing GEMINI_API_KEY")
	}

	baseURL := strings.TrimSpace(os.Getenv("GEMINI_BASE_URL"))
	if baseURL == "" {
		baseURL = "https://generativelanguage.googleapis.com"
	}
	baseURL = strings.TrimRight(baseURL, "/")

	model := strings.TrimSpace(os.Getenv("GEMINI_MODEL"))
	if model == "" {
		model = "gemini-2.0-flash"
	}

	timeoutSec := 30
	if v := os.Getenv("GEMINI_TIMEOUT_SECONDS"); v != "" {
		if parsed, err := strconv.Atoi(strings.TrimSpace(v)); err == nil && parsed > 0 {
			timeoutSec = parsed
		}
	}

	return &client{
		log:        log.With("client", "GeminiClient"),
		baseURL:    baseURL,
		apiKey:     apiKey,
		model:      model,
		httpClient: &http.Client{Timeout: time.Duration(timeoutSec) * time.Second},
	}, nil
}

type generateRequest struct {
	Contents []content `json:"contents"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

func (c *client) AnalyzeFrequency(ctx context.Context, req AnalyzeRequest) (*Suggestion, error) {
	prompt := buildPrompt(req)

	body, err := json.Marshal(generateRequest{
		Contents: []content{{Parts: []part{{Text: prompt}}}},
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s", c.baseURL, c.model, c.apiKey)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("call gemini: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("gemini status %d: %s", resp.StatusCode, truncate(string(raw), 200))
	}

	var gr generateResponse
	if err := json.Unmarshal(raw, &gr); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if len(gr.Candidates) == 0 || len(gr.Candidates[0].Content.Parts) == 0 {
		return nil, fmt.Errorf("empty gemini response")
	}

	text := ExtractJSON(gr.Candidates[0].Content.Parts[0].Text)
	var s Suggestion
	if err := json.Unmarshal([]byte(text), &s); err != nil {
		return nil, fmt.Errorf("parse suggestion: %w", err)
	}
	if s.ScheduleKind != "one_time" && s.ScheduleKind != "recurring" {
		return nil, fmt.Errorf("unexpected schedule_type %q", s.ScheduleKind)
	}
	return &s, nil
}

func buildPrompt(req AnalyzeRequest) string {
	var b strings.Builder
	b.WriteString("Analyze the following compliance indicator and determine if it is a ONE-TIME or RECURRING requirement.\n\n")
	fmt.Fprintf(&b, "Section: %s\n", req.Section)
	fmt.Fprintf(&b, "Standard: %s\n", req.Standard)
	fmt.Fprintf(&b, "Indicator: %s\n", req.Requirement)
	fmt.Fprintf(&b, "Evidence Required: %s\n", req.EvidenceRequired)
	fmt.Fprintf(&b, "Frequency Text: %s\n\n", req.FrequencyText)
	b.WriteString(`Respond with a JSON object in this exact format:
{
    "schedule_type": "one_time" or "recurring",
    "normalized_frequency": one of "Daily", "Weekly", "Bi-weekly", "Monthly", "Quarterly", "Semi-annually", "Annual", or "" if one-time,
    "reasoning": "brief explanation",
    "confidence_score": 0.0 to 1.0
}

Rules:
- If the frequency text is empty or says "one time", "once", "initial", it is one_time.
- If the frequency mentions daily, weekly, monthly, quarterly or annual cadence, it is recurring.
- If the evidence suggests ongoing monitoring or periodic review, it is likely recurring.`)
	return b.String()
}

// ExtractJSON strips markdown code fences the model tends to wrap JSON in.
func ExtractJSON(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.Index(s, "```json"); i >= 0 {
		s = s[i+len("```json"):]
		if j := strings.Index(s, "```"); j >= 0 {
			s = s[:j]
		}
		return strings.TrimSpace(s)
	}
	if i := strings.Index(s, "```"); i >= 0 {
		s = s[i+3:]
		if j := strings.Index(s, "```"); j >= 0 {
			s = s[:j]
		}
		return strings.TrimSpace(s)
	}
	return s
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
