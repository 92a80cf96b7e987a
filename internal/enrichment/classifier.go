package enrichment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// FallbackLabel is attached when a document matches no category.
const FallbackLabel = "Other"

const (
	scoreThreshold = 0.3
	maxInputRunes  = 1024
)

// candidate hypotheses sent to the model, mapped to the stored tag.
var candidates = []struct {
	hypothesis string
	label      string
}{
	{"Financial document", "Financial"},
	{"Legal document", "Legal"},
	{"Technical documentation", "Technical"},
	{"Medical record", "Medical"},
	{"Educational material", "Educational"},
	{"Business document", "Business"},
	{"Personal document", "Personal"},
}

// Classifier assigns category labels to document text.
type Classifier interface {
	Classify(ctx context.Context, text string) ([]string, error)
}

// HuggingFaceClassifier calls a zero-shot classification model on the
// Hugging Face inference API.
type HuggingFaceClassifier struct {
	httpClient *http.Client
	endpoint   string
	model      string
	apiKey     string
}

// NewHuggingFaceClassifier creates a classifier. endpoint is the API base URL,
// e.g. https://api-inference.huggingface.co.
func NewHuggingFaceClassifier(endpoint, model, apiKey string, timeout time.Duration) *HuggingFaceClassifier {
	return &HuggingFaceClassifier{
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		endpoint: strings.TrimRight(endpoint, "/"),
		model:    model,
		apiKey:   apiKey,
	}
}

type zeroShotRequest struct {
	Inputs     string             `json:"inputs"`
	Parameters zeroShotParameters `json:"parameters"`
}

type zeroShotParameters struct {
	CandidateLabels []string `json:"candidate_labels"`
	MultiLabel      bool     `json:"multi_label"`
}

type zeroShotResponse struct {
	Labels []string  `json:"labels"`
	Scores []float64 `json:"scores"`
}

func (c *HuggingFaceClassifier) Classify(ctx context.Context, text string) ([]string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return []string{FallbackLabel}, nil
	}

	hyps := make([]string, len(candidates))
	for i, cand := range candidates {
		hyps[i] = cand.hypothesis
	}
	body, err := json.Marshal(zeroShotRequest{
		Inputs:     truncateRunes(text, maxInputRunes),
		Parameters: zeroShotParameters{CandidateLabels: hyps, MultiLabel: true},
	})
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	reqURL := fmt.Sprintf("%s/models/%s", c.endpoint, c.model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("classify request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("classifier returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	var out zeroShotResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return pickLabels(out), nil
}

func pickLabels(out zeroShotResponse) []string {
	var labels []string
	for i, hyp := range out.Labels {
		if i >= len(out.Scores) || out.Scores[i] < scoreThreshold {
			continue
		}
		for _, cand := range candidates {
			if cand.hypothesis == hyp {
				labels = append(labels, cand.label)
				break
			}
		}
	}
	if len(labels) == 0 {
		return []string{FallbackLabel}
	}
	return labels
}

func truncateRunes(s string, n int) string {
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}
