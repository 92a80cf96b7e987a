package enrichment

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHuggingFaceClassifier_Classify(t *testing.T) {
	var got zeroShotRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/models/facebook/bart-large-mnli", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(zeroShotResponse{
			Labels: []string{"Financial document", "Business document", "Medical record"},
			Scores: []float64{0.91, 0.3, 0.05},
		})
	}))
	defer srv.Close()

	c := NewHuggingFaceClassifier(srv.URL+"/", "facebook/bart-large-mnli", "secret", 5*time.Second)
	labels, err := c.Classify(context.Background(), strings.Repeat("é", 2000))

	require.NoError(t, err)
	assert.Equal(t, []string{"Financial", "Business"}, labels)
	assert.True(t, got.Parameters.MultiLabel)
	assert.Len(t, got.Parameters.CandidateLabels, 7)
	assert.Equal(t, 1024, len([]rune(got.Inputs)))
}

func TestHuggingFaceClassifier_NothingPassesThreshold(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(zeroShotResponse{
			Labels: []string{"Legal document"},
			Scores: []float64{0.29},
		})
	}))
	defer srv.Close()

	c := NewHuggingFaceClassifier(srv.URL, "m", "", time.Second)
	labels, err := c.Classify(context.Background(), "some text")

	require.NoError(t, err)
	assert.Equal(t, []string{FallbackLabel}, labels)
}

func TestHuggingFaceClassifier_EmptyTextSkipsRequest(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("classifier should not be called")
	}))
	defer srv.Close()

	c := NewHuggingFaceClassifier(srv.URL, "m", "", time.Second)
	labels, err := c.Classify(context.Background(), "  \n ")

	require.NoError(t, err)
	assert.Equal(t, []string{FallbackLabel}, labels)
}

func TestHuggingFaceClassifier_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := NewHuggingFaceClassifier(srv.URL, "m", "bad", time.Second)
	_, err := c.Classify(context.Background(), "text")

	assert.ErrorContains(t, err, "status 401")
}

func TestTruncateRunes(t *testing.T) {
	assert.Equal(t, "ab", truncateRunes("abc", 2))
	assert.Equal(t, "abc", truncateRunes("abc", 3))
	assert.Equal(t, "日本", truncateRunes("日本語", 2))
}

func TestPDFExtractor_RejectsGarbage(t *testing.T) {
	_, err := NewPDFExtractor().ExtractText([]byte("not a pdf at all"))
	assert.Error(t, err)
}
