package llm

import (
	"context"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/seolab/facetlens/pkg/facetlens/insight"
)

type roundTrip func(*http.Request) (*http.Response, error)

func (f roundTrip) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func fakeClient(fn roundTrip) *Client {
	return &Client{
		BaseURL:    "http://llm.test/v1/chat/completions",
		APIKey:     "secret",
		Model:      "reviewer",
		HTTPClient: &http.Client{Transport: fn},
	}
}

func chatBody(content string) io.ReadCloser {
	quoted := strings.ReplaceAll(content, `"`, `\"`)
	return io.NopCloser(strings.NewReader(
		`{"choices":[{"message":{"role":"assistant","content":"` + quoted + `"}}]}`))
}

func TestReview(t *testing.T) {
	var gotAuth string
	c := fakeClient(func(req *http.Request) (*http.Response, error) {
		gotAuth = req.Header.Get("Authorization")
		return &http.Response{
			StatusCode: http.StatusOK,
			Body:       chatBody(`[{"insight_id":"01HXYZ","false_positive":true,"note":"seasonal spike"}]`),
		}, nil
	})

	anns, err := c.Review(context.Background(), []insight.Insight{{ID: "01HXYZ", Subject: "size > brand"}})
	if err != nil {
		t.Fatalf("Review: %v", err)
	}
	if gotAuth != "Bearer secret" {
		t.Fatalf("auth header = %q", gotAuth)
	}
	if len(anns) != 1 {
		t.Fatalf("annotations = %+v", anns)
	}
	a := anns[0]
	if a.InsightID != "01HXYZ" || !a.FalsePositive || a.Note != "seasonal spike" {
		t.Fatalf("annotation = %+v", a)
	}
}

func TestReviewEmptyVerdicts(t *testing.T) {
	c := fakeClient(func(req *http.Request) (*http.Response, error) {
		return &http.Response{StatusCode: http.StatusOK, Body: chatBody(`[]`)}, nil
	})
	anns, err := c.Review(context.Background(), nil)
	if err != nil {
		t.Fatalf("Review: %v", err)
	}
	if len(anns) != 0 {
		t.Fatalf("annotations = %+v", anns)
	}
}

func TestReviewUnparseableAnswer(t *testing.T) {
	c := fakeClient(func(req *http.Request) (*http.Response, error) {
		return &http.Response{StatusCode: http.StatusOK, Body: chatBody(`sure, here are my thoughts`)}, nil
	})
	if _, err := c.Review(context.Background(), nil); err == nil {
		t.Fatal("expected error for non-JSON answer")
	}
}

func TestChatAPIError(t *testing.T) {
	c := fakeClient(func(req *http.Request) (*http.Response, error) {
		return &http.Response{
			StatusCode: http.StatusTooManyRequests,
			Body:       io.NopCloser(strings.NewReader(`{"error":{"message":"rate limited"}}`)),
		}, nil
	})
	_, err := c.Chat(context.Background(), "system", "user")
	if err == nil || !strings.Contains(err.Error(), "rate limited") {
		t.Fatalf("error = %v", err)
	}
}

func TestChatRequiresConfig(t *testing.T) {
	c := &Client{}
	if _, err := c.Chat(context.Background(), "s", "u"); err == nil {
		t.Fatal("expected error without base URL and model")
	}
}
