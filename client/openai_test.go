package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Netcracker/qubership-autonet-service/view"
	"github.com/openai/openai-go/v3/option"
)

func newChatCompletionServer(t *testing.T, content string, gotBody *map[string]interface{}) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/chat/completions") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("unexpected authorization %q", got)
		}
		if gotBody != nil {
			if err := json.NewDecoder(r.Body).Decode(gotBody); err != nil {
				t.Errorf("failed to decode request: %v", err)
			}
		}
		resp := map[string]interface{}{
			"id":      "chatcmpl-1",
			"object":  "chat.completion",
			"created": 1735689600,
			"model":   "gpt-test",
			"choices": []map[string]interface{}{{
				"index":         0,
				"finish_reason": "stop",
				"message":       map[string]interface{}{"role": "assistant", "content": content},
			}},
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}))
}

func TestOpenaiAnalyzeText(t *testing.T) {
	var body map[string]interface{}
	srv := newChatCompletionServer(t, sampleResultJson, &body)
	defer srv.Close()

	cl, err := NewOpenaiClient("test-key", "gpt-test", srv.URL, option.WithMaxRetries(0))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	input, _ := view.NewTextInput("SW1 Gi0/1 to R1 Gi0/0")
	result, err := cl.Analyze(context.Background(), input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.DeviceConfigs) != 1 || result.Assessment != "Flat network." {
		t.Fatalf("unexpected result %+v", result)
	}

	if body["model"] != "gpt-test" {
		t.Fatalf("unexpected model %v", body["model"])
	}
	format, _ := body["response_format"].(map[string]interface{})
	if format["type"] != "json_schema" {
		t.Fatalf("expected json_schema response format, got %v", body["response_format"])
	}
	messages, _ := body["messages"].([]interface{})
	if len(messages) != 2 {
		t.Fatalf("expected system and user messages, got %d", len(messages))
	}
	user, _ := messages[1].(map[string]interface{})
	if content, _ := user["content"].(string); !strings.Contains(content, "SW1 Gi0/1 to R1 Gi0/0") {
		t.Fatalf("user message does not carry the description: %v", user["content"])
	}
}

func TestOpenaiAnalyzeImage(t *testing.T) {
	var body map[string]interface{}
	srv := newChatCompletionServer(t, "```json\n"+sampleResultJson+"\n```", &body)
	defer srv.Close()

	cl, err := NewOpenaiClient("test-key", "gpt-test", srv.URL, option.WithMaxRetries(0))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	input, _ := view.NewFileInput([]byte("\x89PNG\r\n\x1a\n"), "lab.png", "image/png")
	if _, err := cl.Analyze(context.Background(), input); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	messages, _ := body["messages"].([]interface{})
	user, _ := messages[1].(map[string]interface{})
	parts, _ := user["content"].([]interface{})
	if len(parts) != 2 {
		t.Fatalf("expected text and image parts, got %v", user["content"])
	}
	image, _ := parts[1].(map[string]interface{})
	if image["type"] != "image_url" {
		t.Fatalf("expected image part, got %v", image["type"])
	}
	imageUrl, _ := image["image_url"].(map[string]interface{})
	if url, _ := imageUrl["url"].(string); !strings.HasPrefix(url, "data:image/png;base64,") {
		t.Fatalf("expected data url, got %v", imageUrl["url"])
	}
}

func TestOpenaiAnalyzeMalformedResponse(t *testing.T) {
	srv := newChatCompletionServer(t, "Sorry, the diagram is unreadable.", nil)
	defer srv.Close()

	cl, err := NewOpenaiClient("test-key", "gpt-test", srv.URL, option.WithMaxRetries(0))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	input, _ := view.NewTextInput("R1")
	if _, err := cl.Analyze(context.Background(), input); err == nil {
		t.Fatal("expected error for malformed response")
	}
}

func TestOpenaiAnalyzeServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error":{"message":"Rate limit reached","type":"requests"}}`))
	}))
	defer srv.Close()

	cl, err := NewOpenaiClient("test-key", "gpt-test", srv.URL, option.WithMaxRetries(0))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	input, _ := view.NewTextInput("R1")
	_, err = cl.Analyze(context.Background(), input)
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "429") {
		t.Fatalf("expected status in error, got %v", err)
	}
}
