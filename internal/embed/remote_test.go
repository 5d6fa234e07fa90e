package embed

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestOllamaEngine_Embed_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/embeddings" {
			t.Errorf("Expected path /api/embeddings, got %s", r.URL.Path)
		}
		if r.Method != http.MethodPost {
			t.Errorf("Expected POST, got %s", r.Method)
		}

		var req ollamaEmbedRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.Model != "nomic-embed-text" || req.Prompt != "hello" {
			t.Errorf("Unexpected request: %+v", req)
		}

		_ = json.NewEncoder(w).Encode(ollamaEmbedResponse{Embedding: []float32{0.1, 0.2, 0.3}})
	}))
	defer server.Close()

	engine, err := NewOllamaEngine(server.URL+"/", "nomic-embed-text", nil)
	if err != nil {
		t.Fatalf("Failed to create engine: %v", err)
	}

	vec, err := engine.Embed(context.Background(), "hello")
	if err != nil {
		t.Fatalf("Embed failed: %v", err)
	}
	if len(vec) != 3 || vec[2] != 0.3 {
		t.Errorf("Unexpected embedding: %v", vec)
	}
	if engine.Name() != "ollama:nomic-embed-text" {
		t.Errorf("Unexpected name: %s", engine.Name())
	}
}

func TestOllamaEngine_Embed_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error": "model 'missing' not found"}`))
	}))
	defer server.Close()

	engine, _ := NewOllamaEngine(server.URL, "missing", nil)

	_, err := engine.Embed(context.Background(), "hello")
	if err == nil {
		t.Fatal("Expected error, got nil")
	}
	if !strings.Contains(err.Error(), "not found") {
		t.Errorf("Expected API error message, got: %v", err)
	}
}

func TestOllamaEngine_Embed_EmptyEmbedding(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"embedding": []}`))
	}))
	defer server.Close()

	engine, _ := NewOllamaEngine(server.URL, "m", nil)
	if _, err := engine.Embed(context.Background(), "hello"); err == nil {
		t.Error("Expected error for empty embedding")
	}
}

func TestNewOllamaEngine_RequiresModel(t *testing.T) {
	if _, err := NewOllamaEngine("", "", nil); err == nil {
		t.Error("Expected error without model")
	}
}

func TestOpenAIEngine_Embed_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/embeddings" {
			t.Errorf("Expected path /v1/embeddings, got %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("Unexpected Authorization header: %q", got)
		}

		var req map[string]interface{}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req["model"] != "text-embedding-3-small" {
			t.Errorf("Unexpected model: %v", req["model"])
		}

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"object": "list",
			"data": [{"object": "embedding", "index": 0, "embedding": [0.5, -0.5]}],
			"model": "text-embedding-3-small",
			"usage": {"prompt_tokens": 2, "total_tokens": 2}
		}`))
	}))
	defer server.Close()

	engine, err := NewOpenAIEngine("test-key", server.URL+"/v1", "", nil)
	if err != nil {
		t.Fatalf("Failed to create engine: %v", err)
	}

	vec, err := engine.Embed(context.Background(), "hello")
	if err != nil {
		t.Fatalf("Embed failed: %v", err)
	}
	if len(vec) != 2 || vec[0] != 0.5 || vec[1] != -0.5 {
		t.Errorf("Unexpected embedding: %v", vec)
	}
	if engine.Name() != "openai:text-embedding-3-small" {
		t.Errorf("Unexpected name: %s", engine.Name())
	}
}

func TestOpenAIEngine_Embed_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error": {"message": "Incorrect API key provided", "type": "invalid_request_error"}}`))
	}))
	defer server.Close()

	engine, _ := NewOpenAIEngine("bad-key", server.URL+"/v1", "text-embedding-3-small", nil)

	_, err := engine.Embed(context.Background(), "hello")
	if err == nil {
		t.Fatal("Expected error, got nil")
	}
	if !strings.Contains(err.Error(), "OpenAI API error") {
		t.Errorf("Expected wrapped API error, got: %v", err)
	}
}

func TestNewOpenAIEngine_RequiresKey(t *testing.T) {
	if _, err := NewOpenAIEngine("", "", "", nil); err == nil {
		t.Error("Expected error without API key")
	}
}
