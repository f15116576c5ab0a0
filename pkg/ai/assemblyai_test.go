package ai

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/johnquangdev/meeting-whisperer/pkg/config"
)

func TestAssemblyAITranscriber_Transcribe(t *testing.T) {
	var uploaded string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "test-key" {
			t.Errorf("missing api key header")
		}
		w.Header().Set("Content-Type", "application/json")
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/v2/upload":
			body, _ := io.ReadAll(r.Body)
			uploaded = string(body)
			json.NewEncoder(w).Encode(map[string]string{"upload_url": "https://cdn.test/upload/1"})
		case r.Method == http.MethodPost && r.URL.Path == "/v2/transcript":
			var payload map[string]interface{}
			json.NewDecoder(r.Body).Decode(&payload)
			if payload["audio_url"] != "https://cdn.test/upload/1" {
				t.Errorf("unexpected audio_url %v", payload["audio_url"])
			}
			json.NewEncoder(w).Encode(map[string]string{"id": "tr-1", "status": "queued"})
		case r.Method == http.MethodGet && r.URL.Path == "/v2/transcript/tr-1":
			json.NewEncoder(w).Encode(map[string]string{"id": "tr-1", "status": "completed", "text": "Bob will send the report."})
		default:
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer ts.Close()

	cfg := &config.AIConfig{AssemblyAPIKey: "test-key", AssemblyBaseURL: ts.URL, LanguageCode: "en"}
	tr := NewAssemblyAITranscriber(cfg, memorySource{"recordings/m.wav": "wav-bytes"}, nil)

	text, err := tr.Transcribe(context.Background(), "recordings/m.wav")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "Bob will send the report." {
		t.Fatalf("unexpected transcript %q", text)
	}
	if uploaded != "wav-bytes" {
		t.Fatalf("recording was not streamed to upload, got %q", uploaded)
	}
}
