package openai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"millionaire-service/internal/domain"
)

func TestGenerateQuestion(t *testing.T) {
	var got chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer sk-test" {
			t.Errorf("missing bearer token")
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode request: %v", err)
		}
		content := `{"question":"What does ACH50 measure?","options":["Air changes at 50 Pa","Amps","Heat","Humidity"],"correctAnswer":"Air changes at 50 Pa","explanation":"Blower door metric."}`
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"choices": []interface{}{map[string]interface{}{"message": map[string]string{"role": "assistant", "content": content}}},
		})
	}))
	defer srv.Close()

	c := NewClient(Config{APIKey: "sk-test", BaseURL: srv.URL + "/"})
	q, err := c.GenerateQuestion(context.Background(), 3, domain.DifficultyEasy, []string{"What does HVAC stand for?"})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if err := q.Validate(); err != nil {
		t.Fatalf("generated question invalid: %v", err)
	}
	if q.Difficulty != domain.DifficultyEasy || q.Category != "Energy Efficiency" {
		t.Fatalf("unexpected difficulty or category: %+v", q)
	}
	if got.Model != DefaultModel || got.ResponseFormat["type"] != "json_object" {
		t.Fatalf("unexpected request %+v", got)
	}
	if !strings.Contains(got.Messages[1].Content, "What does HVAC stand for?") {
		t.Fatalf("avoid list missing from prompt")
	}
}

func TestGenerateQuestionErrors(t *testing.T) {
	if _, err := NewClient(Config{}).GenerateQuestion(context.Background(), 1, domain.DifficultyEasy, nil); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"rate limited"}`, http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, err := NewClient(Config{APIKey: "k", BaseURL: srv.URL}).GenerateQuestion(context.Background(), 1, domain.DifficultyEasy, nil)
	if err == nil || !strings.Contains(err.Error(), "429") {
		t.Fatalf("expected status in error, got %v", err)
	}

	garbage := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"not json"}}]}`))
	}))
	defer garbage.Close()
	_, err = NewClient(Config{APIKey: "k", BaseURL: garbage.URL}).GenerateQuestion(context.Background(), 1, domain.DifficultyEasy, nil)
	if !errors.Is(err, domain.ErrMalformedQuestion) {
		t.Fatalf("expected ErrMalformedQuestion, got %v", err)
	}
}

func TestSpeech(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req speechRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		if r.URL.Path != "/audio/speech" || req.Voice != "nova" || req.Input != "Final answer?" {
			t.Errorf("unexpected speech request %s %+v", r.URL.Path, req)
		}
		w.Header().Set("Content-Type", "audio/mpeg")
		_, _ = w.Write([]byte("ID3mp3"))
	}))
	defer srv.Close()

	audio, err := NewClient(Config{APIKey: "k", BaseURL: srv.URL, Voice: "nova"}).Speech(context.Background(), "Final answer?")
	if err != nil {
		t.Fatalf("speech: %v", err)
	}
	if string(audio) != "ID3mp3" {
		t.Fatalf("unexpected audio %q", audio)
	}
}
