// Package openai talks to the chat completion and speech endpoints used for
// question generation and host narration.
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"millionaire-service/internal/domain"
)

const (
	DefaultBaseURL  = "https://api.openai.com/v1"
	DefaultModel    = "gpt-4o-mini"
	DefaultTTSModel = "gpt-4o-mini-tts"
	DefaultVoice    = "echo"
)

var ErrNotConfigured = errors.New("openai: api key not configured")

type Config struct {
	APIKey   string
	BaseURL  string
	Model    string
	TTSModel string
	Voice    string
	Timeout  time.Duration
}

type Client struct {
	cfg  Config
	http *http.Client
}

func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.TTSModel == "" {
		cfg.TTSModel = DefaultTTSModel
	}
	if cfg.Voice == "" {
		cfg.Voice = DefaultVoice
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &Client{cfg: cfg, http: &http.Client{Timeout: cfg.Timeout}}
}

// Configured reports whether requests can be made at all.
func (c *Client) Configured() bool { return c.cfg.APIKey != "" }

var categories = []string{
	"HVAC Systems",
	"Insulation & Air Sealing",
	"Energy Efficiency",
	"Building Codes & Standards",
	"Moisture Control",
	"Ventilation & Indoor Air Quality",
	"Building Materials",
	"Renewable Energy Systems",
}

var difficultyPrompts = map[domain.Difficulty]string{
	domain.DifficultyEasy:   "Create a basic building science question suitable for beginners. Focus on fundamental terminology and concepts.",
	domain.DifficultyMedium: "Create an intermediate building science question requiring applied knowledge and understanding of common practices.",
	domain.DifficultyHard:   "Create a challenging building science question involving technical specifications, calculations, or complex scenarios.",
	domain.DifficultyExpert: "Create an expert-level building science question covering advanced theory, edge cases, or specialized knowledge.",
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model          string            `json:"model"`
	Messages       []chatMessage     `json:"messages"`
	Temperature    float64           `json:"temperature"`
	MaxTokens      int               `json:"max_tokens"`
	ResponseFormat map[string]string `json:"response_format"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

type generatedQuestion struct {
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correctAnswer"`
	Explanation   string   `json:"explanation"`
	Category      string   `json:"category"`
}

// GenerateQuestion asks the chat model for one question of the given band.
// The result carries no ID; callers assign one and validate it.
func (c *Client) GenerateQuestion(ctx context.Context, level int, difficulty domain.Difficulty, avoid []string) (domain.Question, error) {
	if !c.Configured() {
		return domain.Question{}, ErrNotConfigured
	}

	category := categories[(level-1+len(categories))%len(categories)]
	req := chatRequest{
		Model: c.cfg.Model,
		Messages: []chatMessage{
			{Role: "system", Content: "You are a building science expert creating educational quiz questions. Always respond with valid JSON."},
			{Role: "user", Content: questionPrompt(difficulty, category, avoid)},
		},
		Temperature:    0.8,
		MaxTokens:      500,
		ResponseFormat: map[string]string{"type": "json_object"},
	}

	var resp chatResponse
	if err := c.postJSON(ctx, "/chat/completions", req, &resp); err != nil {
		return domain.Question{}, err
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return domain.Question{}, errors.New("openai: empty completion")
	}

	var gq generatedQuestion
	if err := json.Unmarshal([]byte(resp.Choices[0].Message.Content), &gq); err != nil {
		return domain.Question{}, fmt.Errorf("%w: %v", domain.ErrMalformedQuestion, err)
	}
	if gq.Category == "" {
		gq.Category = category
	}
	return domain.Question{
		Prompt:        gq.Question,
		Options:       gq.Options,
		CorrectAnswer: gq.CorrectAnswer,
		Difficulty:    difficulty,
		Category:      gq.Category,
		Explanation:   gq.Explanation,
	}, nil
}

func questionPrompt(difficulty domain.Difficulty, category string, avoid []string) string {
	var b strings.Builder
	b.WriteString("You are an expert in building science and energy efficiency. ")
	b.WriteString(difficultyPrompts[difficulty])
	b.WriteString("\n\nCategory: ")
	b.WriteString(category)
	b.WriteString(`

Create a multiple-choice question with exactly 4 options. The question should be relevant to building science professionals, contractors, and energy auditors.

Format your response as JSON with this structure:
{
  "question": "The question text",
  "options": ["Option A", "Option B", "Option C", "Option D"],
  "correctAnswer": "The correct option text (must match one of the options exactly)",
  "explanation": "A brief explanation of why this is the correct answer",
  "category": "`)
	b.WriteString(category)
	b.WriteString("\"\n}")
	if len(avoid) > 0 {
		b.WriteString("\n\nDo not create questions similar to these already asked:\n")
		b.WriteString(strings.Join(avoid, "\n"))
	}
	return b.String()
}

type speechRequest struct {
	Model string  `json:"model"`
	Voice string  `json:"voice"`
	Input string  `json:"input"`
	Speed float64 `json:"speed"`
}

// Speech synthesises text to MP3 audio.
func (c *Client) Speech(ctx context.Context, text string) ([]byte, error) {
	if !c.Configured() {
		return nil, ErrNotConfigured
	}
	body, err := json.Marshal(speechRequest{Model: c.cfg.TTSModel, Voice: c.cfg.Voice, Input: text, Speed: 1.0})
	if err != nil {
		return nil, err
	}
	res, err := c.do(ctx, "/audio/speech", body)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()
	return io.ReadAll(res.Body)
}

func (c *Client) postJSON(ctx context.Context, path string, in, out interface{}) error {
	body, err := json.Marshal(in)
	if err != nil {
		return err
	}
	res, err := c.do(ctx, path, body)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return fmt.Errorf("openai: decode %s: %w", path, err)
	}
	return nil
}

func (c *Client) do(ctx context.Context, path string, body []byte) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	res, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("openai: %s: %w", path, err)
	}
	if res.StatusCode/100 != 2 {
		defer res.Body.Close()
		msg, _ := io.ReadAll(io.LimitReader(res.Body, 512))
		return nil, fmt.Errorf("openai: %s: %s: %s", path, res.Status, strings.TrimSpace(string(msg)))
	}
	return res, nil
}
