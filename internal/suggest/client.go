// Package suggest generates starter filter preferences and interests for a
// child profile using a chat-completion endpoint.
package suggest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/waltmayfield/home-child/internal/domain"
)

// Client calls an OpenAI-compatible chat completions API.
type Client struct {
	endpoint   string
	apiKey     string
	model      string
	httpClient *http.Client
}

// NewClient constructs a Client. Timeout covers the full request including
// model inference.
func NewClient(endpoint, apiKey, model string, timeout time.Duration) *Client {
	return &Client{
		endpoint: endpoint,
		apiKey:   apiKey,
		model:    model,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Input describes the child the suggestion is generated for.
type Input struct {
	Age   int
	Sex   domain.Sex
	Notes string
}

// Suggestion is a generated starter profile. Values outside the taxonomy are
// dropped during validation rather than surfaced to the caller.
type Suggestion struct {
	DefaultFilter domain.DefaultFilter `json:"default_filter"`
	Interests     []string             `json:"interests"`
}

const systemPrompt = `You suggest starter activity preferences for a child.
Respond with a single JSON object with keys "default_filter" and "interests".
"default_filter" has keys "categories", "skills", "difficulty_level",
"max_duration", "mess_level", "supervision_level". "interests" is a list of
short free-text strings. Use only these values:
categories: arts_crafts, science_experiments, outdoor_activities, cooking_baking, reading_literacy, math_numbers, music_dance, physical_exercise, building_construction, dramatic_play, sensory_play, nature_exploration
skills: creativity, critical_thinking, fine_motor, gross_motor, social_emotional, language_development, problem_solving, sensory_processing, self_regulation, collaboration, independence, curiosity
difficulty_level: beginner, intermediate, advanced
mess_level: none, minimal, moderate, high
supervision_level: independent, minimal_supervision, active_supervision, one_on_one_required`

type chatRequest struct {
	Model          string        `json:"model"`
	Messages       []chatMessage `json:"messages"`
	ResponseFormat *respFormat   `json:"response_format,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type respFormat struct {
	Type string `json:"type"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Generate produces a starter filter and interest list for the child.
func (c *Client) Generate(ctx context.Context, input Input) (*Suggestion, error) {
	user := fmt.Sprintf("Child age: %d. Sex: %s.", input.Age, input.Sex)
	if strings.TrimSpace(input.Notes) != "" {
		user += " Parent notes: " + input.Notes
	}

	body, err := json.Marshal(chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: user},
		},
		ResponseFormat: &respFormat{Type: "json_object"},
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("suggestion request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("suggestion failed (status %d): %s", resp.StatusCode, data)
	}

	var chat chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chat); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if len(chat.Choices) == 0 {
		return nil, fmt.Errorf("empty completion")
	}

	var suggestion Suggestion
	if err := json.Unmarshal([]byte(chat.Choices[0].Message.Content), &suggestion); err != nil {
		return nil, fmt.Errorf("parse completion content: %w", err)
	}

	sanitize(&suggestion)
	return &suggestion, nil
}

// sanitize drops any generated value that is not part of the taxonomy.
func sanitize(s *Suggestion) {
	df := &s.DefaultFilter

	if df.Categories != nil {
		kept := df.Categories[:0]
		for _, c := range df.Categories {
			if c.Valid() {
				kept = append(kept, c)
			}
		}
		df.Categories = kept
	}

	if df.Skills != nil {
		kept := df.Skills[:0]
		for _, sk := range df.Skills {
			if sk.Valid() {
				kept = append(kept, sk)
			}
		}
		df.Skills = kept
	}

	if df.DifficultyLevel != nil && !df.DifficultyLevel.Valid() {
		df.DifficultyLevel = nil
	}
	if df.MessLevel != nil && !df.MessLevel.Valid() {
		df.MessLevel = nil
	}
	if df.SupervisionLevel != nil && !df.SupervisionLevel.Valid() {
		df.SupervisionLevel = nil
	}
	if df.MaxDuration != nil && *df.MaxDuration <= 0 {
		df.MaxDuration = nil
	}
	// Age overrides never come from the generator.
	df.AgeRangeOverride = nil
}
