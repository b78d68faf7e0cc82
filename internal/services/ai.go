package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"

	"github.com/yukikurage/workforce-api/internal/config"
)

// ChatCompleter is the subset of the OpenAI client the generator needs.
type ChatCompleter interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

type AIService struct {
	client ChatCompleter
	model  string
	now    func() time.Time
}

// GeneratedTask is a task draft extracted from free text. Nothing is
// persisted until the client submits it through the normal create path.
type GeneratedTask struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Priority    string     `json:"priority"`
	DueDate     *time.Time `json:"dueDate"`
	Tags        []string   `json:"tags"`
}

// NewAIService returns nil when no API key is configured.
func NewAIService(cfg config.OpenAIConfig) *AIService {
	if cfg.APIKey == "" {
		return nil
	}
	return NewAIServiceWithClient(openai.NewClient(cfg.APIKey), cfg.Model)
}

func NewAIServiceWithClient(client ChatCompleter, model string) *AIService {
	if model == "" {
		model = openai.GPT4oMini
	}
	return &AIService{client: client, model: model, now: time.Now}
}

const generatePrompt = `You are a task extraction assistant. Extract concrete, actionable tasks from the text below.

Current time: %s

Text:
%s

Respond with a JSON object of this exact shape:
{"tasks": [{"title": "short title", "description": "details", "priority": "low|medium|high|urgent", "due_date": "ISO-8601 timestamp or null", "tags": ["short", "labels"]}]}

Rules:
- Return {"tasks": []} when the text contains no tasks.
- Convert relative deadlines ("tomorrow", "next week") to absolute timestamps.
- due_date must be an ISO-8601 string or null.
- Return JSON only.`

type aiTask struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Priority    string   `json:"priority"`
	DueDate     *string  `json:"due_date"`
	Tags        []string `json:"tags"`
}

// GenerateTasksFromText analyzes text and extracts tasks using OpenAI
func (s *AIService) GenerateTasksFromText(ctx context.Context, text string) ([]GeneratedTask, error) {
	if s == nil || s.client == nil {
		return nil, errors.New("OpenAI client not initialized")
	}

	prompt := fmt.Sprintf(generatePrompt, s.now().UTC().Format(time.RFC3339), text)

	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: s.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Temperature: 0.3,
	})
	if err != nil {
		return nil, fmt.Errorf("OpenAI API error: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, errors.New("no response from OpenAI")
	}

	content := stripCodeFence(resp.Choices[0].Message.Content)

	var payload struct {
		Tasks []aiTask `json:"tasks"`
	}
	if err := json.Unmarshal([]byte(content), &payload); err != nil {
		return nil, fmt.Errorf("failed to parse AI response: %w", err)
	}

	tasks := make([]GeneratedTask, 0, len(payload.Tasks))
	for _, t := range payload.Tasks {
		g := GeneratedTask{
			Title:       t.Title,
			Description: t.Description,
			Priority:    t.Priority,
			Tags:        t.Tags,
		}
		if t.DueDate != nil {
			if due, err := time.Parse(time.RFC3339, *t.DueDate); err == nil {
				due = due.UTC()
				g.DueDate = &due
			}
		}
		tasks = append(tasks, g)
	}
	return tasks, nil
}

func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
