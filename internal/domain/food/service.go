package food

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/yanqian/vita/internal/infra/llm/chatgpt"
	apperrors "github.com/yanqian/vita/pkg/errors"
	"github.com/yanqian/vita/pkg/metrics"
)

const (
	defaultMaxResults = 5
	maxQueryRunes     = 200
)

// DefaultPrompt asks for the structured food list. %s is the user query.
const DefaultPrompt = `Search for foods matching: "%s"

Return 3-5 relevant food items with realistic nutrition values for a typical serving.
Include both the exact food and similar alternatives.
For traditional dishes (like plov, osh, pilav), include cultural variants.
Keep AI notes simple and practical (e.g., "Best for lunch", "Avoid late night", "Drink water after").
Be accurate with calorie counts and macros.`

// Item is one food with its nutrition facts.
type Item struct {
	Name        string   `json:"name"`
	Calories    float64  `json:"calories"`
	ServingSize string   `json:"servingSize"`
	Protein     float64  `json:"protein"`
	Carbs       float64  `json:"carbs"`
	Fat         float64  `json:"fat"`
	Ingredients []string `json:"ingredients"`
	AINote      string   `json:"aiNote"`
	BestTime    string   `json:"bestTime"`
}

// SearchRequest is the food search payload.
type SearchRequest struct {
	Query string `json:"query" binding:"required"`
}

// SearchResponse always carries a non-nil list.
type SearchResponse struct {
	Foods []Item `json:"foods"`
}

// Config tunes the food lookup.
type Config struct {
	Model       string
	Temperature float32
	Prompt      string
	MaxResults  int
}

// ChatClient runs schema-constrained completions.
type ChatClient interface {
	CreateChatCompletion(ctx context.Context, req chatgpt.ChatCompletionRequest) (chatgpt.ChatCompletionResponse, error)
}

// Service looks up foods.
type Service interface {
	Search(ctx context.Context, req SearchRequest) (SearchResponse, error)
}

type service struct {
	cfg    Config
	client ChatClient
	logger *slog.Logger
}

// NewService builds the food lookup service.
func NewService(cfg Config, client ChatClient, logger *slog.Logger) Service {
	if cfg.MaxResults <= 0 {
		cfg.MaxResults = defaultMaxResults
	}
	if strings.TrimSpace(cfg.Prompt) == "" {
		cfg.Prompt = DefaultPrompt
	}
	return &service{cfg: cfg, client: client, logger: logger.With("component", "food.service")}
}

// Search returns matching foods. Backend failures and unusable output yield
// an empty list rather than an error.
func (s *service) Search(ctx context.Context, req SearchRequest) (SearchResponse, error) {
	query := strings.Join(strings.Fields(req.Query), " ")
	if query == "" {
		return SearchResponse{}, apperrors.Wrap(apperrors.CodeInvalidInput, "query cannot be empty", nil)
	}
	if runes := []rune(query); len(runes) > maxQueryRunes {
		query = string(runes[:maxQueryRunes])
	}

	empty := SearchResponse{Foods: []Item{}}
	resp, err := s.client.CreateChatCompletion(ctx, chatgpt.ChatCompletionRequest{
		Model:       s.cfg.Model,
		Temperature: s.cfg.Temperature,
		Messages: []chatgpt.Message{
			{Role: "user", Content: fmt.Sprintf(s.cfg.Prompt, query)},
		},
		ResponseFormat: &chatgpt.ResponseFormat{
			Type:       "json_schema",
			JSONSchema: &chatgpt.JSONSchema{Name: "food_search", Strict: true, Schema: schema},
		},
	})
	if err != nil {
		metrics.RecordFoodLookup("degraded")
		s.logger.Error("food lookup failed", "query", query, "error", err)
		return empty, nil
	}
	if len(resp.Choices) == 0 {
		metrics.RecordFoodLookup("degraded")
		s.logger.Warn("food lookup returned no choices", "query", query)
		return empty, nil
	}

	foods, ok := parseFoods(resp.Choices[0].Message.Content, s.cfg.MaxResults)
	if !ok {
		metrics.RecordFoodLookup("degraded")
		s.logger.Warn("food lookup returned malformed content", "query", query)
		return empty, nil
	}
	if len(foods) == 0 {
		metrics.RecordFoodLookup("empty")
	} else {
		metrics.RecordFoodLookup("ok")
	}
	return SearchResponse{Foods: foods}, nil
}

// parseFoods reads the foods array, skipping entries without a name.
func parseFoods(content string, limit int) ([]Item, bool) {
	content = stripFence(content)
	if !gjson.Valid(content) {
		return nil, false
	}
	list := gjson.Get(content, "foods")
	if !list.IsArray() {
		return nil, false
	}
	foods := make([]Item, 0, limit)
	list.ForEach(func(_, v gjson.Result) bool {
		name := strings.TrimSpace(v.Get("name").String())
		if name == "" {
			return true
		}
		ingredients := []string{}
		v.Get("ingredients").ForEach(func(_, ing gjson.Result) bool {
			if s := strings.TrimSpace(ing.String()); s != "" {
				ingredients = append(ingredients, s)
			}
			return true
		})
		foods = append(foods, Item{
			Name:        name,
			Calories:    nonNegative(v.Get("calories").Float()),
			ServingSize: strings.TrimSpace(v.Get("servingSize").String()),
			Protein:     nonNegative(v.Get("protein").Float()),
			Carbs:       nonNegative(v.Get("carbs").Float()),
			Fat:         nonNegative(v.Get("fat").Float()),
			Ingredients: ingredients,
			AINote:      strings.TrimSpace(v.Get("aiNote").String()),
			BestTime:    strings.TrimSpace(v.Get("bestTime").String()),
		})
		return len(foods) < limit
	})
	return foods, true
}

func stripFence(content string) string {
	content = strings.TrimSpace(content)
	if !strings.HasPrefix(content, "```") {
		return content
	}
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	return strings.TrimSpace(strings.TrimSuffix(content, "```"))
}

func nonNegative(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}

var schema = map[string]any{
	"type":                 "object",
	"additionalProperties": false,
	"required":             []string{"foods"},
	"properties": map[string]any{
		"foods": map[string]any{
			"type": "array",
			"items": map[string]any{
				"type":                 "object",
				"additionalProperties": false,
				"required":             []string{"name", "calories", "servingSize", "protein", "carbs", "fat", "ingredients", "aiNote", "bestTime"},
				"properties": map[string]any{
					"name":        map[string]any{"type": "string", "description": "Name of the food"},
					"calories":    map[string]any{"type": "number", "description": "Calories per serving"},
					"servingSize": map[string]any{"type": "string", "description": "Typical serving size"},
					"protein":     map[string]any{"type": "number", "description": "Protein in grams"},
					"carbs":       map[string]any{"type": "number", "description": "Carbohydrates in grams"},
					"fat":         map[string]any{"type": "number", "description": "Fat in grams"},
					"ingredients": map[string]any{"type": "array", "items": map[string]any{"type": "string"}, "description": "Main ingredients"},
					"aiNote":      map[string]any{"type": "string", "description": "Simple practical advice like 'Best for lunch' or 'Drink water after'"},
					"bestTime":    map[string]any{"type": "string", "description": "Best time to eat: morning, lunch, dinner, or snack"},
				},
			},
		},
	},
}
