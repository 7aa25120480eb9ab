package summary

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/sashabaranov/go-openai"
	"github.com/sony/gobreaker"

	"github.com/i474232898/resort-picker/internal/fetch"
	"github.com/i474232898/resort-picker/internal/recommend"
)

const (
	summaryMaxTokens = 500
	explainMaxTokens = 150
	temperature      = 0.7
)

// NoRecommendations is returned for an empty list instead of calling the model.
const NoRecommendations = "Unfortunately, I couldn't generate recommendations at this time. Please try again later."

var (
	ErrNotConfigured = errors.New("summarizer not configured")
	ErrEmptyResponse = errors.New("empty completion")
)

// Config holds the Azure OpenAI deployment settings.
type Config struct {
	Endpoint   string
	APIKey     string
	Deployment string
	APIVersion string

	// Origin is named in prompts as the travel start.
	Origin string
}

func (c Config) Configured() bool {
	return c.Endpoint != "" && c.APIKey != ""
}

type chatCompleter interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// Summarizer writes recommendation narratives with a chat completion model.
type Summarizer struct {
	client  chatCompleter
	model   string
	origin  string
	circuit *gobreaker.CircuitBreaker
}

// NewAzure builds a Summarizer for an Azure OpenAI deployment.
func NewAzure(cfg Config, httpClient *http.Client) (*Summarizer, error) {
	if !cfg.Configured() {
		return nil, ErrNotConfigured
	}

	oc := openai.DefaultAzureConfig(cfg.APIKey, cfg.Endpoint)
	if cfg.APIVersion != "" {
		oc.APIVersion = cfg.APIVersion
	}
	deployment := cfg.Deployment
	oc.AzureModelMapperFunc = func(string) string {
		return deployment
	}
	if httpClient != nil {
		oc.HTTPClient = httpClient
	}

	return newSummarizer(openai.NewClientWithConfig(oc), cfg.Deployment, cfg.Origin), nil
}

func newSummarizer(client chatCompleter, model, origin string) *Summarizer {
	if origin == "" {
		origin = recommend.DefaultOrigin
	}
	return &Summarizer{
		client:  client,
		model:   model,
		origin:  origin,
		circuit: fetch.NewBreaker("azure-openai"),
	}
}

// Summarize recommends where to go among the top results.
func (s *Summarizer) Summarize(ctx context.Context, top []recommend.Recommendation, weekend string) (string, error) {
	if len(top) == 0 {
		return NoRecommendations, nil
	}

	system := "You are a helpful ski trip planning assistant for Magic Pass holders in Switzerland. " +
		"You help people decide which resort to visit based on weather, snow conditions, and travel logistics from " + s.origin + "."

	text, err := s.complete(ctx, system, summaryPrompt(top, weekend, s.origin), summaryMaxTokens)
	if err != nil {
		return "", fmt.Errorf("summarize: %w", err)
	}
	log.Printf("INFO: generated AI recommendation summary")
	return text, nil
}

// Explain says briefly why a resort got its score.
func (s *Summarizer) Explain(ctx context.Context, rec recommend.Recommendation) (string, error) {
	system := "You are a helpful ski trip planning assistant. Give brief, practical explanations."

	text, err := s.complete(ctx, system, explainPrompt(rec, s.origin), explainMaxTokens)
	if err != nil {
		return "", fmt.Errorf("explain %s: %w", rec.Resort.ID, err)
	}
	return text, nil
}

func (s *Summarizer) complete(ctx context.Context, system, prompt string, maxTokens int) (string, error) {
	result, err := s.circuit.Execute(func() (interface{}, error) {
		return s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
			Model: s.model,
			Messages: []openai.ChatCompletionMessage{
				{Role: openai.ChatMessageRoleSystem, Content: system},
				{Role: openai.ChatMessageRoleUser, Content: prompt},
			},
			MaxTokens:   maxTokens,
			Temperature: temperature,
		})
	})
	if err != nil {
		return "", fetch.BreakerError("azure-openai", err)
	}

	resp := result.(openai.ChatCompletionResponse)
	if len(resp.Choices) == 0 {
		return "", ErrEmptyResponse
	}
	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}
