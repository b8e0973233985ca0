package phonetic

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"

	"codeberg.org/snonux/vocabtable/internal/vocab"
)

// ErrNoAPIKey is returned when no OpenAI API key is configured.
var ErrNoAPIKey = errors.New("OpenAI API key not configured")

// Config configures the transcriber
type Config struct {
	APIKey   string
	Model    string        // Chat model, defaults to gpt-4o
	BaseURL  string        // API endpoint override, e.g. a proxy
	Language string        // Language of the words, used in the prompt
	Timeout  time.Duration // Per-request timeout
}

// DefaultConfig returns default configuration
func DefaultConfig() *Config {
	return &Config{
		Model:   openai.GPT4o,
		Timeout: 30 * time.Second,
	}
}

// Transcriber fetches IPA transcriptions for single words
type Transcriber struct {
	config *Config
	client *openai.Client
}

// NewTranscriber creates a new transcriber
func NewTranscriber(config *Config) *Transcriber {
	if config == nil {
		config = DefaultConfig()
	}
	if config.Model == "" {
		config.Model = openai.GPT4o
	}
	if config.Timeout == 0 {
		config.Timeout = 30 * time.Second
	}

	clientConfig := openai.DefaultConfig(config.APIKey)
	if config.BaseURL != "" {
		clientConfig.BaseURL = config.BaseURL
	}

	return &Transcriber{
		config: config,
		client: openai.NewClientWithConfig(clientConfig),
	}
}

// Transcribe returns the IPA transcription of word, without delimiters
func (t *Transcriber) Transcribe(ctx context.Context, word string) (string, error) {
	if t.config.APIKey == "" {
		return "", ErrNoAPIKey
	}

	ctx, cancel := context.WithTimeout(ctx, t.config.Timeout)
	defer cancel()

	language := t.config.Language
	if language == "" {
		language = "the given"
	}

	req := openai.ChatCompletionRequest{
		Model: t.config.Model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: fmt.Sprintf("You are a phonetics expert for %s language. Reply with the IPA transcription of the word only, including stress marks, without slashes, brackets or explanations.", language),
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: word,
			},
		},
		Temperature: 0,
		MaxTokens:   50,
	}

	resp, err := t.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("OpenAI API error: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response from OpenAI")
	}

	transcription := cleanTranscription(resp.Choices[0].Message.Content)
	if transcription == "" {
		return "", fmt.Errorf("empty transcription for %q", word)
	}
	return transcription, nil
}

// Fill transcribes every expression with an empty transcription in place and
// returns how many were filled. It stops at the first failure.
func (t *Transcriber) Fill(ctx context.Context, expressions []vocab.Expression) (int, error) {
	filled := 0
	for i := range expressions {
		if expressions[i].Transcription != "" {
			continue
		}

		transcription, err := t.Transcribe(ctx, expressions[i].Word)
		if err != nil {
			return filled, fmt.Errorf("failed to transcribe %q: %w", expressions[i].Word, err)
		}
		expressions[i].Transcription = transcription
		filled++
	}
	return filled, nil
}

// cleanTranscription strips the delimiters models tend to add anyway
func cleanTranscription(s string) string {
	s = strings.TrimSpace(s)
	if line, _, found := strings.Cut(s, "\n"); found {
		s = strings.TrimSpace(line)
	}
	return strings.Trim(s, "/[] ")
}
