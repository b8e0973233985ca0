package phonetic

import (
	"context"
	"fmt"
	"sort"
	"strings"
)

// ChatModels lists the chat model IDs available to the API key, sorted.
// Any of them can be used as the transcription model.
func (t *Transcriber) ChatModels(ctx context.Context) ([]string, error) {
	if t.config.APIKey == "" {
		return nil, ErrNoAPIKey
	}

	models, err := t.client.ListModels(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list models: %w", err)
	}

	var chatModels []string
	for _, model := range models.Models {
		id := model.ID
		if strings.Contains(id, "tts") || strings.Contains(id, "audio") || strings.Contains(id, "realtime") {
			continue
		}
		if strings.Contains(id, "gpt") || strings.Contains(id, "chat") {
			chatModels = append(chatModels, id)
		}
	}

	sort.Strings(chatModels)
	return chatModels, nil
}
