package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// OpenAI implements the Provider interface for any endpoint speaking the
// OpenAI Chat Completions protocol. Groq and Cerebras are served by the same
// type with a different label and base URL.
type OpenAI struct {
	label   string
	apiKey  string
	model   string
	baseURL string
}

var _ Provider = (*OpenAI)(nil)

// NewOpenAI creates an OpenAI provider.
func NewOpenAI(apiKey, model, baseURL string) *OpenAI {
	if model == "" {
		model = "gpt-4o"
	}
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}
	return NewOpenAICompatible("OpenAI", apiKey, model, baseURL)
}

// NewOpenAICompatible creates a provider for an OpenAI-compatible service.
func NewOpenAICompatible(label, apiKey, model, baseURL string) *OpenAI {
	return &OpenAI{
		label:   label,
		apiKey:  apiKey,
		model:   model,
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

func (o *OpenAI) Name() string {
	return fmt.Sprintf("%s (%s)", o.label, o.model)
}

func (o *OpenAI) Complete(ctx context.Context, system string, history []Message, prompt string) (string, error) {
	type chatMsg struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	}

	msgs := conversation(history, prompt)
	apiMsgs := make([]chatMsg, 0, len(msgs)+1)
	apiMsgs = append(apiMsgs, chatMsg{Role: "system", Content: system})
	for _, m := range msgs {
		apiMsgs = append(apiMsgs, chatMsg(m))
	}

	body := map[string]interface{}{
		"model":           o.model,
		"messages":        apiMsgs,
		"response_format": map[string]string{"type": "json_object"},
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return "", err
	}

	name := strings.ToLower(o.label)
	req, err := http.NewRequestWithContext(ctx, "POST", o.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+o.apiKey)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%s request failed: %w", name, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%s API error (%d): %s", name, resp.StatusCode, string(respBody))
	}

	var result struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(respBody, &result); err != nil {
		return "", fmt.Errorf("%s parse error: %w", name, err)
	}

	if len(result.Choices) == 0 {
		return "", fmt.Errorf("%s returned no choices", name)
	}

	return result.Choices[0].Message.Content, nil
}
