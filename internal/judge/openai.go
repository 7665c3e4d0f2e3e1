package judge

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/ericogr/chimera-battle/internal/constants"
	"github.com/ericogr/chimera-battle/internal/logging"
)

const judgeSystemPrompt = `You are the judge of a turn-based card battle. Describe what happens in one short paragraph.
Numerical consequences must be written as bracketed effects, for example [Slime A: damaged 5],
[celine: shield 3 | crit 0.5], [draw 2 | delay 1] or [transform <ref> to <Name: new description>].
Statuses are granted as [target: +name [N turns] [me: damaged {:d}] -> [me: damaged {{m[0] * 1.25}}];].
Answer with a JSON object with the keys "reason", "results" and "significance" (1 to 3).`

const interpretSystemPrompt = `You explain status effects of a card game. Describe the status in one plain sentence without repeating its name, for example: "takes 1 damage at the end of each turn."`

// OpenAI talks to the chat completions endpoint. It implements both Judge
// and Interpreter.
type OpenAI struct {
	APIKey  string
	Model   string
	BaseURL string
	Client  *http.Client
}

func NewOpenAI(apiKey string) *OpenAI {
	return &OpenAI{
		APIKey:  apiKey,
		Model:   constants.OpenAIChatModel,
		BaseURL: constants.OpenAIBaseURL,
		Client:  &http.Client{Timeout: 60 * time.Second},
	}
}

// chat sends one system+user exchange and returns the first choice's text.
func (o *OpenAI) chat(ctx context.Context, system, user string, jsonMode bool) (string, error) {
	if o.APIKey == "" {
		return "", fmt.Errorf("%s not set", constants.EnvOpenAIAPIKey)
	}
	payload := map[string]interface{}{
		"model": o.Model,
		"messages": []map[string]string{
			{"role": "system", "content": system},
			{"role": "user", "content": user},
		},
		"max_completion_tokens": 3100,
		"service_tier":          "default",
	}
	if jsonMode {
		payload["response_format"] = map[string]string{"type": "json_object"}
	}

	b, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.BaseURL+constants.OpenAIChatCompletionsPath, bytes.NewBuffer(b))
	if err != nil {
		return "", err
	}
	req.Header.Set(constants.HeaderAuthorization, constants.BearerPrefix+o.APIKey)
	req.Header.Set(constants.HeaderContentType, constants.ContentTypeJSON)

	resp, err := o.Client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("openai error: %d %s", resp.StatusCode, string(body))
	}

	var out struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", err
	}
	if len(out.Choices) == 0 {
		return "", fmt.Errorf("empty response from OpenAI")
	}
	return strings.TrimSpace(out.Choices[0].Message.Content), nil
}

func (o *OpenAI) Judge(ctx context.Context, req Request) (Result, error) {
	prompt, err := json.MarshalIndent(req, "", "  ")
	if err != nil {
		return Result{}, err
	}
	logging.Debug("judge openai prompt", logging.Fields{"prompt": string(prompt)})
	content, err := o.chat(ctx, judgeSystemPrompt, string(prompt), true)
	if err != nil {
		return Result{}, err
	}
	var r Result
	if err := json.Unmarshal([]byte(content), &r); err != nil {
		return Result{}, fmt.Errorf("decode judge result: %w", err)
	}
	logging.Info("judge openai success", logging.Fields{"significance": r.Significance})
	return r.Normalize(), nil
}

func (o *OpenAI) Interpret(ctx context.Context, name, rule string) (string, error) {
	prompt := fmt.Sprintf("Status name: %s\nRewrite rule: %s", name, rule)
	content, err := o.chat(ctx, interpretSystemPrompt, prompt, false)
	if err != nil {
		return "", err
	}
	// first line only, without surrounding quotes
	if idx := strings.Index(content, "\n"); idx >= 0 {
		content = content[:idx]
	}
	return strings.Trim(content, "\"' "), nil
}
