// Copyright 2026 Conductor OSS
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with
// the License. You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on
// an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the
// specific language governing permissions and limitations under the License.

package qa

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

// ChatClient is the subset of *openai.Client the generator needs.
type ChatClient interface {
	CreateChatCompletion(ctx context.Context, request openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// ErrNoJSONArray means the model reply held no JSON array.
var ErrNoJSONArray = errors.New("no JSON array in model reply")

const defaultSystemPrompt = "你是一个问答生成助手。"

// RetryPolicy controls retries of rate-limited or failing model calls.
type RetryPolicy struct {
	MaxRetries     int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
}

// DefaultRetryPolicy retries three times, starting at one second.
var DefaultRetryPolicy = RetryPolicy{
	MaxRetries:     3,
	InitialBackoff: time.Second,
	MaxBackoff:     30 * time.Second,
}

// OpenAIGenerator asks an OpenAI-compatible chat model for pairs.
type OpenAIGenerator struct {
	Client       ChatClient
	Model        string
	SystemPrompt string
	Temperature  float32
	MaxTokens    int
	Retry        RetryPolicy

	sleep func(context.Context, time.Duration) error
}

// NewOpenAIGenerator creates a generator for an OpenAI-compatible endpoint.
// An empty baseURL uses the OpenAI API.
func NewOpenAIGenerator(baseURL, apiKey, model string) *OpenAIGenerator {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &OpenAIGenerator{
		Client:      openai.NewClientWithConfig(cfg),
		Model:       model,
		Temperature: 0.7,
		MaxTokens:   2048,
		Retry:       DefaultRetryPolicy,
	}
}

// Generate implements Generator.
func (g *OpenAIGenerator) Generate(ctx context.Context, text string, n int) ([]Pair, error) {
	if g.Client == nil || strings.TrimSpace(g.Model) == "" {
		return nil, errors.New("generator not configured")
	}
	system := g.SystemPrompt
	if strings.TrimSpace(system) == "" {
		system = defaultSystemPrompt
	}
	req := openai.ChatCompletionRequest{
		Model: g.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: buildPrompt(text, n)},
		},
		Temperature: g.Temperature,
		MaxTokens:   g.MaxTokens,
	}

	resp, err := g.call(ctx, req)
	if err != nil {
		return nil, err
	}
	if len(resp.Choices) == 0 {
		return nil, ErrNoJSONArray
	}
	return ParsePairs(resp.Choices[0].Message.Content)
}

func buildPrompt(text string, n int) string {
	return fmt.Sprintf("请根据以下文本内容生成不少于%d个知识性问答对，内容应包括定义、原理、应用、优势、注意事项等，"+
		"并返回一个 JSON 数组，每个元素形如：{\"question\": \"...\", \"answer\": \"...\"}。\n\n"+
		"%s\n\n请确保格式正确、内容准确，并仅返回 JSON 数组。", n, text)
}

// call retries 429 and 5xx responses with exponential backoff.
func (g *OpenAIGenerator) call(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	policy := g.Retry
	backoff := policy.InitialBackoff
	var lastErr error
	for attempt := 0; attempt <= policy.MaxRetries; attempt++ {
		resp, err := g.Client.CreateChatCompletion(ctx, req)
		if err == nil {
			return resp, nil
		}
		lastErr = err
		if !retryable(err) || attempt == policy.MaxRetries {
			break
		}
		if err := g.wait(ctx, backoff); err != nil {
			return openai.ChatCompletionResponse{}, err
		}
		backoff *= 2
		if backoff > policy.MaxBackoff {
			backoff = policy.MaxBackoff
		}
	}
	return openai.ChatCompletionResponse{}, fmt.Errorf("chat completion: %w", lastErr)
}

func (g *OpenAIGenerator) wait(ctx context.Context, d time.Duration) error {
	if g.sleep != nil {
		return g.sleep(ctx, d)
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func retryable(err error) bool {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode == http.StatusTooManyRequests || apiErr.HTTPStatusCode >= 500
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.HTTPStatusCode == http.StatusTooManyRequests || reqErr.HTTPStatusCode >= 500
	}
	return false
}

// ParsePairs extracts the JSON array between the first '[' and the last ']'
// of a model reply. Elements encoded as JSON strings are decoded again;
// elements that are not objects are dropped.
func ParsePairs(content string) ([]Pair, error) {
	start := strings.Index(content, "[")
	end := strings.LastIndex(content, "]")
	if start < 0 || end < start {
		return nil, ErrNoJSONArray
	}
	var items []json.RawMessage
	if err := json.Unmarshal([]byte(content[start:end+1]), &items); err != nil {
		return nil, fmt.Errorf("decode model reply: %w", err)
	}

	pairs := make([]Pair, 0, len(items))
	for _, raw := range items {
		var s string
		if json.Unmarshal(raw, &s) == nil {
			raw = json.RawMessage(s)
		}
		var obj map[string]any
		if err := json.Unmarshal(raw, &obj); err != nil {
			continue
		}
		q, _ := obj["question"].(string)
		a, _ := obj["answer"].(string)
		pairs = append(pairs, Pair{Question: q, Answer: a})
	}
	return pairs, nil
}
