package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/kirillkom/cheese-shop-assistant/internal/core/domain"
	"github.com/kirillkom/cheese-shop-assistant/internal/infrastructure/resilience"
)

// Config carries the OpenAI-compatible endpoint settings. OnUsage, when
// set, receives token counts after every successful completion.
type Config struct {
	APIKey     string
	BaseURL    string
	GenModel   string
	EmbedModel string
	Dimensions int
	Executor   *resilience.Executor
	OnUsage    func(promptTokens, completionTokens int)
}

type Client struct {
	api        *openai.Client
	genModel   string
	embedModel string
	dimensions int
	executor   *resilience.Executor
	onUsage    func(promptTokens, completionTokens int)
}

func New(cfg Config) *Client {
	apiCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		apiCfg.BaseURL = cfg.BaseURL
	}
	executor := cfg.Executor
	if executor == nil {
		executor = resilience.NewExecutor(resilience.DefaultConfig())
	}
	return &Client{
		api:        openai.NewClientWithConfig(apiCfg),
		genModel:   cfg.GenModel,
		embedModel: cfg.EmbedModel,
		dimensions: cfg.Dimensions,
		executor:   executor,
		onUsage:    cfg.OnUsage,
	}
}

// Planner translates a question into a retrieval plan with one JSON-mode
// completion per question.
type Planner struct {
	client *Client
}

func NewPlanner(client *Client) *Planner {
	return &Planner{client: client}
}

func (p *Planner) Plan(ctx context.Context, question string) (domain.QueryPlan, error) {
	content, err := p.client.chat(ctx, "plan", openai.ChatCompletionRequest{
		Model: p.client.genModel,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: plannerSystemPrompt()},
			{Role: openai.ChatMessageRoleUser, Content: question},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Temperature: 0,
	})
	if err != nil {
		return domain.QueryPlan{}, err
	}

	var plan domain.QueryPlan
	if err := json.Unmarshal([]byte(extractJSONObject(content)), &plan); err != nil {
		return domain.QueryPlan{}, domain.WrapError(domain.ErrPlanInvalid, "parse query plan", err)
	}
	return plan, nil
}

type Embedder struct {
	client *Client
}

func NewEmbedder(client *Client) *Embedder {
	return &Embedder{client: client}
}

func (e *Embedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	var vectors [][]float32
	err := e.client.executor.Execute(ctx, "embed", func(ctx context.Context) error {
		resp, err := e.client.api.CreateEmbeddings(ctx, openai.EmbeddingRequest{
			Input:      texts,
			Model:      openai.EmbeddingModel(e.client.embedModel),
			Dimensions: e.client.dimensions,
		})
		if err != nil {
			return err
		}
		if len(resp.Data) != len(texts) {
			return fmt.Errorf("embeddings/texts mismatch: %d/%d", len(resp.Data), len(texts))
		}
		vectors = make([][]float32, len(resp.Data))
		for _, item := range resp.Data {
			vectors[item.Index] = item.Embedding
		}
		return nil
	}, classifyOpenAIError)
	if err != nil {
		return nil, wrapTemporaryIfNeeded("embed", err)
	}
	return vectors, nil
}

func (e *Embedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	vectors, err := e.Embed(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(vectors) == 0 {
		return nil, fmt.Errorf("empty embedding result")
	}
	return vectors[0], nil
}

type Generator struct {
	client *Client
}

func NewGenerator(client *Client) *Generator {
	return &Generator{client: client}
}

func (g *Generator) GenerateAnswer(ctx context.Context, question string, docs []domain.RetrievedDocument) (string, error) {
	return g.client.chat(ctx, "answer", openai.ChatCompletionRequest{
		Model: g.client.genModel,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: answerSystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: buildAnswerPrompt(question, docs)},
		},
	})
}

func (g *Generator) GenerateDecline(ctx context.Context, question string) (string, error) {
	return g.client.chat(ctx, "decline", openai.ChatCompletionRequest{
		Model: g.client.genModel,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: declineSystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: question},
		},
	})
}

func (c *Client) chat(ctx context.Context, operation string, req openai.ChatCompletionRequest) (string, error) {
	var content string
	err := c.executor.Execute(ctx, operation, func(ctx context.Context) error {
		resp, err := c.api.CreateChatCompletion(ctx, req)
		if err != nil {
			return err
		}
		if len(resp.Choices) == 0 {
			return fmt.Errorf("empty %s completion", operation)
		}
		if c.onUsage != nil {
			c.onUsage(resp.Usage.PromptTokens, resp.Usage.CompletionTokens)
		}
		content = strings.TrimSpace(resp.Choices[0].Message.Content)
		return nil
	}, classifyOpenAIError)
	if err != nil {
		return "", wrapTemporaryIfNeeded(operation, err)
	}
	return content, nil
}

func extractJSONObject(raw string) string {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start >= 0 && end > start {
		return raw[start : end+1]
	}
	return raw
}
