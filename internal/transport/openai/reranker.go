package openai

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	gobreaker "github.com/sony/gobreaker/v2"
	"go.uber.org/zap"

	"github.com/skillmatch-cloud/skillmatch/internal/domain"
)

// Reranker orders candidates by contextual relevance using a chat-completion
// model. A circuit breaker fails fast while the provider is misbehaving so
// the pipeline falls back to similarity order without burning the timeout.
type Reranker struct {
	client *openai.Client
	model  string
	cb     *gobreaker.CircuitBreaker[[]string]
	logger *zap.Logger
}

// RerankerConfig holds the rerank provider settings.
type RerankerConfig struct {
	APIKey      string
	BaseURL     string
	Model       string
	MaxFailures uint32
	Cooldown    time.Duration
	Logger      *zap.Logger
}

// NewReranker creates a chat-completion reranker with circuit breaking.
func NewReranker(cfg *RerankerConfig) *Reranker {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	logger := cfg.Logger

	maxFailures := cfg.MaxFailures
	if maxFailures == 0 {
		maxFailures = 3
	}
	cooldown := cfg.Cooldown
	if cooldown <= 0 {
		cooldown = 30 * time.Second
	}

	cb := gobreaker.NewCircuitBreaker[[]string](gobreaker.Settings{
		Name:        "rerank-llm",
		MaxRequests: 1,
		Timeout:     cooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Info("Rerank circuit state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})

	return &Reranker{
		client: openai.NewClientWithConfig(clientCfg),
		model:  cfg.Model,
		cb:     cb,
		logger: logger,
	}
}

// Rank returns candidate IDs in relevance order, most relevant first. The
// model sees a numbered list and answers with comma-separated positions;
// unparseable or out-of-range positions are dropped. Any provider failure,
// including an open circuit, maps to domain.ErrRerankUnavailable.
func (r *Reranker) Rank(ctx context.Context, query string, candidates []*domain.Assessment) ([]string, error) {
	if len(candidates) == 0 {
		return nil, nil
	}

	prompt := buildRankPrompt(query, candidates)

	ids, err := r.cb.Execute(func() ([]string, error) {
		return r.rank(ctx, prompt, candidates)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("rerank circuit open: %w", domain.ErrRerankUnavailable)
		}
		return nil, err
	}
	return ids, nil
}

func (r *Reranker) rank(ctx context.Context, prompt string, candidates []*domain.Assessment) ([]string, error) {
	resp, err := r.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: r.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: 0,
	})
	if err != nil {
		return nil, fmt.Errorf("rerank completion: %w: %w", domain.ErrRerankUnavailable, err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("empty rerank response: %w", domain.ErrRerankUnavailable)
	}

	ids := parseRanking(resp.Choices[0].Message.Content, candidates)
	if len(ids) == 0 {
		return nil, fmt.Errorf("unparseable rerank response: %w", domain.ErrRerankUnavailable)
	}
	return ids, nil
}

// buildRankPrompt renders the query and a numbered candidate list. The model
// answers with positions only, which keeps parsing trivial and token use low.
func buildRankPrompt(query string, candidates []*domain.Assessment) string {
	var b strings.Builder

	b.WriteString("Given this job requirement query:\n")
	b.WriteString("\"" + query + "\"\n\n")
	b.WriteString("Rank these assessments from most to least relevant:\n")

	for i, c := range candidates {
		duration := "N/A"
		if c.HasKnownDuration() {
			duration = strconv.Itoa(c.DurationMinutes)
		}
		fmt.Fprintf(&b, "%d. %s (Type: %s, Duration: %s min)\n",
			i+1, c.Name, c.Category.DisplayName(), duration)
	}

	b.WriteString("\nReturn ONLY the numbers of the assessments in order of relevance, separated by commas.\n")
	b.WriteString("Example: 3,1,7,2,5\n\n")
	b.WriteString("Consider:\n")
	b.WriteString("1. Direct relevance to skills mentioned\n")
	b.WriteString("2. Balance between technical and soft skills if both are needed\n")
	b.WriteString("3. Appropriate for the role level\n\n")
	b.WriteString("Numbers only, comma-separated:")

	return b.String()
}

// parseRanking converts "3,1,7" into candidate IDs. Positions are 1-based.
// Duplicates keep their first occurrence; garbage tokens are skipped.
func parseRanking(text string, candidates []*domain.Assessment) []string {
	seen := make(map[int]bool, len(candidates))
	ids := make([]string, 0, len(candidates))

	for _, tok := range strings.Split(strings.TrimSpace(text), ",") {
		n, err := strconv.Atoi(strings.TrimSpace(tok))
		if err != nil {
			continue
		}
		idx := n - 1
		if idx < 0 || idx >= len(candidates) || seen[idx] {
			continue
		}
		seen[idx] = true
		ids = append(ids, candidates[idx].ID)
	}

	return ids
}
