// ABOUTME: AI-powered generator for realistic provider fixtures.
// ABOUTME: Uses OpenAI when a key is configured and falls back to static data otherwise.

package seed

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/2389/provadmin/internal/store"
	"github.com/sashabaranov/go-openai"
	"golang.org/x/sync/errgroup"
)

const defaultModel = "gpt-5-mini"

// chatClient is the slice of the OpenAI client the generator calls.
type chatClient interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// Generator creates provider data using OpenAI or falls back to static data.
type Generator struct {
	client chatClient
	useAI  bool
	model  string
}

// NewGenerator creates a generator. An empty apiKey selects static data.
func NewGenerator(apiKey, model string) *Generator {
	g := &Generator{model: model}
	if g.model == "" {
		g.model = defaultModel
	}

	if apiKey != "" {
		g.client = openai.NewClient(apiKey)
		g.useAI = true
		log.Printf("OpenAI API key found, using AI-generated data with model: %s", g.model)
	} else {
		log.Println("No OPENAI_API_KEY found, using static fallback data")
	}

	return g
}

// ProviderData is one generated provider. Tags follow the backend wire names.
type ProviderData struct {
	Name     string `json:"nombre"`
	Category string `json:"categoria"`
	Phone    string `json:"telefono"`
	Email    string `json:"email"`
}

// Generate returns count providers for each restaurant, keyed by restaurant
// id. Restaurants are generated in parallel; any AI failure falls back to
// static data for the whole batch.
func (g *Generator) Generate(ctx context.Context, rs []store.Restaurant, count int) map[int64][]ProviderData {
	if !g.useAI {
		return generateStatic(rs, count)
	}

	log.Printf("Generating %d providers for %d restaurants via AI...", count, len(rs))

	results := make([][]ProviderData, len(rs))
	eg, egCtx := errgroup.WithContext(ctx)
	for i, r := range rs {
		eg.Go(func() error {
			providers, err := g.generateProviders(egCtx, r, count)
			if err != nil {
				return fmt.Errorf("%s: %w", r.Name, err)
			}
			results[i] = providers
			log.Printf("  ✓ Generated %d providers for %s", len(providers), r.Name)
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		log.Printf("  ✗ AI generation failed: %v", err)
		log.Print("AI generation incomplete, falling back to static data...")
		return generateStatic(rs, count)
	}

	out := make(map[int64][]ProviderData, len(rs))
	for i, r := range rs {
		out[r.ID] = results[i]
	}
	log.Print("AI generation complete!")
	return out
}

func (g *Generator) generateProviders(ctx context.Context, r store.Restaurant, count int) ([]ProviderData, error) {
	prompt := fmt.Sprintf(`Generate %d realistic suppliers for a restaurant called %q in %s, Spain. Include a mix of:
- Fresh produce, fish and meat wholesalers
- Bakeries and dairy
- Drinks distributors
- Cleaning and maintenance services

Return as JSON array with objects containing: nombre, categoria, telefono, email.
Names and categories must be in Spanish. Phone numbers use the Spanish format (9 digits, may start with +34).
Emails must be valid addresses on plausible .es or .com domains.`, count, r.Name, r.City)

	return callOpenAI[[]ProviderData](ctx, g.client, g.model, prompt)
}

func callOpenAI[T any](ctx context.Context, client chatClient, model, prompt string) (T, error) {
	var result T

	resp, err := client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: "You are a data generator. Always respond with valid JSON only, no markdown or explanation.",
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
	})
	if err != nil {
		return result, fmt.Errorf("OpenAI API error: %w", err)
	}

	if len(resp.Choices) == 0 {
		return result, fmt.Errorf("no response from OpenAI")
	}

	content := resp.Choices[0].Message.Content
	if err := json.Unmarshal([]byte(content), &result); err != nil {
		return result, fmt.Errorf("failed to parse JSON response: %w", err)
	}

	return result, nil
}
