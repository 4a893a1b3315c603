package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/zhouliangjun/rag-project03-audit/internal/core/domain"
	"github.com/zhouliangjun/rag-project03-audit/internal/core/ports/driven"
)

var (
	generateProvider  string
	generateModel     string
	generateReasoning bool
	generatePromptKey bool
	generateSavedID   string
)

var generateCmd = &cobra.Command{
	Use:   "generate [query]",
	Short: "Generate an answer from retrieved context",
	Long: `Generates an LLM answer using search results as context.

Context comes from the last successful search in this session, or from
a saved result set via --from-saved. Without a query argument the
search's own query is reused. Use --api-key to be prompted (without
echo) for a provider key that overrides the server-side default.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runGenerate,
}

var generateListModels bool

func init() {
	generateCmd.Flags().StringVarP(&generateProvider, "provider", "p", "openai", "generation provider")
	generateCmd.Flags().StringVarP(&generateModel, "model", "m", "", "model name (required unless --list)")
	generateCmd.Flags().BoolVar(&generateReasoning, "reasoning", false, "show the model's reasoning trace when available")
	generateCmd.Flags().BoolVar(&generatePromptKey, "api-key", false, "prompt for a provider API key")
	generateCmd.Flags().StringVar(&generateSavedID, "from-saved", "", "load generation context from a saved search result")
	generateCmd.Flags().BoolVar(&generateListModels, "list", false, "list available models and exit")
	rootCmd.AddCommand(generateCmd)
}

func runGenerate(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	if generateListModels {
		if backendClient == nil {
			return errors.New("backend client not configured")
		}
		models, err := backendClient.ListModels(ctx)
		if err != nil {
			return fmt.Errorf("failed to list models: %w", err)
		}
		providers := make([]string, 0, len(models))
		for p := range models {
			providers = append(providers, p)
		}
		sort.Strings(providers)
		for _, p := range providers {
			cmd.Printf("%s:\n", p)
			ids := make([]string, 0, len(models[p]))
			for id := range models[p] {
				ids = append(ids, id)
			}
			sort.Strings(ids)
			for _, id := range ids {
				cmd.Printf("  %s  %s\n", id, models[p][id])
			}
		}
		return nil
	}

	if pipelineService == nil {
		return errors.New("pipeline service not configured")
	}

	input, err := generationInput(ctx)
	if err != nil {
		return err
	}

	query := input.Query
	if len(args) > 0 {
		query = args[0]
	}

	apiKey := ""
	if generatePromptKey {
		apiKey, err = promptAPIKey(cmd)
		if err != nil {
			return err
		}
	}

	result, err := pipelineService.Generate(ctx, driven.GenerateRequest{
		Query:         query,
		Provider:      generateProvider,
		ModelName:     generateModel,
		SearchResults: input.Results,
		APIKey:        apiKey,
		ShowReasoning: generateReasoning,
	})
	if err != nil {
		return fmt.Errorf("generate failed: %w", err)
	}

	cmd.Println(result.Response)
	if result.SavedFilepath != "" {
		cmd.Printf("\nSaved to: %s\n", result.SavedFilepath)
	}
	return nil
}

// generationInput resolves the context payload: a saved result set when
// --from-saved is given, the session handoff otherwise.
func generationInput(ctx context.Context) (*domain.GenerationInput, error) {
	if generateSavedID != "" {
		if backendClient == nil {
			return nil, errors.New("backend client not configured")
		}
		saved, err := backendClient.GetSearchResults(ctx, generateSavedID)
		if err != nil {
			return nil, fmt.Errorf("failed to load saved search: %w", err)
		}
		return &domain.GenerationInput{Query: saved.Query, Results: saved.Results}, nil
	}

	input := pipelineService.Handoff()
	if input == nil {
		return nil, fmt.Errorf("%w: no search results to generate from; run a search first", domain.ErrValidationDeclined)
	}
	return input, nil
}

func promptAPIKey(cmd *cobra.Command) (string, error) {
	cmd.Print("API key: ")
	key, err := term.ReadPassword(int(os.Stdin.Fd()))
	cmd.Println()
	if err != nil {
		return "", fmt.Errorf("failed to read API key: %w", err)
	}
	return string(key), nil
}
