package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"nimctl/internal/nimapi"
	"nimctl/pkg/types"
)

// chatOptions mirror the request fields a notebook cell would set.
type chatOptions struct {
	Model       string
	System      string
	MaxTokens   int
	Temperature float64
	TopP        float64
	Stream      bool
	Hosted      bool
}

// chat sends one prompt and prints the completion. Streamed fragments are
// printed as they arrive; the full text is not retained beyond printing.
func chat(ctx context.Context, cfg *Config, opts chatOptions, prompt string) error {
	if strings.TrimSpace(prompt) == "" {
		return fmt.Errorf("prompt is required")
	}

	var client *nimapi.Client
	if opts.Hosted {
		loadEnvFile(cfg, false)
		key := os.Getenv("NVIDIA_API_KEY")
		if key == "" {
			return fmt.Errorf("NVIDIA_API_KEY is not set; put it in %s or the environment", cfg.EnvFile)
		}
		client = nimapi.New(nimapi.DefaultHostedURL, nimapi.WithAPIKey(key))
	} else {
		client = newClient(cfg)
	}

	model := opts.Model
	if model == "" {
		model = cfg.DefaultModel
	}
	if model == "" {
		// fall back to the first model the server reports
		ml, err := client.ListModels(ctx)
		if err != nil {
			return fmt.Errorf("no model given and listing failed: %w", err)
		}
		if len(ml.Data) == 0 {
			return fmt.Errorf("no model given and the server reports none")
		}
		model = ml.Data[0].ID
		logger.Debug().Str("model", model).Msg("using first reported model")
	}

	req := types.ChatCompletionRequest{
		Model:       model,
		MaxTokens:   opts.MaxTokens,
		Temperature: opts.Temperature,
		TopP:        opts.TopP,
	}
	if opts.System != "" {
		req.Messages = append(req.Messages, types.ChatMessage{Role: "system", Content: opts.System})
	}
	req.Messages = append(req.Messages, types.ChatMessage{Role: "user", Content: prompt})

	if opts.Stream {
		_, err := client.ChatCompletionStream(ctx, req, func(delta string) {
			fmt.Print(delta)
		})
		fmt.Println()
		return err
	}

	resp, err := client.ChatCompletion(ctx, req)
	if err != nil {
		return err
	}
	for _, c := range resp.Choices {
		fmt.Println(c.Message.Content)
	}
	if resp.Usage != nil {
		logger.Debug().Int("prompt_tokens", resp.Usage.PromptTokens).Int("completion_tokens", resp.Usage.CompletionTokens).Msg("usage")
	}
	return nil
}
