package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/aatumaykin/hive/internal/config"
	"github.com/aatumaykin/hive/internal/llm"
	"github.com/aatumaykin/hive/internal/logger"
	"github.com/spf13/cobra"
)

var testConfigPath string

// testCmd represents the test command
var testCmd = &cobra.Command{
	Use:   "test",
	Short: "Test Hive components",
	Long:  `Run checks against configured components to verify connectivity.`,
}

// testLLMCmd represents the test llm command
var testLLMCmd = &cobra.Command{
	Use:   "llm",
	Short: "Test LLM provider connectivity",
	Long: `Send a test request to the configured completion provider to verify
connectivity. Displays the response, latency and token usage.

Example usage:
  hive test llm
  hive test llm --config custom-config.toml
  hive test llm --model gpt-4o`,
	Run: func(cmd *cobra.Command, args []string) {
		modelOverride, _ := cmd.Flags().GetString("model")

		configPath := testConfigPath
		if configPath == "" {
			configPath = defaultConfigPath
		}

		fmt.Printf("Loading configuration from %s...\n", configPath)
		cfg, err := config.Load(configPath)
		if err != nil {
			fmt.Printf("Failed to load config: %v\n", err)
			os.Exit(1)
		}

		if cfg.LLM.Provider != "openai" {
			fmt.Printf("Provider %q is not testable, only openai is supported\n", cfg.LLM.Provider)
			os.Exit(1)
		}
		if cfg.LLM.OpenAI.APIKey == "" {
			fmt.Println("API key is not configured")
			os.Exit(1)
		}

		log, err := logger.New(logger.Config{
			Level:  cfg.Logging.Level,
			Format: cfg.Logging.Format,
			Output: cfg.Logging.Output,
		})
		if err != nil {
			fmt.Printf("Failed to initialize logger: %v\n", err)
			os.Exit(1)
		}

		provider := llm.NewOpenAIProvider(llm.OpenAIConfig{
			APIKey:         cfg.LLM.OpenAI.APIKey,
			Model:          cfg.LLM.OpenAI.Model,
			Endpoint:       cfg.LLM.OpenAI.Endpoint,
			TimeoutSeconds: cfg.LLM.OpenAI.TimeoutSeconds,
		}, log)

		model := modelOverride
		if model == "" {
			model = provider.GetDefaultModel()
		}
		fmt.Printf("Sending test request with model %s...\n", model)

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		startTime := time.Now()
		resp, err := provider.Chat(ctx, llm.ChatRequest{
			Messages: []llm.Message{
				{Role: llm.RoleUser, Content: "Hello! Reply with one short sentence."},
			},
			Model: model,
		})
		latency := time.Since(startTime)

		if err != nil {
			fmt.Printf("FAILED: %v\n", err)
			fmt.Println("Check the API key, endpoint and network connectivity.")
			os.Exit(1)
		}

		fmt.Println("OK")
		fmt.Printf("Model: %s\n", resp.Model)
		fmt.Printf("Latency: %s\n", latency)
		fmt.Printf("Finish reason: %s\n", resp.FinishReason)
		fmt.Printf("Response: %s\n", resp.Content)
		fmt.Printf("Tokens: %d prompt, %d completion, %d total\n",
			resp.Usage.PromptTokens, resp.Usage.CompletionTokens, resp.Usage.TotalTokens)
	},
}

func init() {
	testCmd.AddCommand(testLLMCmd)

	testLLMCmd.Flags().StringVarP(&testConfigPath, "config", "c", "", "Path to configuration file (default: ./config.toml)")
	testLLMCmd.Flags().StringP("model", "m", "", "Override model to use")
}
