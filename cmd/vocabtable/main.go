package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"codeberg.org/snonux/vocabtable/internal/cli"
	"codeberg.org/snonux/vocabtable/internal/phonetic"
	"codeberg.org/snonux/vocabtable/internal/processor"
)

func main() {
	// Create flags instance
	flags := cli.NewFlags()

	// Create root command
	rootCmd := cli.CreateRootCommand(flags)

	// Set up command initialization
	cobra.OnInitialize(func() {
		cli.InitConfig(flags.CfgFile)
	})

	// Set the run function
	rootCmd.RunE = func(cmd *cobra.Command, args []string) error {
		return runCommand(cmd, args, flags)
	}

	// Execute command
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runCommand(cmd *cobra.Command, args []string, flags *cli.Flags) error {
	cli.ApplyConfig(flags, args)

	// Handle --list-models flag
	if flags.ListModels {
		return listModels(cmd.Context(), flags)
	}

	if err := flags.Validate(); err != nil {
		return err
	}

	// Usage is only useful for flag errors
	cmd.SilenceUsage = true

	logger, err := cli.NewLogger(flags.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	proc, err := processor.NewProcessor(flags, logger)
	if err != nil {
		return fmt.Errorf("failed to set up processor: %w", err)
	}

	logger.Debug("starting run",
		zap.String("input", flags.InputDir),
		zap.String("output", flags.OutputDir),
		zap.String("mode", flags.Mode),
		zap.String("schema", flags.Schema),
	)

	if _, err := proc.Run(ctx); err != nil {
		return err
	}

	fmt.Printf("\nDone! Flashcards saved to: %s\n", flags.OutputDir)
	return nil
}

func listModels(ctx context.Context, flags *cli.Flags) error {
	transcriber := phonetic.NewTranscriber(&phonetic.Config{APIKey: cli.GetOpenAIKey()})

	models, err := transcriber.ChatModels(ctx)
	if err != nil {
		return err
	}

	fmt.Println("Chat models usable with --openai-model:")
	if len(models) == 0 {
		fmt.Println("  No chat models found")
	}
	for _, model := range models {
		marker := ""
		if model == flags.OpenAIModel {
			marker = " (selected)"
		}
		fmt.Printf("  %s%s\n", model, marker)
	}
	return nil
}
