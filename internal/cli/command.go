package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"codeberg.org/snonux/vocabtable/internal"
)

var envKeyReplacer = strings.NewReplacer(".", "_")

// CreateRootCommand creates and configures the root cobra command
func CreateRootCommand(flags *Flags) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "vocabtable [input-dir]",
		Short: "HTML vocabulary table to Anki flashcard converter",
		Long: `vocabtable converts HTML vocabulary tables into Anki flashcards.

Every file in the input directory is parsed as a six-column table
(prefix, word with audio, transcription, inflection, translation, reserved).
The header row is skipped, the audio of every row is downloaded into the
media directory and one semicolon-delimited import file is written per input.

Examples:
  vocabtable lessons/                    # Convert every table in lessons/
  vocabtable lessons/ -o deck --apkg     # Also build .apkg packages
  vocabtable lessons/ --inspect          # Only decode, write raw rows`,
		Args:    cobra.MaximumNArgs(1),
		Version: internal.Version,
	}

	setupFlags(rootCmd, flags)

	return rootCmd
}

func setupFlags(cmd *cobra.Command, flags *Flags) {
	// Global flags
	cmd.PersistentFlags().StringVar(&flags.CfgFile, "config", "", "config file (default is $HOME/.vocabtable.yaml)")
	cmd.PersistentFlags().StringVar(&flags.LogLevel, "log-level", flags.LogLevel, "Log level: debug, info, warn, error")

	// Local flags
	cmd.Flags().StringVarP(&flags.OutputDir, "output", "o", flags.OutputDir, "Output directory")
	cmd.Flags().BoolVar(&flags.Archive, "archive", false, "Archive an existing output directory before writing")

	// Export flags
	cmd.Flags().StringVarP(&flags.Mode, "mode", "m", flags.Mode, "Flashcard back format: linebreak or html")
	cmd.Flags().StringVar(&flags.Schema, "schema", flags.Schema, "Table schema version: v1 (transcription required) or v2")
	cmd.Flags().BoolVar(&flags.Inspect, "inspect", false, "Decode only and write raw expression rows, no audio download")
	cmd.Flags().BoolVar(&flags.APKG, "apkg", false, "Also write an .apkg package per input file")
	cmd.Flags().StringVar(&flags.DeckName, "deck-name", flags.DeckName, "Deck name for APKG export")

	// Audio flags
	cmd.Flags().BoolVar(&flags.SkipAudio, "skip-audio", false, "Skip audio download")
	cmd.Flags().StringVar(&flags.AudioBaseURL, "audio-base-url", "", "Base URL for relative audio references (default: read them next to the input file)")
	cmd.Flags().DurationVar(&flags.AudioTimeout, "audio-timeout", flags.AudioTimeout, "Timeout per audio download")
	cmd.Flags().Int64Var(&flags.AudioMaxSize, "audio-max-size", flags.AudioMaxSize, "Maximum audio file size in bytes (0 = unlimited)")

	// Transcription flags
	cmd.Flags().BoolVar(&flags.FillTranscription, "fill-transcription", false, "Fill empty transcriptions using OpenAI")
	cmd.Flags().StringVar(&flags.OpenAIModel, "openai-model", flags.OpenAIModel, "OpenAI chat model for transcriptions")
	cmd.Flags().StringVar(&flags.Language, "language", "", "Language of the vocabulary, used in the transcription prompt")
	cmd.Flags().BoolVar(&flags.ListModels, "list-models", false, "List OpenAI chat models usable for transcriptions and exit")

	bindFlagsToViper(cmd)
}

func bindFlagsToViper(cmd *cobra.Command) {
	viper.BindPFlag("log.level", cmd.PersistentFlags().Lookup("log-level"))
	viper.BindPFlag("output.directory", cmd.Flags().Lookup("output"))
	viper.BindPFlag("export.mode", cmd.Flags().Lookup("mode"))
	viper.BindPFlag("export.schema", cmd.Flags().Lookup("schema"))
	viper.BindPFlag("export.apkg", cmd.Flags().Lookup("apkg"))
	viper.BindPFlag("export.deck_name", cmd.Flags().Lookup("deck-name"))
	viper.BindPFlag("audio.skip", cmd.Flags().Lookup("skip-audio"))
	viper.BindPFlag("audio.base_url", cmd.Flags().Lookup("audio-base-url"))
	viper.BindPFlag("audio.timeout", cmd.Flags().Lookup("audio-timeout"))
	viper.BindPFlag("audio.max_size", cmd.Flags().Lookup("audio-max-size"))
	viper.BindPFlag("transcription.fill", cmd.Flags().Lookup("fill-transcription"))
	viper.BindPFlag("transcription.model", cmd.Flags().Lookup("openai-model"))
	viper.BindPFlag("transcription.language", cmd.Flags().Lookup("language"))
}

// InitConfig initializes viper configuration
func InitConfig(cfgFile string) {
	// A missing .env file is fine
	_ = godotenv.Load()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error getting home directory: %v\n", err)
			return
		}

		// Search config in home directory with name ".vocabtable" (without extension)
		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".vocabtable")
	}

	// Environment variables, e.g. VOCABTABLE_AUDIO_BASE_URL
	viper.SetEnvPrefix("VOCABTABLE")
	viper.SetEnvKeyReplacer(envKeyReplacer)
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// ApplyConfig copies the merged flag, environment and config file values
// into flags. args[0], when given, is the input directory.
func ApplyConfig(flags *Flags, args []string) {
	if dir := viper.GetString("input.directory"); dir != "" {
		flags.InputDir = dir
	}
	if len(args) > 0 {
		flags.InputDir = args[0]
	}

	flags.LogLevel = viper.GetString("log.level")
	flags.OutputDir = viper.GetString("output.directory")
	flags.Mode = viper.GetString("export.mode")
	flags.Schema = viper.GetString("export.schema")
	flags.APKG = viper.GetBool("export.apkg")
	flags.DeckName = viper.GetString("export.deck_name")
	flags.SkipAudio = viper.GetBool("audio.skip")
	flags.AudioBaseURL = viper.GetString("audio.base_url")
	flags.AudioTimeout = viper.GetDuration("audio.timeout")
	flags.AudioMaxSize = viper.GetInt64("audio.max_size")
	flags.FillTranscription = viper.GetBool("transcription.fill")
	flags.OpenAIModel = viper.GetString("transcription.model")
	flags.Language = viper.GetString("transcription.language")
}

// GetOpenAIKey retrieves the OpenAI API key from environment or config
func GetOpenAIKey() string {
	// First check environment variable
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		return key
	}

	// Then check config file
	return viper.GetString("transcription.openai_key")
}
