// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the lectic CLI.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/lectic/internal/anthropic"
	"github.com/pdiddy/lectic/internal/secrets"
	"github.com/pdiddy/lectic/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// log is the CLI logger; library packages receive it explicitly.
var log = logrus.New()

// loadedSecrets holds API keys loaded from .secrets/ at startup.
var loadedSecrets secrets.Secrets

// rootCmd reads a lectic, asks the interlocutor for the next turn, and
// writes the reply.
var rootCmd = &cobra.Command{
	Use:   "lectic [file]",
	Short: "Continue a conversation written down as a lectic",
	Long: `lectic reads a lectic document: a YAML header naming an interlocutor,
followed by your text interleaved with the interlocutor's fenced replies.

	---
	interlocutor:
	  name: Bob
	  prompt: Be terse.
	---
	Hello
	::: Bob
	Hi there
	:::

It sends the conversation to the interlocutor's model and prints the
document with the new reply appended. Use - or no argument to read from
standard input.`,
	Args:          cobra.MaximumNArgs(1),
	SilenceUsage:  true,
	RunE:          runRoot,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		verbose, _ := cmd.Flags().GetBool("verbose")
		log.SetOutput(os.Stderr)
		log.SetLevel(logrus.WarnLevel)
		if verbose {
			log.SetLevel(logrus.DebugLevel)
		}

		s, err := secrets.Load(".secrets/", log)
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			log.WithField("count", len(s)).Debug("loaded secrets")
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./lectic.yaml or ~/.config/lectic/lectic.yaml)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "log requests and usage to stderr")

	rootCmd.Flags().BoolP("inplace", "i", false, "append the reply to the file instead of printing")
	rootCmd.Flags().BoolP("short", "s", false, "print only the reply block")
	rootCmd.PersistentFlags().String("model", "", "model to use when the document does not name one")
	cobra.CheckErr(viper.BindPFlag("model", rootCmd.PersistentFlags().Lookup("model")))
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("lectic")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "lectic"))
		}
	}

	viper.SetDefault("model", anthropic.DefaultModel)
	viper.SetDefault("api_key", "")
	viper.SetDefault("max_retries", 3)
	viper.SetDefault("timeout", 120*time.Second)
	viper.SetDefault("api_url", anthropic.DefaultURL)
	viper.SetDefault("data_dir", defaultDataDir())
	viper.SetDefault("usage", true)

	viper.SetEnvPrefix("LECTIC")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		log.WithField("file", viper.ConfigFileUsed()).Debug("using config file")
	}
}

// defaultDataDir is $XDG_DATA_HOME/lectic, falling back to
// ~/.local/share/lectic.
func defaultDataDir() string {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "lectic")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".lectic"
	}
	return filepath.Join(home, ".local", "share", "lectic")
}

// loadConfig reads the merged viper settings and fills in the API key.
func loadConfig() (types.Config, error) {
	var cfg types.Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return cfg, err
	}
	if cfg.APIKey == "" {
		cfg.APIKey, _ = loadedSecrets.Lookup(secrets.AnthropicAPIKey, secrets.AnthropicAPIKeyEnv)
	}
	return cfg, nil
}

// newClient builds the Anthropic client from configuration.
func newClient(cfg types.Config) *anthropic.Client {
	return &anthropic.Client{
		APIKey:     cfg.APIKey,
		Model:      cfg.Model,
		URL:        cfg.APIURL,
		MaxRetries: cfg.MaxRetries,
		HTTP:       &http.Client{Timeout: cfg.Timeout},
		Log:        log,
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}
