package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/healthsites/localityd/client"
)

// Build-time variables set via ldflags.
var (
	version   = "1.0.0"
	commit    = ""
	buildDate = ""
)

var (
	apiClient *client.Client
	flagURL   string
	flagKey   string
	flagFmt   string
)

const defaultServerURL = "http://localhost:3060"

func versionString() string {
	if commit != "" && buildDate != "" {
		return fmt.Sprintf("locality version %s (commit: %s, built: %s)", version, commit, buildDate)
	}
	return fmt.Sprintf("locality version %s-dev", version)
}

type configFile struct {
	URL    string `yaml:"url"`
	APIKey string `yaml:"api_key"`
}

func main() {
	rootCmd := &cobra.Command{
		Use:     "locality",
		Short:   "Locality CLI — crowdsourced health facility mapping",
		Version: versionString(),
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			resolveConfig()
			var opts []client.Option
			if flagKey != "" {
				opts = append(opts, client.WithAPIKey(flagKey))
			}
			apiClient = client.New(flagURL, opts...)
		},
		SilenceUsage: true,
	}
	rootCmd.SetVersionTemplate("{{.Version}}\n")

	rootCmd.PersistentFlags().StringVar(&flagURL, "url", defaultServerURL, "localityd server URL (env: LOCALITYD_URL)")
	rootCmd.PersistentFlags().StringVar(&flagKey, "api-key", "", "API key (env: LOCALITYD_API_KEY)")
	rootCmd.PersistentFlags().StringVar(&flagFmt, "format", "json", "Output format: json|table|quiet")

	initCmd := newInitCmd()
	initCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {} // skip client setup

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(newLocalityCmd())
	rootCmd.AddCommand(newSearchCmd())
	rootCmd.AddCommand(newStatsCmd())
	rootCmd.AddCommand(newAttributeCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func resolveConfig() {
	// Flag takes precedence, then env, then config file.
	if flagURL == defaultServerURL {
		if v := os.Getenv("LOCALITYD_URL"); v != "" {
			flagURL = v
		}
	}
	if flagKey == "" {
		flagKey = os.Getenv("LOCALITYD_API_KEY")
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return
	}
	cfgPath := filepath.Join(home, ".localityd", "config.yaml")
	data, err := os.ReadFile(cfgPath)
	if err != nil {
		return
	}
	var cfg configFile
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return
	}
	if flagURL == defaultServerURL && cfg.URL != "" {
		flagURL = cfg.URL
	}
	if flagKey == "" && cfg.APIKey != "" {
		flagKey = cfg.APIKey
	}
}

func fatal(msg string, err error) {
	fmt.Fprintf(os.Stderr, "Error: %s: %v\n", msg, err)
	os.Exit(1)
}
