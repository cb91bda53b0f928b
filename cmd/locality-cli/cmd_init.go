package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func newInitCmd() *cobra.Command {
	var (
		initURL    string
		initAPIKey string
	)

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Set up Locality CLI configuration",
		Long:  "Interactive setup wizard that creates ~/.localityd/config.yaml",
		RunE: func(cmd *cobra.Command, args []string) error {
			nonInteractive := initURL != "" || initAPIKey != ""
			return runInit(initURL, initAPIKey, nonInteractive)
		},
	}

	cmd.Flags().StringVar(&initURL, "url", "", "Server URL (non-interactive mode)")
	cmd.Flags().StringVar(&initAPIKey, "api-key", "", "API key (non-interactive mode)")
	return cmd
}

func runInit(url, apiKey string, nonInteractive bool) error {
	if !nonInteractive {
		fmt.Println("\n  Locality Setup")
		fmt.Println("  ──────────────")
		fmt.Println()

		reader := bufio.NewReader(os.Stdin)

		fmt.Printf("  Server URL [%s]: ", defaultServerURL)
		line, _ := reader.ReadString('\n')
		line = strings.TrimSpace(line)
		if line != "" {
			url = line
		}

		fmt.Print("  API Key (optional, needed for edits): ")
		keyLine, _ := reader.ReadString('\n')
		apiKey = strings.TrimSpace(keyLine)
	}

	if url == "" {
		url = defaultServerURL
	}

	// Test connection. Reads are public, so a key is not required here.
	if !nonInteractive {
		fmt.Print("\n  Testing connection... ")
	}

	ver, err := testConnection(url)
	if err != nil {
		if !nonInteractive {
			fmt.Println("✗")
		}
		return fmt.Errorf("connection failed: %w", err)
	}

	if !nonInteractive {
		fmt.Printf("✓ Connected (v%s)\n", ver)
	}

	cfgPath, err := writeConfig(url, apiKey)
	if err != nil {
		return fmt.Errorf("write config: %w", err)
	}

	if nonInteractive {
		fmt.Printf("Config saved to %s\n", cfgPath)
	} else {
		fmt.Printf("\n  ✓ Config saved to %s\n", cfgPath)
		fmt.Println()
		fmt.Println("  Next steps:")
		fmt.Println("    locality stats           # Dataset overview")
		fmt.Println("    locality attribute list  # See attribute schema")
		fmt.Println("    locality --help          # See all commands")
		fmt.Println()
	}

	return nil
}

func testConnection(url string) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url+"/api/v1/health", nil)
	if err != nil {
		return "", err
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("server returned %d", resp.StatusCode)
	}

	var health struct {
		Version string `json:"version"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&health); err != nil {
		return "", err
	}
	if health.Version == "" {
		health.Version = "unknown"
	}
	return health.Version, nil
}

func writeConfig(url, apiKey string) (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}

	dir := filepath.Join(home, ".localityd")
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", err
	}

	cfg := configFile{URL: url, APIKey: apiKey}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return "", err
	}

	cfgPath := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(cfgPath, data, 0o600); err != nil {
		return "", err
	}

	return cfgPath, nil
}
