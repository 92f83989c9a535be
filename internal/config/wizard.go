package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/manifoldco/promptui"
)

// RunWizard runs an interactive configuration wizard, saves the result to
// path and returns it.
func RunWizard(path string) (*Config, error) {
	fmt.Println("Welcome to the SDK example gallery! Let's configure it.")
	fmt.Println()

	cfg := DefaultConfig()

	// 1. AI provider.
	providerPrompt := promptui.Select{
		Label: "Select AI chat provider",
		Items: []string{"openai", "ollama", "none"},
	}
	_, providerStr, err := providerPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("provider selection: %w", err)
	}
	cfg.AI.Provider = ProviderType(providerStr)
	cfg.AI.Model = DefaultModel(cfg.AI.Provider)

	// 2. Model.
	if cfg.AI.Provider != ProviderNone {
		modelPrompt := promptui.Prompt{
			Label:   "Chat model",
			Default: cfg.AI.Model,
		}
		model, err := modelPrompt.Run()
		if err != nil {
			return nil, fmt.Errorf("model: %w", err)
		}
		cfg.AI.Model = strings.TrimSpace(model)
	}

	// 3. Port.
	portPrompt := promptui.Prompt{
		Label:   "HTTP port",
		Default: strconv.Itoa(cfg.Server.Port),
		Validate: func(s string) error {
			n, err := strconv.Atoi(s)
			if err != nil || n <= 0 || n > 65535 {
				return fmt.Errorf("enter a port between 1 and 65535")
			}
			return nil
		},
	}
	portStr, err := portPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("port: %w", err)
	}
	cfg.Server.Port, _ = strconv.Atoi(portStr)

	// 4. Data directory.
	dataPrompt := promptui.Prompt{
		Label:   "Data directory (database, user files)",
		Default: cfg.DataDir,
	}
	cfg.DataDir, err = dataPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("data dir: %w", err)
	}

	// 5. Hosting domain.
	domainPrompt := promptui.Prompt{
		Label:   "Hosting domain (blank to serve sites under /sites/)",
		Default: "",
	}
	cfg.Hosting.Domain, err = domainPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("hosting domain: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if envVar := APIKeyEnvVar(cfg.AI.Provider); envVar != "" && os.Getenv(envVar) == "" {
		fmt.Printf("\nNote: Set %s in your environment before running the AI examples.\n", envVar)
	}

	if err := cfg.Save(path); err != nil {
		return nil, fmt.Errorf("saving config: %w", err)
	}

	fmt.Printf("\nConfiguration saved to %s\n", path)
	return cfg, nil
}
