package configs

import (
	"flag"
	"os"

	"github.com/inkwell-hq/inkwell/internal/infrastructure/env"
)

// DetermineConfigPath resolves the config file location from, in order:
// the --config flag, the INKWELL_CONFIG env var, and a list of well-known
// candidate paths. An empty result means run on defaults and env overrides.
func DetermineConfigPath() string {
	var configPath string

	flag.StringVar(&configPath, "config", "", "path to config file")
	flag.Parse()

	if configPath == "" {
		configPath = env.GetString("INKWELL_CONFIG", "")
	}

	if configPath == "" {
		candidates := []string{
			"./config.yaml",
			"./config.yml",
			"/etc/inkwell/config.yaml",
			"/app/config.yaml",
		}

		for _, p := range candidates {
			if _, err := os.Stat(p); err == nil {
				configPath = p
				break
			}
		}
	}

	return configPath
}
