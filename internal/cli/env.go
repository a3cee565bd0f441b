package cli

import (
	"fmt"
	"os"

	"nimctl/internal/envfile"
)

// requiredKeys are the two credentials the workflow needs: the registry key
// to pull the server image and the hosted-endpoint key for remote inference.
var requiredKeys = []string{"NGC_API_KEY", "NVIDIA_API_KEY"}

// loadEnvFile loads the configured .env file. A missing file or key only
// warns; whatever step actually needs the credential will fail on its own
// terms where the operator can see it.
func loadEnvFile(cfg *Config, override bool) {
	if cfg.EnvFile == "" {
		return
	}
	loaded, err := envfile.Load(cfg.EnvFile, override)
	if err != nil {
		logger.Warn().Err(err).Str("path", cfg.EnvFile).Msg("env file not loaded")
		return
	}
	if len(loaded) > 0 {
		logger.Debug().Int("keys", len(loaded)).Str("path", cfg.EnvFile).Msg("env file loaded")
	}
}

// envCheck reports which credentials are present, masked.
func envCheck(cfg *Config, override bool) error {
	loadEnvFile(cfg, override)
	missing := 0
	for _, key := range requiredKeys {
		v, ok := os.LookupEnv(key)
		if !ok || v == "" {
			missing++
			fmt.Printf("%-16s missing\n", key)
			continue
		}
		fmt.Printf("%-16s %s\n", key, envfile.Mask(v))
	}
	if missing > 0 {
		logger.Warn().Int("missing", missing).Msg("some credentials are not set; dependent commands will fail")
	}
	return nil
}
