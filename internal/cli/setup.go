package cli

import (
	"context"
	"fmt"

	"resumeats/internal/ai"
	"resumeats/internal/assistant"
	"resumeats/internal/config"
	"resumeats/internal/document"
	"resumeats/internal/errors"
	"resumeats/internal/observability"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// buildAssistant resolves Vault secrets, creates the oracles and wires them
// into an assistant. metrics may be nil.
func buildAssistant(ctx context.Context, cfg *config.Config, logger *errors.Logger, metrics *observability.Metrics) (*assistant.Assistant, *ai.Service, error) {
	if err := config.ApplyVaultSecrets(cfg, logger); err != nil {
		return nil, nil, fmt.Errorf("failed to load secrets from vault: %w", err)
	}
	if err := cfg.ValidateAPIKey(); err != nil {
		return nil, nil, err
	}

	svc, err := ai.NewService(ctx, cfg, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create AI service: %w", err)
	}
	if metrics != nil {
		svc.Instrument(metrics)
	}

	loader := document.NewLoader(cfg.App.MaxFileSize, cfg.App.MaxPages, logger)
	return assistant.NewFromService(svc, loader, logger), svc, nil
}

func closeService(svc *ai.Service, logger *errors.Logger) {
	if err := svc.Close(); err != nil {
		logger.LogError(err, "Failed to close AI service")
	}
}

// flagOverrides binds command flags to config keys. The configuration is
// loaded before cobra parses flags, so overrides are applied afterwards and
// only for flags the user actually set.
type flagOverrides struct {
	v *viper.Viper
}

func bindFlags(cmd *cobra.Command, bindings map[string]string) *flagOverrides {
	v := viper.New()
	for key, flagName := range bindings {
		if err := v.BindPFlag(key, cmd.Flags().Lookup(flagName)); err != nil {
			panic(err)
		}
	}
	return &flagOverrides{v: v}
}

func (o *flagOverrides) string(key string, dst *string) {
	if o.v.IsSet(key) {
		*dst = o.v.GetString(key)
	}
}

func (o *flagOverrides) bool(key string, dst *bool) {
	if o.v.IsSet(key) {
		*dst = o.v.GetBool(key)
	}
}
