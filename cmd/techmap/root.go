package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"techmap/internal/config"
)

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "techmap",
		Short: "techmap - technique association index builder",
		Long: `techmap inverts success criterion specifications into an index of
techniques. Every technique lists the criteria it is sufficient, advisory
or a failure for, the techniques it must be combined with and the parent
technique it completes.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "Config file (default: ./"+config.DefaultFileName+" if present)")
	flags.String("specs", "", "Directory of criterion specifications")
	flags.String("criteria", "", "Criteria file")
	flags.String("techniques", "", "Technique registry file")
	flags.String("wcag-version", "", "Guideline version to resolve (default "+config.DefaultVersion+")")
	flags.String("log-level", "", "Log level: debug, info, warn, error")

	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "techmap v%s (%s)\n", version, commit)
		},
	})

	rootCmd.AddCommand(newValidateCmd(), newResolveCmd(), newCheckCmd(), newShowCmd(), newVersionsCmd())

	return rootCmd
}

// loadConfig reads the config file, if any, and applies flag overrides.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path, _ := cmd.Flags().GetString("config")

	cfg := config.Default()

	switch {
	case path != "":
		loaded, err := config.Load(path)
		if err != nil {
			return config.Config{}, err
		}

		cfg = loaded
	default:
		if _, err := os.Stat(config.DefaultFileName); err == nil {
			loaded, err := config.Load(config.DefaultFileName)
			if err != nil {
				return config.Config{}, err
			}

			cfg = loaded
		} else if !errors.Is(err, os.ErrNotExist) {
			return config.Config{}, fmt.Errorf("stat %s: %w", config.DefaultFileName, err)
		}
	}

	overrides := []struct {
		flag string
		dst  *string
	}{
		{"specs", &cfg.SpecsDir},
		{"criteria", &cfg.CriteriaFile},
		{"techniques", &cfg.TechniquesFile},
		{"wcag-version", &cfg.Version},
		{"log-level", &cfg.LogLevel},
		{"out", &cfg.Output},
		{"store", &cfg.StoreDir},
	}

	for _, o := range overrides {
		if f := cmd.Flags().Lookup(o.flag); f != nil && f.Changed {
			*o.dst = f.Value.String()
		}
	}

	return cfg, nil
}

func newLogger(w io.Writer, cfg config.Config) *slog.Logger {
	handler := slog.NewTextHandler(w, &slog.HandlerOptions{Level: cfg.SlogLevel()})

	return slog.New(handler).With(slog.String("component", "techmap"))
}
