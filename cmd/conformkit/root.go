package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/sensiblebit/conformkit/internal"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var (
	logLevel        string
	logFormat       string
	configPath      string
	productsSource  string
	trustListSource string
	noColor         bool
	passwordList    string
	passwordFile    string

	// cfg is resolved in PersistentPreRunE: defaults, then the config
	// file, then explicitly set flags.
	cfg internal.Config
)

var rootCmd = &cobra.Command{
	Use:   "conformkit",
	Short: "C2PA conformance catalog explorer",
	Long: "Browse the C2PA conforming products list and the TSA trust list: filter, sort and inspect entries, " +
		"decode trust-list certificates, export trust stores, or serve the catalog as a JSON API.",
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&logLevel, "log-level", "l", "info", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text", "Log format: text or json")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file (default: ./"+internal.DefaultConfigFile+" if present)")
	rootCmd.PersistentFlags().StringVar(&productsSource, "products-source", "", "Product list URL or path (overrides config)")
	rootCmd.PersistentFlags().StringVar(&trustListSource, "trust-list-source", "", "TSA trust list URL or path (overrides config)")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")
	rootCmd.PersistentFlags().StringVarP(&passwordList, "passwords", "p", "", "Comma-separated passwords for protected trust stores")
	rootCmd.PersistentFlags().StringVar(&passwordFile, "password-file", "", "File containing passwords, one per line")

	registerCompletion(rootCmd, completionInput{"log-level", fixedCompletion("debug", "info", "warn", "error")})
	registerCompletion(rootCmd, completionInput{"log-format", fixedCompletion("text", "json")})
	registerCompletion(rootCmd, completionInput{"config", fileCompletion})
	registerCompletion(rootCmd, completionInput{"password-file", fileCompletion})

	rootCmd.AddCommand(productsCmd)
	rootCmd.AddCommand(tsaCmd)
	rootCmd.AddCommand(serveCmd)
}

func setup(cmd *cobra.Command, _ []string) error {
	if err := internal.SetupLogger(logLevel, logFormat); err != nil {
		return err
	}
	if noColor || !isatty.IsTerminal(os.Stdout.Fd()) {
		color.NoColor = true
	}

	loaded, err := internal.LoadConfig(configPath)
	if err != nil {
		return err
	}
	override(cmd.Flags(), "products-source", &loaded.Sources.Products, productsSource)
	override(cmd.Flags(), "trust-list-source", &loaded.Sources.TrustList, trustListSource)
	if err := loaded.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	cfg = loaded
	return nil
}

// override sets *dst to value when the named flag was given explicitly.
func override(flags *pflag.FlagSet, name string, dst *string, value string) {
	if flags.Changed(name) {
		*dst = value
	}
}

// splitPasswords parses the --passwords flag.
func splitPasswords(list string) []string {
	var out []string
	for _, p := range strings.Split(list, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// openCatalog builds a catalog over the configured sources. The returned
// close function releases the document cache.
func openCatalog() (*internal.Catalog, func(), error) {
	passwords, err := internal.ProcessPasswords(splitPasswords(passwordList), passwordFile)
	if err != nil {
		return nil, nil, fmt.Errorf("loading passwords: %w", err)
	}
	fetcher, cache, err := internal.NewFetcher(cfg.Fetch)
	if err != nil {
		return nil, nil, err
	}
	closeFn := func() { _ = cache.Close() }
	return internal.NewCatalog(fetcher, cfg.Sources, passwords), closeFn, nil
}

// printWarning reports a degraded load on stderr.
func printWarning(warning string) {
	if warning != "" {
		fmt.Fprintf(os.Stderr, "Warning: %s\n", warning)
	}
}
