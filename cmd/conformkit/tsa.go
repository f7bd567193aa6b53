package main

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/sensiblebit/conformkit"
	"github.com/sensiblebit/conformkit/internal"
	"github.com/sensiblebit/conformkit/internal/trustlist"
	"github.com/spf13/cobra"
)

var (
	tsaOrganization  string
	tsaSearch        string
	tsaFormat        string
	tsaShowPEM       bool
	tsaStoreFormat   string
	tsaStorePassword string
	tsaOutPath       string
)

var tsaCmd = &cobra.Command{
	Use:   "tsa",
	Short: "Browse the TSA trust list",
}

var tsaListCmd = &cobra.Command{
	Use:   "list",
	Short: "List trust-list certificates",
	Example: `  conformkit tsa list
  conformkit tsa list --org "Example Trust Services"
  conformkit tsa list --search timestamp --format json`,
	Args: cobra.NoArgs,
	RunE: runTSAList,
}

var tsaInspectCmd = &cobra.Command{
	Use:   "inspect <id>",
	Short: "Decode one trust-list certificate",
	Long:  "Decode the certificate with the given list id: subject, issuer, serial, key identifiers, fingerprints, validity and Mozilla root membership.",
	Args:  cobra.ExactArgs(1),
	RunE:  runTSAInspect,
}

var tsaExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export trust-list certificates as a trust store",
	Example: `  conformkit tsa export --format p7b -o tsa.p7b
  conformkit tsa export --format jks --password changeit -o tsa.jks`,
	Args: cobra.NoArgs,
	RunE: runTSAExport,
}

func init() {
	for _, cmd := range []*cobra.Command{tsaListCmd, tsaExportCmd} {
		cmd.Flags().StringVar(&tsaOrganization, "org", "", "Exact organization")
		cmd.Flags().StringVarP(&tsaSearch, "search", "s", "", "Case-insensitive search over subject, organization and common name")
	}
	tsaListCmd.Flags().StringVar(&tsaFormat, "format", "text", "Output format: text or json")

	tsaInspectCmd.Flags().StringVar(&tsaFormat, "format", "text", "Output format: text or json")
	tsaInspectCmd.Flags().BoolVar(&tsaShowPEM, "pem", false, "Include the PEM block")

	tsaExportCmd.Flags().StringVar(&tsaStoreFormat, "format", "pem", "Trust store format: "+strings.Join(conformkit.TrustStoreFormats, ", "))
	tsaExportCmd.Flags().StringVar(&tsaStorePassword, "password", conformkit.DefaultExportPassword, "Password for p12 and jks stores")
	tsaExportCmd.Flags().StringVarP(&tsaOutPath, "out", "o", "-", "Output file, - for stdout")

	registerCompletion(tsaListCmd, completionInput{"format", fixedCompletion(internal.OutputFormats...)})
	registerCompletion(tsaInspectCmd, completionInput{"format", fixedCompletion(internal.OutputFormats...)})
	registerCompletion(tsaExportCmd, completionInput{"format", fixedCompletion(conformkit.TrustStoreFormats...)})
	registerCompletion(tsaExportCmd, completionInput{"out", fileCompletion})

	tsaCmd.AddCommand(tsaListCmd)
	tsaCmd.AddCommand(tsaInspectCmd)
	tsaCmd.AddCommand(tsaExportCmd)
}

// loadExplorer fetches the trust list into an explorer with the filter
// flags applied.
func loadExplorer(cmd *cobra.Command) (*trustlist.Explorer, error) {
	catalog, closeFn, err := openCatalog()
	if err != nil {
		return nil, err
	}
	defer closeFn()

	res := catalog.Certificates(cmd.Context())
	printWarning(res.Warning)
	ex := trustlist.NewExplorer(res.Certificates)
	ex.SetOrganization(tsaOrganization)
	ex.SetSearch(tsaSearch)
	return ex, nil
}

func runTSAList(cmd *cobra.Command, _ []string) error {
	ex, err := loadExplorer(cmd)
	if err != nil {
		return err
	}
	output, err := internal.FormatCertificateList(ex.Filtered(), len(ex.Records()), tsaFormat)
	if err != nil {
		return err
	}
	fmt.Print(output)
	return nil
}

func runTSAInspect(cmd *cobra.Command, args []string) error {
	id, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid certificate id %q", args[0])
	}
	ex, err := loadExplorer(cmd)
	if err != nil {
		return err
	}
	if err := ex.Select(id); err != nil {
		return err
	}
	rec, _ := ex.Selected()
	decoded, _ := ex.Decoded()

	out := internal.InspectOutput{ID: rec.ID, Decoded: decoded}
	if tsaShowPEM {
		out.PEM = rec.PEM
	}
	output, err := internal.FormatDecodedCertificate(out, tsaFormat)
	if err != nil {
		return err
	}
	fmt.Print(output)
	return nil
}

func runTSAExport(cmd *cobra.Command, _ []string) error {
	ex, err := loadExplorer(cmd)
	if err != nil {
		return err
	}
	certs, skipped := trustlist.ParseRecords(ex.Filtered())
	if len(skipped) > 0 {
		slog.Warn("skipping unparseable certificates", "ids", skipped)
	}
	if len(certs) == 0 {
		return fmt.Errorf("no certificates to export")
	}
	data, err := conformkit.EncodeTrustStore(certs, tsaStoreFormat, tsaStorePassword)
	if err != nil {
		return fmt.Errorf("encoding %s trust store: %w", tsaStoreFormat, err)
	}

	if tsaOutPath == "-" {
		_, err = os.Stdout.Write(data)
		return err
	}
	if err := os.WriteFile(tsaOutPath, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", tsaOutPath, err)
	}
	slog.Info("exported trust store", "format", tsaStoreFormat, "certificates", len(certs), "path", tsaOutPath)
	return nil
}
