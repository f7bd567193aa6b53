package main

import (
	"fmt"

	"github.com/sensiblebit/conformkit/internal"
	"github.com/sensiblebit/conformkit/internal/products"
	"github.com/spf13/cobra"
)

var (
	productVendor      string
	productType        string
	productLevel       string
	productStatus      string
	productSearch      string
	productMediaTypes  []string
	productFileFormats []string
	productSort        string
	productFormat      string
)

var productsCmd = &cobra.Command{
	Use:     "products",
	Aliases: []string{"product"},
	Short:   "Browse the conforming products list",
}

var productsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List products matching the filters",
	Example: `  conformkit products list
  conformkit products list --vendor "Acme Imaging" --sort creationDateAsc
  conformkit products list --media image --file-format jpeg --format json`,
	Args: cobra.NoArgs,
	RunE: runProductsList,
}

var productsShowCmd = &cobra.Command{
	Use:   "show <record-id>",
	Short: "Show one product with its per-direction container formats",
	Args:  cobra.ExactArgs(1),
	RunE:  runProductsShow,
}

var productsOptionsCmd = &cobra.Command{
	Use:   "options",
	Short: "List the available filter values",
	Long:  "List vendors, product types, assurance levels, statuses, media types and sort modes. With --media, also list the file formats available for those media types.",
	Args:  cobra.NoArgs,
	RunE:  runProductsOptions,
}

func init() {
	f := productsListCmd.Flags()
	f.StringVar(&productVendor, "vendor", "", "Exact vendor name")
	f.StringVar(&productType, "type", "", "Product type label (Generator, Validator)")
	f.StringVar(&productLevel, "level", "", "Assurance level label, e.g. \"Level 2\"")
	f.StringVar(&productStatus, "status", "", "Raw status, e.g. conformant")
	f.StringVarP(&productSearch, "search", "s", "", "Case-insensitive free-text search")
	f.StringSliceVar(&productMediaTypes, "media", nil, "Media types; a product matches if it supports any")
	f.StringSliceVar(&productFileFormats, "file-format", nil, "File formats; only applied together with --media")
	f.StringVar(&productSort, "sort", string(products.DefaultSortMode), "Sort mode")
	f.StringVar(&productFormat, "format", "text", "Output format: text or json")

	productsShowCmd.Flags().StringVar(&productFormat, "format", "text", "Output format: text or json")

	productsOptionsCmd.Flags().StringSliceVar(&productMediaTypes, "media", nil, "Media types to list file formats for")
	productsOptionsCmd.Flags().StringVar(&productFormat, "format", "text", "Output format: text or json")

	sortModes := make([]string, 0, len(products.SortModes))
	for _, m := range products.SortModes {
		sortModes = append(sortModes, string(m.Mode))
	}
	mediaKeys := make([]string, 0, len(products.KnownMediaTypes))
	for _, mt := range products.KnownMediaTypes {
		mediaKeys = append(mediaKeys, mt.Key)
	}
	registerCompletion(productsListCmd, completionInput{"sort", fixedCompletion(sortModes...)})
	registerCompletion(productsListCmd, completionInput{"media", fixedCompletion(mediaKeys...)})
	registerCompletion(productsListCmd, completionInput{"type", fixedCompletion("Generator", "Validator")})
	for _, cmd := range []*cobra.Command{productsListCmd, productsShowCmd, productsOptionsCmd} {
		registerCompletion(cmd, completionInput{"format", fixedCompletion(internal.OutputFormats...)})
	}
	registerCompletion(productsOptionsCmd, completionInput{"media", fixedCompletion(mediaKeys...)})

	productsCmd.AddCommand(productsListCmd)
	productsCmd.AddCommand(productsShowCmd)
	productsCmd.AddCommand(productsOptionsCmd)
}

// loadProducts fetches the product list, reporting any degradation on stderr.
func loadProducts(cmd *cobra.Command) ([]products.ProductView, error) {
	catalog, closeFn, err := openCatalog()
	if err != nil {
		return nil, err
	}
	defer closeFn()

	res := catalog.Products(cmd.Context())
	printWarning(res.Warning)
	return res.Products, nil
}

func runProductsList(cmd *cobra.Command, _ []string) error {
	mode, err := products.ParseSortMode(productSort)
	if err != nil {
		return err
	}
	list, err := loadProducts(cmd)
	if err != nil {
		return err
	}

	ex := products.NewExplorer(list)
	ex.SetVendor(productVendor)
	ex.SetProductType(productType)
	ex.SetAssuranceLevel(productLevel)
	ex.SetStatus(productStatus)
	ex.SetSearch(productSearch)
	ex.SetMediaTypes(productMediaTypes...)
	ex.SetFormats(productFileFormats...)
	ex.SetSortMode(mode)
	if len(productFileFormats) > 0 && len(productMediaTypes) == 0 {
		printWarning("--file-format is ignored without --media")
	}

	output, err := internal.FormatProductList(ex.Filtered(), len(list), productFormat)
	if err != nil {
		return err
	}
	fmt.Print(output)
	return nil
}

func runProductsShow(cmd *cobra.Command, args []string) error {
	list, err := loadProducts(cmd)
	if err != nil {
		return err
	}
	p, ok := products.FindByRecordID(list, args[0])
	if !ok {
		return fmt.Errorf("product %q not found", args[0])
	}
	output, err := internal.FormatProductDetail(p, productFormat)
	if err != nil {
		return err
	}
	fmt.Print(output)
	return nil
}

func runProductsOptions(cmd *cobra.Command, _ []string) error {
	list, err := loadProducts(cmd)
	if err != nil {
		return err
	}
	ex := products.NewExplorer(list)
	ex.SetMediaTypes(productMediaTypes...)

	output, err := internal.FormatOptions(internal.NewOptionsOutput(ex.Options(), ex.AvailableFormats()), productFormat)
	if err != nil {
		return err
	}
	fmt.Print(output)
	return nil
}
