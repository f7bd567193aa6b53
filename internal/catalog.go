package internal

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/sensiblebit/conformkit/internal/fetch"
	"github.com/sensiblebit/conformkit/internal/products"
	"github.com/sensiblebit/conformkit/internal/trustlist"
)

// ProductsResult is the outcome of loading the product list. When the
// source cannot be fetched or parsed, Products is empty and Warning says why.
type ProductsResult struct {
	Products []products.ProductView
	Skipped  int
	Warning  string
}

// CertificatesResult is the outcome of loading the trust list.
type CertificatesResult struct {
	Certificates []trustlist.CertificateRecord
	Warning      string
}

// Catalog loads and memoizes both registry collections. A successful load
// is kept for the lifetime of the Catalog; a failed load is retried on the
// next call. Safe for concurrent use.
type Catalog struct {
	fetcher   fetch.Fetcher
	sources   SourcesConfig
	passwords []string

	productsMu   sync.Mutex
	products     *ProductsResult
	certsMu      sync.Mutex
	certificates *CertificatesResult
}

// NewCatalog returns a Catalog reading sources through fetcher. Passwords
// are tried on password-protected trust stores.
func NewCatalog(fetcher fetch.Fetcher, sources SourcesConfig, passwords []string) *Catalog {
	return &Catalog{fetcher: fetcher, sources: sources, passwords: passwords}
}

// NewFetcher builds the caching fetcher described by cfg.
func NewFetcher(cfg FetchConfig) (*fetch.CachingFetcher, *fetch.Cache, error) {
	cache, err := fetch.NewCache()
	if err != nil {
		return nil, nil, fmt.Errorf("opening document cache: %w", err)
	}
	httpFetcher := fetch.NewHTTPFetcher(fetch.Options{
		Timeout:   cfg.Timeout,
		MaxBytes:  cfg.MaxBytes,
		UserAgent: cfg.UserAgent,
	})
	return fetch.NewCachingFetcher(fetch.NewSourceFetcher(httpFetcher), cache), cache, nil
}

// Products returns the normalized product collection.
func (c *Catalog) Products(ctx context.Context) ProductsResult {
	c.productsMu.Lock()
	defer c.productsMu.Unlock()
	if c.products != nil {
		return *c.products
	}

	res, ok := c.loadProducts(ctx)
	if ok {
		c.products = &res
	}
	return res
}

func (c *Catalog) loadProducts(ctx context.Context) (ProductsResult, bool) {
	data, err := c.fetcher.Fetch(ctx, c.sources.Products)
	if err != nil {
		slog.Warn("product list unavailable", "source", c.sources.Products, "error", err)
		return ProductsResult{Products: []products.ProductView{}, Warning: fmt.Sprintf("product list unavailable: %v", err)}, false
	}
	records, skipped, err := products.DecodeRecords(data)
	if err != nil {
		slog.Warn("product list unreadable", "source", c.sources.Products, "error", err)
		return ProductsResult{Products: []products.ProductView{}, Warning: fmt.Sprintf("product list unreadable: %v", err)}, false
	}
	res := ProductsResult{Products: products.NormalizeAll(records), Skipped: skipped}
	if skipped > 0 {
		res.Warning = fmt.Sprintf("%d malformed product records skipped", skipped)
	}
	slog.Debug("loaded product list", "products", len(res.Products), "skipped", skipped)
	return res, true
}

// Certificates returns the trust-list certificate records.
func (c *Catalog) Certificates(ctx context.Context) CertificatesResult {
	c.certsMu.Lock()
	defer c.certsMu.Unlock()
	if c.certificates != nil {
		return *c.certificates
	}

	res, ok := c.loadCertificates(ctx)
	if ok {
		c.certificates = &res
	}
	return res
}

func (c *Catalog) loadCertificates(ctx context.Context) (CertificatesResult, bool) {
	data, err := c.fetcher.Fetch(ctx, c.sources.TrustList)
	if err != nil {
		slog.Warn("trust list unavailable", "source", c.sources.TrustList, "error", err)
		return CertificatesResult{Certificates: []trustlist.CertificateRecord{}, Warning: fmt.Sprintf("trust list unavailable: %v", err)}, false
	}
	records, err := trustlist.LoadData(data, c.passwords)
	if err != nil {
		slog.Warn("trust list unreadable", "source", c.sources.TrustList, "error", err)
		return CertificatesResult{Certificates: []trustlist.CertificateRecord{}, Warning: fmt.Sprintf("trust list unreadable: %v", err)}, false
	}
	slog.Debug("loaded trust list", "certificates", len(records))
	return CertificatesResult{Certificates: records}, true
}
