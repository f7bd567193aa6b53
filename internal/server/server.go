// Package server exposes the conformance catalog as a read-only JSON API.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sensiblebit/conformkit"
	"github.com/sensiblebit/conformkit/internal"
	"github.com/sensiblebit/conformkit/internal/fetch"
	"github.com/sensiblebit/conformkit/internal/products"
	"github.com/sensiblebit/conformkit/internal/trustlist"
)

const shutdownTimeout = 10 * time.Second

// ErrorResponse is the body of every non-2xx JSON reply.
type ErrorResponse struct {
	Error string `json:"error"`
}

// ProductsResponse is the body of GET /api/products.
type ProductsResponse struct {
	internal.ProductListOutput
	Skipped int    `json:"skipped,omitempty"`
	Warning string `json:"warning,omitempty"`
}

// CertificatesResponse is the body of GET /api/tsa/certificates.
type CertificatesResponse struct {
	internal.CertificateListOutput
	Warning string `json:"warning,omitempty"`
}

// SourceLister reports what the fetch layer has cached.
type SourceLister interface {
	Entries() ([]fetch.Entry, error)
}

// Server serves the catalog over HTTP.
type Server struct {
	catalog *internal.Catalog
	sources SourceLister
	logger  *slog.Logger
	engine  *gin.Engine
}

// New builds the router. sources may be nil.
func New(catalog *internal.Catalog, sources SourceLister, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{catalog: catalog, sources: sources, logger: logger}

	router := gin.New()
	router.Use(RequestIDMiddleware(logger))
	router.Use(RecoveryMiddleware(logger))
	router.Use(LoggingMiddleware(logger))

	router.GET("/healthz", s.health)
	api := router.Group("/api")
	api.GET("/products", s.listProducts)
	api.GET("/products/:recordId", s.getProduct)
	api.GET("/options", s.productOptions)
	api.GET("/tsa/certificates", s.listCertificates)
	api.GET("/tsa/certificates/:id", s.inspectCertificate)
	api.GET("/tsa/certificates/:id/pem", s.certificatePEM)
	api.GET("/tsa/organizations", s.organizations)
	api.GET("/tsa/export", s.exportTrustStore)
	api.GET("/sources", s.listSources)
	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "not found"})
	})

	s.engine = router
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves on addr until ctx is canceled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("serving catalog", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("listening on %s: %w", addr, err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down server: %w", err)
	}
	return nil
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// queryList reads a repeatable query parameter; each value may itself be
// comma-separated.
func queryList(c *gin.Context, key string) []string {
	var out []string
	for _, v := range c.QueryArray(key) {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

// productCriteria maps query parameters onto filter criteria.
func productCriteria(c *gin.Context) products.Criteria {
	criteria := products.Criteria{
		Vendor:         c.Query("vendor"),
		ProductType:    c.Query("productType"),
		AssuranceLevel: c.Query("assuranceLevel"),
		Status:         c.Query("status"),
		Search:         c.Query("q"),
	}
	criteria.SetMediaTypes(queryList(c, "mediaType")...)
	criteria.SetFormats(queryList(c, "fileFormat")...)
	return criteria
}

func (s *Server) listProducts(c *gin.Context) {
	mode, err := products.ParseSortMode(c.Query("sort"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}
	res := s.catalog.Products(c.Request.Context())
	list := products.Query(res.Products, productCriteria(c), mode)
	c.JSON(http.StatusOK, ProductsResponse{
		ProductListOutput: internal.ProductListOutput{Total: len(res.Products), Shown: len(list), Products: list},
		Skipped:           res.Skipped,
		Warning:           res.Warning,
	})
}

func (s *Server) getProduct(c *gin.Context) {
	res := s.catalog.Products(c.Request.Context())
	p, ok := products.FindByRecordID(res.Products, c.Param("recordId"))
	if !ok {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: fmt.Sprintf("product %q not found", c.Param("recordId"))})
		return
	}
	c.JSON(http.StatusOK, p)
}

func (s *Server) productOptions(c *gin.Context) {
	res := s.catalog.Products(c.Request.Context())
	var criteria products.Criteria
	criteria.SetMediaTypes(queryList(c, "mediaType")...)
	c.JSON(http.StatusOK, internal.NewOptionsOutput(
		products.BuildOptions(res.Products),
		products.AvailableFormats(res.Products, criteria.MediaTypes()),
	))
}

func certificateCriteria(c *gin.Context) trustlist.Criteria {
	return trustlist.Criteria{Organization: c.Query("organization"), Search: c.Query("q")}
}

func (s *Server) listCertificates(c *gin.Context) {
	res := s.catalog.Certificates(c.Request.Context())
	list := trustlist.Filter(res.Certificates, certificateCriteria(c))
	c.JSON(http.StatusOK, CertificatesResponse{
		CertificateListOutput: internal.CertificateListOutput{Total: len(res.Certificates), Shown: len(list), Certificates: list},
		Warning:               res.Warning,
	})
}

// lookupCertificate resolves the :id parameter, writing the error reply
// itself when it fails.
func (s *Server) lookupCertificate(c *gin.Context) (trustlist.CertificateRecord, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: fmt.Sprintf("invalid certificate id %q", c.Param("id"))})
		return trustlist.CertificateRecord{}, false
	}
	res := s.catalog.Certificates(c.Request.Context())
	rec, ok := trustlist.FindByID(res.Certificates, id)
	if !ok {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: fmt.Sprintf("certificate %d not found", id)})
		return trustlist.CertificateRecord{}, false
	}
	return rec, true
}

func (s *Server) inspectCertificate(c *gin.Context) {
	rec, ok := s.lookupCertificate(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, internal.InspectOutput{
		ID:      rec.ID,
		Decoded: conformkit.DecodeCertificate(rec.PEM),
		PEM:     rec.PEM,
	})
}

func (s *Server) certificatePEM(c *gin.Context) {
	rec, ok := s.lookupCertificate(c)
	if !ok {
		return
	}
	c.Data(http.StatusOK, "application/x-pem-file", []byte(rec.PEM+"\n"))
}

func (s *Server) organizations(c *gin.Context) {
	res := s.catalog.Certificates(c.Request.Context())
	c.JSON(http.StatusOK, trustlist.Organizations(res.Certificates))
}

var exportContentTypes = map[string]string{
	"pem": "application/x-pem-file",
	"p7b": "application/x-pkcs7-certificates",
	"p12": "application/x-pkcs12",
	"jks": "application/octet-stream",
}

// exportTrustStore encodes the filtered certificates as a trust store.
func (s *Server) exportTrustStore(c *gin.Context) {
	format := c.DefaultQuery("format", "pem")
	contentType, ok := exportContentTypes[format]
	if !ok {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: fmt.Sprintf("unsupported trust store format %q", format)})
		return
	}
	password := c.DefaultQuery("password", conformkit.DefaultExportPassword)

	res := s.catalog.Certificates(c.Request.Context())
	certs, skipped := trustlist.ParseRecords(trustlist.Filter(res.Certificates, certificateCriteria(c)))
	if len(certs) == 0 {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "no certificates to export"})
		return
	}
	data, err := conformkit.EncodeTrustStore(certs, format, password)
	if err != nil {
		loggerFrom(c, s.logger).Error("encoding trust store", "format", format, "error", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "encoding trust store failed"})
		return
	}
	if len(skipped) > 0 {
		c.Header("X-Skipped-Certificates", strconv.Itoa(len(skipped)))
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=tsa-trust-list.%s", format))
	c.Data(http.StatusOK, contentType, data)
}

func (s *Server) listSources(c *gin.Context) {
	if s.sources == nil {
		c.JSON(http.StatusOK, []fetch.Entry{})
		return
	}
	entries, err := s.sources.Entries()
	if err != nil {
		loggerFrom(c, s.logger).Error("listing cached sources", "error", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "listing cached sources failed"})
		return
	}
	if entries == nil {
		entries = []fetch.Entry{}
	}
	c.JSON(http.StatusOK, entries)
}
