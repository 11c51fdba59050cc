package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/mark3labs/mcp-go/server"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/stockmcp/internal/common"
	"github.com/ternarybob/stockmcp/internal/interfaces"
	"github.com/ternarybob/stockmcp/internal/services/analysis"
	"github.com/ternarybob/stockmcp/internal/services/analysis/analysisobs"
	"github.com/ternarybob/stockmcp/internal/services/corpus"
	"github.com/ternarybob/stockmcp/internal/services/documents"
	"github.com/ternarybob/stockmcp/internal/services/pdf"
	"github.com/ternarybob/stockmcp/internal/services/stocks"
	"github.com/ternarybob/stockmcp/internal/storage"
)

// configPaths is a custom flag type that allows multiple -config flags
type configPaths []string

func (c *configPaths) String() string {
	return fmt.Sprintf("%v", *c)
}

func (c *configPaths) Set(value string) error {
	*c = append(*c, value)
	return nil
}

var (
	configFiles  configPaths
	transport    = flag.String("transport", "", "MCP transport: stdio or http (overrides config)")
	serverPort   = flag.Int("port", 0, "HTTP port (overrides config)")
	showVersion  = flag.Bool("version", false, "Print version information")
	showVersionV = flag.Bool("v", false, "Print version information (shorthand)")
)

func init() {
	flag.Var(&configFiles, "config", "Configuration file path (can be specified multiple times, later files override earlier ones)")
	flag.Var(&configFiles, "c", "Configuration file path (shorthand)")
}

// toolServices is everything the tool handlers reach into.
type toolServices struct {
	stocks     *stocks.Service
	documents  *documents.Service
	ranker     interfaces.DocumentRanker
	screener   interfaces.StockScreener
	aggregator interfaces.FundamentalsAggregator
	corpus     interfaces.DocumentCorpus
	metrics    interfaces.MetricStore
	reports    interfaces.PDFService
	status     storageStatus
}

func registerTools(s *server.MCPServer, svc toolServices, logger arbor.ILogger) {
	// Lookups
	s.AddTool(createGetStockInfoTool(), handleGetStockInfo(svc.stocks, logger))
	s.AddTool(createGetPriceHistoryTool(), handleGetPriceHistory(svc.stocks, logger))
	s.AddTool(createSearchStocksTool(), handleSearchStocks(svc.stocks, logger))
	s.AddTool(createGetAdvancedMetricsTool(), handleGetAdvancedMetrics(svc.stocks, logger))

	// Analysis engine
	s.AddTool(createScreenStocksTool(), handleScreenStocks(svc.screener, logger))
	s.AddTool(createFindCompanyDocumentsTool(), handleFindCompanyDocuments(svc.ranker, svc.corpus, svc.metrics, logger))
	s.AddTool(createGetCompanyFundamentalsTool(), handleGetCompanyFundamentals(svc.aggregator, svc.reports, logger))

	// Documents
	s.AddTool(createListDocumentsTool(), handleListDocuments(svc.documents, logger))
	s.AddTool(createAnalyzeDocumentTool(), handleAnalyzeDocument(svc.documents, logger))

	s.AddTool(createGetVersionTool(), handleGetVersion(svc.status, logger))
}

func main() {
	defer common.RecoverWithCrashFile()

	flag.Parse()
	common.LoadVersionFromFile()

	if *showVersion || *showVersionV {
		fmt.Printf("stock-mcp version %s\n", common.GetFullVersion())
		os.Exit(0)
	}

	// Auto-discover config file if not specified
	if len(configFiles) == 0 {
		if _, err := os.Stat("stock-mcp.toml"); err == nil {
			configFiles = append(configFiles, "stock-mcp.toml")
		}
	}

	config, err := common.LoadFromFiles(configFiles...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	if *transport != "" {
		config.Server.Transport = *transport
	}
	if *serverPort != 0 {
		config.Server.Port = *serverPort
	}
	if err := config.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid config: %v\n", err)
		os.Exit(1)
	}

	logger := common.InitLogger(config)
	common.InstallCrashHandler("")

	if err := common.InitTracing(config.Tracing); err != nil {
		logger.Warn().Err(err).Msg("Tracing disabled")
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := common.ShutdownTracing(shutdownCtx); err != nil {
			logger.Warn().Err(err).Msg("Failed to flush traces")
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	storageManager, err := storage.NewStorageManager(ctx, logger, config)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize storage")
	}
	defer storageManager.Close()

	extractor := pdf.NewExtractor(logger)
	docCorpus := corpus.NewCorpus(&config.Documents, extractor, logger)

	ranker, err := analysis.NewRanker(docCorpus, storageManager.MetricStore(), &config.Analysis, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize document ranker")
	}
	observedRanker := analysisobs.WrapRanker(ranker, logger)
	screener := analysisobs.WrapScreener(analysis.NewScreener(storageManager.MetricStore(), &config.Analysis, logger), logger)
	aggregator := analysisobs.WrapAggregator(
		analysis.NewAggregator(storageManager.MetricStore(), docCorpus, observedRanker, &config.Analysis, logger),
		logger,
	)

	mcpServer := server.NewMCPServer(
		config.Server.Name,
		common.Version,
		server.WithToolCapabilities(true),
	)
	registerTools(mcpServer, toolServices{
		stocks:     stocks.NewService(storageManager.StockStore(), storageManager.MetricStore(), logger),
		documents:  documents.NewService(docCorpus, extractor, &config.Documents, logger),
		ranker:     observedRanker,
		screener:   screener,
		aggregator: aggregator,
		corpus:     docCorpus,
		metrics:    storageManager.MetricStore(),
		reports:    pdf.NewService(logger),
		status:     storageManager,
	}, logger)

	logger.Info().
		Str("version", common.Version).
		Str("transport", config.Server.Transport).
		Str("database", storageManager.Driver()).
		Str("documents", docCorpus.Dir()).
		Msg("Stock MCP server starting")

	if config.Server.Transport == "stdio" {
		// stdout carries the protocol from here on
		if err := server.ServeStdio(mcpServer); err != nil {
			logger.Error().Err(err).Msg("MCP stdio server failed")
		}
		return
	}

	serveHTTP(ctx, mcpServer, config, logger)
}

// serveHTTP runs the streamable HTTP transport until ctx is cancelled.
func serveHTTP(ctx context.Context, mcpServer *server.MCPServer, config *common.Config, logger arbor.ILogger) {
	addr := net.JoinHostPort(config.Server.Host, strconv.Itoa(config.Server.Port))
	common.PrintBanner(config, "http://"+addr+"/mcp")

	httpServer := server.NewStreamableHTTPServer(mcpServer,
		server.WithStateLess(true),
	)

	errCh := make(chan error, 1)
	common.SafeGo(logger, "mcp-http", func() {
		logger.Info().Str("addr", addr).Msg("Serving MCP streamable HTTP")
		errCh <- httpServer.Start(addr)
	})

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("MCP HTTP server failed")
		}
	case <-ctx.Done():
		logger.Info().Msg("Shutting down MCP HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Warn().Err(err).Msg("MCP HTTP server shutdown failed")
		}
	}
}
