// Package main provides the pixdex catalog maintenance CLI.
//
// Usage:
//
//	pixdexctl build    - encode the product catalog and write the vector cache
//	pixdexctl inspect  - print the header and entries of a vector cache file
//
// Both commands read the same YAML configuration as the API server
// (ENV / PIXDEX_CONFIG select the file).
package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kailas-cloud/pixdex/internal/config"
	logpkg "github.com/kailas-cloud/pixdex/internal/logger"
	"github.com/kailas-cloud/pixdex/internal/metrics"
	catalogrepo "github.com/kailas-cloud/pixdex/internal/repository/catalog"
	openaiEnc "github.com/kailas-cloud/pixdex/internal/transport/openai"
	"github.com/kailas-cloud/pixdex/internal/version"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:     "pixdexctl",
		Short:   "pixdex catalog maintenance",
		Version: fmt.Sprintf("%s (%s)", version.Version, version.Commit),
	}
	root.AddCommand(buildCmd(), inspectCmd())
	return root
}

func buildCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "build",
		Short: "Encode the product catalog and persist the vector cache",
		Long: `Encode every product image through the configured encoder endpoint and
write the resulting vector cache file. Runs offline, without the API
server: useful for warming the cache before a deploy.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			_ = godotenv.Load()

			cfg, err := config.Load(config.GetEnv())
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if cfg.Catalog.MetadataPath == "" {
				return fmt.Errorf("catalog.metadata_path is required to build")
			}

			logger, err := logpkg.NewLogger(config.GetEnv(), cfg.Logging.Level)
			if err != nil {
				return fmt.Errorf("create logger: %w", err)
			}
			defer func() { _ = logger.Sync() }()

			metrics.RegisterEncoderMetrics()
			metrics.RegisterCatalogMetrics()

			encoder := openaiEnc.NewEncoder(&openaiEnc.Config{
				APIKey:     cfg.Encoder.APIKey,
				BaseURL:    cfg.Encoder.BaseURL,
				Model:      cfg.Encoder.Model,
				Dimensions: cfg.Encoder.Dimensions,
				Timeout:    time.Duration(cfg.Encoder.TimeoutSec) * time.Second,
				Logger:     logger,
			})

			source := catalogrepo.NewFileSource(cfg.Catalog.MetadataPath)
			products, err := source.Products()
			if err != nil {
				return fmt.Errorf("load products: %w", err)
			}

			builder := catalogrepo.NewBuilder(catalogrepo.BuilderConfig{
				Encoder:     encoder,
				ImagesDir:   cfg.Catalog.ImagesDir,
				Model:       cfg.Encoder.Model,
				Dimensions:  cfg.Encoder.Dimensions,
				Concurrency: cfg.Encoder.BuildConcurrency,
				Logger:      logger,
			})

			cat, err := builder.Build(context.Background(), products)
			if err != nil {
				return fmt.Errorf("build catalog: %w", err)
			}

			cache := catalogrepo.NewCache(cfg.Catalog.CachePath, cfg.Encoder.Model, cfg.Encoder.Dimensions)
			if err := cache.Persist(cat); err != nil {
				return fmt.Errorf("persist catalog: %w", err)
			}

			logger.Info("Catalog cache written",
				zap.String("path", cfg.Catalog.CachePath),
				zap.Int("entries", len(cat.Entries)),
				zap.Int("skipped", len(products)-len(cat.Entries)),
			)
			return nil
		},
	}
}

func inspectCmd() *cobra.Command {
	var showEntries bool

	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Print the header of a vector cache file",
		RunE: func(cmd *cobra.Command, args []string) error {
			_ = godotenv.Load()

			cfg, err := config.Load(config.GetEnv())
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			cache := catalogrepo.NewCache(cfg.Catalog.CachePath, cfg.Encoder.Model, cfg.Encoder.Dimensions)
			cat, err := cache.Load()
			if err != nil {
				return fmt.Errorf("load cache %s: %w", cfg.Catalog.CachePath, err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "path:        %s\n", cfg.Catalog.CachePath)
			fmt.Fprintf(out, "model:       %s\n", cat.Model)
			fmt.Fprintf(out, "dimensions:  %d\n", cat.Dimensions)
			fmt.Fprintf(out, "entries:     %d\n", len(cat.Entries))
			fmt.Fprintf(out, "built_at:    %s\n", cat.BuiltAt.Format(time.RFC3339))

			if showEntries {
				w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
				fmt.Fprintln(w, "ID\tNAME\tCATEGORY\tIMAGE")
				for _, e := range cat.Entries {
					fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
						e.Product.ID, e.Product.Name, e.Product.Category, e.Product.ImagePath)
				}
				return w.Flush()
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&showEntries, "entries", false, "list every catalog entry")
	return cmd
}
