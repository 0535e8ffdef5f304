package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/immbridge/immbridge/internal/config"
	"github.com/immbridge/immbridge/internal/domain/submission"
	"github.com/immbridge/immbridge/internal/platform/blobstore"
	"github.com/immbridge/immbridge/internal/platform/db"
	"github.com/immbridge/immbridge/internal/platform/hl7v2"
	"github.com/immbridge/immbridge/internal/platform/middleware"
	"github.com/immbridge/immbridge/internal/platform/roster"
	"github.com/immbridge/immbridge/internal/platform/secrets"
	"github.com/immbridge/immbridge/internal/platform/transport"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "immbridge",
		Short: "Vaccination record to HL7 immunization registry bridge",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(runCmd())
	rootCmd.AddCommand(generateCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newLogger() zerolog.Logger {
	if os.Getenv("ENV") == "development" {
		return zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}
	return zerolog.New(os.Stdout).With().Timestamp().Logger()
}

func newTemplateStore(cfg *config.Config) (*hl7v2.TemplateStore, error) {
	if cfg.TemplateDir != "" {
		return hl7v2.NewTemplateStoreFromDir(cfg.TemplateDir)
	}
	return hl7v2.NewTemplateStore()
}

func newGenerator(cfg *config.Config) (*hl7v2.Generator, error) {
	store, err := newTemplateStore(cfg)
	if err != nil {
		return nil, err
	}
	return hl7v2.NewGenerator(store, hl7v2.Options{
		SendingApplication:   cfg.SendingApplication,
		SendingFacility:      cfg.SendingFacility,
		ReceivingApplication: cfg.ReceivingApplication,
		ReceivingFacility:    cfg.ReceivingFacility,
		FacilityPrefix:       cfg.FacilityPrefix,
		ProviderNPI:          cfg.ProviderNPI,
		ProviderLastName:     cfg.ProviderLastName,
		ProviderFirstName:    cfg.ProviderFirstName,
		ProviderPhone:        cfg.ProviderPhone,
	}), nil
}

func newBlobStore(cfg *config.Config) (blobstore.Store, error) {
	if cfg.StorageDir != "" {
		return blobstore.NewFileStore(cfg.StorageDir)
	}
	return blobstore.NewMemoryStore(), nil
}

// newDeliverer returns the SFTP deliverer, or an in-memory sink when no
// host is configured. The sink keeps development runs local: messages are
// still generated, archived, and logged, just not shipped.
func newDeliverer(cfg *config.Config, logger zerolog.Logger) transport.Deliverer {
	if cfg.SFTPHost == "" {
		logger.Warn().Msg("SFTP_HOST not set, delivery is a local no-op")
		return transport.NewMemoryDeliverer()
	}
	return transport.NewSFTPDeliverer(transport.SFTPConfig{
		Host:      cfg.SFTPHost,
		Port:      cfg.SFTPPort,
		RemoteDir: cfg.SFTPRemoteDir,
	}, secrets.NewEnvStore(), logger)
}

func newService(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*submission.Service, blobstore.Store, func(), error) {
	pool, err := db.Connect(ctx, db.Config{
		URL:      cfg.DatabaseURL,
		MaxConns: cfg.DBMaxConns,
		MinConns: cfg.DBMinConns,
	})
	if err != nil {
		return nil, nil, nil, fmt.Errorf("connect to database: %w", err)
	}

	gen, err := newGenerator(cfg)
	if err != nil {
		pool.Close()
		return nil, nil, nil, err
	}
	store, err := newBlobStore(cfg)
	if err != nil {
		pool.Close()
		return nil, nil, nil, err
	}

	svc := submission.NewService(
		gen,
		submission.NewMessageLogRepoPG(pool),
		store,
		newDeliverer(cfg, logger),
		logger,
		submission.ServiceOptions{
			Facility:   cfg.SendingFacility,
			TimeBudget: cfg.BatchTimeBudget,
		},
	)
	return svc, store, pool.Close, nil
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the submission API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func runServer() error {
	logger := newLogger()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid config")
	}

	ctx := context.Background()
	svc, store, closePool, err := newService(ctx, cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to wire service")
	}
	defer closePool()
	logger.Info().Msg("connected to database")

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recovery(logger))
	e.Use(middleware.Logger(logger))

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "ok",
			"version": "0.1.0",
		})
	})

	api := e.Group("/api/v1", middleware.APIKey(cfg.APIKey))
	submission.NewHandler(svc, store).RegisterRoutes(api)

	go func() {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Msg("starting server")
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Fatal().Err(err).Msg("server shutdown failed")
	}
	logger.Info().Msg("server stopped")
	return nil
}

func runCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Submit one roster file as a batch",
		RunE: func(cmd *cobra.Command, args []string) error {
			file, _ := cmd.Flags().GetString("file")
			if file == "" {
				return fmt.Errorf("--file is required")
			}

			logger := newLogger()
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			f, err := os.Open(file)
			if err != nil {
				return err
			}
			defer f.Close()
			records, err := roster.Parse(f)
			if err != nil {
				return fmt.Errorf("parse roster: %w", err)
			}

			ctx := context.Background()
			svc, _, closePool, err := newService(ctx, cfg, logger)
			if err != nil {
				return err
			}
			defer closePool()

			report, err := svc.Run(ctx, records)
			if err != nil {
				return err
			}
			fmt.Printf("run %s: %d sent, %d failed, %d skipped of %d\n",
				report.ID, report.Sent, report.Failed, report.Skipped, report.Total)
			if report.BudgetExhausted {
				fmt.Println("time budget exhausted before all rows were attempted")
			}
			if report.Failed > 0 {
				return fmt.Errorf("%d row(s) failed", report.Failed)
			}
			return nil
		},
	}
	cmd.Flags().String("file", "", "Path to the roster CSV")
	return cmd
}

func generateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Render messages from a roster without delivering them",
		RunE: func(cmd *cobra.Command, args []string) error {
			file, _ := cmd.Flags().GetString("file")
			out, _ := cmd.Flags().GetString("out")
			if file == "" {
				return fmt.Errorf("--file is required")
			}

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			gen, err := newGenerator(cfg)
			if err != nil {
				return err
			}

			f, err := os.Open(file)
			if err != nil {
				return err
			}
			defer f.Close()
			records, err := roster.Parse(f)
			if err != nil {
				return fmt.Errorf("parse roster: %w", err)
			}

			var failed int
			for i, rec := range records {
				msg, err := gen.Generate(rec)
				if err != nil {
					failed++
					fmt.Fprintf(os.Stderr, "row %d (%s): %v\n", i, rec.PatientID, err)
					continue
				}
				if out == "" {
					fmt.Println(msg.Text)
					continue
				}
				name := filepath.Join(out, fmt.Sprintf("%s.%d.hl7", msg.ControlID, i))
				if err := os.WriteFile(name, []byte(msg.Text), 0o644); err != nil {
					return err
				}
			}
			if failed > 0 {
				return fmt.Errorf("%d row(s) failed to generate", failed)
			}
			return nil
		},
	}
	cmd.Flags().String("file", "", "Path to the roster CSV")
	cmd.Flags().String("out", "", "Directory for rendered messages (stdout when empty)")
	return cmd
}
