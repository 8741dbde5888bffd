package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/haydenbleasel/tersa-sub001/cmd/internal/server"
	domainconfig "github.com/haydenbleasel/tersa-sub001/domain/config"
	"github.com/haydenbleasel/tersa-sub001/domain/core/aggregates"
	"github.com/haydenbleasel/tersa-sub001/domain/core/valueobjects"
	"github.com/haydenbleasel/tersa-sub001/infrastructure/config"
	"github.com/haydenbleasel/tersa-sub001/infrastructure/di"
	"github.com/haydenbleasel/tersa-sub001/infrastructure/persistence/sqlstore"
	"github.com/haydenbleasel/tersa-sub001/infrastructure/providers"
	pkgauth "github.com/haydenbleasel/tersa-sub001/pkg/auth"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "canvasctl",
		Short:        "Administer the canvas backend",
		SilenceUsage: true,
	}
	root.AddCommand(
		newMigrateCmd(),
		newValidateCmd(),
		newModelsCmd(),
		newServeCmd(),
		newTokenCmd(),
	)
	return root
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or upgrade the project table for the configured SQL driver",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.LoadConfig()
			if err != nil {
				return err
			}
			if cfg.DatabaseDriver != string(sqlstore.DialectPostgres) && cfg.DatabaseDriver != string(sqlstore.DialectSQLite) {
				return fmt.Errorf("migrate needs DATABASE_DRIVER postgres or sqlite, got %q", cfg.DatabaseDriver)
			}
			logger, cleanup, err := di.ProvideLogger(cfg)
			if err != nil {
				return err
			}
			defer cleanup()

			store, err := sqlstore.Open(cfg.DatabaseDriver, cfg.DatabaseURL, logger)
			if err != nil {
				return err
			}
			defer store.Close()

			applied, err := store.Migrate(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "applied %d migration(s) to %s\n", applied, cfg.DatabaseDriver)
			return nil
		},
	}
}

func newValidateCmd() *cobra.Command {
	var modelsFile string
	cmd := &cobra.Command{
		Use:   "validate FILE",
		Short: "Check a serialized canvas document offline",
		Long: `Decodes a canvas document (or a project export with a "content" field)
and applies every validation a save would. Use - to read standard input.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := readInput(cmd.InOrStdin(), args[0])
			if err != nil {
				return err
			}
			limits := domainconfig.LoadDomainConfig(os.Getenv("ENVIRONMENT"))
			if modelsFile != "" {
				overlay, err := config.LoadOverlay(modelsFile)
				if err != nil {
					return err
				}
				limits = overlay.ApplyLimits(limits)
			}
			nodes, edges, err := validateDocument(raw, limits)
			if err != nil {
				return fmt.Errorf("invalid document: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "valid: %d nodes, %d edges\n", nodes, edges)
			return nil
		},
	}
	cmd.Flags().StringVar(&modelsFile, "models-file", os.Getenv("MODELS_FILE"), "overlay whose limits apply")
	return cmd
}

func readInput(stdin io.Reader, path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(stdin)
	}
	return os.ReadFile(path)
}

// validateDocument restores raw into a scratch project and reports its size.
func validateDocument(raw []byte, limits *domainconfig.DomainConfig) (int, int, error) {
	var export struct {
		Content json.RawMessage `json:"content"`
	}
	if err := json.Unmarshal(raw, &export); err == nil && len(export.Content) > 0 {
		raw = export.Content
	}

	content, err := aggregates.ParseContent(raw)
	if err != nil {
		return 0, 0, err
	}
	p, err := aggregates.NewProject(valueobjects.ProjectID{}, "canvasctl", "", aggregates.Defaults{}, aggregates.WithLimits(limits))
	if err != nil {
		return 0, 0, err
	}
	if err := p.Restore(content); err != nil {
		return 0, 0, err
	}
	return p.NodeCount(), p.EdgeCount(), nil
}

func newModelsCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "models",
		Short: "List the model catalog the server would load",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.LoadConfig()
			if err != nil {
				return err
			}
			var overlay *config.Overlay
			if cfg.ModelsFile != "" {
				if overlay, err = config.LoadOverlay(cfg.ModelsFile); err != nil {
					return err
				}
			}
			catalog, err := providers.NewBuilder(cfg, zap.NewNop()).Build(di.ModelSpecs(cfg, overlay))
			if err != nil {
				return err
			}
			models := catalog.List()

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(models)
			}
			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "CAPABILITY\tID\tPROVIDER\tDEFAULT")
			for _, m := range models {
				def := ""
				if d, ok := catalog.Default(m.Capability); ok && d.ID == m.ID {
					def = "*"
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", m.Capability, m.ID, m.Provider, def)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of a table")
	return cmd
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			cfg, err := config.LoadConfig()
			if err != nil {
				return err
			}
			container, cleanup, err := di.InitializeContainer(ctx, cfg)
			if err != nil {
				return err
			}
			defer cleanup()
			return server.Serve(ctx, container)
		},
	}
}

func newTokenCmd() *cobra.Command {
	var (
		email string
		ttl   time.Duration
	)
	cmd := &cobra.Command{
		Use:   "token USER_ID",
		Short: "Mint a development bearer token signed with SUPABASE_JWT_SECRET",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig()
			if err != nil {
				return err
			}
			if cfg.IsProduction() {
				return fmt.Errorf("refusing to mint tokens in production")
			}
			if cfg.SupabaseJWTSecret == "" {
				return fmt.Errorf("SUPABASE_JWT_SECRET is not set")
			}
			gen, err := pkgauth.NewJWTGenerator(cfg.SupabaseJWTSecret, cfg.JWTIssuer, nil, ttl)
			if err != nil {
				return err
			}
			token, err := gen.GenerateToken(args[0], email)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "email claim")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "token lifetime")
	return cmd
}
