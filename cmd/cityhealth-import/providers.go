package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/cityhealth/directory/internal/config"
	"github.com/cityhealth/directory/internal/db"
	"github.com/cityhealth/directory/internal/db/memory"
	dbMongo "github.com/cityhealth/directory/internal/db/mongo"
	"github.com/cityhealth/directory/internal/db/retry"
	"github.com/cityhealth/directory/internal/importer"
	logpkg "github.com/cityhealth/directory/internal/logger"
	providerrepo "github.com/cityhealth/directory/internal/repository/provider"
)

var (
	importVerify bool
	importDryRun bool
	importJSON   bool
)

// openRepository connects the provider repository. Replaced in tests.
var openRepository = func(ctx context.Context) (importer.Repository, func(), *zap.Logger, error) {
	env := envName
	if env == "" {
		env = config.GetEnv()
	}
	cfg, err := config.Load(env)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load config: %w", err)
	}
	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("create logger: %w", err)
	}

	var store db.DocumentStore
	switch cfg.Database.Driver {
	case "mongo":
		mongoStore, err := dbMongo.NewStore(ctx, dbMongo.Config{URI: cfg.Database.URI, Database: cfg.Database.Name})
		if err != nil {
			return nil, nil, nil, fmt.Errorf("mongo: %w", err)
		}
		timeout := time.Duration(cfg.Database.ReadinessTimeout) * time.Second
		if err := mongoStore.WaitForReady(ctx, timeout); err != nil {
			mongoStore.Close()
			return nil, nil, nil, fmt.Errorf("mongo not ready: %w", err)
		}
		store = retry.New(mongoStore, retry.DefaultPolicy, logger)
	default:
		logger.Warn("Importing into the in-memory store; records are discarded on exit")
		store = memory.NewStore()
	}

	repo := providerrepo.New(store)
	if ix, ok := store.(db.Indexer); ok {
		if err := repo.EnsureIndexes(ctx, ix); err != nil {
			store.Close()
			return nil, nil, nil, fmt.Errorf("ensure indexes: %w", err)
		}
	}
	closeFn := func() {
		store.Close()
		_ = logger.Sync()
	}
	return repo, closeFn, logger, nil
}

var providersCmd = &cobra.Command{
	Use:   "providers <file.yaml|file.xlsx>",
	Short: "Upsert providers from a YAML or XLSX file",
	Long: `Reads provider records and upserts them by ID. Rows without an ID get a new one.
Invalid rows are reported and skipped; existing view counters are preserved.`,
	Args: cobra.ExactArgs(1),
	RunE: runProviders,
}

func init() {
	providersCmd.Flags().BoolVar(&importVerify, "verify", false, "mark every imported provider as verified")
	providersCmd.Flags().BoolVar(&importDryRun, "dry-run", false, "validate without writing")
	providersCmd.Flags().BoolVar(&importJSON, "json", false, "print the report as JSON")
	rootCmd.AddCommand(providersCmd)
}

func runProviders(cmd *cobra.Command, args []string) error {
	rows, err := importer.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("read input: %w", err)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	repo, closeFn, logger, err := openRepository(ctx)
	if err != nil {
		return err
	}
	defer closeFn()

	rep, err := importer.New(repo, logger).Import(ctx, rows, importer.Options{
		Verify: importVerify,
		DryRun: importDryRun,
	})
	if printErr := printReport(cmd, &rep); printErr != nil {
		return errors.Join(err, printErr)
	}
	if err != nil {
		return fmt.Errorf("import failed: %w", err)
	}
	return nil
}

type reportJSON struct {
	Total    int         `json:"total"`
	Imported int         `json:"imported"`
	Rejected []rejection `json:"rejected"`
}

type rejection struct {
	Row    int    `json:"row"`
	ID     string `json:"id"`
	Reason string `json:"reason"`
}

func printReport(cmd *cobra.Command, rep *importer.Report) error {
	if importJSON {
		out := reportJSON{Total: rep.Total, Imported: rep.Imported, Rejected: []rejection{}}
		for _, r := range rep.Rejected {
			out.Rejected = append(out.Rejected, rejection{Row: r.Source, ID: r.ID, Reason: r.Err.Error()})
		}
		data, err := json.MarshalIndent(out, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal report: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	verb := "Imported"
	if importDryRun {
		verb = "Validated"
	}
	cmd.Printf("%s %d of %d providers.\n", verb, rep.Imported, rep.Total)
	for _, r := range rep.Rejected {
		cmd.Printf("  rejected %s\n", r.Error())
	}
	return nil
}
