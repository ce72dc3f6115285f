package main

import (
	"bufio"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/viant/embedstore/config"
	"github.com/viant/embedstore/docstore"
	"github.com/viant/embedstore/engine"
	"github.com/viant/embedstore/index"
	"github.com/viant/embedstore/index/bruteforce"
	"github.com/viant/embedstore/internal/logging"
	"github.com/viant/embedstore/store"
	"github.com/viant/embedstore/vector"
)

// app carries the state shared by all subcommands.
type app struct {
	out, errOut io.Writer

	configPath string
	dsn        string
	table      string
	logLevel   string

	cfg    *config.Config
	logger *slog.Logger
}

func newRootCmd(out, errOut io.Writer) *cobra.Command {
	a := &app{out: out, errOut: errOut}

	rootCmd := &cobra.Command{
		Use:           "embedstore",
		Short:         "Exact top-K similarity search over stored embeddings",
		Long:          `Stores (id, embedding, payload) records in SQLite and ranks them against a query vector by cosine similarity.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init()
		},
	}
	rootCmd.SetOut(out)
	rootCmd.SetErr(errOut)
	rootCmd.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "YAML config file")
	rootCmd.PersistentFlags().StringVar(&a.dsn, "db", "", "SQLite database path (overrides config)")
	rootCmd.PersistentFlags().StringVar(&a.table, "table", "", "records table (overrides config)")
	rootCmd.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "debug|info|warn|error (overrides config)")

	rootCmd.AddCommand(a.importCmd(), a.searchCmd(), a.statsCmd(), a.removeCmd())

	return rootCmd
}

func (a *app) init() error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if a.dsn != "" {
		cfg.Database.DSN = a.dsn
	}
	if a.table != "" {
		cfg.Database.Table = a.table
	}
	if a.logLevel != "" {
		cfg.Log.Level = a.logLevel
	}
	logger, err := logging.New(a.errOut, cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return err
	}
	a.cfg, a.logger = cfg, logger
	return nil
}

// open connects to the configured database and its records table.
func (a *app) open(ctx context.Context) (*sql.DB, *docstore.Store, error) {
	db, err := engine.Open(a.cfg.Database.DSN)
	if err != nil {
		return nil, nil, err
	}
	docs, err := docstore.New(ctx, db,
		docstore.WithTable(a.cfg.Database.Table),
		docstore.WithLogger(a.logger))
	if err != nil {
		_ = db.Close()
		return nil, nil, err
	}
	return db, docs, nil
}

// load opens the database and bulk-loads every record into memory.
func (a *app) load(ctx context.Context) (*store.Store, *docstore.Store, func(), error) {
	db, docs, err := a.open(ctx)
	if err != nil {
		return nil, nil, nil, err
	}
	mem := store.New(store.WithLogger(a.logger))
	if _, err := docs.Load(ctx, mem); err != nil {
		_ = db.Close()
		return nil, nil, nil, err
	}
	return mem, docs, func() { _ = db.Close() }, nil
}

// importLine is one JSON line of an import file.
type importLine struct {
	ID      string            `json:"id"`
	Vector  vector.Components `json:"vector"`
	Payload json.RawMessage   `json:"payload,omitempty"`
}

func (a *app) importCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <file.jsonl>",
		Short: `Import records from JSON lines ({"id", "vector", "payload"})`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			records, err := readRecords(args[0])
			if err != nil {
				return err
			}
			mem, docs, closeDB, err := a.load(ctx)
			if err != nil {
				return err
			}
			defer closeDB()

			existing := mem.Len()
			// validates dimensions, values and ids against what is stored
			if err := mem.BulkInsert(records); err != nil {
				return err
			}
			saved := make([]store.Record, 0, len(records))
			for r := range mem.Scan() {
				if existing > 0 {
					existing--
					continue
				}
				saved = append(saved, r)
			}
			if err := docs.Save(ctx, saved); err != nil {
				return err
			}
			a.logger.Info("import finished", "file", args[0], "records", len(saved), "dim", mem.Dimension())
			color.New(color.FgGreen).Fprintf(a.out, "✓ Imported %s records (%d dimensions)\n",
				humanize.Comma(int64(len(saved))), mem.Dimension())
			return nil
		},
	}
}

func readRecords(path string) ([]store.Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var records []store.Record
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		raw := scanner.Bytes()
		if len(raw) == 0 {
			continue
		}
		var in importLine
		if err := json.Unmarshal(raw, &in); err != nil {
			return nil, fmt.Errorf("%s:%d: %w", path, line, err)
		}
		rec := store.Record{ID: in.ID, Vector: in.Vector}
		// an explicit null payload is the same as none
		if len(in.Payload) > 0 && string(in.Payload) != "null" {
			rec.Payload = in.Payload
		}
		records = append(records, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return records, nil
}

func (a *app) searchCmd() *cobra.Command {
	var (
		rawVector string
		batchPath string
		k         int
		metric    string
		asJSON    bool
	)
	cmd := &cobra.Command{
		Use:   "search",
		Short: "Rank stored records against a query vector",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if metric == "" {
				metric = a.cfg.Search.Metric
			}
			m, err := vector.ParseMetric(metric)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("top-k") {
				k = a.cfg.Search.TopK
			}
			var queries [][]float32
			if batchPath != "" {
				if queries, err = readQueries(batchPath); err != nil {
					return err
				}
			} else {
				query, err := vector.ParseVector(rawVector)
				if err != nil {
					return err
				}
				queries = [][]float32{query}
			}

			mem, _, closeDB, err := a.load(cmd.Context())
			if err != nil {
				return err
			}
			defer closeDB()

			ranker := bruteforce.New(
				bruteforce.WithMetric(m),
				bruteforce.WithWorkers(a.cfg.Search.Workers),
				bruteforce.WithLogger(a.logger))
			batch, err := ranker.SearchBatch(cmd.Context(), mem, queries, k)
			if err != nil {
				// a single query reports its own error without the batch position
				if inner := errors.Unwrap(err); batchPath == "" && inner != nil {
					return inner
				}
				return err
			}
			if asJSON {
				enc := json.NewEncoder(a.out)
				enc.SetIndent("", "  ")
				if batchPath == "" {
					return enc.Encode(batch[0])
				}
				return enc.Encode(batch)
			}
			for i, results := range batch {
				if i > 0 {
					fmt.Fprintln(a.out)
				}
				printResults(a.out, m, results)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&rawVector, "vector", "v", "", "query vector as JSON array, CSV or base64 BLOB")
	cmd.Flags().StringVarP(&batchPath, "batch", "b", "", "file with one query vector per line")
	cmd.Flags().IntVarP(&k, "top-k", "k", 0, "number of results (default from config)")
	cmd.Flags().StringVarP(&metric, "metric", "m", "", "cosine|dot|euclidean (default from config)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print results as JSON")
	cmd.MarkFlagsOneRequired("vector", "batch")
	cmd.MarkFlagsMutuallyExclusive("vector", "batch")
	return cmd
}

func readQueries(path string) ([][]float32, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var queries [][]float32
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		raw := strings.TrimSpace(scanner.Text())
		if raw == "" {
			continue
		}
		q, err := vector.ParseVector(raw)
		if err != nil {
			return nil, fmt.Errorf("%s:%d: %w", path, line, err)
		}
		queries = append(queries, q)
	}
	return queries, scanner.Err()
}

func printResults(w io.Writer, m vector.Metric, results []index.Result) {
	cyan := color.New(color.FgCyan, color.Bold)
	gray := color.New(color.FgHiBlack)
	fmt.Fprintf(w, "Found %d results (%s):\n\n", len(results), m)
	for i, r := range results {
		cyan.Fprintf(w, "%d. %s", i+1, r.ID)
		if m == vector.Cosine {
			fmt.Fprintf(w, "  similarity %.4f (%.2f%%)\n", r.Score, r.Score*100)
		} else {
			fmt.Fprintf(w, "  score %.4f\n", r.Score)
		}
		if raw, ok := r.Payload.(json.RawMessage); ok {
			gray.Fprintf(w, "   %s\n", raw)
		}
	}
}

func (a *app) statsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show record count and dimensionality",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			mem, _, closeDB, err := a.load(cmd.Context())
			if err != nil {
				return err
			}
			defer closeDB()
			fmt.Fprintf(a.out, "records:    %s\n", humanize.Comma(int64(mem.Len())))
			fmt.Fprintf(a.out, "dimensions: %d\n", mem.Dimension())
			fmt.Fprintf(a.out, "table:      %s\n", a.cfg.Database.Table)
			return nil
		},
	}
}

func (a *app) removeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <id>...",
		Short: "Remove records by id; nothing is removed if any id is missing",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, docs, err := a.open(cmd.Context())
			if err != nil {
				return err
			}
			defer db.Close()
			// all ids or none
			if err := docs.RemoveAll(cmd.Context(), args...); err != nil {
				return err
			}
			color.New(color.FgGreen).Fprintf(a.out, "✓ Removed %s records\n", humanize.Comma(int64(len(args))))
			return nil
		},
	}
}
