package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/pgokul695/Winterthon/internal/store"
)

// Batch log backends accepted by --log-backend.
const (
	backendSQLite = "sqlite"
	backendJSONL  = "jsonl"
)

var rootCmd = &cobra.Command{
	Use:   "winterthon",
	Short: "Comprehension-question generator",
	Long: "Winterthon turns lecture transcripts, PDFs and YouTube videos into multiple-choice\n" +
		"comprehension questions using a local or hosted language model.",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load .env: %w", err)
		}
		setupLogging(cmd)
		return nil
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite database file (overrides WINTERTHON_DB env var)")
	rootCmd.PersistentFlags().String("log-backend", "", "Batch log backend: sqlite or jsonl (overrides WINTERTHON_LOG_BACKEND, default sqlite)")
	rootCmd.PersistentFlags().String("log-file", "", "Path to the JSONL batch log (overrides WINTERTHON_LOG_FILE env var)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Log debug messages")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(logsCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(modelsCmd)
	rootCmd.AddCommand(quizCmd)
	rootCmd.AddCommand(versionCmd)
}

func setupLogging(cmd *cobra.Command) {
	level := slog.LevelInfo
	if v, _ := cmd.Flags().GetBool("verbose"); v {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}

// resolveDBPath returns the database path using --db flag (highest priority),
// then WINTERTHON_DB env var, then the default XDG path.
func resolveDBPath(cmd *cobra.Command) (string, error) {
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		return p, store.EnsureDir(p)
	}
	return store.DefaultDBPath()
}

// stores holds the sqlite store and the batch log chosen by --log-backend.
// LLM events always go to sqlite.
type stores struct {
	db   *store.Store
	logs store.BatchLogRepo
}

func (s *stores) Close() error {
	return s.db.Close()
}

func openStores(cmd *cobra.Command) (*stores, error) {
	dbPath, err := resolveDBPath(cmd)
	if err != nil {
		return nil, fmt.Errorf("resolve database path: %w", err)
	}
	db, err := store.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	backend, _ := cmd.Flags().GetString("log-backend")
	if backend == "" {
		backend = os.Getenv("WINTERTHON_LOG_BACKEND")
	}

	switch backend {
	case "", backendSQLite:
		return &stores{db: db, logs: db.BatchLogRepo()}, nil
	case backendJSONL:
		path, _ := cmd.Flags().GetString("log-file")
		if path == "" {
			if path, err = store.DefaultLogFilePath(); err != nil {
				db.Close()
				return nil, fmt.Errorf("resolve log file: %w", err)
			}
		}
		logs, err := store.OpenJSONL(path)
		if err != nil {
			db.Close()
			return nil, err
		}
		slog.Debug("using JSONL batch log", "path", path)
		return &stores{db: db, logs: logs}, nil
	default:
		db.Close()
		return nil, fmt.Errorf("unknown log backend %q (want %s or %s)", backend, backendSQLite, backendJSONL)
	}
}
