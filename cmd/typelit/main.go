// Package main provides the CLI entrypoint for typelit.
package main

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/typelit/typelit/internal/config"
	"github.com/typelit/typelit/internal/model"
	"github.com/typelit/typelit/internal/pipeline"
	"github.com/typelit/typelit/internal/source"
	"github.com/typelit/typelit/internal/stats"
	"github.com/typelit/typelit/internal/store"
	"github.com/typelit/typelit/internal/tui"
)

var (
	practiceDifficulty string
	practiceRemoteURL  string

	processBooks string

	statsDifficulty string
	statsSince      string
	statsLast       int
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "typelit",
		Short:         "Typing trainer built on literary passages",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runPracticeCmd,
	}

	rootCmd.Flags().StringVar(&practiceDifficulty, "difficulty", "", "tier to practice (beginner, intermediate, expert)")
	rootCmd.Flags().StringVar(&practiceRemoteURL, "remote-url", "", "base URL of a remote passage service")

	rootCmd.AddCommand(newProcessCmd())
	rootCmd.AddCommand(newStatsCmd())
	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newTiersCmd())

	return rootCmd
}

func runPracticeCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyStringConfig(cmd, "difficulty", &practiceDifficulty, fileCfg.Practice.Difficulty)
	applyStringConfig(cmd, "remote-url", &practiceRemoteURL, fileCfg.Practice.RemoteURL)

	var difficulty model.Difficulty
	if practiceDifficulty != "" {
		difficulty, err = model.ParseDifficulty(practiceDifficulty)
		if err != nil {
			return err
		}
	}

	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()

	var remote *source.RemoteSource
	if practiceRemoteURL != "" {
		remote = source.NewRemoteSource(practiceRemoteURL)
	}

	ui := tui.NewModel(st, remote, difficulty)
	program := tea.NewProgram(ui, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}

func newProcessCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "process",
		Short: "Run the passage curation pipeline over configured books",
		Args:  cobra.NoArgs,
		RunE:  runProcessCmd,
	}
	cmd.Flags().StringVar(&processBooks, "books", "", "comma-separated book ids (default: all)")
	return cmd
}

func runProcessCmd(_ *cobra.Command, _ []string) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	books, err := fileCfg.BookConfigs()
	if err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	books, err = filterBooks(books, processBooks)
	if err != nil {
		return err
	}
	if len(books) == 0 {
		return fmt.Errorf("no books configured; run: typelit config")
	}

	logger, err := zap.NewProduction()
	if err != nil {
		return fmt.Errorf("failed to init logger: %w", err)
	}
	defer func() {
		// Best-effort flush; stderr sync fails on some platforms.
		_ = logger.Sync()
	}()

	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()

	ctx := context.Background()
	fetcher := source.NewFetcher(config.DefaultBookCacheDir())
	builder := pipeline.NewBuilder(logger)

	perTier := make(map[model.Difficulty][]model.Passage)
	seen := make(map[model.Difficulty]map[string]struct{})
	for _, book := range books {
		raw, err := fetcher.Fetch(ctx, book)
		if err != nil {
			logger.Warn("failed to fetch book",
				zap.String("book", book.ID),
				zap.Error(err))
			continue
		}
		for _, p := range builder.Build(book, raw) {
			if len(perTier[book.Difficulty]) >= pipeline.PassageCap {
				break
			}
			if seen[book.Difficulty] == nil {
				seen[book.Difficulty] = make(map[string]struct{})
			}
			if _, dup := seen[book.Difficulty][p.Fingerprint]; dup {
				continue
			}
			seen[book.Difficulty][p.Fingerprint] = struct{}{}
			perTier[book.Difficulty] = append(perTier[book.Difficulty], p)
		}
	}

	for difficulty, passages := range perTier {
		if err := st.ReplacePassages(ctx, difficulty, passages); err != nil {
			return fmt.Errorf("failed to store %s passages: %w", difficulty, err)
		}
		logger.Info("stored tier",
			zap.String("difficulty", string(difficulty)),
			zap.Int("passages", len(passages)))
	}
	return nil
}

func filterBooks(books []model.BookConfig, filter string) ([]model.BookConfig, error) {
	filter = strings.TrimSpace(filter)
	if filter == "" {
		return books, nil
	}
	wanted := make(map[string]struct{})
	for _, id := range strings.Split(filter, ",") {
		id = strings.TrimSpace(id)
		if id != "" {
			wanted[id] = struct{}{}
		}
	}
	out := make([]model.BookConfig, 0, len(wanted))
	for _, book := range books {
		if _, ok := wanted[book.ID]; ok {
			out = append(out, book)
			delete(wanted, book.ID)
		}
	}
	for id := range wanted {
		return nil, fmt.Errorf("unknown book id %q", id)
	}
	return out, nil
}

func newStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show session stats",
		Args:  cobra.NoArgs,
		RunE:  runStatsCmd,
	}
	cmd.Flags().StringVar(&statsDifficulty, "difficulty", "", "tier filter")
	cmd.Flags().StringVar(&statsSince, "since", "", "start date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&statsLast, "last", 0, "limit to last N sessions")
	return cmd
}

func runStatsCmd(cmd *cobra.Command, _ []string) error {
	if statsDifficulty != "" {
		if _, err := model.ParseDifficulty(statsDifficulty); err != nil {
			return err
		}
	}
	var sinceTime *time.Time
	if statsSince != "" {
		parsed, err := time.ParseInLocation("2006-01-02", statsSince, time.Local)
		if err != nil {
			return fmt.Errorf("invalid --since value: %w", err)
		}
		sinceTime = &parsed
	}

	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()

	results, err := st.ListResults(context.Background(), model.StatsConfig{
		Difficulty: statsDifficulty,
		Since:      sinceTime,
		Last:       statsLast,
	})
	if err != nil {
		return fmt.Errorf("failed to load results: %w", err)
	}

	width := stats.SparklineWidth(stats.TerminalWidth())
	if err := stats.RenderSummary(cmd.OutOrStdout(), results, width); err != nil {
		return fmt.Errorf("failed to write stats: %w", err)
	}
	return nil
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := config.DefaultConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	if len(parts) == 0 {
		return fmt.Errorf("editor command is empty")
	}
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func newTiersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tiers",
		Short: "List tiers with stored passage counts",
		Args:  cobra.NoArgs,
		RunE:  runTiersCmd,
	}
}

func runTiersCmd(cmd *cobra.Command, _ []string) error {
	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()

	counts, err := st.PassageCounts(context.Background())
	if err != nil {
		return fmt.Errorf("failed to load passage counts: %w", err)
	}
	for _, d := range model.Difficulties {
		if _, err := fmt.Fprintf(cmd.OutOrStdout(), "%-13s %d\n", d, counts[d]); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	return nil
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func defaultConfigTemplate() string {
	return `# typelit configuration
# Uncomment a value to enable it. CLI flags override config values.

[practice]
# difficulty = "beginner"   # Default tier (beginner, intermediate, expert)
# remote-url = ""           # Base URL of a remote passage service

# [[book]]
# id = "crusoe"
# title = "Robinson Crusoe"
# author = "Daniel Defoe"
# difficulty = "intermediate"
# source = "https://www.gutenberg.org/cache/epub/521/pg521.txt"
# target-grade = 7.0        # Defaults per tier: 3 / 7 / 11
# min-length = 100
# max-length = 300
`
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
