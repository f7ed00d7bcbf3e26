package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"iqdbtag/internal/app"
	"iqdbtag/internal/config"
	"iqdbtag/internal/tagger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

// loadConfig reads the config file (or the defaults when there is none) and
// applies the global flags.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	defaults, err := app.GetDefaults()
	if err != nil {
		return nil, fmt.Errorf("getting defaults: %w", err)
	}

	cfg, err := config.Load(defaults["config_path"], defaults["base_dir"])
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	if dbPath, _ := cmd.Flags().GetString("db-path"); dbPath != "" {
		abs, err := filepath.Abs(dbPath)
		if err != nil {
			return nil, fmt.Errorf("resolving db path: %w", err)
		}
		cfg.Database = config.DatabaseConfig{Type: "sqlite", Path: abs}
	}
	return cfg, nil
}

// newApp reads the config and creates a TaggerApp. The caller must defer app.Close().
// operation identifies the CLI command being run (e.g. "Search", "ShowImage").
func newApp(cmd *cobra.Command, operation string) (*app.TaggerApp, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	verbose, _ := cmd.Flags().GetBool("verbose")
	a, err := app.NewTaggerApp(cfg, operation, verbose)
	if err != nil {
		return nil, fmt.Errorf("initializing app: %w", err)
	}
	return a, nil
}

var rootCmd = &cobra.Command{
	Use:          "iqdbtag",
	Short:        "Tag images by reverse image search on iqdb",
	SilenceUsage: true,
}

// config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		cfg := config.NewConfig(defaults["base_dir"])
		if err := config.Init(defaults["config_path"], cfg); err != nil {
			return fmt.Errorf("failed to initialize config: %w", err)
		}

		fmt.Printf("Configuration initialized at %s\n", defaults["config_path"])
		fmt.Printf("Base Dir: %s\n", defaults["base_dir"])
		fmt.Printf("Database: %s\n", cfg.Database.Path)
		return nil
	},
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "View configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		cfg, err := config.Load(defaults["config_path"], defaults["base_dir"])
		if err != nil {
			return fmt.Errorf("failed to read config: %w", err)
		}

		fmt.Printf("# Configuration from %s\n\n", defaults["config_path"])
		m := &config.Manager{}
		return m.Write(os.Stdout, cfg)
	},
}

// search command
var searchCmd = &cobra.Command{
	Use:   "search PATH",
	Short: "Search an image (or a folder of images) and print matches and tags",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		inputMode, _ := cmd.Flags().GetString("input-mode")
		operation := "Search"
		switch inputMode {
		case "default":
		case "folder":
			operation = "SearchFolder"
		default:
			return fmt.Errorf("unknown input mode: %q", inputMode)
		}

		a, err := newApp(cmd, operation)
		if err != nil {
			return err
		}
		defer a.Close()

		opts, err := searchOptions(cmd, a)
		if err != nil {
			return err
		}
		noPrintTags, _ := cmd.Flags().GetBool("no-print-tags")
		colorize := term.IsTerminal(int(os.Stdout.Fd()))

		if inputMode == "default" {
			report, err := a.Search(cmd.Context(), args[0], opts)
			if err != nil {
				return err
			}
			return tagger.WriteReport(os.Stdout, report, !noPrintTags, colorize)
		}

		var printErr error
		result, err := a.SearchFolder(cmd.Context(), args[0], opts, func(report *tagger.ImageReport) {
			if printErr != nil {
				return
			}
			if _, printErr = fmt.Printf("path:%s\n", report.Path); printErr != nil {
				return
			}
			printErr = tagger.WriteReport(os.Stdout, report, false, colorize)
		})
		if err != nil {
			return err
		}
		if printErr != nil {
			return printErr
		}

		if result.Processed == 0 && len(result.Failures) == 0 {
			fmt.Println("No files found.")
			return nil
		}
		if err := tagger.WriteFailures(os.Stdout, result.Failures); err != nil {
			return err
		}
		if len(result.Failures) > 0 {
			return fmt.Errorf("%d of %d image(s) failed", len(result.Failures), result.Processed+len(result.Failures))
		}
		return nil
	},
}

// searchOptions starts from the config defaults and applies the search flags
// that were given explicitly.
func searchOptions(cmd *cobra.Command, a *app.TaggerApp) (tagger.SearchOptions, error) {
	opts, err := a.SearchOptions()
	if err != nil {
		return opts, err
	}

	flags := cmd.Flags()
	if flags.Changed("place") {
		name, _ := flags.GetString("place")
		if opts.Place, err = tagger.ParsePlace(name); err != nil {
			return opts, err
		}
	}
	if flags.Changed("match-filter") {
		name, _ := flags.GetString("match-filter")
		if opts.MatchFilter, err = tagger.ParseMatchFilter(name); err != nil {
			return opts, err
		}
	}
	if flags.Changed("size") {
		size, _ := flags.GetString("size")
		if opts.Size, err = tagger.ParseSize(size); err != nil {
			return opts, err
		}
		opts.Resize = true
	}
	if resize, _ := flags.GetBool("resize"); resize {
		opts.Resize = true
	}
	opts.WriteTags, _ = flags.GetBool("write-tags")
	opts.Force, _ = flags.GetBool("force")
	return opts, nil
}

// show command
var showCmd = &cobra.Command{
	Use:   "show PATH",
	Short: "Show the cached matches and tags of an image",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd, "ShowImage")
		if err != nil {
			return err
		}
		defer a.Close()

		details, err := a.ShowImage(args[0])
		if err != nil {
			return err
		}

		img := details.Image
		fmt.Printf("Checksum: %s\n", img.Checksum)
		fmt.Printf("Size:     %dx%d\n", img.Width, img.Height)
		fmt.Printf("Path:     %s\n", img.Path)
		if img.Dhash.Valid {
			fmt.Printf("Dhash:    %s\n", img.Dhash.String)
		}
		for _, th := range details.Thumbnails {
			fmt.Printf("Thumb:    %dx%d %s\n", th.Width, th.Height, th.Path)
		}

		if len(details.Entries) == 0 {
			fmt.Println("\nNo matches cached.")
			return nil
		}

		rows := make([][]string, 0, len(details.Entries))
		for _, e := range details.Entries {
			rows = append(rows, []string{
				e.Match.Place().String(),
				strconv.FormatInt(e.Match.ImageMatch.Similarity, 10),
				e.Match.Status().String(),
				e.Match.Netloc(),
				e.Match.Size(),
				e.Match.Rating().String(),
				strconv.Itoa(len(e.Tags)),
				e.Match.Link(),
			})
		}
		fmt.Println()
		fmt.Println(renderTable(
			[]string{"Place", "Similarity", "Status", "Site", "Size", "Rating", "Tags", "URL"},
			rows,
			[]columnAlignment{alignLeft, alignRight, alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignLeft},
		))

		report := &tagger.ImageReport{Entries: details.Entries}
		for _, t := range report.Tags() {
			fmt.Println(tagger.FullName(t))
		}
		return nil
	},
}

// history command
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "View search operation history",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		a, err := newApp(cmd, "GetHistory")
		if err != nil {
			return err
		}
		defer a.Close()

		ops, err := a.GetHistory(limit)
		if err != nil {
			return err
		}

		if len(ops) == 0 {
			fmt.Println("No operations recorded.")
			return nil
		}

		rows := make([][]string, 0, len(ops))
		for _, op := range ops {
			duration := ""
			if op.FinishedAt.Valid {
				d := op.FinishedAt.Time.Sub(op.StartedAt)
				duration = d.Truncate(time.Millisecond).String()
			}
			rows = append(rows, []string{
				strconv.FormatInt(op.ID, 10),
				op.Operation,
				op.StartedAt.Local().Format("2006-01-02 15:04:05"),
				op.Status,
				duration,
				op.Parameters,
			})
		}
		fmt.Println(renderTable(
			[]string{"ID", "Operation", "Started", "Status", "Duration", "Parameters"},
			rows,
			[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignRight, alignLeft},
		))
		return nil
	},
}

// stats command
var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show how much the cache holds",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd, "GetStats")
		if err != nil {
			return err
		}
		defer a.Close()

		counts, err := a.GetStats()
		if err != nil {
			return err
		}

		tables := make([]string, 0, len(counts))
		for name := range counts {
			tables = append(tables, name)
		}
		sort.Strings(tables)

		rows := make([][]string, 0, len(tables))
		for _, name := range tables {
			rows = append(rows, []string{name, strconv.FormatInt(counts[name], 10)})
		}
		fmt.Println(renderTable([]string{"Table", "Rows"}, rows, []columnAlignment{alignLeft, alignRight}))
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().String("db-path", "", "Path to the cache database (overrides the config)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Log debug output")

	// config subcommands
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configListCmd)

	// search flags
	searchCmd.Flags().String("place", "iqdb", "Search place: iqdb or danbooru")
	searchCmd.Flags().Bool("resize", false, "Upload a thumbnail instead of the original image")
	searchCmd.Flags().String("size", "", "Thumbnail size to upload, WIDTHxHEIGHT (implies --resize)")
	searchCmd.Flags().String("match-filter", "default", "Which matches to tag: default or best-match")
	searchCmd.Flags().Bool("write-tags", false, "Append tags to <image>.txt")
	searchCmd.Flags().String("input-mode", "default", "Input mode: default (one image) or folder")
	searchCmd.Flags().Bool("no-print-tags", false, "Do not print tags (folder mode never prints them)")
	searchCmd.Flags().Bool("force", false, "Search again even when matches are cached")

	// root commands
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().IntP("limit", "n", 50, "Maximum number of operations to show")
	rootCmd.AddCommand(statsCmd)
}
