package app

import (
	"fmt"
	"os"

	"github.com/blackwell-systems/readtrack/internal/bookdata"
	"github.com/blackwell-systems/readtrack/internal/cache"
	"github.com/blackwell-systems/readtrack/internal/config"
	"github.com/blackwell-systems/readtrack/internal/googlebooks"
	"github.com/blackwell-systems/readtrack/internal/openlibrary"
	"github.com/blackwell-systems/readtrack/internal/shelf"
	"github.com/blackwell-systems/readtrack/internal/storage"
	"github.com/blackwell-systems/readtrack/internal/tui"
	"github.com/blackwell-systems/readtrack/internal/util"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	cfg     *config.Config
	svc     *bookdata.Service
	shelves *shelf.Store

	flagNoColor       bool
	flagNoInteractive bool
)

var rootCmd = &cobra.Command{
	Use:   "readtrack",
	Short: "Track your reading from the terminal",
	Long: `readtrack is a reading tracker backed by the Open Library catalog.

Search and browse books, keep want-to-read / currently-reading / finished
shelves, and record page progress and notes. All state lives in a local
JSON file; no account or server required.

Run 'readtrack' with no arguments in a terminal to browse trending books.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if tui.ShouldUseTUI(cmd) {
			return runBrowse("", "")
		}
		return cmd.Help()
	},
}

// Execute is the entry point called from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, color.RedString("error:"), err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&flagNoColor, "no-color", false, "Disable colored output")
	rootCmd.PersistentFlags().BoolVar(&flagNoInteractive, "no-interactive", false, "Disable interactive TUI mode")

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		util.InitColor(flagNoColor)

		var err error
		cfg, err = config.Load()
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}

		if err := util.EnsureDir(cfg.Defaults.DataDir); err != nil {
			return fmt.Errorf("creating data dir: %w", err)
		}

		stateKV, err := storage.Open(cfg.StatePath())
		if err != nil {
			return fmt.Errorf("opening state: %w", err)
		}
		shelves = shelf.NewStore(stateKV)

		cacheKV, err := storage.Open(cfg.CachePath())
		if err != nil {
			return fmt.Errorf("opening cache: %w", err)
		}

		ol := openlibrary.New(cfg.Catalog.APIBase)
		var gb *googlebooks.Client
		if cfg.HasGoogleKey() {
			gb = googlebooks.New(cfg.Google.Key, cfg.Google.APIBase)
		}
		bookCache := cache.New(cacheKV)
		// Entries older than the longest TTL can never be served again.
		_, _ = bookCache.Prune(cache.SearchTTL)
		svc = bookdata.New(ol, gb, bookCache)
		return nil
	}

	// Register sub-commands.
	rootCmd.AddCommand(
		newSearchCmd(),
		newTrendingCmd(),
		newAuthorCmd(),
		newInfoCmd(),
		newAddCmd(),
		newShelvesCmd(),
		newMoveCmd(),
		newRemoveCmd(),
		newProgressCmd(),
		newTimelineCmd(),
		newBrowseCmd(),
		newVersionCmd(),
		newCompletionCmd(),
	)
}

// ok prints a green success line.
func ok(format string, a ...interface{}) {
	fmt.Println(color.GreenString("✓"), fmt.Sprintf(format, a...))
}

// warn prints a yellow warning line.
func warn(format string, a ...interface{}) {
	fmt.Fprintln(os.Stderr, color.YellowString("!"), fmt.Sprintf(format, a...))
}

// header prints a cyan section heading.
func header(format string, a ...interface{}) {
	fmt.Println(color.CyanString(fmt.Sprintf(format, a...)))
}
