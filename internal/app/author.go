package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/blackwell-systems/readtrack/internal/controller"
	"github.com/blackwell-systems/readtrack/internal/loader"
	"github.com/spf13/cobra"
)

func loaderOptions() loader.Options {
	return loader.Options{
		BatchSize: cfg.Loading.BatchSize,
		PageSize:  cfg.Loading.PageSize,
		Pause:     cfg.Loading.Pause(),
		Timeout:   cfg.Loading.Timeout(),
	}
}

func newAuthorCmd() *cobra.Command {
	var (
		page    int
		all     bool
		jsonOut bool
	)

	cmd := &cobra.Command{
		Use:   "author <author-id>",
		Short: "List an author's works",
		Long: `List works by an Open Library author ID (e.g. OL23919A). Works are
fetched in batches as you page through them; --all fetches everything.

Find author IDs with: readtrack search <name>`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			authorID := strings.TrimPrefix(args[0], "/authors/")

			ctx, cancel := context.WithTimeout(cmd.Context(), cfg.Loading.Timeout())
			author, err := svc.Author(ctx, authorID)
			cancel()
			if err != nil {
				return err
			}

			fetch := svc.AuthorWorksFetcher(authorID, author.Name)
			firstCtx, cancel := context.WithTimeout(cmd.Context(), cfg.Loading.Timeout())
			first, err := fetch(firstCtx, cfg.Loading.BatchSize, 0)
			cancel()
			if err != nil {
				return err
			}

			ctl := controller.NewList(fetch, shelves, loaderOptions())
			if err := ctl.Init(first); err != nil {
				return err
			}

			if all {
				if _, err := ctl.LastPageRequested(cmd.Context()); err != nil {
					return describeLoadError(err)
				}
			} else if page > 1 {
				if _, err := ctl.PageRequested(cmd.Context(), page); err != nil {
					return describeLoadError(err)
				}
			}

			if jsonOut {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				if all {
					return enc.Encode(ctl.View())
				}
				return enc.Encode(ctl.PageItems())
			}

			header("── %s  (%d works)", author.Name, first.Total)
			if all {
				printRecords(ctl.View(), 1)
				return nil
			}

			items := ctl.PageItems()
			start := (ctl.CurrentPage()-1)*cfg.Loading.PageSize + 1
			printRecords(items, start)

			p := ctl.Loader().Progress()
			fmt.Printf("\npage %d of %d", ctl.CurrentPage(), ctl.EffectiveTotalPages())
			if p.HasMore {
				fmt.Printf("  (%d of %d loaded — next: --page %d)", p.Loaded, p.Total, ctl.CurrentPage()+1)
			}
			fmt.Println()
			return nil
		},
	}

	cmd.Flags().IntVar(&page, "page", 1, "Page of works to show")
	cmd.Flags().BoolVar(&all, "all", false, "Fetch and list every work")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output as JSON")

	return cmd
}

// describeLoadError keeps partial-load failures actionable: the batches
// that landed stay cached in the session, and retrying resumes where the
// load stopped.
func describeLoadError(err error) error {
	if errors.Is(err, loader.ErrTimeout) {
		return fmt.Errorf("the catalog took too long to respond; try again (loaded batches are kept)")
	}
	return err
}
