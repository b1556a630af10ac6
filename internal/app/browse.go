package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/blackwell-systems/readtrack/internal/book"
	"github.com/blackwell-systems/readtrack/internal/loader"
	"github.com/blackwell-systems/readtrack/internal/tui"
	"github.com/blackwell-systems/readtrack/internal/util"
	"github.com/spf13/cobra"
)

func newBrowseCmd() *cobra.Command {
	var (
		authorID string
		query    string
	)

	cmd := &cobra.Command{
		Use:   "browse",
		Short: "Browse books interactively",
		Long: `Open the interactive browser. With no flags it shows trending books;
tab switches the trending window. Results load in batches as you page
forward, so large result sets stay fast.

Examples:
  readtrack browse
  readtrack browse --author OL23919A
  readtrack browse --search "ursula le guin"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !util.IsTTY() {
				return fmt.Errorf("browse needs a terminal; use search/trending/author for scripted output")
			}
			return runBrowse(authorID, query)
		},
	}

	cmd.Flags().StringVar(&authorID, "author", "", "Browse one author's works")
	cmd.Flags().StringVar(&query, "search", "", "Browse search results for a query")

	return cmd
}

func runBrowse(authorID, query string) error {
	var (
		title string
		views []tui.View
	)

	switch {
	case authorID != "":
		authorID = strings.TrimPrefix(authorID, "/authors/")
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Loading.Timeout())
		author, err := svc.Author(ctx, authorID)
		cancel()
		if err != nil {
			return err
		}
		title = author.Name
		views = []tui.View{{Name: "works", Fetch: svc.AuthorWorksFetcher(authorID, author.Name)}}

	case query != "":
		title = fmt.Sprintf("search: %s", query)
		views = []tui.View{{Name: "results", Fetch: searchFetch(query)}}

	default:
		title = "trending"
		for _, tf := range []string{"daily", "weekly", "monthly"} {
			views = append(views, tui.View{Name: tf, Fetch: trendingFetch(tf)})
		}
	}

	return tui.RunBrowser(tui.BrowseConfig{
		Title:   title,
		Views:   views,
		Shelves: shelves,
		Options: loaderOptions(),
		Detail:  fetchDetailText,
	})
}

// trendingFetch adapts the trending endpoint, which has no offsets, to
// the batch shape: one batch, nothing further.
func trendingFetch(timeframe string) loader.FetchFunc {
	return func(ctx context.Context, limit, offset int) (loader.Batch, error) {
		if offset > 0 {
			return loader.Batch{}, nil
		}
		books, err := svc.Trending(ctx, timeframe, limit)
		if err != nil {
			return loader.Batch{}, err
		}
		return loader.Batch{Items: books, Total: len(books)}, nil
	}
}

// searchFetch adapts catalog search. The match count is the paging
// signal here; search responses carry no explicit next link.
func searchFetch(query string) loader.FetchFunc {
	return func(ctx context.Context, limit, offset int) (loader.Batch, error) {
		res, err := svc.Search(ctx, query, limit, offset)
		if err != nil {
			return loader.Batch{}, err
		}
		b := loader.Batch{Items: res.Books, Total: res.Total}
		if len(res.Books) > 0 && offset+len(res.Books) < res.Total {
			b.HasNext = true
			b.NextOffset = offset + len(res.Books)
		}
		return b, nil
	}
}

func fetchDetailText(ctx context.Context, rec book.Record) (string, error) {
	if rec.Source != book.SourceOpenLibrary {
		return tui.FormatDetail(rec, []string{rec.Description}), nil
	}
	d, err := svc.Details(ctx, workID(rec.ID))
	if err != nil {
		return "", err
	}
	extra := []string{}
	if d.Ratings.Count > 0 {
		extra = append(extra, fmt.Sprintf("%.1f/5 (%d ratings)", d.Ratings.Average, d.Ratings.Count))
	}
	extra = append(extra, d.Description)
	return tui.FormatDetail(d.Record, extra), nil
}
