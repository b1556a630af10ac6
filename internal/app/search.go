package app

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newSearchCmd() *cobra.Command {
	var (
		limit   int
		page    int
		by      string
		jsonOut bool
	)

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search the catalog by title, author, or keyword",
		Long: `Search the Open Library catalog. Results are cached locally, so
repeating a query is instant and works offline.

Examples:
  readtrack search "the left hand of darkness"
  readtrack search tolkien --page 2
  readtrack search "le guin" --by author
  readtrack search dune --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if limit <= 0 {
				limit = cfg.Defaults.SearchLimit
			}
			if page < 1 {
				page = 1
			}
			offset := (page - 1) * limit

			ctx, cancel := context.WithTimeout(cmd.Context(), cfg.Loading.Timeout())
			defer cancel()

			if by != "" {
				switch by {
				case "author", "title", "subject":
				default:
					return fmt.Errorf("--by must be author, title, or subject, got %q", by)
				}
				books, err := svc.SearchBy(ctx, by, args[0], limit)
				if err != nil {
					return err
				}
				if jsonOut {
					enc := json.NewEncoder(os.Stdout)
					enc.SetIndent("", "  ")
					return enc.Encode(books)
				}
				if len(books) == 0 {
					fmt.Println("No books found.")
					return nil
				}
				header("── %s %q  (%d results)", by, args[0], len(books))
				printRecords(books, 1)
				return nil
			}

			result, err := svc.Search(ctx, args[0], limit, offset)
			if err != nil {
				return err
			}

			if jsonOut {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(result)
			}

			if len(result.Books) == 0 {
				fmt.Println("No books found.")
				return nil
			}

			header("── %q  (%d matches, page %d)", args[0], result.Total, page)
			printRecords(result.Books, offset+1)
			if offset+len(result.Books) < result.Total {
				fmt.Printf("\nmore results: readtrack search %q --page %d\n", args[0], page+1)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 0, "Results per page (default from config)")
	cmd.Flags().IntVar(&page, "page", 1, "Result page")
	cmd.Flags().StringVar(&by, "by", "", "Restrict the match to one field: author, title, or subject")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output as JSON")

	return cmd
}
