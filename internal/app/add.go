package app

import (
	"context"
	"fmt"

	"github.com/blackwell-systems/readtrack/internal/book"
	"github.com/blackwell-systems/readtrack/internal/shelf"
	"github.com/spf13/cobra"
)

func newAddCmd() *cobra.Command {
	var (
		shelfName string
		manual    bool
		lookup    bool
		title     string
		author    string
		pages     int
	)

	cmd := &cobra.Command{
		Use:   "add [work-id]",
		Short: "Add a book to a shelf",
		Long: `Add a book to one of your shelves (default: want-to-read).

Catalog books are added by work ID; books the catalog does not carry can
be added manually.

Examples:
  readtrack add OL45883W
  readtrack add ol:OL45883W --shelf reading
  readtrack add --manual --title "Self-Published Gem" --author "A. Nonymous" --pages 180
  readtrack add --manual --lookup --title "Piranesi" --author "Susanna Clarke"`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			target, err := shelf.Parse(shelfName)
			if err != nil {
				return err
			}

			var rec book.Record
			switch {
			case manual:
				if title == "" {
					return fmt.Errorf("--manual requires --title")
				}
				rec = book.Record{
					ID:        book.NewManualID(),
					Source:    book.SourceManual,
					Title:     title,
					Author:    author,
					PageCount: pages,
				}
				if lookup {
					ctx, cancel := context.WithTimeout(cmd.Context(), cfg.Loading.Timeout())
					defer cancel()
					hits, err := svc.GoogleSearch(ctx, title, author, 1)
					if err != nil {
						return err
					}
					if len(hits) > 0 {
						rec = hits[0]
					} else {
						warn("no match for %q; adding as a manual entry", title)
					}
				}

			case len(args) == 1:
				ctx, cancel := context.WithTimeout(cmd.Context(), 2*cfg.Loading.Timeout())
				defer cancel()
				d, err := svc.Details(ctx, workID(args[0]))
				if err != nil {
					return err
				}
				rec = d.Record

			default:
				return fmt.Errorf("provide a work ID or use --manual")
			}

			if target == shelf.Finished {
				return fmt.Errorf("finished books need reading dates; add to a shelf first, then: readtrack move %q --to finished", rec.Title)
			}

			added, err := shelves.Add(shelf.WantToRead, rec)
			if err != nil {
				return err
			}
			if !added {
				existing, _, _ := shelves.FindShelfOf(rec.ID)
				warn("%q is already on your %s shelf", rec.Title, existing.Label())
				return nil
			}
			if target == shelf.CurrentlyReading {
				// Route through the move so start date and page progress
				// get initialized.
				if _, err := shelves.MoveToReading(shelf.WantToRead, rec.ID, book.ReadingDetails{}); err != nil {
					return err
				}
			}
			ok("added %q to %s", rec.Title, target.Label())
			if rec.Source == book.SourceManual {
				fmt.Printf("  id: %s\n", rec.ID)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&shelfName, "shelf", "want", "Target shelf: want, reading, finished")
	cmd.Flags().BoolVar(&manual, "manual", false, "Add a book not in the catalog")
	cmd.Flags().BoolVar(&lookup, "lookup", false, "With --manual, match --title/--author against the book-search backend first")
	cmd.Flags().StringVar(&title, "title", "", "Title for --manual")
	cmd.Flags().StringVar(&author, "author", "", "Author for --manual")
	cmd.Flags().IntVar(&pages, "pages", 0, "Page count for --manual")

	return cmd
}
