package app

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var validTimeframes = map[string]bool{
	"daily": true, "weekly": true, "monthly": true, "yearly": true, "forever": true,
}

func newTrendingCmd() *cobra.Command {
	var (
		timeframe string
		limit     int
		jsonOut   bool
	)

	cmd := &cobra.Command{
		Use:   "trending",
		Short: "Show currently trending books",
		Long: `Show what readers are borrowing and logging right now. Cached for an
hour per timeframe.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if timeframe == "" {
				timeframe = cfg.Defaults.Timeframe
			}
			if !validTimeframes[timeframe] {
				return fmt.Errorf("invalid timeframe %q (daily, weekly, monthly, yearly, forever)", timeframe)
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), cfg.Loading.Timeout())
			defer cancel()

			books, err := svc.Trending(ctx, timeframe, limit)
			if err != nil {
				return err
			}

			if jsonOut {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(books)
			}

			if len(books) == 0 {
				fmt.Println("Nothing trending right now.")
				return nil
			}
			header("── Trending (%s)", timeframe)
			printRecords(books, 1)
			return nil
		},
	}

	cmd.Flags().StringVar(&timeframe, "timeframe", "", "Trending window: daily, weekly, monthly, yearly, forever")
	cmd.Flags().IntVar(&limit, "limit", 20, "Number of books to show")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output as JSON")

	return cmd
}
