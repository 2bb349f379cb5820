package main

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/truckledger/service-logistics/internal/geocode"
)

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Search places as you type, one query per line on stdin",
	Long: `Search places as you type.

Each stdin line is a new query. Queries are debounced and a new one cancels the
previous search, so only the latest query's results are printed.`,
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().Duration("debounce", geocode.DefaultDebounce, "Quiet period before a query is sent")
	searchCmd.Flags().Int("limit", geocode.DefaultLimit, "Maximum suggestions")
}

func runSearch(cmd *cobra.Command, args []string) error {
	debounce, _ := cmd.Flags().GetDuration("debounce")
	limit, _ := cmd.Flags().GetInt("limit")

	searcher := geocode.NewLatestSearcher(current.client, debounce, limit)
	printed := make(chan string, 16)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for r := range searcher.Results() {
			printResult(cmd.OutOrStdout(), r)
			select {
			case printed <- r.Query:
			default:
			}
		}
	}()

	last, submitted := "", false
	scanner := bufio.NewScanner(cmd.InOrStdin())
	for scanner.Scan() {
		last = strings.TrimSpace(scanner.Text())
		submitted = true
		searcher.Submit(last)
	}

	// Give the final query time to finish before shutting down.
	deadline := time.After(debounce + current.timeout)
wait:
	for submitted {
		select {
		case q := <-printed:
			if q == last {
				break wait
			}
		case <-deadline:
			break wait
		}
	}
	searcher.Close()
	<-done
	return scanner.Err()
}

func printResult(w io.Writer, r geocode.Result) {
	if r.Err != nil {
		fmt.Fprintf(w, "%q: search failed: %v\n", r.Query, r.Err)
		return
	}
	fmt.Fprintf(w, "%q: %d results\n", r.Query, len(r.Places))
	for _, p := range r.Places {
		fmt.Fprintf(w, "  %s (%.5f, %.5f)\n", p.DisplayName, p.Lat, p.Lng)
	}
}
