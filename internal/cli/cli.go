// Package cli implements the non-interactive lookup mode: resolve a
// username, fetch the first page of every category in parallel, and print
// the result to stdout.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/soundbrowse/soundbrowse/internal/api"
	"github.com/soundbrowse/soundbrowse/internal/cache"
	"github.com/soundbrowse/soundbrowse/internal/config"
	"github.com/soundbrowse/soundbrowse/internal/types"
)

// LookupOptions contains options for a one-shot lookup.
type LookupOptions struct {
	Username     string
	OutputFormat string // text, json, yaml
	Categories   []string
	NoCache      bool
}

// lookupResult is the serializable shape printed by json and yaml output.
type lookupResult struct {
	User       *types.User             `json:"user" yaml:"user"`
	Categories map[string][]types.Item `json:"categories" yaml:"categories"`
}

// Lookup resolves a username and prints the first page of each requested
// category.
func Lookup(opts LookupOptions) error {
	if err := config.Initialize(); err != nil {
		return fmt.Errorf("failed to initialize config: %w", err)
	}
	settings, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	categories, err := selectCategories(opts.Categories)
	if err != nil {
		return err
	}

	var store *cache.Store
	if !opts.NoCache {
		if store, err = cache.NewStore(config.CachePath); err != nil {
			fmt.Fprintf(os.Stderr, "warning: page cache unavailable: %v\n", err)
			store = nil
		} else {
			defer store.Close()
		}
	}

	client := api.NewClient(settings)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	user, err := client.ResolveUser(ctx, opts.Username)
	if err != nil {
		return describeError(opts.Username, err)
	}
	if store != nil {
		store.InvalidateOtherUsers(user.ID)
		store.RecordLookup(user.Username, user.ID)
	}

	// First page of every category, fetched in parallel. The client's own
	// semaphore bounds concurrency against the remote service.
	pages := make([]*types.Page, len(categories))
	g, gctx := errgroup.WithContext(ctx)
	for i, category := range categories {
		g.Go(func() error {
			if store != nil {
				if page, ok, err := store.GetPage(user.ID, category, ""); err == nil && ok {
					pages[i] = page
					return nil
				}
			}
			page, err := client.FetchPage(gctx, user.ID, category, "")
			if err != nil {
				return fmt.Errorf("%s: %w", category, err)
			}
			if store != nil {
				store.PutPage(user.ID, category, page)
			}
			pages[i] = page
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return describeError(opts.Username, err)
	}

	return printResult(user, categories, pages, opts.OutputFormat)
}

// selectCategories maps the --category flags to known categories; empty
// means all of them.
func selectCategories(names []string) ([]types.Category, error) {
	if len(names) == 0 {
		return types.Categories, nil
	}

	known := make(map[types.Category]bool, len(types.Categories))
	for _, category := range types.Categories {
		known[category] = true
	}

	var categories []types.Category
	for _, name := range names {
		category := types.Category(strings.ToLower(strings.TrimSpace(name)))
		if !known[category] {
			return nil, fmt.Errorf("unknown category %q (choose from: %s)", name, joinCategories())
		}
		categories = append(categories, category)
	}
	return categories, nil
}

func joinCategories() string {
	names := make([]string, len(types.Categories))
	for i, category := range types.Categories {
		names[i] = string(category)
	}
	return strings.Join(names, ", ")
}

func printResult(user *types.User, categories []types.Category, pages []*types.Page, format string) error {
	switch format {
	case "", "text":
		printText(user, categories, pages)
		return nil

	case "json":
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(buildResult(user, categories, pages))

	case "yaml":
		encoder := yaml.NewEncoder(os.Stdout)
		defer encoder.Close()
		return encoder.Encode(buildResult(user, categories, pages))

	default:
		return fmt.Errorf("unknown output format %q (text, json, yaml)", format)
	}
}

func buildResult(user *types.User, categories []types.Category, pages []*types.Page) lookupResult {
	result := lookupResult{User: user, Categories: make(map[string][]types.Item)}
	for i, category := range categories {
		items := pages[i].Items
		if items == nil {
			items = []types.Item{}
		}
		result.Categories[string(category)] = items
	}
	return result
}

func printText(user *types.User, categories []types.Category, pages []*types.Page) {
	fmt.Printf("%s", user.Username)
	if user.FullName != "" {
		fmt.Printf(" (%s)", user.FullName)
	}
	if user.City != "" {
		fmt.Printf(" - %s", user.City)
	}
	fmt.Printf("\n%d tracks, %d followers, %d following\n", user.TrackCount, user.FollowerCount, user.FollowingCount)
	if user.PermalinkURL != "" {
		fmt.Println(user.PermalinkURL)
	}

	for i, category := range categories {
		page := pages[i]
		fmt.Printf("\n%s (%d", category.Title(), len(page.Items))
		if page.HasMore() {
			fmt.Print("+")
		}
		fmt.Println("):")

		if len(page.Items) == 0 {
			fmt.Println("  (none)")
			continue
		}
		for _, item := range page.Items {
			line := "  " + item.DisplayTitle()
			if item.Duration > 0 {
				seconds := item.Duration / 1000
				line += fmt.Sprintf(" [%d:%02d]", seconds/60, seconds%60)
			}
			if item.PermalinkURL != "" {
				line += "  " + item.PermalinkURL
			}
			fmt.Println(line)
		}
	}
}

// describeError rewords classified API errors for the command line.
func describeError(username string, err error) error {
	kind, ok := api.KindOf(err)
	if !ok {
		return err
	}
	switch kind {
	case api.KindUnresolvedUsername:
		return fmt.Errorf("no such user: %s", username)
	case api.KindRateLimited:
		return fmt.Errorf("rate limited by the service, try again shortly")
	default:
		return err
	}
}
