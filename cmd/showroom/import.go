package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/hazyhaar/showroom/pkg/importer"
	"github.com/hazyhaar/showroom/pkg/site"
)

func cmdImport(args []string) {
	fs := flag.NewFlagSet("import", flag.ExitOnError)
	source := fs.String("source", "", "feed ID to import (a brand id or \"projects\")")
	all := fs.Bool("all", false, "import every feed with a URL")
	setURL := fs.String("set-url", "", "store a new URL for -source instead of importing")
	cfg, logger := setup(fs, args)

	m, err := site.LoadManifest(cfg.ContentDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	// Open source DB and seed defaults.
	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	sdb, err := importer.OpenSourceDB(filepath.Join(cfg.DataDir, "sources.db"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening sources.db: %v\n", err)
		os.Exit(1)
	}
	defer sdb.Close()

	im, err := importer.New(m, sdb, importer.WithLogger(logger), importer.WithWorkers(cfg.Workers))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error seeding sources: %v\n", err)
		os.Exit(1)
	}

	if *setURL != "" {
		if *source == "" {
			fmt.Fprintln(os.Stderr, "Error: -set-url needs -source")
			os.Exit(1)
		}
		if err := sdb.SetURL(*source, *setURL); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("[%s] url -> %s\n", *source, *setURL)
		return
	}

	if !*all && *source == "" {
		listSources(sdb)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
	defer cancel()

	var results []importer.Result
	failed := false
	if *all {
		results, err = im.ImportAll(ctx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
			failed = true
		}
	} else {
		res, err := im.Import(ctx, *source)
		if err != nil {
			fmt.Fprintf(os.Stderr, "[%s] ERROR: %v\n", *source, err)
			os.Exit(1)
		}
		results = append(results, *res)
	}

	for _, r := range results {
		fmt.Printf("[%s] OK -> %s (%d/%d records)\n", r.Feed, r.File, r.Stats.Kept, r.Stats.Raw)
	}

	// A snapshot built before the import would shadow the new files.
	if len(results) > 0 {
		if _, err := os.Stat(filepath.Join(cfg.ContentDir, site.SnapshotFile)); err == nil {
			if _, err := site.BuildSnapshot(cfg.ContentDir, site.WithLogger(logger)); err != nil {
				fmt.Fprintf(os.Stderr, "Error rebuilding snapshot: %v\n", err)
				os.Exit(1)
			}
			fmt.Println("snapshot rebuilt")
		}
	}
	if failed {
		os.Exit(1)
	}
}

func listSources(sdb *importer.SourceDB) {
	sources, err := sdb.ListSources()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("Available sources:")
	fmt.Println()
	for _, src := range sources {
		status := ""
		if src.LastStatus != nil {
			status = fmt.Sprintf("  [%d]", *src.LastStatus)
		}
		url := src.SourceURL
		if url == "" {
			url = "(no url)"
		}
		fmt.Printf("  %-14s  %-28s  %s -> %s%s\n", src.FeedID, src.Description, url, src.File, status)
	}
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  showroom import -source <id>")
	fmt.Println("  showroom import -source <id> -set-url <url>")
	fmt.Println("  showroom import -all")
}

func printJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
