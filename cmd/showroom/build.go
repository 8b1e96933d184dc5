package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hazyhaar/showroom/pkg/search"
	"github.com/hazyhaar/showroom/pkg/searchlog"
	"github.com/hazyhaar/showroom/pkg/site"
)

type buildReport struct {
	Version string            `json:"version"`
	Counts  site.Counts       `json:"counts"`
	Check   *site.CheckReport `json:"check"`
}

func cmdBuild(args []string) {
	fs := flag.NewFlagSet("build", flag.ExitOnError)
	strict := fs.Bool("strict", false, "fail on slug duplicates and ambiguous search terms")
	cfg, logger := setup(fs, args)

	s, err := site.BuildSnapshot(cfg.ContentDir, site.WithLogger(logger))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	report := s.Check()
	printJSON(buildReport{Version: s.Version(), Counts: s.Counts(), Check: report})

	logger.Info("snapshot written",
		"path", filepath.Join(cfg.ContentDir, site.SnapshotFile),
		"errors", report.Errors(), "warnings", report.Warnings())
	if *strict && report.Errors() > 0 {
		os.Exit(2)
	}
}

type resolveReport struct {
	Term     *search.Term       `json:"term"`
	Category *search.Category   `json:"category"`
	Result   *site.SearchResult `json:"result"`
}

func cmdResolve(args []string) {
	fs := flag.NewFlagSet("resolve", flag.ExitOnError)
	cfg, logger := setup(fs, args)
	query := strings.Join(fs.Args(), " ")

	s, err := site.Open(cfg.ContentDir, site.WithLogger(logger))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	term, cat := s.Resolve(query)
	printJSON(resolveReport{Term: term, Category: cat, Result: s.Search(query)})
}

func cmdMisses(args []string) {
	fs := flag.NewFlagSet("misses", flag.ExitOnError)
	limit := fs.Int("limit", 20, "number of queries to list")
	cfg, _ := setup(fs, args)

	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	log, err := searchlog.Open(filepath.Join(cfg.DataDir, "search.db"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer log.Close()

	misses, err := log.TopMisses(context.Background(), *limit)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	for _, m := range misses {
		fmt.Printf("%6d  %s\n", m.Count, m.Query)
	}
}
