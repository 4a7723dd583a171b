package main

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"pricecompare/internal/app"
	"pricecompare/internal/catalog"
	"pricecompare/internal/session"
	"pricecompare/internal/sheet"
)

type exportOptions struct {
	output    string
	format    string
	query     string
	category  string
	stock     string
	reconcile string
	percent   string
	scope     string
	codes     string
	stats     string
}

func parseExportFlags(args []string, cfg *app.Config) (exportOptions, []string, error) {
	var opts exportOptions
	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	fs.StringVar(&opts.output, "o", cfg.ExportFilename, "output file (.xlsx or .csv), - for stdout")
	fs.StringVar(&opts.format, "format", "", "output format: xlsx or csv (default from the output extension)")
	fs.StringVar(&opts.query, "q", "", "keep products whose code or name contains this text")
	fs.StringVar(&opts.category, "category", catalog.AllCategories, "keep one category")
	fs.StringVar(&opts.stock, "stock", string(catalog.StockAll), "stock filter: all, exclude_zero, only_zero, only_negative")
	fs.StringVar(&opts.reconcile, "reconcile", cfg.ReconcilePolicy, "margin and suggested price across sources: first, max, min, average")
	fs.StringVar(&opts.percent, "percent", "", "markup over net cost applied before export")
	fs.StringVar(&opts.scope, "scope", string(catalog.ScopeAll), "markup scope: selected, category, all")
	fs.StringVar(&opts.codes, "codes", "", "comma separated codes for -scope selected")
	fs.StringVar(&opts.stats, "stats", "", "print field:operation aggregates of the filtered rows, e.g. stock:sum,margin:average")
	if err := fs.Parse(args); err != nil {
		return opts, nil, err
	}
	if fs.NArg() == 0 {
		return opts, nil, session.ErrNoFiles
	}
	if opts.format == "" {
		opts.format = "xlsx"
		if strings.EqualFold(filepath.Ext(opts.output), ".csv") {
			opts.format = "csv"
		}
	}
	if opts.format != "xlsx" && opts.format != "csv" {
		return opts, nil, fmt.Errorf("unknown format %q", opts.format)
	}
	return opts, fs.Args(), nil
}

func runExport(ctx context.Context, args []string, cfg *app.Config, logger *slog.Logger, stdout io.Writer) error {
	opts, paths, err := parseExportFlags(args, cfg)
	if err != nil {
		return err
	}
	stock, err := catalog.ParseStockFilter(opts.stock)
	if err != nil {
		return err
	}
	policy, err := catalog.ParseReconcile(opts.reconcile)
	if err != nil {
		return err
	}
	filters := catalog.Filters{Query: opts.query, Category: opts.category, Stock: stock, Reconcile: policy}

	files := make([]session.File, 0, len(paths))
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			return err
		}
		files = append(files, session.File{Name: filepath.Base(p), Data: data})
	}

	sess := session.New(sheet.NewDecoder(), logger, session.Options{Reconcile: policy})
	summary, err := sess.Upload(ctx, files)
	if err != nil {
		return err
	}

	if opts.percent != "" {
		pct, err := catalog.ParsePercentage(opts.percent)
		if err != nil {
			return err
		}
		scope, err := catalog.ParseScope(opts.scope)
		if err != nil {
			return err
		}
		req := session.RecalcRequest{
			Percentage:     pct,
			Scope:          scope,
			ActiveCategory: opts.category,
		}
		if opts.codes != "" {
			req.Codes = splitList(opts.codes)
		}
		if _, err := sess.Recalculate(req); err != nil {
			return err
		}
	}

	if opts.stats != "" {
		if err := printStats(stdout, sess.Records(filters), opts.stats); err != nil {
			return err
		}
	}

	grid, err := sess.Export(filters)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if opts.format == "csv" {
		err = sheet.WriteCSV(&buf, grid)
	} else {
		err = sheet.WriteXLSX(&buf, grid, cfg.ExportSheet)
	}
	if err != nil {
		return err
	}
	if opts.output == "-" {
		_, err = buf.WriteTo(stdout)
		return err
	}
	if err := os.WriteFile(opts.output, buf.Bytes(), 0o644); err != nil {
		return err
	}
	logger.Info("comparison written",
		slog.String("file", opts.output),
		slog.Int("products", len(grid.Rows)),
		slog.Int("sources", len(summary.Sources)),
		slog.Int("files", summary.FilesProcessed),
	)
	return nil
}

func printStats(w io.Writer, records []catalog.ProductRecord, list string) error {
	for _, item := range splitList(list) {
		field, op, ok := strings.Cut(item, ":")
		if !ok {
			return fmt.Errorf("stats %q: want field:operation", item)
		}
		value, err := catalog.Aggregate(records, catalog.Field(field), op)
		if errors.Is(err, catalog.ErrNoValues) {
			fmt.Fprintf(w, "%s %s: n/a\n", field, op)
			continue
		}
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%s %s: %s\n", field, op, catalog.FormatAmount(value))
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
