package app

import (
	"fmt"
	"os"

	"github.com/pterm/pterm"
	"github.com/urfave/cli/v2"

	"github.com/sadopc/dailyschedule/internal/apperr"
	"github.com/sadopc/dailyschedule/internal/mirror"
)

func (r *runner) mirrorSyncAction(ctx *cli.Context) error {
	s, err := r.openStore()
	if err != nil {
		return err
	}
	m, err := r.openMirror()
	if err != nil {
		return err
	}
	defer m.Close()

	stats, err := m.Sync(ctx.Context, s, r.cfg.User)
	if err != nil {
		r.log.Error("mirror sync", "err", err)
		return err
	}
	r.log.Info("mirror synced", "path", r.cfg.Mirror.Path)
	pterm.Success.Println("Mirror synced")
	printStats(stats)
	return nil
}

func (r *runner) mirrorExportAction(ctx *cli.Context) error {
	path := ctx.Args().First()
	if path == "" {
		return apperr.Invalid("file", "an output file is required")
	}
	m, err := r.openMirror()
	if err != nil {
		return err
	}
	defer m.Close()

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create export file: %w", err)
	}
	if err := m.Export(f); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	pterm.Success.Printfln("Mirror exported to %s", path)
	return nil
}

func (r *runner) mirrorImportAction(ctx *cli.Context) error {
	path := ctx.Args().First()
	if path == "" {
		return apperr.Invalid("file", "an input file is required")
	}
	m, err := r.openMirror()
	if err != nil {
		return err
	}
	defer m.Close()

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open import file: %w", err)
	}
	defer f.Close()

	if err := m.Import(f); err != nil {
		r.log.Error("mirror import", "file", path, "err", err)
		return err
	}
	stats, err := m.Stats()
	if err != nil {
		return err
	}
	pterm.Success.Printfln("Mirror imported from %s", path)
	printStats(stats)
	return nil
}

func (r *runner) mirrorStatsAction(_ *cli.Context) error {
	m, err := r.openMirror()
	if err != nil {
		return err
	}
	defer m.Close()

	stats, err := m.Stats()
	if err != nil {
		return err
	}
	printStats(stats)
	return nil
}

func printStats(stats map[mirror.Collection]mirror.Size) {
	rows := [][]string{{"COLLECTION", "DOCUMENTS", "BYTES"}}
	for _, col := range mirror.Collections {
		s := stats[col]
		rows = append(rows, []string{string(col), fmt.Sprint(s.Count), fmt.Sprint(s.Bytes)})
	}
	printTable(os.Stdout, rows)
}
