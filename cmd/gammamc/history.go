package main

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/xcthulhu/roland-mc/internal/db"
	"github.com/xcthulhu/roland-mc/internal/results"
)

// runHistoryCommand handles the run history subcommands:
//
//	runs [limit]            list recorded runs, newest first
//	show <run-id>           print a run's header and its TSV rows
//	migrate status|down     inspect or roll back the schema
func runHistoryCommand(w io.Writer, store *db.DB, args []string) error {
	if len(args) == 0 {
		return errors.New("missing history command (runs, show, migrate)")
	}

	switch args[0] {
	case "runs":
		limit := 0
		if len(args) > 1 {
			n, err := strconv.Atoi(args[1])
			if err != nil || n < 0 {
				return fmt.Errorf("invalid limit %q", args[1])
			}
			limit = n
		}
		return listRuns(w, store, limit)

	case "show":
		if len(args) < 2 {
			return errors.New("usage: gammamc -db <path> show <run-id>")
		}
		return showRun(w, store, args[1])

	case "migrate":
		if len(args) < 2 {
			return errors.New("usage: gammamc -db <path> migrate status|down")
		}
		return migrateCommand(w, store, args[1])

	default:
		return fmt.Errorf("unknown history command %q", args[0])
	}
}

func listRuns(w io.Writer, store *db.DB, limit int) error {
	runs, err := store.ListRuns(limit)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "RUN\tSTARTED\tSTATUS\tRADII\tRANGE\tSAMPLES\tSEED\tMEAN\tPEAK")
	for _, r := range runs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\t%d\t%d\t%.4f\t%.4f@%g\n",
			r.ID, r.StartedAt.UTC().Format(time.RFC3339), r.Status, r.Summary.Radii,
			r.Params.Radius, r.Params.Samples, r.Params.Seed,
			r.Summary.MeanRatio, r.Summary.PeakRatio, r.Summary.PeakRadius)
	}
	return tw.Flush()
}

func showRun(w io.Writer, store *db.DB, runID string) error {
	run, err := store.GetRun(runID)
	if err != nil {
		return err
	}
	estimates, err := store.ListEstimates(runID)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "# run %s status=%s seed=%d samples=%d range=%s\n",
		run.ID, run.Status, run.Params.Seed, run.Params.Samples, run.Params.Radius)
	if run.Error != "" {
		fmt.Fprintf(w, "# error: %s\n", run.Error)
	}
	for _, e := range estimates {
		if _, err := io.WriteString(w, results.FormatRow(e.Radius, e.Ratio)); err != nil {
			return err
		}
	}
	return nil
}

func migrateCommand(w io.Writer, store *db.DB, action string) error {
	switch action {
	case "status":
	case "down":
		if err := store.MigrateDown(); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unknown migrate action %q (want status or down)", action)
	}

	version, dirty, err := store.MigrateVersion()
	if err != nil {
		return err
	}
	latest, err := db.LatestMigrationVersion()
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "schema version %d (latest %d, dirty=%v)\n", version, latest, dirty)
	return nil
}
