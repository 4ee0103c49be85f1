// Package app is the command-line surface: the default action opens the
// terminal UI, the subcommands give scriptable access to tracking,
// schedules, analytics, exports and the offline mirror.
package app

import (
	"github.com/pterm/pterm"
	"github.com/urfave/cli/v2"
)

const Version = "v0.1.0"

// disableStyling disables all styling provided by pterm.
func disableStyling() {
	pterm.DisableColor()
	pterm.DisableStyling()
	pterm.Info.Prefix.Text = ""
	pterm.Success.Prefix.Text = ""
	pterm.Warning.Prefix.Text = ""
	pterm.Error.Prefix.Text = ""
}

// Get returns the dailyschedule app. Each call builds a fresh instance
// with its own state.
func Get() *cli.App {
	r := &runner{}
	return &cli.App{
		Name:      "dailyschedule",
		Usage:     "Plan your week, track where the time goes and see the breakdown",
		UsageText: "[COMMAND] [OPTIONS]",
		Version:   Version,
		Commands: []*cli.Command{
			{
				Name:  "track",
				Usage: "Start, stop or inspect time tracking",
				Subcommands: []*cli.Command{
					{
						Name:      "start",
						Usage:     "Start tracking a category, stopping the current session first",
						ArgsUsage: "<category>",
						Action:    r.trackStartAction,
					},
					{
						Name:   "stop",
						Usage:  "Stop the current session",
						Action: r.trackStopAction,
					},
					{
						Name:   "status",
						Usage:  "Print what is being tracked",
						Action: r.trackStatusAction,
					},
					{
						Name:   "recent",
						Usage:  "List the latest completed sessions",
						Flags:  []cli.Flag{limitFlag},
						Action: r.trackRecentAction,
					},
				},
			},
			{
				Name:   "categories",
				Usage:  "List main categories and their sub-categories",
				Action: r.categoriesAction,
			},
			{
				Name:   "schedules",
				Usage:  "List the schedules of a weekday (today by default)",
				Flags:  []cli.Flag{dayFlag, allFlag},
				Action: r.schedulesAction,
			},
			{
				Name:   "analytics",
				Usage:  "Print the time breakdown by category",
				Flags:  []cli.Flag{rangeFlag, offlineFlag, pdfFlag},
				Action: r.analyticsAction,
			},
			{
				Name:   "export",
				Usage:  "Export time sessions to CSV or JSON",
				Flags:  []cli.Flag{formatFlag, outFlag},
				Action: r.exportAction,
			},
			{
				Name:  "mirror",
				Usage: "Manage the offline mirror",
				Subcommands: []*cli.Command{
					{
						Name:   "sync",
						Usage:  "Replace the mirror with the current data",
						Action: r.mirrorSyncAction,
					},
					{
						Name:      "export",
						Usage:     "Write the mirror to a JSON file",
						ArgsUsage: "<file>",
						Action:    r.mirrorExportAction,
					},
					{
						Name:      "import",
						Usage:     "Replace the mirror with a JSON export",
						ArgsUsage: "<file>",
						Action:    r.mirrorImportAction,
					},
					{
						Name:   "stats",
						Usage:  "Print document counts and sizes",
						Action: r.mirrorStatsAction,
					},
				},
			},
			{
				Name:   "remind",
				Usage:  "Run in the foreground and notify before each scheduled block",
				Action: r.remindAction,
			},
		},
		Flags: []cli.Flag{
			configFlag,
			dataDirFlag,
			userFlag,
			noColorFlag,
		},
		Action: r.defaultAction,
		Before: r.beforeAction,
		After:  r.afterAction,
	}
}
