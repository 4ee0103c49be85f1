package app

import "github.com/urfave/cli/v2"

var (
	configFlag = &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Path to the config file",
		EnvVars: []string{"DAILYSCHEDULE_CONFIG"},
	}

	dataDirFlag = &cli.StringFlag{
		Name:  "data-dir",
		Usage: "Directory for the default database, mirror and log locations",
	}

	userFlag = &cli.StringFlag{
		Name:    "user",
		Aliases: []string{"u"},
		Usage:   "Override the configured user",
	}

	noColorFlag = &cli.BoolFlag{
		Name:  "no-color",
		Usage: "Disable coloured output",
	}

	limitFlag = &cli.IntFlag{
		Name:    "limit",
		Aliases: []string{"n"},
		Usage:   "Maximum number of sessions to list",
		Value:   10,
	}

	dayFlag = &cli.IntFlag{
		Name:    "day",
		Aliases: []string{"d"},
		Usage:   "ISO weekday, 1 (Monday) to 7 (Sunday)",
	}

	allFlag = &cli.BoolFlag{
		Name:  "all",
		Usage: "List every schedule, active or not",
	}

	rangeFlag = &cli.StringFlag{
		Name:    "range",
		Aliases: []string{"r"},
		Usage:   "Reporting period: week, month or year",
	}

	offlineFlag = &cli.BoolFlag{
		Name:  "offline",
		Usage: "Read from the offline mirror instead of the database",
	}

	pdfFlag = &cli.StringFlag{
		Name:  "pdf",
		Usage: "Also write the breakdown to a PDF file",
	}

	formatFlag = &cli.StringFlag{
		Name:    "format",
		Aliases: []string{"f"},
		Usage:   "Export format: csv or json",
		Value:   "csv",
	}

	outFlag = &cli.StringFlag{
		Name:    "out",
		Aliases: []string{"o"},
		Usage:   "Output file (defaults to dailyschedule-sessions-DATE.FORMAT)",
	}
)
