package cli

import (
	"flag"
	"io"
)

type cliOptions struct {
	configPath      string
	color           string
	sarif           string
	markdown        string
	metricsTextfile string
	watch           bool
	history         bool
	historyList     int
	verbose         bool
	version         bool
	args            []string
}

func parseOptions(args []string, stderr io.Writer) (cliOptions, error) {
	var opts cliOptions
	fs := flag.NewFlagSet("importguard", flag.ContinueOnError)
	fs.SetOutput(stderr)

	fs.StringVar(&opts.configPath, "config", "", "Path to config file (default: importguard.toml, data/config/importguard.toml or importguard.yaml in the working directory)")
	fs.StringVar(&opts.color, "color", "", "Colorize the report: auto, always or never")
	fs.StringVar(&opts.sarif, "sarif", "", "Also write the findings as SARIF to this path")
	fs.StringVar(&opts.markdown, "markdown", "", "Also write the findings as Markdown to this path")
	fs.StringVar(&opts.metricsTextfile, "metrics-textfile", "", "Write prometheus metrics in textfile format to this path after each run")
	fs.BoolVar(&opts.watch, "watch", false, "Re-run the validation whenever a source file changes")
	fs.BoolVar(&opts.history, "history", false, "Record each run in the local history database")
	fs.IntVar(&opts.historyList, "history-list", 0, "Print the latest N recorded runs and exit")
	fs.BoolVar(&opts.verbose, "verbose", false, "Enable verbose logging")
	fs.BoolVar(&opts.version, "version", false, "Print version and exit")

	if err := fs.Parse(args); err != nil {
		return cliOptions{}, err
	}

	opts.args = fs.Args()
	return opts, nil
}
