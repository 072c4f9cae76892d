package cli

import (
	"flag"
	"io"
)

const versionString = "0.3.0"

type cliOptions struct {
	configPath   string
	paths        string
	fnName       string
	schemaName   string
	responseName string
	fullPath     bool
	format       string
	output       string
	watch        bool
	history      bool
	metricsAddr  string
	verbose      bool
	version      bool
	args         []string
}

func parseOptions(args []string, stderr io.Writer) (cliOptions, error) {
	var opts cliOptions
	fs := flag.NewFlagSet("utoipauto", flag.ContinueOnError)
	fs.SetOutput(stderr)

	fs.StringVar(&opts.configPath, "config", "", "Path to config file (default ./utoipauto.toml when present)")
	fs.StringVar(&opts.paths, "paths", "", "Discovery roots: \"./src/a.rs, ./src/b\" or \"( crate::api => ./src/api ) ; ...\"")
	fs.StringVar(&opts.fnName, "fn", "", "Attribute path segment marking route functions (default utoipa)")
	fs.StringVar(&opts.schemaName, "schema", "", "Derive/trait name marking schemas (default ToSchema)")
	fs.StringVar(&opts.responseName, "response", "", "Derive/trait name marking responses (default ToResponse)")
	fs.BoolVar(&opts.fullPath, "full-path", false, "Qualify generic alias arguments using use statements")
	fs.StringVar(&opts.format, "format", "", "Output format: text, json, toml, tsv or utoipa")
	fs.StringVar(&opts.output, "output", "", "Write output to this file instead of stdout")
	fs.BoolVar(&opts.watch, "watch", false, "Re-run discovery whenever a source file changes")
	fs.BoolVar(&opts.history, "history", false, "Record runs in the local history store and report changes")
	fs.StringVar(&opts.metricsAddr, "metrics-addr", "", "Serve /metrics and /health on this address")
	fs.BoolVar(&opts.verbose, "verbose", false, "Enable verbose logging")
	fs.BoolVar(&opts.version, "version", false, "Print version and exit")

	if err := fs.Parse(args); err != nil {
		return cliOptions{}, err
	}

	opts.args = fs.Args()
	return opts, nil
}
