package app

import (
	"fmt"
	"io"

	"utoipauto/internal/core/errors"
	"utoipauto/internal/shared/util"
)

func (a *App) writeOutput(path, content string) error {
	if path == "" {
		if _, err := io.WriteString(a.out, content); err != nil {
			return errors.Wrap(err, errors.CodeInternal, "write output")
		}
		return nil
	}
	if err := util.WriteFileWithDirs(path, []byte(content), 0o644); err != nil {
		return errors.AddContext(errors.Wrap(err, errors.CodeInternal, "write output"), errors.CtxPath, path)
	}
	return nil
}

// PrintSummary writes a one-line summary of report to w, used when the
// rendered output went to a file.
func PrintSummary(w io.Writer, report *RunReport) {
	if report == nil {
		return
	}
	res := report.Result
	fmt.Fprintf(w, "%d paths, %d schemas, %d responses from %d files", len(res.Functions), len(res.Schemas), len(res.Responses), res.Files)
	if report.OutputPath != "" {
		fmt.Fprintf(w, " -> %s", report.OutputPath)
	}
	if report.Changes != nil && !report.Changes.Empty() {
		fmt.Fprintf(w, " (+%d -%d since last run)", len(report.Changes.Added), len(report.Changes.Removed))
	}
	fmt.Fprintln(w)
}
