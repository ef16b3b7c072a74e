package commands

import (
	"fmt"
	"io"
	"time"

	"github.com/pterm/pterm"

	"github.com/teranos/stubgen/stubgen"
)

// printReport prints the files a run wrote.
func printReport(w io.Writer, report *stubgen.Report) {
	data := pterm.TableData{{"Namespace", "File", "Types", ""}}
	for _, f := range report.Files {
		ns := f.Namespace
		if ns == "" {
			ns = "(global)"
		}
		note := ""
		if f.Reemit {
			note = "re-emitted"
		}
		data = append(data, []string{ns, f.Path, fmt.Sprint(f.Types), note})
	}

	if len(report.Files) > 0 {
		pterm.DefaultTable.WithHasHeader().WithData(data).WithWriter(w).Render()
	}
	for _, ns := range report.Skipped {
		pterm.Info.WithWriter(w).Printfln("Skipped %s (no target types)", ns)
	}
	pterm.Success.WithWriter(w).Printfln("Wrote %d stub file(s) from %d unit(s) in %s",
		len(report.Files), len(report.Units), report.Duration.Round(time.Millisecond))
}

// printCheck prints the outcome of a check.
func printCheck(w io.Writer, dest string, result *stubgen.CheckResult) {
	if result.UpToDate {
		pterm.Success.WithWriter(w).Printfln("Stubs in %s are up to date", dest)
		return
	}

	data := pterm.TableData{{"File", "Status"}}
	for _, d := range result.Differences {
		data = append(data, []string{d.Path, string(d.Kind)})
	}
	pterm.Error.WithWriter(w).Printfln("Stubs in %s are out of date", dest)
	pterm.DefaultTable.WithHasHeader().WithData(data).WithWriter(w).Render()
}
