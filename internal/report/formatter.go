package report

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"golang.org/x/term"
)

// Mode selects the output format.
type Mode string

const (
	ModeAuto  Mode = "auto"
	ModeJSON  Mode = "json"
	ModeHuman Mode = "human"
)

// Formatter renders a Response.
type Formatter interface {
	Format(w io.Writer, r Response) error
}

// GetFormatter returns the formatter for mode. Auto picks human output on a
// terminal and JSON everywhere else.
func GetFormatter(mode Mode) Formatter {
	if mode == ModeAuto || mode == "" {
		if term.IsTerminal(int(os.Stdout.Fd())) {
			mode = ModeHuman
		} else {
			mode = ModeJSON
		}
	}

	switch mode {
	case ModeHuman:
		return &HumanFormatter{}
	default:
		return &JSONFormatter{}
	}
}

// ValidateMode checks an output mode flag value.
func ValidateMode(mode string) error {
	switch Mode(mode) {
	case "", ModeAuto, ModeJSON, ModeHuman:
		return nil
	default:
		return fmt.Errorf("invalid output mode: %s (must be auto, json, or human)", mode)
	}
}

// JSONFormatter prints the response as indented JSON.
type JSONFormatter struct{}

func (JSONFormatter) Format(w io.Writer, r Response) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

// HumanFormatter prints per-file sections and a run summary.
type HumanFormatter struct{}

func (HumanFormatter) Format(w io.Writer, r Response) error {
	for _, f := range r.Files {
		fmt.Fprintf(w, "\nProcessing %s...\n", f.Path)

		if f.Error != "" {
			fmt.Fprintf(w, "  Error: %s\n", f.Error)
			continue
		}
		if f.Secrets == 0 {
			fmt.Fprintln(w, "  No secrets with 'shell:' commands found")
			continue
		}

		fmt.Fprintf(w, "  Found %d secret(s) with commands\n", f.Secrets)
		for _, e := range f.Entries {
			fmt.Fprintf(w, "\n  %s (line %d)\n", e.Key, e.Line)
			fmt.Fprintf(w, "    Command: %s\n", e.Command)
			fmt.Fprintf(w, "    Status: %s\n", statusText(e.Outcome, !r.Summary.DryRun))
			if e.Error != "" {
				fmt.Fprintf(w, "    Error: %s\n", e.Error)
			}
		}

		if f.Updated > 0 {
			fmt.Fprintf(w, "\n  Updated %s\n", f.Path)
		}
	}

	fmt.Fprintf(w, "\n%s\n", strings.Repeat("=", 60))
	fmt.Fprintln(w, "Summary:")
	if r.Summary.DryRun {
		fmt.Fprintf(w, "  Files checked: %d\n", r.Summary.Files)
		fmt.Fprintf(w, "  Secrets checked: %d\n", r.Summary.Secrets)
		fmt.Fprintf(w, "  Secrets out of sync: %d\n", r.Summary.OutOfSync)
	} else {
		fmt.Fprintf(w, "  Files processed: %d\n", r.Summary.Files)
		fmt.Fprintf(w, "  Secrets checked: %d\n", r.Summary.Secrets)
		fmt.Fprintf(w, "  Secrets updated: %d\n", r.Summary.Updated)
	}
	if r.Summary.Failed > 0 {
		fmt.Fprintf(w, "  Commands failed: %d\n", r.Summary.Failed)
	}

	if r.Summary.DryRun && r.Summary.OutOfSync > 0 {
		fmt.Fprintln(w, "\nRun 'sopsync sync <files>' to update")
	}

	return nil
}

// statusText maps an outcome name to its colorized label. In apply mode an
// out-of-sync entry has already been rewritten, so it reads UPDATED.
func statusText(outcome string, applied bool) string {
	switch outcome {
	case "in_sync":
		return color.GreenString("IN SYNC")
	case "out_of_sync":
		if applied {
			return color.GreenString("UPDATED")
		}
		return color.YellowString("OUT OF SYNC")
	case "failed":
		return color.RedString("FAILED")
	default:
		return outcome
	}
}
