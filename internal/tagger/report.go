package tagger

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/text"
)

var statusColors = map[Status]text.Colors{
	StatusBestMatch:     {text.FgGreen},
	StatusPossibleMatch: {text.FgYellow},
	StatusOther:         {text.FgRed},
}

// WriteReport prints one "{similarity}|{status}|{url}" line per match,
// followed by the full names of that match's tags unless printTags is false.
func WriteReport(w io.Writer, report *ImageReport, printTags, colorize bool) error {
	for _, e := range report.Entries {
		status := e.Match.Status().String()
		if colorize {
			if c, ok := statusColors[e.Match.Status()]; ok {
				status = c.Sprint(status)
			}
		}
		if _, err := fmt.Fprintf(w, "%d|%s|%s\n", e.Match.ImageMatch.Similarity, status, e.Match.Link()); err != nil {
			return err
		}
		if !printTags {
			continue
		}
		for _, t := range e.Tags {
			if _, err := fmt.Fprintln(w, FullName(t)); err != nil {
				return err
			}
		}
	}
	return nil
}

// WriteFailures prints the failed items of a folder run.
func WriteFailures(w io.Writer, failures []ItemFailure) error {
	if len(failures) == 0 {
		return nil
	}
	if _, err := fmt.Fprintln(w, "Found error(s)"); err != nil {
		return err
	}
	for _, f := range failures {
		if _, err := fmt.Fprintf(w, "path:%s\nerror:%v\n", f.Path, f.Err); err != nil {
			return err
		}
	}
	return nil
}
