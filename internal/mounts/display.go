package mounts

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
)

// PrintSnapshot prints the directory grouped by map, the way the panel lays it out
func PrintSnapshot(w io.Writer, snap Snapshot, viewpoint string) {
	if len(snap.Groups) == 0 {
		_, _ = fmt.Fprintln(w, "No camera mounts found.")
		printSkipped(w, snap.Skipped)
		return
	}

	for i, g := range snap.Groups {
		_, _ = fmt.Fprintf(w, "\n%s\n", g.Map)
		_, _ = fmt.Fprintln(w, strings.Repeat("─", 40))

		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		_, _ = fmt.Fprintln(tw, "  ID\tNAME")
		if i == 0 {
			_, _ = fmt.Fprintf(tw, "  -\t%s (default)\n", viewpoint)
		}
		for _, r := range g.Mounts {
			name := r.Info.Name
			if name == "" {
				name = "(unnamed)"
			}
			_, _ = fmt.Fprintf(tw, "  %s\t%s\n", r.ID, name)
		}
		_ = tw.Flush()
	}

	printSkipped(w, snap.Skipped)
}

func printSkipped(w io.Writer, skipped []SkippedMount) {
	if len(skipped) == 0 {
		return
	}
	ids := make([]string, 0, len(skipped))
	for _, s := range skipped {
		ids = append(ids, s.ID.String())
	}
	display := strings.Join(ids, ", ")
	if len(ids) > 5 {
		display = strings.Join(ids[:5], ", ") + fmt.Sprintf(", +%d more", len(ids)-5)
	}
	_, _ = fmt.Fprintf(w, "\nSkipped %d mount(s) whose info could not be fetched: %s\n", len(skipped), display)
}
