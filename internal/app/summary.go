package app

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/five82/trailhead/internal/core"
	"github.com/five82/trailhead/internal/state"
	"github.com/five82/trailhead/internal/views"
)

// writeSummary prints a plain-text overview of snap for -headless runs.
func writeSummary(w io.Writer, snap core.Snapshot) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)

	fmt.Fprintln(tw, "COLLECTION\tITEMS\tSTATUS")
	summaryRow(tw, "campsites", snap.Campsites)
	summaryRow(tw, "comments", snap.Comments)
	summaryRow(tw, "promotions", snap.Promotions)
	summaryRow(tw, "partners", snap.Partners)
	fmt.Fprintln(tw)

	if c, ok := views.Featured(snap.Campsites.Items); ok {
		fmt.Fprintf(tw, "featured campsite\t%s\n", c.Name)
	}
	if p, ok := views.Featured(snap.Promotions.Items); ok {
		fmt.Fprintf(tw, "featured promotion\t%s\n", p.Name)
	}
	if p, ok := views.Featured(snap.Partners.Items); ok {
		fmt.Fprintf(tw, "featured partner\t%s\n", p.Name)
	}
	fmt.Fprintf(tw, "favorites\t%d\n", len(snap.Favorites))
	return tw.Flush()
}

func summaryRow[T any](w io.Writer, name string, c state.Collection[T]) {
	status := "ok"
	switch {
	case c.HasError():
		status = "error: " + c.Error
	case c.IsLoading:
		status = "loading"
	}
	fmt.Fprintf(w, "%s\t%d\t%s\n", name, len(c.Items), status)
}
