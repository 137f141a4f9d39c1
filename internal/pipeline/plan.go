package pipeline

import (
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/backmassage/doppelrender/internal/planner"
	"github.com/backmassage/doppelrender/internal/term"
)

// printPlanTable lists every render with the frames that will be cloned from
// it. Sets with clones are highlighted.
func printPlanTable(w io.Writer, p *planner.Plan) {
	clones := make(map[int][]int, len(p.Renders))
	for _, c := range p.Clones {
		clones[c.Core] = append(clones[c.Core], c.Frame)
	}

	coreW := len("Core")
	cloneW := len("Clones")
	rows := make([][3]string, 0, len(p.Renders))
	for _, r := range p.Renders {
		core := strconv.Itoa(r.Frame)
		list := frameList(clones[r.Frame])
		if list == "" {
			list = "-"
		}
		coreW = max(coreW, len(core))
		cloneW = min(max(cloneW, len(list)), 40)
		rows = append(rows, [3]string{core, list, filepath.Base(r.Path)})
	}

	header := fmt.Sprintf("  %-*s  %-*s  %s", coreW, "Core", cloneW, "Clones", "Output")
	fmt.Fprintln(w, header)
	fmt.Fprintln(w, "  "+strings.Repeat("─", len(header)+8))
	for _, row := range rows {
		list := row[1]
		if len(list) > cloneW {
			list = list[:cloneW-1] + "…"
		}
		// Pad before coloring so escape bytes do not count toward the width.
		cell := fmt.Sprintf("%-*s", cloneW, list)
		if row[1] != "-" {
			cell = term.Paint(term.Magenta, cell)
		}
		fmt.Fprintf(w, "  %-*s  %s  %s\n", coreW, row[0], cell, row[2])
	}
	fmt.Fprintln(w)
}

// frameList renders sorted frame numbers compactly: "2-4, 7, 9-10".
func frameList(frames []int) string {
	var b strings.Builder
	for i := 0; i < len(frames); {
		j := i
		for j+1 < len(frames) && frames[j+1] == frames[j]+1 {
			j++
		}
		if b.Len() > 0 {
			b.WriteString(", ")
		}
		if j > i {
			fmt.Fprintf(&b, "%d-%d", frames[i], frames[j])
		} else {
			b.WriteString(strconv.Itoa(frames[i]))
		}
		i = j + 1
	}
	return b.String()
}
