package app

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/vk/catalogplan/internal/actionbuf"
	"github.com/vk/catalogplan/internal/actions"
	"github.com/vk/catalogplan/internal/catalog"
)

// styles holds the output styles bound to one writer's color profile.
type styles struct {
	Title   lipgloss.Style
	Bold    lipgloss.Style
	Muted   lipgloss.Style
	Success lipgloss.Style
	Warning lipgloss.Style
	Box     lipgloss.Style
}

func newStyles(w io.Writer) styles {
	r := lipgloss.NewRenderer(w)
	return styles{
		Title:   r.NewStyle().Bold(true).Foreground(lipgloss.Color("#2CD7C7")),
		Bold:    r.NewStyle().Bold(true),
		Muted:   r.NewStyle().Foreground(lipgloss.Color("#2C4A54")),
		Success: r.NewStyle().Foreground(lipgloss.Color("#2CD7C7")),
		Warning: r.NewStyle().Foreground(lipgloss.Color("#F4D03F")),
		Box: r.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#16858E")).
			Padding(0, 1),
	}
}

// RenderReport writes a summary of a planning run.
func RenderReport(w io.Writer, r *Report) {
	st := newStyles(w)
	var b strings.Builder
	for _, p := range r.Plans {
		if p.Empty() {
			fmt.Fprintf(&b, "%s %s\n", st.Warning.Render("○"), st.Bold.Render(p.Direction.String()+": nothing to do"))
			continue
		}
		fmt.Fprintf(&b, "%s %s\n", st.Success.Render("✓"), st.Bold.Render(p.Direction.String()))
		fmt.Fprintf(&b, "  %s %s\n", st.Muted.Render("rollback file"), p.RollbackFile)
		fmt.Fprintf(&b, "  %s %d\n", st.Muted.Render("progress"), p.Progress)
		for _, batch := range p.Batches {
			fmt.Fprintf(&b, "  → %-36s %6d bytes\n", batch.ActionName, len(batch.Buffer))
		}
	}
	fmt.Fprintln(w, st.Title.Render("Catalog plan"))
	fmt.Fprintln(w, st.Box.Render(strings.TrimRight(b.String(), "\n")))
	fmt.Fprintf(w, "%s %s\n", st.Muted.Render("spooled to"), r.SpoolDir)
}

// RenderInspection writes the decoded content of a spool.
func RenderInspection(w io.Writer, batches []SpooledBatch) {
	st := newStyles(w)
	if len(batches) == 0 {
		fmt.Fprintln(w, st.Warning.Render("Spool is empty."))
		return
	}
	for _, b := range batches {
		fmt.Fprintf(w, "%s %s\n", st.Title.Render(b.Action), st.Muted.Render(fmt.Sprintf("(%s %s, progress %d)", b.Direction, b.Phase, b.Progress)))
		for _, s := range b.Sections {
			if len(s.Items) == 0 {
				continue
			}
			fmt.Fprintf(w, "  %s %s\n", st.Bold.Render(s.Operation), st.Muted.Render(s.Description))
			for _, it := range s.Items {
				writeNode(w, st, it.Node, fmt.Sprintf("%-6s ", actions.Action(it.Action)), 2)
			}
		}
	}
}

func writeNode(w io.Writer, st styles, n actionbuf.Node, prefix string, depth int) {
	fields := make([]string, len(n.Fields))
	for i, f := range n.Fields {
		fields[i] = fmt.Sprint(f)
	}
	fmt.Fprintf(w, "%s%s%s\n", strings.Repeat("  ", depth), prefix, strings.Join(fields, " "))
	for _, c := range n.Children {
		writeNode(w, st, c, st.Muted.Render("└ "), depth+1)
	}
}

// RenderEntries writes catalog objects as an aligned list.
func RenderEntries(w io.Writer, entries []catalog.Entry) {
	st := newStyles(w)
	fmt.Fprintln(w, st.Title.Render(fmt.Sprintf("%d catalog objects", len(entries))))
	for _, e := range entries {
		fmt.Fprintf(w, "  %-28s %-40s %s\n", e.Container(), e.ID, st.Bold.Render(e.Name))
	}
}
