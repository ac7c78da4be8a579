package status

import (
	"fmt"
	"strings"

	"github.com/kudosx/kudosx/internal/install"
	"github.com/kudosx/kudosx/internal/registry"
	"github.com/kudosx/kudosx/internal/version"
)

// FormatOptions controls output formatting.
type FormatOptions struct {
	NoColor bool
}

// FormatSkillTable formats skills as aligned columns of name, state,
// global version, local version and latest version.
func FormatSkillTable(skills []SkillStatus, opts FormatOptions) string {
	header := []string{"NAME", "STATE", "GLOBAL", "LOCAL", "LATEST"}
	rows := make([][]string, 0, len(skills))
	for _, s := range skills {
		rows = append(rows, []string{
			s.Name,
			string(s.State()),
			installedColumn(s.Global),
			installedColumn(s.Local),
			version.Format(s.Latest),
		})
	}

	widths := columnWidths(header, rows)

	var b strings.Builder
	writeRow(&b, header, widths, nil)
	for i, row := range rows {
		colors := []string{"", getStateColor(skills[i].State(), opts.NoColor)}
		writeRow(&b, row, widths, colors)
	}
	return b.String()
}

func installedColumn(inst Installation) string {
	if !inst.Installed {
		return "-"
	}
	if inst.Version == "" {
		return "?"
	}
	return inst.Version
}

func columnWidths(header []string, rows [][]string) []int {
	widths := make([]int, len(header))
	for i, h := range header {
		widths[i] = len(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}
	return widths
}

// writeRow pads on the plain text so escape codes do not skew alignment.
func writeRow(b *strings.Builder, cells []string, widths []int, colors []string) {
	for i, cell := range cells {
		color := ""
		if i < len(colors) {
			color = colors[i]
		}
		if color != "" {
			b.WriteString(color + cell + resetColor(false))
		} else {
			b.WriteString(cell)
		}
		if i < len(cells)-1 {
			b.WriteString(strings.Repeat(" ", widths[i]-len(cell)+2))
		}
	}
	b.WriteString("\n")
}

// FormatInventory formats one section per scope and kind, followed by totals.
func FormatInventory(invs []Inventory, skills, commands bool, opts FormatOptions) string {
	var b strings.Builder
	cyan := getColor("cyan", opts.NoColor)
	reset := resetColor(opts.NoColor)

	totalSkills, totalCommands := 0, 0
	for _, inv := range invs {
		label := scopeLabel(inv.Scope)
		if commands {
			b.WriteString(fmt.Sprintf("%s%s commands (%s):%s\n", cyan, label, displayRoot(inv, "commands"), reset))
			writeItems(&b, inv.Commands)
			b.WriteString("\n")
			totalCommands += len(inv.Commands)
		}
		if skills {
			b.WriteString(fmt.Sprintf("%s%s skills (%s):%s\n", cyan, label, displayRoot(inv, "skills"), reset))
			writeItems(&b, inv.Skills)
			b.WriteString("\n")
			totalSkills += len(inv.Skills)
		}
	}

	var parts []string
	if commands {
		parts = append(parts, fmt.Sprintf("%d command(s)", totalCommands))
	}
	if skills {
		parts = append(parts, fmt.Sprintf("%d skill(s)", totalSkills))
	}
	b.WriteString(fmt.Sprintf("Total: %s\n", strings.Join(parts, ", ")))
	return b.String()
}

func writeItems(b *strings.Builder, items []string) {
	if len(items) == 0 {
		b.WriteString("  (none)\n")
		return
	}
	for _, item := range items {
		b.WriteString(fmt.Sprintf("  • %s\n", item))
	}
}

func scopeLabel(scope install.Scope) string {
	if scope == install.ScopeProject {
		return "Project"
	}
	return "Global"
}

func displayRoot(inv Inventory, kind string) string {
	return inv.Root + "/" + kind
}

// FormatSearch formats registry entries with their repository and declared
// latest version.
func FormatSearch(descs []registry.Descriptor, opts FormatOptions) string {
	if len(descs) == 0 {
		return "No skills found.\n"
	}

	header := []string{"NAME", "REPOSITORY", "LATEST"}
	rows := make([][]string, 0, len(descs))
	for _, d := range descs {
		rows = append(rows, []string{d.Name, d.Repo, version.Format(d.Latest)})
	}
	widths := columnWidths(header, rows)

	var b strings.Builder
	writeRow(&b, header, widths, nil)
	green := getColor("green", opts.NoColor)
	for _, row := range rows {
		writeRow(&b, row, widths, []string{green})
	}
	return b.String()
}

// Formatting helpers

func getStateColor(state State, noColor bool) string {
	switch state {
	case StateInstalled:
		return getColor("green", noColor)
	case StateUpdate:
		return getColor("yellow", noColor)
	default:
		return getColor("gray", noColor)
	}
}

// Colorize wraps s in the named ANSI color.
func Colorize(name, s string, noColor bool) string {
	color := getColor(name, noColor)
	if color == "" {
		return s
	}
	return color + s + resetColor(noColor)
}

func getColor(name string, noColor bool) string {
	if noColor {
		return ""
	}

	switch name {
	case "red":
		return "\033[31m"
	case "green":
		return "\033[32m"
	case "yellow":
		return "\033[33m"
	case "cyan":
		return "\033[36m"
	case "gray":
		return "\033[90m"
	default:
		return ""
	}
}

func resetColor(noColor bool) string {
	if noColor {
		return ""
	}
	return "\033[0m"
}
