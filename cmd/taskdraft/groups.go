package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dgallion1/taskdraft/internal/segment"
	"github.com/spf13/cobra"
)

var (
	codeStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("32"))
	otherCode = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("214"))
	itemStyle = lipgloss.NewStyle().PaddingLeft(2)
	dimStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

var groupsCmd = &cobra.Command{
	Use:   "groups <file>",
	Short: "Preview how questions are grouped by RA code",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		seg, err := loadStatement(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), renderGroups(segment.GroupByCode(seg.Questions, nil)))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(groupsCmd)
}

func renderGroups(groups []segment.Group) string {
	var b strings.Builder
	for _, g := range groups {
		style := codeStyle
		if g.Code == segment.Unspecified {
			style = otherCode
		}
		b.WriteString(style.Render(g.Code))
		b.WriteString(dimStyle.Render(fmt.Sprintf(" (%d)", len(g.Items))))
		b.WriteByte('\n')
		for _, it := range g.Items {
			first, _, _ := strings.Cut(it.Question, "\n")
			b.WriteString(itemStyle.Render(fmt.Sprintf("%d. %s", it.Index+1, first)))
			b.WriteByte('\n')
		}
		b.WriteByte('\n')
	}
	return b.String()
}
