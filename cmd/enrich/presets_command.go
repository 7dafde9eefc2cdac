package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"enrich/internal/presets"
)

func newPresetsCommand() *cobra.Command {
	return &cobra.Command{
		Use:         "presets",
		Short:       "List predefined content-field presets",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			titler := cases.Title(language.English)
			rows := make([][]string, 0)
			for _, name := range presets.Names() {
				fields, ok := presets.ContentFields(name)
				if !ok {
					continue
				}
				rows = append(rows, []string{name, titler.String(name), strings.Join(fields, ", ")})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Preset", "Display", "Content Fields"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft},
			))
			return nil
		},
	}
}
