package main

import (
	"fmt"
	"os"

	"github.com/pmezard/go-difflib/difflib"
	"github.com/spf13/cobra"

	"github.com/alexispurslane/go-org/org"
)

func newDiffCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "diff [files...]",
		Short: "Print a unified diff between each file and its parse -> interpret projection",
		Long:  "Useful for spotting round-trip regressions: a non-empty diff means interpret(parse(buf)) != buf.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			files, err := expandArgs(args)
			if err != nil {
				return err
			}
			ctx, err := loadContext()
			if err != nil {
				return err
			}
			dirty := false
			for _, f := range files {
				d, err := diffFile(ctx, f)
				if err != nil {
					return fmt.Errorf("%s: %w", f, err)
				}
				if d != "" {
					dirty = true
					fmt.Print(d)
				}
			}
			if dirty {
				os.Exit(1)
			}
			return nil
		},
	}
}

func diffFile(ctx *org.Context, path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	original := string(data)
	tree := ctx.ParseBuffer(org.NewStringBuffer(original), path, org.GranularityObject)
	rendered := org.Interpret(&org.InterpretContext{IndentUnit: "  "}, tree.Root)

	diff := difflib.UnifiedDiff{
		A:        difflib.SplitLines(original),
		B:        difflib.SplitLines(rendered),
		FromFile: path,
		ToFile:   path + " (interpreted)",
		Context:  3,
	}
	return difflib.GetUnifiedDiffString(diff)
}
