package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/alexispurslane/go-org/org"
)

func newInterpretCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "interpret [files...]",
		Short: "Parse files then print their parse -> interpret projection",
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
			for _, f := range files {
				data, err := os.ReadFile(f)
				if err != nil {
					return err
				}
				tree := ctx.ParseBuffer(org.NewStringBuffer(string(data)), f, org.GranularityObject)
				fmt.Print(org.Interpret(&org.InterpretContext{IndentUnit: "  "}, tree.Root))
			}
			return nil
		},
	}
}
