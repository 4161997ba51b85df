package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/alexispurslane/go-org/org"
)

func newParseCmd() *cobra.Command {
	var granularity string
	cmd := &cobra.Command{
		Use:   "parse [files...]",
		Short: "Parse files (glob patterns allowed) and print their element tree",
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
			g := parseGranularity(granularity)
			for _, f := range files {
				if err := parseFile(ctx, f, g); err != nil {
					return fmt.Errorf("%s: %w", f, err)
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&granularity, "granularity", "object", "parse granularity: headline|greater-element|element|object")
	return cmd
}

func parseGranularity(s string) org.Granularity {
	switch s {
	case "headline":
		return org.GranularityHeadline
	case "greater-element":
		return org.GranularityGreaterElement
	case "element":
		return org.GranularityElement
	default:
		return org.GranularityObject
	}
}

func parseFile(ctx *org.Context, path string, g org.Granularity) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	buf := org.NewStringBuffer(string(data))
	tree := ctx.ParseBuffer(buf, path, g)
	if tree.FatalError != nil {
		return tree.FatalError
	}
	printTree(tree.Root, 0)
	for _, e := range tree.Errors {
		fmt.Fprintf(os.Stderr, "%s: %s\n", path, e.Error())
	}
	return nil
}

func printTree(n org.Node, depth int) {
	for i := 0; i < depth; i++ {
		fmt.Print("  ")
	}
	fmt.Printf("%s [%d,%d)\n", n.Kind(), n.Begin(), n.End())
	for _, c := range n.Children() {
		printTree(c, depth+1)
	}
}
