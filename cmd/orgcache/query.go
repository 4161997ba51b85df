package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/alexispurslane/go-org/cache"
	"github.com/alexispurslane/go-org/org"
)

func newQueryCmd() *cobra.Command {
	var pos int
	var context bool
	cmd := &cobra.Command{
		Use:   "query [file]",
		Short: "Run an element-at (or, with --context, context-at) query against a cached parse of file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, err := loadContext()
			if err != nil {
				return err
			}
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			buf := org.NewStringBuffer(string(data))
			tree := ctx.ParseBuffer(buf, args[0], org.GranularityObject)
			c := cache.New(ctx, buf, args[0], tree)

			if pos < 0 || pos > len(data) {
				return fmt.Errorf("position %d out of range [0,%d]", pos, len(data))
			}
			if context {
				oc, ok := c.ContextAt(pos)
				if !ok {
					fmt.Println("no element at that position")
					return nil
				}
				fmt.Printf("element: %s [%d,%d)\n", oc.Element.Kind(), oc.Element.Begin(), oc.Element.End())
				if oc.Object != nil {
					fmt.Printf("object:  %s [%d,%d)\n", oc.Object.Kind(), oc.Object.Begin(), oc.Object.End())
				}
				return nil
			}
			n, ok := c.ElementAt(pos)
			if !ok {
				fmt.Println("no element at that position")
				return nil
			}
			fmt.Printf("%s [%d,%d)\n", n.Kind(), n.Begin(), n.End())
			return nil
		},
	}
	cmd.Flags().IntVar(&pos, "pos", 0, "byte offset to query")
	cmd.Flags().BoolVar(&context, "context", false, "run context-at instead of element-at")
	return cmd
}
