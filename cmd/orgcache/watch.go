package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/alexispurslane/go-org/cache"
	"github.com/alexispurslane/go-org/editor"
	"github.com/alexispurslane/go-org/org"
)

func newWatchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch [file]",
		Short: "Watch a file and keep an incremental cache in sync with it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, err := loadContext()
			if err != nil {
				return err
			}
			path := args[0]
			fw, err := editor.NewFileWatcher(path, func(err error) {
				fmt.Fprintf(os.Stderr, "watch: %v\n", err)
			})
			if err != nil {
				return err
			}
			defer fw.Close()

			buf := fw.Buffer()
			tree := ctx.ParseBuffer(org.NewStringBuffer(buf.Text()), path, org.GranularityObject)
			c := cache.New(ctx, buf, path, tree)
			buf.Observe(&cacheObserver{cache: c})

			fmt.Printf("watching %s (ctrl-c to stop)\n", path)
			for {
				time.Sleep(time.Duration(ctx.SyncIdleTime) * time.Millisecond)
				c.Sync(time.Now().Add(time.Duration(ctx.SyncDuration) * time.Millisecond))
			}
		},
	}
}

// cacheObserver adapts cache.Cache's Notify method to editor.ChangeObserver.
type cacheObserver struct {
	cache *cache.Cache
}

func (o *cacheObserver) BeforeChange(beg, end int) {}

func (o *cacheObserver) AfterChange(beg, end, preLen int) {
	o.cache.Notify(beg, end, preLen)
}
