package main

import (
	"github.com/bmatcuk/doublestar/v4"

	"github.com/alexispurslane/go-org/config"
	"github.com/alexispurslane/go-org/org"
)

// expandArgs turns the CLI's file/glob arguments into a flat, deduplicated
// file list, supporting doublestar globs like "**/*.org" (SPEC_FULL.md:
// "glob expansion for the orgcache parse CLI subcommand's file arguments").
func expandArgs(args []string) ([]string, error) {
	seen := map[string]bool{}
	var out []string
	for _, arg := range args {
		matches, err := doublestar.FilepathGlob(arg)
		if err != nil {
			return nil, err
		}
		if len(matches) == 0 {
			matches = []string{arg}
		}
		for _, m := range matches {
			if !seen[m] {
				seen[m] = true
				out = append(out, m)
			}
		}
	}
	return out, nil
}

func loadContext() (*org.Context, error) {
	path := cfgFile
	if path == "" {
		p, err := config.DefaultPath()
		if err == nil {
			path = p
		}
	}
	return config.Load(path)
}
