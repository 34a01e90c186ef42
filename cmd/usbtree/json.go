package main

import (
	"os"

	"github.com/usbtree/usbtree/jsonio"
)

// JSONCmd dumps the filtered topology as JSON on stdout, for machine
// consumption or piping into another usbtree invocation's --config-less
// comparison tooling.
type JSONCmd struct {
	Out string `help:"Write JSON to this path instead of stdout." type:"path"`
}

func (c *JSONCmd) Run(g *Globals) error {
	result, err := buildProfile(g)
	if err != nil {
		return err
	}

	w := os.Stdout
	if c.Out != "" {
		f, err := os.Create(c.Out)
		if err != nil {
			return err
		}
		defer f.Close()
		return jsonio.Save(f, result.profile)
	}
	return jsonio.Save(w, result.profile)
}
