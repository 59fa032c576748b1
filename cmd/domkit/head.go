package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vango-dev/domkit/internal/errors"
	"github.com/vango-dev/domkit/pkg/render"
)

// headFlags collects page head additions given on the command line.
type headFlags struct {
	stylesheets []string
	scripts     []string
	meta        []string
}

func (h *headFlags) register(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.StringArrayVar(&h.stylesheets, "stylesheet", nil, "Stylesheet URL to link in the head (repeatable)")
	fs.StringArrayVar(&h.scripts, "script", nil, "Script URL to load deferred (repeatable)")
	fs.StringArrayVar(&h.meta, "meta", nil, "Meta tag as name=content (repeatable)")
}

// apply returns base with the flag values appended.
func (h *headFlags) apply(base render.Head) (render.Head, error) {
	var extra render.Head
	extra.StyleSheets = h.stylesheets
	for _, src := range h.scripts {
		extra.Scripts = append(extra.Scripts, render.ScriptTag{Src: src, Defer: true})
	}
	for _, m := range h.meta {
		name, content, ok := strings.Cut(m, "=")
		if !ok || name == "" {
			return render.Head{}, errors.New("E122").WithDetail(fmt.Sprintf("%q is not name=content", m))
		}
		extra.Meta = append(extra.Meta, render.MetaTag{Name: name, Content: content})
	}
	return base.Merge(extra), nil
}
