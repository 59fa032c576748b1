package main

import (
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/vango-dev/domkit/el"
	"github.com/vango-dev/domkit/internal/errors"
	"github.com/vango-dev/domkit/pkg/dom"
	"github.com/vango-dev/domkit/pkg/render"
)

func renderCmd(flags *globalFlags) *cobra.Command {
	var (
		pretty bool
		page   bool
		title  string
		head   headFlags
	)

	cmd := &cobra.Command{
		Use:   "render <file.json>",
		Short: "Render an element description to HTML",
		Long: `Build the element described by a JSON file and print its markup.
Use "-" to read the description from stdin.

Examples:
  domkit render card.json
  domkit render --pretty card.json
  domkit render --page --title=Demo card.json
  domkit render --page --stylesheet=/site.css --meta=description=Demo card.json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, flags)
			if err != nil {
				return err
			}
			spec, err := readSpec(cmd.InOrStdin(), args[0])
			if err != nil {
				return err
			}

			doc := dom.NewDocument()
			node, err := el.Build(doc, spec, nil)
			if err != nil {
				return err
			}

			r := render.NewRenderer(render.RendererConfig{Pretty: pretty})
			w := cmd.OutOrStdout()
			if page {
				h, err := head.apply(cfg.Head)
				if err != nil {
					return err
				}
				return r.RenderPage(w, render.PageData{Title: title, Body: node, Head: h})
			}
			if err := r.RenderToWriter(w, node); err != nil {
				return err
			}
			_, err = io.WriteString(w, "\n")
			return err
		},
	}

	cmd.Flags().BoolVarP(&pretty, "pretty", "p", false, "Indent block elements")
	cmd.Flags().BoolVar(&page, "page", false, "Wrap the element in a full HTML document")
	cmd.Flags().StringVarP(&title, "title", "t", "", "Document title when --page is set")
	head.register(cmd)

	return cmd
}

// readSpec decodes a description from path, or from stdin when path is "-".
func readSpec(stdin io.Reader, path string) (*el.Spec, error) {
	r := stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, errors.New("E120").WithDetail(path).Wrap(err)
		}
		defer f.Close()
		r = f
	}

	spec, err := el.Decode(r)
	if err != nil {
		return nil, errors.New("E120").WithDetail(path).Wrap(err)
	}
	return spec, nil
}
