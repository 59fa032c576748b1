package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vango-dev/domkit/internal/config"
	"github.com/vango-dev/domkit/internal/errors"
	"github.com/vango-dev/domkit/pkg/fetch"
)

func fetchCmd(flags *globalFlags) *cobra.Command {
	var (
		method string
		data   string
		fields []string
	)

	cmd := &cobra.Command{
		Use:   "fetch <url>",
		Short: "Send a request and print the body or the problem",
		Long: `Send an HTTP request. On success the response body is printed.
On failure the problem detail is printed and the command exits non-zero.

Relative URLs are resolved against fetch.baseURL from domkit.json.

Examples:
  domkit fetch https://example.com/api/items
  domkit fetch -X POST -d '{"name":"x"}' /api/items
  domkit fetch -X POST -F title=Report -F file=@report.pdf /api/upload`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, flags)
			if err != nil {
				return err
			}

			var payload any
			if data != "" {
				payload = json.RawMessage(data)
			}
			form, closeFiles, err := parseForm(fields)
			if err != nil {
				return err
			}
			defer closeFiles()

			client := fetch.New(fetchOptions(cfg)...)
			resp, err := client.Request(cmd.Context(), args[0], method, payload, form)
			if err != nil {
				return err
			}
			defer resp.Close()

			if p, ok := fetch.AsProblem(resp); ok {
				return fmt.Errorf("request failed: %s", p)
			}
			_, err = io.Copy(cmd.OutOrStdout(), resp.Body())
			return err
		},
	}

	cmd.Flags().StringVarP(&method, "request", "X", "", "HTTP method (default GET)")
	cmd.Flags().StringVarP(&data, "data", "d", "", "JSON request body")
	cmd.Flags().StringArrayVarP(&fields, "form", "F", nil, "Multipart field key=value, or key=@path to attach a file")

	return cmd
}

// fetchOptions maps the fetch section of cfg onto client options.
func fetchOptions(cfg *config.Config) []fetch.Option {
	opts := []fetch.Option{
		fetch.WithHTTPClient(&http.Client{Timeout: cfg.Fetch.Timeout.Std()}),
	}
	if cfg.Fetch.BaseURL != "" {
		opts = append(opts, fetch.WithBaseURL(cfg.Fetch.BaseURL))
	}
	for k, v := range cfg.Fetch.Headers {
		opts = append(opts, fetch.WithHeader(k, v))
	}
	return opts
}

// parseForm turns key=value and key=@path fields into a form. The returned
// func closes any files opened for the form.
func parseForm(fields []string) (*fetch.Form, func(), error) {
	var files []*os.File
	closeFiles := func() {
		for _, f := range files {
			f.Close()
		}
	}
	if len(fields) == 0 {
		return nil, closeFiles, nil
	}

	form := fetch.NewForm()
	for _, field := range fields {
		key, value, ok := strings.Cut(field, "=")
		if !ok || key == "" {
			closeFiles()
			return nil, func() {}, errors.New("E121").WithDetail(fmt.Sprintf("%q is not key=value", field))
		}
		path, isFile := strings.CutPrefix(value, "@")
		if !isFile {
			form.Add(key, value)
			continue
		}
		f, err := os.Open(path)
		if err != nil {
			closeFiles()
			return nil, func() {}, errors.New("E121").WithDetail(fmt.Sprintf("field %q", key)).Wrap(err)
		}
		files = append(files, f)
		form.AddFile(key, f.Name(), f)
	}
	return form, closeFiles, nil
}
