package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/vanderheijden86/blogdesk/pkg/export"
	"github.com/vanderheijden86/blogdesk/pkg/model"
)

func newListCmd(a *app) *cobra.Command {
	var (
		parent int
		output string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the direct children of a blog (top level by default)",
		Example: `  blogdesk list
  blogdesk list --parent 12 -o json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			blogs, err := a.client.ListBlogs(cmd.Context(), parent)
			if err != nil {
				return err
			}
			a.logger.Info().Int("parent", parent).Int("count", len(blogs)).Msg("listed blogs")

			w := cmd.OutOrStdout()
			switch strings.ToLower(output) {
			case "table", "":
				return export.WriteTable(w, blogs, a.cfg.UI.DateFormat)
			case "json":
				return export.WriteJSON(w, flat(blogs))
			case "yaml", "yml":
				return export.WriteYAML(w, flat(blogs))
			default:
				return fmt.Errorf("unknown output %q (want table, json or yaml)", output)
			}
		},
	}

	cmd.Flags().IntVar(&parent, "parent", model.TopLevelParent, "parent blog id; -1 lists the top level")
	cmd.Flags().StringVarP(&output, "output", "o", "table", "output: table, json or yaml")
	return cmd
}

func flat(blogs []model.BlogNode) []*export.TreeNode {
	nodes := make([]*export.TreeNode, 0, len(blogs))
	for _, b := range blogs {
		nodes = append(nodes, &export.TreeNode{BlogNode: b})
	}
	return nodes
}

func newExportCmd(a *app) *cobra.Command {
	var (
		format      string
		out         string
		title       string
		root        int
		depth       int
		concurrency int
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Fetch the whole tree and write it as markdown, YAML, JSON or SVG",
		Example: `  blogdesk export -f md -o blogs.md
  blogdesk export -f svg --root 12 --depth 2 -o robotics.svg`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			f, err := export.NormalizeFormat(format)
			if err != nil {
				return err
			}

			opts := export.FetchOptions{Concurrency: concurrency, MaxDepth: depth}
			if root != model.TopLevelParent {
				opts.Root = model.IntPtr(root)
			}

			start := time.Now()
			nodes, err := export.FetchTree(cmd.Context(), a.client, opts)
			if err != nil {
				return fmt.Errorf("fetch tree: %w", err)
			}

			var w io.Writer = cmd.OutOrStdout()
			if out != "" && out != "-" {
				file, err := os.Create(out)
				if err != nil {
					return fmt.Errorf("create %s: %w", out, err)
				}
				defer file.Close()
				w = file
			}

			if err := export.Write(w, f, nodes, export.MarkdownOptions{
				Title:      title,
				SiteURL:    a.cfg.Site.BaseURL,
				DateFormat: a.cfg.UI.DateFormat,
			}); err != nil {
				return fmt.Errorf("write %s: %w", f, err)
			}

			stats := export.Summarize(nodes)
			a.logger.Info().
				Str("format", f).
				Int("blogs", stats.Total).
				Int("depth", stats.MaxDepth).
				Dur("took", time.Since(start)).
				Msg("exported tree")
			if out != "" && out != "-" {
				fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %d blogs to %s\n", stats.Total, out)
			}
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&format, "format", "f", "md", "format: "+strings.Join(export.Formats, ", "))
	flags.StringVarP(&out, "out", "o", "", "output file (default stdout)")
	flags.StringVar(&title, "title", "Blogs", "report title")
	flags.IntVar(&root, "root", model.TopLevelParent, "export only the subtree below this blog id")
	flags.IntVar(&depth, "depth", 0, "maximum levels to fetch; 0 means no limit")
	flags.IntVar(&concurrency, "concurrency", 4, "requests in flight per level")
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "blogdesk %s (%s)\n", Version, Commit)
		},
	}
}
