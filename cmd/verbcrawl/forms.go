package main

import (
	"fmt"
	"strconv"

	"github.com/nao1215/markdown"
	"github.com/spf13/cobra"

	"github.com/nao1215/verbcrawl/internal/model"
	"github.com/nao1215/verbcrawl/internal/morph"
	"github.com/nao1215/verbcrawl/internal/query"
)

// NewFormsCmd creates the forms command.
func NewFormsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "forms [root...]",
		Short: "Preview the generated forms without crawling",
		Long: `Forms prints the prefixed forms generated for the configured verbs as a
Markdown table. Nothing is fetched and the crawl state is not touched.

Examples:
  # Preview every configured verb
  verbcrawl forms

  # Preview one verb with the first-page address of every query
  verbcrawl forms драть --queries`,
		RunE: runFormsCmd,
	}
	cmd.Flags().Bool("queries", false, "Also list the first-page address of every query")
	return cmd
}

// runFormsCmd executes the forms command.
func runFormsCmd(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	withQueries, err := cmd.Flags().GetBool("queries")
	if err != nil {
		return err
	}
	selectRoots(cfg.File, args)
	if err := cfg.File.RequireVerbs(); err != nil {
		return err
	}
	if err := cfg.File.Validate(); err != nil {
		return err
	}
	plan, err := buildPlan(cfg.File)
	if err != nil {
		return err
	}

	md := markdown.NewMarkdown(cmd.OutOrStdout())
	for _, v := range plan.Verbs {
		forms := morph.Generate(v, plan.Prefixes, plan.Endings)

		md.H2f("%s (%d forms)", v.Root, len(forms))
		md.PlainText("")
		rows := make([][]string, 0, len(forms))
		for i, f := range forms {
			rows = append(rows, formRow(i+1, f))
		}
		md.Table(markdown.TableSet{
			Header: []string{"#", "Form", "Prefix", "Variant", "Suffix", "Ending", "Reflexive", "Secondary"},
			Rows:   rows,
		})
		md.PlainText("")

		if !withQueries {
			continue
		}
		var addresses []string
		targets := plan.TargetsFor(v)
		for _, f := range forms {
			for _, t := range targets {
				for _, gramm := range t.Gramms {
					o := t.Overrides
					o.Lexeme = f.Surface
					o.Gramm = gramm
					q, err := query.Build(t.Subcorpus, o)
					if err != nil {
						return fmt.Errorf("failed to build %s query for %q: %w", t.Subcorpus, f.Surface, err)
					}
					addresses = append(addresses, q.Address())
				}
			}
		}
		md.H3("Queries")
		md.BulletList(addresses...)
		md.PlainText("")
	}
	return md.Build()
}

// formRow renders one generated form as a table row.
func formRow(n int, f model.DerivedForm) []string {
	return []string{
		strconv.Itoa(n),
		f.Surface,
		f.Prefix.String(),
		f.PrefixVariant,
		f.Suffix.String(),
		f.Ending,
		yesNo(f.Reflexive),
		yesNo(f.Secondary),
	}
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return ""
}
