package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/cjdb/schreiber/internal/lexicon"
)

var lexiconCmd = &cobra.Command{
	Use:   "lexicon",
	Short: "List the directives schreiber understands",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := cmd.Flags().GetString("format")
		if err != nil {
			return err
		}
		switch format {
		case "text":
			renderLexiconText(cmd.OutOrStdout(), lexicon.Default())
			return nil
		case "yaml":
			return renderLexiconYAML(cmd.OutOrStdout(), lexicon.Default())
		default:
			return fmt.Errorf("unsupported format %q (must be text or yaml)", format)
		}
	},
}

func init() {
	lexiconCmd.Flags().String("format", "text", "output format (text|yaml)")
}

type lexiconDoc struct {
	Directives []lexiconDirective `yaml:"directives"`
	Markers    []string           `yaml:"markers"`
	Legacy     map[string]string  `yaml:"legacy"` // команда -> замена, "" если нет
}

type lexiconDirective struct {
	Keyword  string   `yaml:"keyword"`
	Category string   `yaml:"category"`
	Summary  string   `yaml:"summary"`
	Aliases  []string `yaml:"aliases,omitempty"`
}

func buildLexiconDoc(t *lexicon.Table) lexiconDoc {
	doc := lexiconDoc{Markers: t.Markers(), Legacy: make(map[string]string)}
	for _, e := range t.Entries() {
		doc.Directives = append(doc.Directives, lexiconDirective{
			Keyword:  e.Keyword,
			Category: e.Category.String(),
			Summary:  e.Summary,
			Aliases:  e.Aliases,
		})
	}
	for _, l := range t.Legacies() {
		repl := ""
		if l.Replacement != nil {
			repl = l.Replacement.Keyword
		}
		doc.Legacy[l.Keyword] = repl
	}
	return doc
}

func renderLexiconYAML(w io.Writer, t *lexicon.Table) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(buildLexiconDoc(t)); err != nil {
		return err
	}
	return enc.Close()
}

func renderLexiconText(w io.Writer, t *lexicon.Table) {
	bold := color.New(color.Bold).SprintFunc()
	entries := t.Entries()

	width := 0
	for _, e := range entries {
		width = max(width, len(e.Keyword)+1)
	}

	for _, e := range entries {
		kw := fmt.Sprintf("%-*s", width, "\\"+e.Keyword)
		fmt.Fprintf(w, "%s  %-14s %s\n", bold(kw), e.Category.String(), e.Summary)
		if len(e.Aliases) > 0 {
			fmt.Fprintf(w, "%*s  replaces \\%s\n", width, "", strings.Join(e.Aliases, ", \\"))
		}
	}
	if markers := t.Markers(); len(markers) > 0 {
		fmt.Fprintf(w, "\nmarkers: \\%s\n", strings.Join(markers, ", \\"))
	}

	var bare []string
	for _, l := range t.Legacies() {
		if l.Replacement == nil {
			bare = append(bare, l.Keyword)
		}
	}
	if len(bare) > 0 {
		fmt.Fprintf(w, "unsupported: \\%s\n", strings.Join(bare, ", \\"))
	}
}
