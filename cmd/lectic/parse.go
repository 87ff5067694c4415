// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/lectic/internal/lectic"
	"github.com/pdiddy/lectic/pkg/types"
)

var parseCmd = &cobra.Command{
	Use:   "parse [file]",
	Short: "Check a lectic and print its parsed structure",
	Long: `Parse reads a lectic, reports any header or block errors with their
line numbers, and prints the header and the body blocks that would be sent
to the model. Whitespace-only turns are dropped.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runParse,
}

var renderCmd = &cobra.Command{
	Use:   "render [file]",
	Short: "Print the request a lectic would send, without sending it",
	Long: `Render parses a lectic and prints the system prompt, messages,
temperature, token limit and model that lectic would send, as JSON. The
model is the document's own, else --model or configuration.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRender,
}

// blockView is the printable form of a types.Block.
type blockView struct {
	Kind    string `json:"kind" yaml:"kind"`
	Name    string `json:"name,omitempty" yaml:"name,omitempty"`
	Content string `json:"content" yaml:"content"`
}

type documentView struct {
	Header types.Header `json:"header" yaml:"header"`
	Body   []blockView  `json:"body" yaml:"body"`
}

func newDocumentView(doc *types.Document) documentView {
	view := documentView{Header: doc.Header, Body: make([]blockView, 0, len(doc.Body))}
	for _, b := range doc.Body {
		switch b := b.(type) {
		case types.NamedBlock:
			view.Body = append(view.Body, blockView{Kind: "named", Name: b.Name, Content: b.Text})
		case types.PlainBlock:
			view.Body = append(view.Body, blockView{Kind: "plain", Content: b.Text})
		}
	}
	return view
}

func runParse(cmd *cobra.Command, args []string) error {
	text, err := readLectic(argPath(args), cmd.InOrStdin())
	if err != nil {
		return err
	}

	doc, err := lectic.Parse(text)
	if err != nil {
		return fmt.Errorf("parsing lectic: %w", err)
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	return writeView(cmd.OutOrStdout(), newDocumentView(doc), jsonOutput)
}

func runRender(cmd *cobra.Command, args []string) error {
	text, err := readLectic(argPath(args), cmd.InOrStdin())
	if err != nil {
		return err
	}

	conv, err := conversationFor(text)
	if err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	conv.Model = newClient(cfg).ModelFor(conv)
	return writeView(cmd.OutOrStdout(), conv, true)
}

func writeView(w io.Writer, v any, jsonOutput bool) error {
	if jsonOutput {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}

func argPath(args []string) string {
	if len(args) == 1 {
		return args[0]
	}
	return "-"
}

func init() {
	parseCmd.Flags().Bool("json", false, "print JSON instead of YAML")

	rootCmd.AddCommand(parseCmd)
	rootCmd.AddCommand(renderCmd)
}
