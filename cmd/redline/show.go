package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/redlinehq/redline/docx"
)

func init() {
	showCmd.RunE = showDoc
	showCmd.Flags().BoolVarP(&showCmd.comments, "comments", "c", false,
		"Also list the comment collection")
	rootCmd.AddCommand(&showCmd.Command)
}

var showCmd = struct {
	cobra.Command
	comments bool
}{
	Command: cobra.Command{
		Use:   "show <document>",
		Short: "Print a document's paragraph texts",
		Args:  cobra.ExactArgs(1),
	},
}

func showDoc(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true
	doc, err := docx.Open(args[0])
	if err != nil {
		return err
	}
	defer doc.Close()
	for i, p := range doc.Paragraphs() {
		fmt.Printf("%4d %s\n", i, p.Text())
	}
	if showCmd.comments {
		for _, c := range doc.Comments().All() {
			fmt.Printf("comment %d [%s %s]: %s\n", c.ID, c.Author, c.Date, c.Text)
		}
	}
	return nil
}
