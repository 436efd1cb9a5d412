package main

import (
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/redlinehq/redline"
	"github.com/redlinehq/redline/docx"
)

func init() {
	applyCmd.RunE = applyDoc
	applyCmd.Flags().StringVarP(&applyCmd.manifest, "manifest", "m", "",
		"Manifest file with change and comment directives")
	applyCmd.MarkFlagRequired("manifest")
	applyCmd.Flags().StringVarP(&applyCmd.output, "out", "o", "",
		"Output document (default <input>-redlined.docx)")
	applyCmd.Flags().StringVarP(&applyCmd.author, "author", "a", "",
		"Override the manifest author")
	applyCmd.Flags().BoolVarP(&applyCmd.dryRun, "dry-run", "n", false,
		"Validate all directives without writing anything")
	rootCmd.AddCommand(&applyCmd.Command)
}

var applyCmd = struct {
	cobra.Command
	manifest string
	output   string
	author   string
	dryRun   bool
}{
	Command: cobra.Command{
		Use:   "apply <document>",
		Short: "Apply a manifest to a document",
		Args:  cobra.ExactArgs(1),
	},
}

func applyDoc(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true
	data, err := os.ReadFile(applyCmd.manifest)
	if err != nil {
		return err
	}
	man, err := redline.ParseManifest(data)
	if err != nil {
		return err
	}
	if applyCmd.author != "" {
		man.Author = applyCmd.author
	}
	out := applyCmd.output
	switch {
	case applyCmd.dryRun && out != "":
		return fmt.Errorf("--dry-run writes no output file, drop --out")
	case !applyCmd.dryRun && out == "":
		out = defaultOutput(args[0])
	}
	batch := redline.Batch{Open: openDoc, DryRun: applyCmd.dryRun}
	rep, err := batch.Process(args[0], out, man)
	if err != nil {
		return err
	}
	fmt.Println(rep.JSON())
	if !rep.Success() {
		log.Printf("%d of %d directives failed",
			rep.ChangesAttempted-rep.ChangesSucceeded+
				rep.CommentsAttempted-rep.CommentsSucceeded,
			rep.ChangesAttempted+rep.CommentsAttempted)
		os.Exit(1)
	}
	return nil
}

func openDoc(path string) (redline.Document, error) { return docx.Open(path) }

func defaultOutput(input string) string {
	if ext := ".docx"; strings.HasSuffix(input, ext) {
		return strings.TrimSuffix(input, ext) + "-redlined" + ext
	}
	return input + "-redlined.docx"
}
