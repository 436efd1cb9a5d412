// A command line tool to inject tracked changes and comments into docx
// files
package main

import (
	"log"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = struct {
	cobra.Command
}{
	Command: cobra.Command{
		Use:   "redline",
		Short: "Inject tracked changes and anchored comments into docx files",
		Long: `redline applies a JSON manifest of change and comment directives to a
WordprocessingML document. Edits are injected as revision markup so a
reviewer can accept or reject them; comments are anchored to the first
occurrence of their anchor text.

Manifest format:

  {
    "author": "Reviewer",
    "changes": [
      {"type": "replace", "find": "...", "replace": "..."},
      {"type": "delete", "find": "..."},
      {"type": "insert_after", "anchor": "...", "text": "..."},
      {"type": "insert_before", "anchor": "...", "text": "..."}
    ],
    "comments": [
      {"anchor": "...", "text": "..."},
      {"op": "update", "id": 3, "text": "..."}
    ]
  }

Comments are applied first, then changes, each in manifest order. A
directive whose text is not found is reported and skipped; the batch
always completes.`,
	},
}

func main() {
	log.SetFlags(0)
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
