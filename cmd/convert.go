package cmd

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/tanq16/contaix/contaix"
	u "github.com/tanq16/contaix/utils"
)

var convertFlags struct {
	output   string
	maxChars int
}

var convertCmd = &cobra.Command{
	Use:   "convert <file...>",
	Short: "Convert PDF, DOCX, XLSX, HTML and notebook files to markdown.",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		docs := make([]string, 0, len(args))
		for _, name := range args {
			path := contaix.Fullpath(name)
			data, err := os.ReadFile(path)
			if err != nil {
				fail("failed to read "+name, err)
			}
			md, err := contaix.BytesToMarkdown(data, filepath.Ext(path))
			if err != nil {
				fail("failed to convert "+name, err)
			}
			md = contaix.TruncateText(contaix.RemoveImproperDoubleNewlines(md), convertFlags.maxChars, "")
			if len(args) > 1 {
				md = "## " + filepath.Base(path) + "\n\n" + md
			}
			docs = append(docs, md)
		}
		doc := strings.Join(docs, contaix.Separator)
		if convertFlags.output == "" {
			printDocument(doc)
			return
		}
		path, err := contaix.SaveToFile([]byte(doc), convertFlags.output)
		if err != nil {
			fail("failed to save", err)
		}
		u.PrintSuccess("wrote " + path)
	},
}

func init() {
	rootCmd.AddCommand(convertCmd)
	convertCmd.Flags().StringVarP(&convertFlags.output, "output", "o", "", "Output file (stdout when empty)")
	convertCmd.Flags().IntVar(&convertFlags.maxChars, "limit", 0, "Truncate each converted file to this many characters")
}
