package cmd

import (
	"strings"

	"github.com/spf13/cobra"
	"github.com/tanq16/contaix/contaix"
	u "github.com/tanq16/contaix/utils"
)

var webFlags struct {
	output string
}

var webCmd = &cobra.Command{
	Use:   "web <url...>",
	Short: "Convert web pages to markdown.",
	Long: `Download web pages, strip navigation, ads and other page furniture, and convert
the rest to markdown. Several pages are joined with a horizontal rule. A '*' in --output
is replaced by a unique id.`,
	Args: cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		f := newFetcher()
		pages := make([]string, 0, len(args))
		for _, link := range args {
			if !contaix.IsURL(link) {
				fail("not an http(s) URL: "+link, nil)
			}
			md, err := contaix.MarkdownOfSite(cmd.Context(), f, link)
			if err != nil {
				fail("failed to convert "+link, err)
			}
			pages = append(pages, contaix.RemoveImproperDoubleNewlines(md))
		}
		doc := strings.Join(pages, "\n\n---\n\n")
		if webFlags.output == "" {
			printDocument(doc)
			return
		}
		path, err := contaix.SaveToFile([]byte(doc), webFlags.output)
		if err != nil {
			fail("failed to save", err)
		}
		u.PrintSuccess("wrote " + path)
	},
}

func init() {
	rootCmd.AddCommand(webCmd)
	webCmd.Flags().StringVarP(&webFlags.output, "output", "o", "", "Output file (stdout when empty)")
	webCmd.Flags().Duration("timeout", contaix.DefaultTimeout, "HTTP request timeout")
}
