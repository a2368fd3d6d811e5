package cmd

import (
	"github.com/spf13/cobra"
	"github.com/tanq16/contaix/contaix"
)

var mdFlags struct {
	output  string
	convert bool
}

var mdCmd = &cobra.Command{
	Use:   "md <directory>",
	Short: "Aggregate the markdown notes of a directory into one document.",
	Long: `Aggregate the markdown files of a directory under "## <path>" headings.
With --convert, PDF, DOCX, XLSX, HTML and notebook files are converted to markdown and included.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		dir := contaix.Fullpath(args[0])
		var store contaix.Store
		cfg := codeConfig(mdFlags.output)
		cfg.Formatter = contaix.MarkdownSection
		if mdFlags.convert {
			store = contaix.NewMarkdownFiles(dir)
		} else {
			store = contaix.NewTextFiles(dir, contaix.SuffixKeys(".md"), conf.Code.Ignore...).SkipNoise()
			cfg.Suffix = ".md"
		}
		res, err := contaix.AggregateStore(store, cfg)
		if err != nil {
			fail("failed to aggregate "+dir, err)
		}
		reportResult(res, mdFlags.output)
	},
}

func init() {
	rootCmd.AddCommand(mdCmd)
	mdCmd.Flags().StringVarP(&mdFlags.output, "output", "o", "", "Output file (stdout when empty)")
	mdCmd.Flags().BoolVar(&mdFlags.convert, "convert", false, "Convert and include PDF, DOCX, XLSX, HTML and notebook files")
	mdCmd.Flags().StringSlice("exclude", nil, "Keys to leave out")
	mdCmd.Flags().Int("dedup-lines", 0, "Remove repeated blocks of at least this many lines")
	mdCmd.Flags().Int("max-chars", 0, "Truncate each note to this many characters")
	mdCmd.Flags().Int("chunk-size", 0, "Split into documents of this many notes")
	mdCmd.Flags().StringSliceP("ignore", "i", nil, "Additional patterns to ignore")
}
