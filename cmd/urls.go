package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/tanq16/contaix/contaix"
	u "github.com/tanq16/contaix/utils"
)

var urlsFlags struct {
	mode       string
	context    int
	asJSON     bool
	dir        string
	sections   bool
	saveNonPDF bool
}

var urlsCmd = &cobra.Command{
	Use:   "urls",
	Short: "Extract, verify and download the links of a markdown document.",
}

var urlsExtractCmd = &cobra.Command{
	Use:   "extract <file|url|->",
	Short: "List the links of a document.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		doc, err := readInput(cmd.Context(), args[0])
		if err != nil {
			fail("failed to read input", err)
		}
		extract, err := extractorFor(urlsFlags.mode, urlsFlags.context)
		if err != nil {
			fail("invalid mode", err)
		}
		links := contaix.ExtractURLs(doc, extract)
		if urlsFlags.asJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			if err := enc.Encode(links); err != nil {
				fail("failed to encode links", err)
			}
			return
		}
		for _, l := range links {
			if l.Context == "" {
				fmt.Println(l.URL)
				continue
			}
			fmt.Printf("%s %s %s\n", l.Context, u.StyleSymbols["arrow"], l.URL)
		}
	},
}

var urlsVerifyCmd = &cobra.Command{
	Use:   "verify <file|url|->",
	Short: "Check that the links of a document answer.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		doc, err := readInput(cmd.Context(), args[0])
		if err != nil {
			fail("failed to read input", err)
		}
		statuses, err := contaix.VerifyURLs(cmd.Context(), newFetcher(), doc, conf.Verify.Workers)
		if err != nil {
			fail("failed to verify links", err)
		}
		broken := 0
		for _, link := range contaix.SortedStatuses(statuses) {
			status := statuses[link]
			if status.OK() {
				fmt.Printf("%s %s %s\n", u.FSuccess(u.StyleSymbols["pass"]), status, link)
				continue
			}
			broken++
			fmt.Printf("%s %s %s\n", u.FError(u.StyleSymbols["fail"]), u.FWarning(status.String()), link)
		}
		if broken > 0 {
			u.PrintWarning(fmt.Sprintf("%d of %d links failed", broken, len(statuses)))
			os.Exit(1)
		}
		u.PrintSuccess(fmt.Sprintf("all %d links answered", len(statuses)))
	},
}

var urlsDownloadCmd = &cobra.Command{
	Use:   "download <file|url|->",
	Short: "Download the PDFs of a \"- **[title](url)**\" reading list.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		doc, err := readInput(cmd.Context(), args[0])
		if err != nil {
			fail("failed to read input", err)
		}
		m := u.NewManager()
		m.SetMessage("Downloading articles")
		m.StartDisplay()
		opts := contaix.DownloadOptions{
			SaveNonPDF: urlsFlags.saveNonPDF,
			Progress:   m.Progress,
		}
		var failed []string
		if urlsFlags.sections {
			var perSection map[string][]string
			perSection, err = contaix.DownloadArticlesBySection(cmd.Context(), newFetcher(), doc, urlsFlags.dir, opts)
			for _, urls := range perSection {
				failed = append(failed, urls...)
			}
		} else {
			failed, err = contaix.DownloadArticles(cmd.Context(), newFetcher(), doc, urlsFlags.dir, opts)
		}
		switch {
		case err != nil:
			m.SetMessage("Download failed")
			m.ReportError(err)
		case len(failed) > 0:
			m.Complete(fmt.Sprintf("%d downloads failed", len(failed)))
			m.SetStatus("warning")
		default:
			m.Complete("All articles downloaded")
		}
		m.StopDisplay()
		for _, link := range failed {
			u.PrintWarning("  " + link)
		}
		if err != nil {
			os.Exit(1)
		}
	},
}

func newFetcher() *contaix.HTTPFetcher {
	return contaix.NewHTTPFetcher(conf.HTTP.Timeout)
}

// readInput reads a document from a URL, a file or stdin ("-")
func readInput(ctx context.Context, arg string) (string, error) {
	switch {
	case arg == "-":
		data, err := io.ReadAll(os.Stdin)
		return string(data), err
	case contaix.IsURL(arg):
		data, err := contaix.URLToContents(ctx, newFetcher(), arg)
		return string(data), err
	default:
		data, err := os.ReadFile(contaix.Fullpath(arg))
		return string(data), err
	}
}

func extractorFor(mode string, width int) (contaix.Extractor, error) {
	switch mode {
	case "", "md":
		return contaix.MarkdownLinks, nil
	case "context":
		return contaix.SurroundingContext(width), nil
	case "only":
		return contaix.URLsOnly, nil
	case "html":
		return contaix.HTMLLinks, nil
	case "ast":
		return contaix.ASTLinks, nil
	}
	return nil, fmt.Errorf("unknown extraction mode %q (md, context, only, html, ast)", mode)
}

func init() {
	rootCmd.AddCommand(urlsCmd)
	urlsCmd.AddCommand(urlsExtractCmd, urlsVerifyCmd, urlsDownloadCmd)
	urlsCmd.PersistentFlags().Duration("timeout", contaix.DefaultTimeout, "HTTP request timeout")

	urlsExtractCmd.Flags().StringVarP(&urlsFlags.mode, "mode", "m", "md", "Extraction mode: md, context, only, html or ast")
	urlsExtractCmd.Flags().IntVar(&urlsFlags.context, "context", 50, "Characters of context around bare URLs (context mode)")
	urlsExtractCmd.Flags().BoolVar(&urlsFlags.asJSON, "json", false, "Print links as JSON")

	urlsVerifyCmd.Flags().IntP("workers", "w", 20, "Concurrent requests")

	urlsDownloadCmd.Flags().StringVarP(&urlsFlags.dir, "dir", "d", ".", "Directory the PDFs are saved in")
	urlsDownloadCmd.Flags().BoolVar(&urlsFlags.sections, "sections", false, "Save each ### section in its own subdirectory")
	urlsDownloadCmd.Flags().BoolVar(&urlsFlags.saveNonPDF, "save-non-pdf", false, "Keep non-PDF responses and invalid PDFs")
}
