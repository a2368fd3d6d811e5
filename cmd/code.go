package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"

	log "github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/tanq16/contaix/contaix"
	u "github.com/tanq16/contaix/utils"
)

var codeFlags struct {
	listFile string
	output   string
	exts     []string
	include  []string
	readme   bool
}

var codeCmd = &cobra.Command{
	Use:   "code [source...]",
	Short: "Aggregate directories, files, repositories or Go packages into markdown.",
	Long: `Aggregate code into a markdown document with one fenced section per file.
A source is a local directory or file, a repository URL (https://github.com/user/repo),
or a Go import path. With one source the document goes to --output or stdout; with
several, each source is written to <output dir>/<name>.md.`,
	Run: func(cmd *cobra.Command, args []string) {
		sources := args
		if codeFlags.listFile != "" {
			listed, err := readLines(codeFlags.listFile)
			if err != nil {
				fail("failed to read list file", err)
			}
			sources = append(sources, listed...)
		}
		if len(sources) == 0 {
			fail("no source argument or list file provided", nil)
		}

		resolver := newCodeResolver()
		ctx := cmd.Context()
		if len(sources) == 1 {
			res, err := contaix.CodeAggregate(ctx, resolver, mustParse(resolver, sources[0]), codeConfig(codeFlags.output))
			if err != nil {
				fail("failed to aggregate "+sources[0], err)
			}
			reportResult(res, codeFlags.output)
			return
		}

		dir := codeFlags.output
		if dir == "" {
			dir = "context"
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			fail("failed to create output directory", err)
		}
		if errs := aggregateMany(ctx, resolver, sources, dir, conf.Code.Threads); len(errs) > 0 {
			for _, err := range errs {
				u.PrintError(err.Error())
			}
			os.Exit(1)
		}
		u.PrintSuccess(fmt.Sprintf("wrote %d contexts to %s", len(sources), dir))
	},
}

func newCodeResolver() *contaix.Resolver {
	filter := contaix.SuffixKeys(codeFlags.exts...)
	if len(codeFlags.include) > 0 {
		filter = contaix.AllKeys(filter, contaix.GlobKeys(codeFlags.include...))
	}
	resolver := contaix.NewResolver(filter)
	resolver.Ignore = conf.Code.Ignore
	resolver.SkipNoise = true
	resolver.Repos = contaix.NewGitFetcher(conf.Repos.CacheDir)
	return resolver
}

func mustParse(r *contaix.Resolver, s string) contaix.Source {
	src, err := r.ParseSource(s)
	if err != nil {
		fail("invalid source", err)
	}
	return src
}

// codeConfig builds the aggregation options for one output path; an empty
// output returns the document
func codeConfig(output string) contaix.Config {
	cfg := contaix.Config{
		Exclude:            conf.Code.Exclude,
		MinDuplicatedLines: conf.Code.DedupLines,
		MaxChars:           conf.Code.MaxChars,
		ChunkSize:          conf.Code.ChunkSize,
	}
	if output != "" {
		cfg.Egress = contaix.ToFile(output)
	}
	cfg.ChunkEgress = contaix.TemplateEgress(contaix.ChunkTemplateFor(output))
	if codeFlags.readme {
		cfg.Lead = contaix.ParentReadme("README.md")
	}
	return cfg
}

func reportResult(res contaix.Result, output string) {
	switch {
	case len(res.Chunks) > 0:
		u.PrintSuccess(fmt.Sprintf("wrote %d chunks", len(res.Chunks)))
		for _, path := range res.Chunks {
			u.PrintInfo("  " + path)
		}
	case output != "":
		u.PrintSuccess("wrote " + res.Document)
	default:
		printDocument(res.Document)
	}
}

type processResult struct {
	source string
	err    error
}

// aggregateMany fans sources out to threads workers and collects their errors
func aggregateMany(ctx context.Context, r *contaix.Resolver, sources []string, dir string, threads int) []error {
	if threads <= 0 {
		threads = 1
	}
	sourceChan := make(chan string)
	resultChan := make(chan processResult)
	var wg sync.WaitGroup
	for range threads {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for s := range sourceChan {
				resultChan <- processResult{source: s, err: aggregateOne(ctx, r, s, dir)}
			}
		}()
	}
	go func() {
		for _, s := range sources {
			sourceChan <- s
		}
		close(sourceChan)
		wg.Wait()
		close(resultChan)
	}()

	var errs []error
	for result := range resultChan {
		if result.err != nil {
			log.Error().Err(result.err).Str("source", result.source).Msg("failed to aggregate")
			errs = append(errs, fmt.Errorf("failed to process %s: %w", result.source, result.err))
			continue
		}
		log.Info().Str("source", result.source).Msg("aggregated")
	}
	return errs
}

func aggregateOne(ctx context.Context, r *contaix.Resolver, s, dir string) error {
	src, err := r.ParseSource(s)
	if err != nil {
		return err
	}
	_, err = contaix.CodeAggregate(ctx, r, src, codeConfig(filepath.Join(dir, outputName(s)+".md")))
	return err
}

var nonWord = regexp.MustCompile(`[^\w]+`)

// outputName turns a source locator into a file name: "https://github.com/a/b" -> "github_com_a_b"
func outputName(s string) string {
	s = strings.TrimPrefix(strings.TrimPrefix(s, "https://"), "http://")
	s = strings.TrimSuffix(strings.TrimSuffix(s, "/"), ".git")
	name := strings.Trim(nonWord.ReplaceAllString(s, "_"), "_")
	if name == "" {
		return "context"
	}
	return name
}

// readLines returns the non-empty trimmed lines of a file
func readLines(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	var lines []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines, scanner.Err()
}

func init() {
	rootCmd.AddCommand(codeCmd)
	codeCmd.Flags().StringVarP(&codeFlags.listFile, "file", "f", "", "File with a list of sources to process")
	codeCmd.Flags().StringVarP(&codeFlags.output, "output", "o", "", "Output file (one source) or directory (several sources)")
	codeCmd.Flags().StringSliceVar(&codeFlags.exts, "ext", []string{".go"}, "File extensions to include")
	codeCmd.Flags().StringSliceVar(&codeFlags.include, "include", nil, "Glob patterns keys must match (e.g. 'internal/**')")
	codeCmd.Flags().BoolVar(&codeFlags.readme, "readme", false, "Lead with the README.md of the source or its parent")
	codeCmd.Flags().StringSlice("exclude", nil, "Keys to leave out")
	codeCmd.Flags().Int("dedup-lines", 0, "Remove repeated blocks of at least this many lines")
	codeCmd.Flags().Int("max-chars", 0, "Truncate each file to this many characters")
	codeCmd.Flags().Int("chunk-size", 0, "Split into documents of this many files")
	codeCmd.Flags().StringSliceP("ignore", "i", nil, "Additional patterns to ignore (e.g., 'tests,docs/**')")
	codeCmd.Flags().IntP("threads", "t", 4, "Number of sources processed concurrently")
	codeCmd.Flags().String("cache-dir", "", "Where remote repositories are cloned")
}
