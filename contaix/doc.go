// Package contaix builds AI context documents from code bases and content collections.
// It resolves a source (local directory, single file, remote repository, Go package,
// or an in-memory store) into an ordered key-value Store of text, optionally filters,
// deduplicates, truncates and chunks it, and renders it as one markdown document per
// aggregate, routed through an Egress (return value, file, or callback).
//
// The package offers these main functionalities:
//   - Source Resolution: DirSource, FileSource, RepoSource, PackageSource and StoreSource
//   - Store Transforms: Exclude, SuffixFilter, DedupLines and CapChars, composed with Pipe
//   - Aggregation: Aggregate, AggregateStore and CodeAggregate with pluggable Formatters
//   - URL Tools: ExtractURLs, VerifyURLs, DownloadArticles and DownloadArticlesBySection
//   - Conversion: BytesToMarkdown, MarkdownFiles and MarkdownOfSite
//
// Usage:
//
//	resolver := contaix.NewResolver(contaix.SuffixKeys(".go"))
//
//	// Aggregate a directory into a single markdown document
//	res, err := contaix.CodeAggregate(ctx, resolver, contaix.DirSource{Path: "./pkg"}, contaix.Config{})
//	fmt.Println(res.Document)
//
//	// Or write a GitHub repository to 200-file chunks: repo_01.md, repo_02.md, ...
//	src, _ := resolver.ParseSource("https://github.com/user/repo")
//	res, err = contaix.CodeAggregate(ctx, resolver, src, contaix.Config{
//	    ChunkSize:   200,
//	    ChunkEgress: contaix.TemplateEgress("repo_%02d.md"),
//	})
//
//	// Or aggregate an in-memory store of markdown notes, deduplicated and capped
//	notes := contaix.NewMapStore(contaix.Entry{Key: "a.md", Value: "..."})
//	res, err = contaix.AggregateStore(notes, contaix.Config{
//	    Suffix:             ".md",
//	    MinDuplicatedLines: 3,
//	    MaxChars:           5000,
//	    Formatter:          contaix.MarkdownSection,
//	    Egress:             contaix.ToFile("notes.md"),
//	})
package contaix
