// Contaix is a command-line tool that turns code bases, document collections and web
// pages into markdown context files for AI language models.
//
// Key Features:
//
// Code Aggregation:
//   - Local directories, single files, remote repositories and Go packages
//   - Exclusion, duplicate-block removal and per-file truncation
//   - Chunked output into numbered files
//
// Document Aggregation:
//   - Markdown note collections
//   - PDF, DOCX, HTML and notebook conversion
//
// Link Tools:
//   - Link extraction in several modes
//   - Concurrent link verification
//   - PDF reading-list downloads
//
// Example Usage:
//
//	# Aggregate a local directory
//	contaix code ./pkg -o context.md
//
//	# Aggregate a GitHub repository into 100-file chunks
//	contaix code https://github.com/username/repo --chunk-size 100 -o repo.md
//
//	# Check the links of a README
//	contaix urls verify README.md
package main

import "github.com/tanq16/contaix/cmd"

func main() {
	cmd.Execute()
}
