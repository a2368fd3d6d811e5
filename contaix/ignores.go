package contaix

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// KeyFilter decides which keys a store exposes
type KeyFilter func(key string) bool

// AcceptAll keeps every key
func AcceptAll(string) bool { return true }

// DefaultKeyFilter keeps Go source files
var DefaultKeyFilter = SuffixKeys(".go")

// SuffixKeys keeps keys ending with any of the given suffixes
func SuffixKeys(suffixes ...string) KeyFilter {
	return func(key string) bool {
		for _, s := range suffixes {
			if strings.HasSuffix(key, s) {
				return true
			}
		}
		return false
	}
}

// GlobKeys keeps keys matching any of the doublestar patterns (e.g. "**/*.go");
// an invalid pattern never matches
func GlobKeys(patterns ...string) KeyFilter {
	return func(key string) bool {
		for _, p := range patterns {
			if ok, _ := doublestar.Match(p, key); ok {
				return true
			}
		}
		return false
	}
}

// AllKeys keeps a key only when every filter keeps it
func AllKeys(filters ...KeyFilter) KeyFilter {
	return func(key string) bool {
		for _, f := range filters {
			if f != nil && !f(key) {
				return false
			}
		}
		return true
	}
}

// IgnorePatterns decides which paths are skipped while scanning a directory
type IgnorePatterns struct {
	defaultPatterns []string
	customPatterns  []string
}

// newIgnorePatterns holds only the given patterns; withDefaults adds the built-in noise list
func newIgnorePatterns(additionalPatterns []string) *IgnorePatterns {
	customPatterns := make([]string, 0, len(additionalPatterns))
	for _, pattern := range additionalPatterns {
		if pattern == "" {
			continue
		}
		customPatterns = append(customPatterns, strings.TrimPrefix(filepath.ToSlash(pattern), "/"))
	}
	return &IgnorePatterns{customPatterns: customPatterns}
}

func (ip *IgnorePatterns) withDefaults() {
	ip.defaultPatterns = defaultIgnores
}

func (ip *IgnorePatterns) shouldIgnore(path string) bool {
	path = filepath.ToSlash(path)
	base := filepath.Base(path)
	// default patterns only look at the base name
	for _, pattern := range ip.defaultPatterns {
		if matched, _ := filepath.Match(pattern, base); matched {
			return true
		}
	}
	for _, pattern := range ip.customPatterns {
		if matched, _ := doublestar.Match(pattern, path); matched {
			return true
		}
		if matched, _ := doublestar.Match(pattern, base); matched {
			return true
		}
	}
	return false
}

// isBinaryFile peeks at the head of a file
func isBinaryFile(path string) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return false, err
	}
	defer f.Close()
	head := make([]byte, 512)
	n, err := io.ReadFull(f, head)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return false, err
	}
	return isBinary(head[:n]), nil
}

// Check if the content is binary
// funny heuristic, but it works against a very limited sample set
func isBinary(content []byte) bool {
	nullCount := 0
	nonPrintable := 0
	checkSize := min(len(content), 512)
	if checkSize == 0 {
		return false
	}
	for i := 0; i < checkSize; i++ {
		if content[i] == 0 {
			nullCount++
		} else if content[i] < 32 && content[i] != '\n' && content[i] != '\r' && content[i] != '\t' {
			nonPrintable++
		}
	}
	return nullCount > 0 || float64(nonPrintable)/float64(checkSize) > 0.3
}

// Default ignored patterns
var defaultIgnores = []string{
	".git",
	".gitignore",
	".gitmodules",
	".gitattributes",
	"node_modules",
	"vendor",
	"__pycache__",
	".venv",
	"*.gz",
	"*.bz2",
	"*.zip",
	"*.tar",
	"*.tgz",
	"*.xz",
	"*.rar",
	"*.7z",
	"*.exe",
	"*.dll",
	"*.so",
	"*.dylib",
	"*.jpg",
	"*.jpeg",
	"*.png",
	"*.gif",
	"*.ico",
	"*.bmp",
	"*.webp",
	"*.mp3",
	"*.mp4",
	"*.pdf",
	"*.docx",
	"*.xlsx",
	"*.class",
	"*.pyc",
	"*.o",
	"go.sum",
	"poetry.lock",
	"yarn.lock",
	"package-lock.json",
	".idea",
	".vscode",
	".obsidian",
	".DS_Store",
	"*.jar",
	"*.woff",
	"*.woff2",
	"*.ttf",
}
