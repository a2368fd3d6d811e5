package contaix

import "strings"

// RemovedBlock reports one block of lines dropped by DeduplicateLines
type RemovedBlock struct {
	// Line is the 0-based line index of the block in the text it was removed from
	Line int
	// Original is the line index of the retained copy in that same text
	Original int
	Lines    []string
}

// DeduplicateLines removes every later repetition of a contiguous block of at
// least minBlock lines, keeping the first occurrence. Windows made only of
// blank lines never count as duplicates. Passes repeat until nothing changes,
// so the result is a fixpoint: deduplicating it again is a no-op.
func DeduplicateLines(text string, minBlock int) (string, []RemovedBlock) {
	if minBlock <= 0 || text == "" {
		return text, nil
	}
	lines := strings.Split(text, "\n")
	var removed []RemovedBlock
	for {
		kept, blocks := dedupPass(lines, minBlock)
		if len(blocks) == 0 {
			break
		}
		removed = append(removed, blocks...)
		lines = kept
	}
	return strings.Join(lines, "\n"), removed
}

// dedupPass scans once, matching each position against windows made of lines
// that were kept contiguously, then greedily extends the match
func dedupPass(lines []string, n int) ([]string, []RemovedBlock) {
	seen := make(map[string]int)
	runOf := make([]int, len(lines)) // contiguous kept run per input line, -1 when removed
	run, runStart := 0, 0
	kept := make([]string, 0, len(lines))
	var blocks []RemovedBlock

	for i := 0; i < len(lines); {
		if i+n <= len(lines) && !blankWindow(lines[i:i+n]) {
			if j, ok := seen[windowKey(lines[i:i+n])]; ok {
				size := n
				for i+size < len(lines) && j+size < i && runOf[j+size] == runOf[j] && lines[j+size] == lines[i+size] {
					size++
				}
				blocks = append(blocks, RemovedBlock{
					Line:     i,
					Original: j,
					Lines:    append([]string(nil), lines[i:i+size]...),
				})
				for k := i; k < i+size; k++ {
					runOf[k] = -1
				}
				i += size
				run++
				runStart = i
				continue
			}
		}
		runOf[i] = run
		kept = append(kept, lines[i])
		if start := i - n + 1; start >= runStart {
			key := windowKey(lines[start : i+1])
			if _, ok := seen[key]; !ok && !blankWindow(lines[start:i+1]) {
				seen[key] = start
			}
		}
		i++
	}
	return kept, blocks
}

func windowKey(lines []string) string {
	return strings.Join(lines, "\n")
}

func blankWindow(lines []string) bool {
	for _, l := range lines {
		if strings.TrimSpace(l) != "" {
			return false
		}
	}
	return true
}
