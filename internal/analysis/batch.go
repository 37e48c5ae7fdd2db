package analysis

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// ReadBatch reads "name<TAB>mutations" lines into work items. Blank lines and
// lines starting with '#' are skipped. A line without a tab is named by its
// line number.
func ReadBatch(r io.Reader) ([]WorkItem, error) {
	var items []WorkItem
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		name, muts, ok := strings.Cut(line, "\t")
		if !ok {
			name, muts = fmt.Sprintf("line%d", lineNo), line
		}
		items = append(items, WorkItem{
			Seq:       len(items),
			Name:      strings.TrimSpace(name),
			Mutations: muts,
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read batch: %w", err)
	}
	return items, nil
}

// Feed sends items on a new channel and closes it when done.
func Feed(items []WorkItem) <-chan WorkItem {
	ch := make(chan WorkItem, len(items))
	for _, it := range items {
		ch <- it
	}
	close(ch)
	return ch
}
