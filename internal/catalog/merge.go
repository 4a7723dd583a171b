package catalog

import "sort"

// Batch is the normalized output of one uploaded file.
type Batch struct {
	Source  string
	Records []ProductRecord
}

// Merge concatenates batches in processing order and summarizes the result.
// filesProcessed counts every file of the upload, including files whose rows
// were all dropped.
func Merge(batches []Batch, filesProcessed int) (Catalog, Summary) {
	size := 0
	for _, b := range batches {
		size += len(b.Records)
	}
	merged := make(Catalog, 0, size)
	sources := make(map[string]struct{}, len(batches))
	for _, b := range batches {
		merged = append(merged, b.Records...)
		sources[b.Source] = struct{}{}
	}
	return merged, Summary{
		Total:          len(merged),
		Categories:     Categories(merged),
		Sources:        sortedKeys(sources),
		FilesProcessed: filesProcessed,
	}
}

// Categories lists the distinct non-empty categories of c in sorted order.
func Categories(c Catalog) []string {
	seen := make(map[string]struct{})
	for _, r := range c {
		if r.Category == "" {
			continue
		}
		seen[r.Category] = struct{}{}
	}
	return sortedKeys(seen)
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
