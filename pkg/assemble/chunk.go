package assemble

// DefaultChunkSize keeps each remote insert request a safe size.
const DefaultChunkSize = 45000

// Chunk splits s into consecutive non-overlapping slices of at most max
// characters each, in order, covering the whole input exactly once. Only the
// last chunk may be shorter than max. Empty input or a non-positive max
// yields no chunks. Slicing is by rune, so multi-byte characters are never
// split across chunks and the ordered concatenation of the chunks
// reconstructs s byte for byte.
func Chunk(s string, max int) []string {
	if s == "" || max <= 0 {
		return nil
	}

	var chunks []string
	start, count := 0, 0
	for i := range s {
		if count == max {
			chunks = append(chunks, s[start:i])
			start = i
			count = 0
		}
		count++
	}
	return append(chunks, s[start:])
}
