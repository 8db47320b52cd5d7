package normalize

import "bytes"

// lexicalNormalizer is the fallback path for unsupported languages and for
// any input that fails language-aware parsing: raw bytes stripped of
// trailing whitespace, degraded set.
type lexicalNormalizer struct{}

func (lexicalNormalizer) Normalize(source []byte) Result {
	lines := bytes.Split(source, []byte("\n"))
	for i, line := range lines {
		lines[i] = bytes.TrimRight(line, " \t\r")
	}
	out := bytes.Join(lines, []byte("\n"))
	out = bytes.TrimRight(out, "\n")
	return Result{Bytes: out, Degraded: true}
}
