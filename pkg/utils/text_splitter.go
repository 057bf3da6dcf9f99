package utils

import "strings"

// SplitWords splits a long text into chunks of approximately 'chunkSize'
// words, keeping 'overlap' words of context at each boundary. Word-based
// splitting keeps sentences more intact than character slicing.
func SplitWords(text string, chunkSize int, overlap int) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}
	if len(words) <= chunkSize {
		return []string{strings.Join(words, " ")}
	}

	step := chunkSize - overlap
	if step <= 0 {
		step = chunkSize // fallback if overlap >= chunkSize
	}

	var chunks []string
	for i := 0; i < len(words); i += step {
		end := i + chunkSize
		if end > len(words) {
			end = len(words)
		}

		chunks = append(chunks, strings.Join(words[i:end], " "))

		if end == len(words) {
			break
		}
	}

	return chunks
}
