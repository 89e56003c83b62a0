package stringsutil

import "strings"

// Tokenize splits text into lowercase word terms at punctuation and
// whitespace boundaries. Used for query/term matching during ranking.
func Tokenize(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !isWordRune(r)
	})
	return RemoveEmptyStrings(fields)
}

func isWordRune(r rune) bool {
	return r == '\'' || r == '-' ||
		(r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') ||
		r > 127
}

func RemoveEmptyStrings(slice []string) []string {
	var result []string

	for _, s := range slice {
		if s != "" {
			result = append(result, s)
		}
	}

	return result
}
