package generator

import "strings"

// Validate is the terminal acceptance gate: the text must contain an <html
// open tag and a </html> close tag. Both checks ignore case, like the
// doctype handling in the repairer.
func Validate(text string) (string, error) {
	lower := strings.ToLower(text)
	if !strings.Contains(lower, "<html") || !strings.Contains(lower, closingHTML) {
		return "", ErrIncompleteDocument
	}
	return text, nil
}
