package quiz

import (
	"fmt"
	"strings"
)

// OptionLetter maps an option index to a, b, c, ...
func OptionLetter(index int) string {
	if index < 0 || index >= 26 {
		return "?"
	}
	return string(rune('a' + index))
}

// ExportText renders the question set with answers and explanations.
func (s Session) ExportText(fileName string) (string, error) {
	if len(s.questions) == 0 {
		return "", ErrNoQuestions
	}
	return FormatExport(fileName, s.questions), nil
}

func FormatExport(fileName string, questions []Question) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Quiz - %s\n\n", fileName)
	for i, q := range questions {
		fmt.Fprintf(&b, "%d. %s\n", i+1, q.Prompt)
		for j, option := range q.Options {
			fmt.Fprintf(&b, "   %s) %s\n", OptionLetter(j), option)
		}
		fmt.Fprintf(&b, "   Correct Answer: %s) %s\n", OptionLetter(q.CorrectIndex), q.CorrectOption())
		fmt.Fprintf(&b, "   Explanation: %s\n\n", q.Explanation)
	}
	return b.String()
}
