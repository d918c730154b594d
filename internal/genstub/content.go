package genstub

import (
	"bytes"
	"fmt"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/jbonatakis/studydesk/internal/genclient"
	"github.com/ledongthuc/pdf"
)

const (
	maxQuickNotes   = 5
	maxTakeaways    = 3
	optionsPerQuiz  = 4
	replyChunkWords = 3
)

type storedQuiz struct {
	ID        string
	Questions []genclient.QuizQuestion
}

func (q storedQuiz) question(id string) (genclient.QuizQuestion, bool) {
	for _, question := range q.Questions {
		if question.ID == id {
			return question, true
		}
	}
	return genclient.QuizQuestion{}, false
}

func extractText(content []byte, ext string) (string, error) {
	if ext == ".pdf" {
		return extractPDF(content)
	}
	if !utf8.Valid(content) {
		content = []byte(strings.ToValidUTF8(string(content), "\ufffd"))
	}
	return string(content), nil
}

func extractPDF(content []byte) (string, error) {
	r, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", fmt.Errorf("open PDF: %w", err)
	}
	var buf bytes.Buffer
	numPages := r.NumPage()
	for i := 0; i < numPages; i++ {
		page := r.Page(i + 1)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return "", fmt.Errorf("extract page %d: %w", i+1, err)
		}
		buf.WriteString(text)
		if i < numPages-1 {
			buf.WriteByte('\n')
		}
	}
	return buf.String(), nil
}

// sentences splits text on terminal punctuation and drops empty pieces.
func sentences(text string) []string {
	var out []string
	var cur strings.Builder
	flush := func() {
		s := strings.Join(strings.Fields(cur.String()), " ")
		if s != "" {
			out = append(out, s)
		}
		cur.Reset()
	}
	for _, r := range text {
		cur.WriteRune(r)
		if r == '.' || r == '!' || r == '?' || r == '\n' {
			flush()
		}
	}
	flush()
	return out
}

func summarize(text string) genclient.Summary {
	all := sentences(text)
	notes := make([]string, 0, maxQuickNotes)
	for i := 0; i < len(all) && len(notes) < maxQuickNotes; i++ {
		notes = append(notes, all[i])
	}

	ranked := append([]string(nil), all...)
	sort.SliceStable(ranked, func(i, j int) bool { return len(ranked[i]) > len(ranked[j]) })
	takeaways := make([]string, 0, maxTakeaways)
	for i := 0; i < len(ranked) && len(takeaways) < maxTakeaways; i++ {
		takeaways = append(takeaways, ranked[i])
	}
	return genclient.Summary{QuickNotes: notes, KeyTakeaways: takeaways}
}

// reply answers with the document sentences that share the most words with
// the question.
func reply(question string, contextText string) string {
	terms := words(question)
	if len(terms) == 0 {
		return "Ask me anything about the document."
	}
	want := make(map[string]bool, len(terms))
	for _, t := range terms {
		want[t] = true
	}

	best, bestScore := "", 0
	for _, s := range sentences(contextText) {
		score := 0
		for _, w := range words(s) {
			if want[w] {
				score++
			}
		}
		if score > bestScore {
			best, bestScore = s, score
		}
	}
	if bestScore == 0 {
		return "I could not find anything about that in the document."
	}
	return "According to the document: " + best
}

func chunkReply(text string) []string {
	fields := strings.Fields(text)
	var out []string
	for i := 0; i < len(fields); i += replyChunkWords {
		end := i + replyChunkWords
		if end > len(fields) {
			end = len(fields)
		}
		piece := strings.Join(fields[i:end], " ")
		if i > 0 {
			piece = " " + piece
		}
		out = append(out, piece)
	}
	return out
}

// words returns lowercase words longer than three letters.
func words(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	out := fields[:0]
	for _, f := range fields {
		if utf8.RuneCountInString(f) > 3 {
			out = append(out, f)
		}
	}
	return out
}

func keyword(sentence string) string {
	best := ""
	for _, w := range words(sentence) {
		if len(w) > len(best) {
			best = w
		}
	}
	return best
}

// buildQuestions makes fill-in-the-blank questions from the text's
// sentences. The correct option rotates through the positions.
func buildQuestions(text string, n int) []genclient.QuizQuestion {
	all := sentences(text)
	var usable []string
	var keys []string
	for _, s := range all {
		if k := keyword(s); k != "" {
			usable = append(usable, s)
			keys = append(keys, k)
		}
	}
	if len(usable) == 0 {
		usable = []string{strings.Join(strings.Fields(text), " ")}
		keys = []string{"document"}
	}

	questions := make([]genclient.QuizQuestion, 0, n)
	for i := 0; i < n; i++ {
		idx := i % len(usable)
		answer := keys[idx]
		prompt := blankOut(usable[idx], answer)
		options := distractors(keys, answer)
		correct := i % optionsPerQuiz
		options = insertAt(options, correct, answer)
		questions = append(questions, genclient.QuizQuestion{
			ID:            fmt.Sprintf("%d", i+1),
			Question:      fmt.Sprintf("Which word completes the statement: %q", prompt),
			Options:       options,
			CorrectAnswer: correct,
			Explanation:   fmt.Sprintf("The document states: %s", usable[idx]),
		})
	}
	return questions
}

func blankOut(sentence string, word string) string {
	lower := strings.ToLower(sentence)
	at := strings.Index(lower, word)
	if at < 0 {
		return sentence
	}
	return sentence[:at] + "____" + sentence[at+len(word):]
}

var fillerOptions = []string{"none of these", "all of these", "unknown", "not stated"}

func distractors(keys []string, answer string) []string {
	seen := map[string]bool{answer: true}
	out := make([]string, 0, optionsPerQuiz-1)
	for _, k := range keys {
		if len(out) == optionsPerQuiz-1 {
			return out
		}
		if !seen[k] {
			seen[k] = true
			out = append(out, k)
		}
	}
	for _, f := range fillerOptions {
		if len(out) == optionsPerQuiz-1 {
			break
		}
		if !seen[f] {
			seen[f] = true
			out = append(out, f)
		}
	}
	return out
}

func insertAt(items []string, at int, item string) []string {
	out := make([]string, 0, len(items)+1)
	out = append(out, items[:at]...)
	out = append(out, item)
	return append(out, items[at:]...)
}
