package genclient

type UploadResult struct {
	Text     string `json:"text"`
	Filename string `json:"filename"`
}

type SummaryRequest struct {
	Text string `json:"text"`
}

type Summary struct {
	QuickNotes   []string `json:"quick_notes"`
	KeyTakeaways []string `json:"key_takeaways"`
}

type ChatRequest struct {
	Content string `json:"content"`
	Context string `json:"context"`
}

type ChatResponse struct {
	Content string `json:"content"`
}

type QuizRequest struct {
	Text         string `json:"text"`
	NumQuestions int    `json:"num_questions"`
}

type QuizQuestion struct {
	ID            string   `json:"id"`
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer int      `json:"correct_answer"`
	Explanation   string   `json:"explanation"`
}

type Quiz struct {
	ID        string         `json:"id"`
	Questions []QuizQuestion `json:"questions"`
}

type AnswerResult struct {
	Correct     bool   `json:"correct"`
	Explanation string `json:"explanation"`
}
