package session

import (
	"github.com/jbonatakis/studydesk/internal/export"
)

// ExportSummary renders the ready summary and names its export file.
func (e *Engine) ExportSummary() (fileName string, content string, err error) {
	if err := e.requireDocument(ExperienceSummary); err != nil {
		return "", "", err
	}
	content, err = e.summary.ExportText(e.doc.Name)
	if err != nil {
		return "", "", err
	}
	return export.FileName(e.doc.Name, export.KindSummary), content, nil
}

func (e *Engine) ExportQuiz() (fileName string, content string, err error) {
	if err := e.requireDocument(ExperienceQuiz); err != nil {
		return "", "", err
	}
	content, err = e.quiz.ExportText(e.doc.Name)
	if err != nil {
		return "", "", err
	}
	return export.FileName(e.doc.Name, export.KindQuiz), content, nil
}
