package session

import (
	"context"

	"github.com/jbonatakis/studydesk/internal/genclient"
	"github.com/jbonatakis/studydesk/internal/summary"
	"go.uber.org/zap"
)

type SummaryJob struct {
	Ref    Ref
	Cached bool
	text   string
	gen    Generator
}

type SummaryResult struct {
	Ref      Ref
	Artifact summary.Artifact
	Err      error
}

// StartSummary moves the summary to generating. When an identical document
// was summarized before, the stored artifact is used and the returned job is
// Cached; running it is then unnecessary.
func (e *Engine) StartSummary() (SummaryJob, error) {
	if err := e.requireDocument(ExperienceSummary); err != nil {
		return SummaryJob{}, err
	}
	hit, err := e.summary.Begin(e.doc.RawText)
	if err != nil {
		return SummaryJob{}, err
	}
	if hit {
		e.log.Debug("summary served from store", zap.String("document", e.doc.ID))
	}
	return SummaryJob{Ref: e.ref(), Cached: hit, text: e.doc.RawText, gen: e.gen}, nil
}

// RegenerateSummary drops the stored artifact and starts a fresh request.
func (e *Engine) RegenerateSummary() (SummaryJob, error) {
	if err := e.requireDocument(ExperienceSummary); err != nil {
		return SummaryJob{}, err
	}
	if err := e.summary.Invalidate(); err != nil {
		return SummaryJob{}, err
	}
	return e.StartSummary()
}

func (j SummaryJob) Run(ctx context.Context) SummaryResult {
	if j.Cached {
		return SummaryResult{Ref: j.Ref}
	}
	res, err := j.gen.GenerateSummary(ctx, j.text)
	if err != nil {
		return SummaryResult{Ref: j.Ref, Err: err}
	}
	return SummaryResult{
		Ref: j.Ref,
		Artifact: summary.Artifact{
			QuickNotes:   res.QuickNotes,
			KeyTakeaways: res.KeyTakeaways,
		},
	}
}

// ApplySummary commits a finished summary job. Results for a replaced
// document return ErrStaleResult and change nothing.
func (e *Engine) ApplySummary(r SummaryResult) error {
	if !e.current(r.Ref) {
		e.log.Debug("discarding stale summary", zap.Uint64("epoch", r.Ref.Epoch))
		return ErrStaleResult
	}
	if e.summary.Status() != summary.StatusGenerating {
		return nil
	}
	if r.Err != nil {
		e.log.Warn("summary generation failed", zap.Error(r.Err))
		return e.summary.Fail(errorMessage(r.Err))
	}
	return e.summary.Complete(r.Artifact)
}

type detailError string

func (d detailError) Error() string { return string(d) }

func errorMessage(err error) error {
	return detailError(genclient.Detail(err))
}
