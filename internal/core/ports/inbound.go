package ports

import (
	"context"

	"github.com/kirillkom/summarizer/internal/core/domain"
)

// SubmissionSummarizer is the inbound contract for turning a client submission into a summary.
type SubmissionSummarizer interface {
	Summarize(ctx context.Context, req domain.SubmissionRequest) (domain.SummaryResult, error)
}
