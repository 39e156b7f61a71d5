package lsp

import (
	"context"

	"github.com/oklog/ulid/v2"
	"go.lsp.dev/protocol"
	"go.uber.org/zap"
)

// progressToken generates a fresh work-done progress token. ULIDs are
// lexicographically sortable, which makes a sequence of tokens read in
// log order a side benefit over a plain random UUID.
func progressToken() string {
	return ulid.Make().String()
}

// progressReporter narrates one WorkDoneProgress session (begun by
// newProgress) through its report/end methods. All client calls are
// best-effort: a client
// that never requested workDoneProgress capability simply ignores these
// notifications, and a transport error here must never block the fetch it
// is merely narrating.
type progressReporter struct {
	ctx    context.Context
	client protocol.Client
	logger *zap.Logger
	token  string
	active bool
}

func newProgress(ctx context.Context, client protocol.Client, logger *zap.Logger, title string) *progressReporter {
	p := &progressReporter{ctx: ctx, client: client, logger: logger, token: progressToken()}
	if err := client.WorkDoneProgressCreate(ctx, &protocol.WorkDoneProgressCreateParams{Token: protocol.ProgressToken(p.token)}); err != nil {
		logger.Debug("workDoneProgress/create failed, continuing without progress", zap.Error(err))
		return p
	}
	p.active = true
	p.send(&protocol.WorkDoneProgressBegin{Kind: "begin", Title: title, Cancellable: false})
	return p
}

func (p *progressReporter) report(message string, percentage uint32) {
	if !p.active {
		return
	}
	p.send(&protocol.WorkDoneProgressReport{Kind: "report", Message: message, Percentage: percentage})
}

func (p *progressReporter) end(message string) {
	if !p.active {
		return
	}
	p.send(&protocol.WorkDoneProgressEnd{Kind: "end", Message: message})
}

func (p *progressReporter) send(value interface{}) {
	err := p.client.Progress(p.ctx, &protocol.ProgressParams{
		Token: protocol.ProgressToken(p.token),
		Value: value,
	})
	if err != nil {
		p.logger.Debug("$/progress notification failed", zap.Error(err))
	}
}
