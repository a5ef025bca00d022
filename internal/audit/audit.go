package audit

import (
	"context"

	"github.com/weiawesome/wes-io-canvas/pkg/log"
)

// Audit actions for the persistence gateway.
const (
	ActionCreateBoard    = "board.create"
	ActionCreateElement  = "element.create"
	ActionUpdateElements = "element.update"
	ActionDeleteElements = "element.delete"
)

// Field constants for audit entries.
const (
	FieldAction = "action"
	FieldCount  = "count"
)

// Log emits a structured audit log entry via the context logger.
func Log(ctx context.Context, action, boardID, msg string) {
	l := log.Ctx(ctx)
	l.Info().
		Str(log.FieldLogType, log.LogTypeAudit).
		Str(FieldAction, action).
		Str(log.FieldBoardID, boardID).
		Msg(msg)
}

// LogCount emits an audit entry for a batch write of n elements.
func LogCount(ctx context.Context, action, boardID string, n int, msg string) {
	l := log.Ctx(ctx)
	l.Info().
		Str(log.FieldLogType, log.LogTypeAudit).
		Str(FieldAction, action).
		Str(log.FieldBoardID, boardID).
		Int(FieldCount, n).
		Msg(msg)
}
