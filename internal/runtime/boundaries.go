package runtime

import (
	"context"
	"io"
)

// AuditTrail records a human-readable account of a run.
type AuditTrail interface {
	Log(msg string)
	Block(title string, payload any)
}

type nopAudit struct{}

func (nopAudit) Log(string)        {}
func (nopAudit) Block(string, any) {}

type nopSink struct{}

func (nopSink) Emit(context.Context, string) error   { return nil }
func (nopSink) Notice(context.Context, string) error { return nil }

type closedInput struct{}

func (closedInput) ReadLine(context.Context) (string, error) { return "", io.EOF }
