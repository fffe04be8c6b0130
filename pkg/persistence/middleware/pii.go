package middleware

import (
	"context"
	"regexp"

	"github.com/aretw0/parlance/pkg/domain"
	"github.com/aretw0/parlance/pkg/ports"
)

// Mask replaces every redacted match.
const Mask = "***"

// DefaultPIIPatterns match e-mail addresses, card-like digit runs and phone
// numbers.
var DefaultPIIPatterns = []string{
	`[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}`,
	`\b\d(?:[ \-]?\d){12,18}\b`,
	`\+?\d{1,3}[ .\-]?\(?\d{2,4}\)?[ .\-]?\d{3,4}[ .\-]?\d{4}\b`,
}

type piiMiddleware struct {
	next     ports.SessionStore
	patterns []*regexp.Regexp
}

// NewPIIMiddleware masks matches of patterns in stored transcripts and
// side-channel entries. Redaction is one-way: a resumed session sees the
// masked history.
func NewPIIMiddleware(patterns []string) (Middleware, error) {
	compiled := make([]*regexp.Regexp, len(patterns))
	for i, p := range patterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, err
		}
		compiled[i] = re
	}
	return func(next ports.SessionStore) ports.SessionStore {
		return &piiMiddleware{next: next, patterns: compiled}
	}, nil
}

func (m *piiMiddleware) Save(ctx context.Context, snap *domain.Snapshot) error {
	// The engine's own snapshot must not be modified.
	masked := *snap
	masked.Transcript = make([]domain.Turn, len(snap.Transcript))
	for i, t := range snap.Transcript {
		masked.Transcript[i] = domain.Turn{Role: t.Role, Content: m.mask(t.Content)}
	}
	masked.SideChannel = make([]domain.SideChannelEntry, len(snap.SideChannel))
	for i, e := range snap.SideChannel {
		masked.SideChannel[i] = domain.SideChannelEntry{Content: m.mask(e.Content)}
	}
	return m.next.Save(ctx, &masked)
}

func (m *piiMiddleware) mask(s string) string {
	for _, p := range m.patterns {
		s = p.ReplaceAllString(s, Mask)
	}
	return s
}

func (m *piiMiddleware) Load(ctx context.Context, sessionID string) (*domain.Snapshot, error) {
	return m.next.Load(ctx, sessionID)
}

func (m *piiMiddleware) Delete(ctx context.Context, sessionID string) error {
	return m.next.Delete(ctx, sessionID)
}

func (m *piiMiddleware) List(ctx context.Context) ([]string, error) {
	return m.next.List(ctx)
}
