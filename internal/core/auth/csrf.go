package auth

import (
	"strings"

	"github.com/farmskeleton/backend/internal/core/domain"
)

// CSRFGuard admits requests whose declared origin starts with a trusted
// origin. Requests that declare no origin are admitted.
type CSRFGuard struct {
	trusted []string
}

func NewCSRFGuard(trusted []string) *CSRFGuard {
	g := &CSRFGuard{}
	for _, t := range trusted {
		t = strings.TrimRight(strings.ToLower(strings.TrimSpace(t)), "/")
		if t != "" {
			g.trusted = append(g.trusted, t)
		}
	}
	return g
}

// Check validates an Origin or Referer header value.
func (g *CSRFGuard) Check(origin string) error {
	origin = strings.ToLower(strings.TrimSpace(origin))
	if origin == "" {
		return nil
	}
	for _, t := range g.trusted {
		if hasOriginPrefix(origin, t) {
			return nil
		}
	}
	return domain.ErrCSRFRejected
}

// hasOriginPrefix matches prefix only at a URL boundary so that
// "http://localhost:3000.evil.com" does not pass for "http://localhost:3000".
func hasOriginPrefix(value, prefix string) bool {
	if !strings.HasPrefix(value, prefix) {
		return false
	}
	if len(value) == len(prefix) {
		return true
	}
	switch value[len(prefix)] {
	case '/', '?', '#':
		return true
	}
	return false
}
