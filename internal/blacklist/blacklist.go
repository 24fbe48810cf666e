package blacklist

import (
	"strings"

	"go.uber.org/zap"
)

// Evaluator decides whether a sender address is blocked. Entries are
// either full addresses or bare domains; a bare domain blocks every
// address in that domain.
type Evaluator struct {
	entries []string
	logger  *zap.Logger
}

// NewEvaluator creates an evaluator over the configured entries.
// Entries are normalized to lower case; empty ones are dropped.
func NewEvaluator(entries []string, logger *zap.Logger) *Evaluator {
	normalized := make([]string, 0, len(entries))
	for _, entry := range entries {
		entry = strings.ToLower(strings.TrimSpace(entry))
		if entry != "" {
			normalized = append(normalized, entry)
		}
	}

	if len(normalized) > 0 && logger != nil {
		logger.Info("Initialized sender blacklist", zap.Strings("entries", normalized))
	}

	return &Evaluator{
		entries: normalized,
		logger:  logger,
	}
}

// Match reports whether the sender address hits a blacklist entry.
// Matching is case-insensitive; an entry without an "@" is a domain
// entry and matches any address in that exact domain.
func (e *Evaluator) Match(addr string) bool {
	if len(e.entries) == 0 {
		return false
	}

	addr = strings.ToLower(strings.TrimSpace(addr))

	var domain string
	if parts := strings.Split(addr, "@"); len(parts) == 2 {
		domain = parts[1]
	}

	for _, entry := range e.entries {
		if entry == addr {
			e.debug("Sender address is blacklisted", addr, entry)
			return true
		}
		if domain != "" && !strings.Contains(entry, "@") && entry == domain {
			e.debug("Sender domain is blacklisted", addr, entry)
			return true
		}
	}

	return false
}

func (e *Evaluator) debug(msg, addr, entry string) {
	if e.logger != nil {
		e.logger.Debug(msg,
			zap.String("address", addr),
			zap.String("entry", entry))
	}
}
