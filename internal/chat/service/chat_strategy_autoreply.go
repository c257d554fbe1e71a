// Package service: chat_strategy_autoreply.go implements the automatic
// acknowledgement: whoever receives a message answers "Thank you! I will
// respond soon." in the sender's language.
package service

import (
	"context"

	"github.com/boddenberg/sparkhub-bfa/internal/chat/domain"
	"github.com/boddenberg/sparkhub-bfa/internal/i18n"
)

// AutoReplyStrategy acknowledges every message when enabled.
type AutoReplyStrategy struct {
	enabled bool
	catalog *i18n.Catalog
}

func NewAutoReplyStrategy(enabled bool, catalog *i18n.Catalog) *AutoReplyStrategy {
	return &AutoReplyStrategy{enabled: enabled, catalog: catalog}
}

func (a *AutoReplyStrategy) CanHandle(rc *domain.ReplyContext) bool {
	return a.enabled && rc.Message.RecipientID != ""
}

func (a *AutoReplyStrategy) Reply(_ context.Context, rc *domain.ReplyContext) (string, error) {
	return a.catalog.T(rc.Locale, i18n.KeyChatAutoReply), nil
}
