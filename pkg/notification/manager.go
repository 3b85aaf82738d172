// Package notification announces reconciliation outcomes to subscribed
// Telegram chats. Delivery failures are logged and swallowed: the session
// result never depends on a notification arriving.
package notification

import (
	"context"
	"fmt"
	"log"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/nikoksr/notify"

	"github.com/jb-gy/f1-race-replay/pkg/model"
)

type Manager struct {
	ctx     context.Context
	bot     *tgbotapi.BotAPI
	chatIds []int64
}

func NewManager(ctx context.Context, bot *tgbotapi.BotAPI, chatIds []int64) *Manager {
	return &Manager{
		ctx:     ctx,
		bot:     bot,
		chatIds: chatIds,
	}
}

// ReconciliationComplete sends the verification summary for one event:
// either the corrections made, or confirmation that telemetry matched the
// official classification.
func (m *Manager) ReconciliationComplete(event string, discrepancies []model.Discrepancy) {
	if m.bot == nil || len(m.chatIds) == 0 {
		return
	}
	log.Printf("Sending reconciliation summary for %s to %d telegram chats\n", event, len(m.chatIds))
	if err := m.send(event, discrepancies); err != nil {
		log.Printf("Error notifying chats: %s", err.Error())
	}
}

func (m *Manager) send(event string, discrepancies []model.Discrepancy) error {
	tg := Telegram{}
	tg.SetClient(m.bot)
	tg.AddReceivers(m.chatIds...)

	n := notify.NewWithServices(&tg)
	return n.Send(m.ctx, "Leaderboard verified: "+event, summary(discrepancies))
}

func summary(discrepancies []model.Discrepancy) string {
	if len(discrepancies) == 0 {
		return "No discrepancies found, telemetry standings confirmed."
	}
	lines := make([]string, 0, len(discrepancies)+1)
	lines = append(lines, fmt.Sprintf("%d positions corrected:", len(discrepancies)))
	for _, d := range discrepancies {
		lines = append(lines, d.String())
	}
	return strings.Join(lines, "\n")
}
