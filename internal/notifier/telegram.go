package notifier

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"
	tele "gopkg.in/telebot.v4"

	"github.com/marklangat/waleads-backend/internal/config"
	"github.com/marklangat/waleads-backend/internal/model"
)

// TelegramNotifier pushes operator alerts when an item exhausts its retry
// budget. Alerts are fire-and-forget: ItemFailed never blocks the commit
// path, and send errors surface in the logs only.
type TelegramNotifier struct {
	bot   *tele.Bot
	chat  *tele.Chat
	queue chan string
	done  chan struct{}
	log   zerolog.Logger
}

// New builds the notifier, or returns nil, nil when alerts are disabled.
// Callers treat a nil notifier as a no-op.
func New(cfg config.TelegramConfig, log zerolog.Logger) (*TelegramNotifier, error) {
	if !cfg.Enabled {
		return nil, nil
	}
	bot, err := tele.NewBot(tele.Settings{Token: cfg.Token})
	if err != nil {
		return nil, err
	}
	n := &TelegramNotifier{
		bot:   bot,
		chat:  &tele.Chat{ID: cfg.ChatID},
		queue: make(chan string, 64),
		done:  make(chan struct{}),
		log:   log,
	}
	go n.run()
	return n, nil
}

// ItemFailed enqueues a failure alert. A full queue drops the alert with a
// log line rather than stalling dispatch.
func (n *TelegramNotifier) ItemFailed(item *model.DispatchableItem, lastError string) {
	msg := fmt.Sprintf("Outbound message #%d (account %d, %s) failed after %d attempts: %s",
		item.ID, item.AccountID, item.Kind, model.MaxSendAttempts, lastError)
	select {
	case n.queue <- msg:
	default:
		n.log.Warn().Int("item_id", item.ID).Msg("alert queue full, dropping notification")
	}
}

func (n *TelegramNotifier) run() {
	for {
		select {
		case msg := <-n.queue:
			if _, err := n.bot.Send(n.chat, msg); err != nil {
				n.log.Error().Err(err).Msg("telegram alert send failed")
			}
		case <-n.done:
			return
		}
	}
}

// Close stops the alert loop. Alerts still queued after a short grace
// period are dropped; the run loop keeps flushing until then.
func (n *TelegramNotifier) Close() {
	time.Sleep(2 * time.Second)
	close(n.done)
}
