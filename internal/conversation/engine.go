package conversation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"querychat/internal/backend"
	"querychat/internal/dialog"
	"querychat/internal/metrics"
	"querychat/internal/models"
	"querychat/internal/session"
	"querychat/internal/summary"
	"querychat/internal/table"
	"querychat/internal/worker"
)

const (
	LeadInText    = "Hier ist das Ergebnis deiner Anfrage:"
	NoResultsText = "Keine Ergebnisse gefunden."
	FailureText   = "Entschuldigung, bei der Anfrage ist ein Fehler aufgetreten. Bitte versuche es erneut."
)

// allKeywords request the full table without a summary.
var allKeywords = []string{"alle", "all"}

// Persister loads and saves the full history snapshot.
type Persister interface {
	Load(ctx context.Context) (models.Snapshot, error)
	Save(ctx context.Context, snap models.Snapshot) error
}

// Options tune an Engine. The zero value is usable.
type Options struct {
	Persister Persister
	QueueSize int
}

// Engine drives one request/response cycle per user input: it records the
// input, answers pending follow-up questions, queries the backend and
// appends the bot replies.
type Engine struct {
	store     *session.Store
	backend   backend.QueryService
	workers   *worker.Manager
	persister Persister
	persistMu sync.Mutex
}

func NewEngine(store *session.Store, qs backend.QueryService, opts Options) *Engine {
	return &Engine{
		store:     store,
		backend:   qs,
		workers:   worker.NewManager(opts.QueueSize),
		persister: opts.Persister,
	}
}

// Store exposes the session store for read access and channel switching.
func (e *Engine) Store() *session.Store {
	return e.store
}

// Load restores histories from the persister, if one is configured.
func (e *Engine) Load(ctx context.Context) error {
	if e.persister == nil {
		return nil
	}
	snap, err := e.persister.Load(ctx)
	if err != nil {
		return fmt.Errorf("load history: %w", err)
	}
	e.store.Restore(snap)
	return nil
}

// Close stops the channel workers.
func (e *Engine) Close() {
	e.workers.Stop()
}

// Send handles input on the active channel.
func (e *Engine) Send(ctx context.Context, input string) ([]models.Message, error) {
	return e.SendTo(ctx, e.store.Active(), input)
}

// SendTo handles input on channelID and returns the messages appended
// during the cycle. Blank input appends nothing.
func (e *Engine) SendTo(ctx context.Context, channelID, input string) ([]models.Message, error) {
	ch, err := e.store.Channel(channelID)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(input) == "" {
		return nil, nil
	}

	var (
		mu       sync.Mutex
		appended []models.Message
	)
	err = e.workers.Do(ctx, channelID, func(ctx context.Context) error {
		msgs, err := e.cycle(ctx, ch, input)
		if len(msgs) > 0 {
			e.persist(ctx)
		}
		mu.Lock()
		appended = msgs
		mu.Unlock()
		return err
	})
	mu.Lock()
	defer mu.Unlock()
	return appended, err
}

func (e *Engine) cycle(ctx context.Context, ch models.Channel, input string) ([]models.Message, error) {
	var appended []models.Message
	add := func(sender models.Sender, text string, result *models.Result) error {
		msg := e.store.NewMessage(ch.ID, sender, text, result)
		if err := e.store.Append(ch.ID, msg); err != nil {
			return err
		}
		metrics.MessagesTotal.WithLabelValues(ch.ID, string(sender)).Inc()
		log.Debug().Str("channel", ch.ID).Int64("message_id", msg.ID).Str("sender", string(sender)).Msg("message appended")
		appended = append(appended, msg)
		return nil
	}

	if err := add(models.SenderUser, input, nil); err != nil {
		return nil, err
	}

	dlg, err := e.store.Dialog(ch.ID)
	if err != nil {
		return appended, err
	}
	if dlg.Awaiting() {
		from := dlg.State()
		reply := dlg.Resolve(input)
		recordTransition(from, dlg.State())
		return appended, add(models.SenderBot, reply, nil)
	}

	start := time.Now()
	resp, err := e.backend.Ask(ctx, input)
	metrics.BackendRequestDuration.WithLabelValues(ch.ID).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.BackendRequestsTotal.WithLabelValues(ch.ID, "error").Inc()
		log.Warn().Err(err).Str("channel", ch.ID).Msg("query service call failed")
		return appended, add(models.SenderBot, failureText(err), nil)
	}
	metrics.BackendRequestsTotal.WithLabelValues(ch.ID, "ok").Inc()

	text, result, answered := compose(ch, input, resp)
	if err := add(models.SenderBot, text, result); err != nil {
		return appended, err
	}
	if !answered {
		return appended, nil
	}
	from := dlg.State()
	prompt := dlg.Prompt()
	recordTransition(from, dlg.State())
	return appended, add(models.SenderBot, prompt, nil)
}

// compose builds the bot answer for a backend response. answered is false
// only when the response carried no content at all.
func compose(ch models.Channel, input string, resp *backend.Response) (string, *models.Result, bool) {
	if resp == nil || strings.TrimSpace(resp.ResultsHTML) == "" {
		return NoResultsText, nil, false
	}
	if table.IsNoResults(resp.ResultsHTML) {
		return NoResultsText, nil, true
	}
	rows := table.Extract(resp.ResultsHTML)
	if len(rows) == 0 {
		return NoResultsText, nil, true
	}

	text := LeadInText
	if !dialog.ContainsWord(input, allKeywords...) {
		if s := summary.Summarize(rows, ch.Domain); s != "" {
			text += "\n\n" + s
		}
	}
	return text, &models.Result{Rows: rows, Query: resp.Query}, true
}

func failureText(err error) string {
	var be *backend.Error
	if errors.As(err, &be) && be.Detail != "" {
		return be.Detail
	}
	return FailureText
}

func recordTransition(from, to dialog.State) {
	if from == to {
		return
	}
	metrics.DialogTransitionsTotal.WithLabelValues(from.String(), to.String()).Inc()
}

// persist saves the whole snapshot. Saves are serialized so the last
// write always holds the newest state.
func (e *Engine) persist(ctx context.Context) {
	if e.persister == nil {
		return
	}
	e.persistMu.Lock()
	defer e.persistMu.Unlock()
	if err := e.persister.Save(context.WithoutCancel(ctx), e.store.Snapshot()); err != nil {
		log.Error().Err(err).Msg("save history failed")
	}
}
