package session

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/rs/zerolog/log"

	"querychat/internal/dialog"
	"querychat/internal/models"
)

// ErrUnknownChannel is returned for channel ids that were not registered.
var ErrUnknownChannel = errors.New("unknown channel")

type channelState struct {
	channel models.Channel
	history []models.Message
	dialog  dialog.Dialog
}

// Store owns the message history and dialog state of every registered
// channel, plus the active channel pointer.
type Store struct {
	mu       sync.RWMutex
	order    []string
	channels map[string]*channelState
	active   string
	ids      *snowflake.Node
}

// NewStore registers channels in the given order. The first channel
// starts out active.
func NewStore(channels []models.Channel, nodeID int64) (*Store, error) {
	if len(channels) == 0 {
		return nil, errors.New("at least one channel is required")
	}
	node, err := snowflake.NewNode(nodeID)
	if err != nil {
		return nil, fmt.Errorf("snowflake node: %w", err)
	}
	s := &Store{
		channels: make(map[string]*channelState, len(channels)),
		ids:      node,
	}
	for _, ch := range channels {
		ch.ID = strings.TrimSpace(ch.ID)
		if ch.ID == "" {
			return nil, errors.New("channel id cannot be empty")
		}
		if _, dup := s.channels[ch.ID]; dup {
			return nil, fmt.Errorf("duplicate channel id %q", ch.ID)
		}
		if ch.DisplayName == "" {
			ch.DisplayName = ch.ID
		}
		s.channels[ch.ID] = &channelState{channel: ch}
		s.order = append(s.order, ch.ID)
	}
	s.active = s.order[0]
	return s, nil
}

func (s *Store) lookup(channelID string) (*channelState, error) {
	st, ok := s.channels[channelID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownChannel, channelID)
	}
	return st, nil
}

// Channels lists the registered channels in registration order.
func (s *Store) Channels() []models.Channel {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Channel, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.channels[id].channel)
	}
	return out
}

// Channel returns the registration of one channel.
func (s *Store) Channel(channelID string) (models.Channel, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st, err := s.lookup(channelID)
	if err != nil {
		return models.Channel{}, err
	}
	return st.channel, nil
}

// NewMessage builds a message with a fresh id and timestamp. It does not
// append it.
func (s *Store) NewMessage(channelID string, sender models.Sender, text string, result *models.Result) models.Message {
	return models.Message{
		ID:        s.ids.Generate().Int64(),
		ChannelID: channelID,
		Sender:    sender,
		Text:      text,
		CreatedAt: time.Now().UTC(),
		Result:    result,
	}
}

// Append adds msg to the end of the channel history.
func (s *Store) Append(channelID string, msg models.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, err := s.lookup(channelID)
	if err != nil {
		return err
	}
	msg.ChannelID = channelID
	st.history = append(st.history, cloneMessages([]models.Message{msg})...)
	return nil
}

// Get returns a copy of the channel history in insertion order.
func (s *Store) Get(channelID string) ([]models.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st, err := s.lookup(channelID)
	if err != nil {
		return nil, err
	}
	return cloneMessages(st.history), nil
}

// SetActive switches the channel that receives input without an
// explicit target.
func (s *Store) SetActive(channelID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.lookup(channelID); err != nil {
		return err
	}
	s.active = channelID
	return nil
}

// Active returns the id of the active channel.
func (s *Store) Active() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.active
}

// Dialog returns the follow-up dialog of a channel. Callers must
// serialize access per channel.
func (s *Store) Dialog(channelID string) (*dialog.Dialog, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st, err := s.lookup(channelID)
	if err != nil {
		return nil, err
	}
	return &st.dialog, nil
}

// Snapshot copies every channel history for persistence.
func (s *Store) Snapshot() models.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap := make(models.Snapshot, len(s.channels))
	for id, st := range s.channels {
		snap[id] = cloneMessages(st.history)
	}
	return snap
}

// cloneMessages deep-copies msgs so callers never share result rows with
// the stored history.
func cloneMessages(msgs []models.Message) []models.Message {
	out := make([]models.Message, len(msgs))
	for i, msg := range msgs {
		if msg.Result != nil {
			res := *msg.Result
			res.Rows = make([][]string, len(msg.Result.Rows))
			for j, row := range msg.Result.Rows {
				res.Rows[j] = append([]string(nil), row...)
			}
			msg.Result = &res
		}
		out[i] = msg
	}
	return out
}

// Restore replaces the histories of registered channels with the
// snapshot contents. Entries for unknown channels are dropped.
func (s *Store) Restore(snap models.Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, msgs := range snap {
		st, ok := s.channels[id]
		if !ok {
			log.Warn().Str("channel", id).Int("messages", len(msgs)).Msg("dropping snapshot of unregistered channel")
			continue
		}
		restored := cloneMessages(msgs)
		for i := range restored {
			restored[i].ChannelID = id
		}
		st.history = restored
	}
}
