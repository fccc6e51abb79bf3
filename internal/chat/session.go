// Package chat holds the assistant conversation shown next to the task list.
package chat

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"k8s.io/klog/v2"

	"todo-dashboard/internal/apiclient"
	"todo-dashboard/internal/model"
)

const (
	// HelpText replaces an empty or missing reply.
	HelpText = "I'm here to help with your tasks! You can ask me to show your tasks, create a new task, or update/delete tasks. What would you like to do?"

	NetworkReason = "Failed to connect to server. Is the API running?"

	errorPrefix = "Sorry, there was an error: "
)

// Placeholder shown while the transcript is empty.
const (
	IntroTitle = "Todo List AI Agent"
	IntroText  = "I'm your friendly AI task manager! I can help you create, organize, and track your tasks with natural language."
)

var IntroPrompts = []string{
	`"Create a task called 'Buy groceries'"`,
	`"Show me all my tasks"`,
	`"Mark task 1 as complete"`,
	`"Update task 2 description"`,
}

// API is the agent endpoint. *apiclient.Client implements it.
type API interface {
	Chat(ctx context.Context, message string) (apiclient.ChatReply, error)
}

// Exchange is the pair of transcript entries produced by one Send.
type Exchange struct {
	Request model.ChatMessage
	Reply   model.ChatMessage
}

// Snapshot is what subscribers receive after every transcript change.
type Snapshot struct {
	Messages []model.ChatMessage
	Busy     bool
}

type Session struct {
	api API
	now func() time.Time

	mu       sync.Mutex
	messages []model.ChatMessage
	busy     bool
	// gen changes on Clear so a reply to a cleared conversation is dropped.
	gen int

	subMu   sync.Mutex
	subs    map[int]func(Snapshot)
	nextSub int
}

type Option func(*Session)

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(s *Session) { s.now = now }
}

func New(api API, opts ...Option) *Session {
	s := &Session{
		api:  api,
		now:  time.Now,
		subs: map[int]func(Snapshot){},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Send posts message to the agent and appends both sides to the transcript.
// Failures are rendered into the transcript too; the returned error is for
// callers that want to react to them.
func (s *Session) Send(ctx context.Context, message string) (Exchange, error) {
	text := strings.TrimSpace(message)
	if text == "" {
		return Exchange{}, ErrEmptyMessage
	}

	s.mu.Lock()
	if s.busy {
		s.mu.Unlock()
		return Exchange{}, ErrBusy
	}
	user := s.newMessage(model.SenderUser, text)
	user.HTML = RenderText(text)
	s.messages = append(s.messages, user)
	s.busy = true
	gen := s.gen
	s.mu.Unlock()
	s.notify()

	reply, err := s.ask(ctx, text)

	s.mu.Lock()
	s.busy = false
	if gen == s.gen {
		s.messages = append(s.messages, reply)
	} else {
		klog.V(2).Infof("chat: dropping reply to a cleared conversation")
	}
	s.mu.Unlock()
	s.notify()

	return Exchange{Request: user, Reply: reply}, err
}

func (s *Session) ask(ctx context.Context, text string) (model.ChatMessage, error) {
	res, err := s.api.Chat(ctx, text)
	if err != nil {
		reason, rerr := classify(err)
		klog.V(2).Infof("chat: request failed: %v", err)
		msg := s.newMessage(model.SenderAssistant, errorPrefix+reason)
		msg.HTML = RenderText(msg.Text)
		msg.Error = true
		return msg, rerr
	}

	msg := s.newMessage(model.SenderAssistant, res.Reply)
	if strings.TrimSpace(res.Reply) == "" {
		msg.Text = HelpText
		msg.HTML = RenderText(HelpText)
		return msg, nil
	}
	msg.Markdown = true
	msg.HTML = RenderMarkdown(res.Reply)
	return msg, nil
}

func classify(err error) (string, error) {
	if apiclient.IsTransport(err) {
		return NetworkReason, &NetworkError{Err: err}
	}
	var se *apiclient.StatusError
	if errors.As(err, &se) {
		reason := se.Detail
		if strings.TrimSpace(reason) == "" {
			reason = fmt.Sprintf("HTTP error %d", se.StatusCode)
		}
		return reason, &RequestError{Reason: reason, Err: err}
	}
	return err.Error(), &RequestError{Reason: err.Error(), Err: err}
}

func (s *Session) newMessage(sender model.Sender, text string) model.ChatMessage {
	return model.ChatMessage{
		ID:     uuid.NewString(),
		Sender: sender,
		Text:   text,
		Time:   s.now(),
	}
}

// Transcript returns a copy of the messages in order.
func (s *Session) Transcript() []model.ChatMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.ChatMessage{}, s.messages...)
}

// Busy reports whether a request is outstanding.
func (s *Session) Busy() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.busy
}

// Clear empties the transcript. An outstanding reply is discarded when it arrives.
func (s *Session) Clear() {
	s.mu.Lock()
	s.messages = nil
	s.gen++
	s.mu.Unlock()
	s.notify()
}

func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		Messages: append([]model.ChatMessage{}, s.messages...),
		Busy:     s.busy,
	}
}

// Subscribe registers fn for transcript changes; the returned func removes it.
func (s *Session) Subscribe(fn func(Snapshot)) func() {
	s.subMu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.subMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.subMu.Lock()
			delete(s.subs, id)
			s.subMu.Unlock()
		})
	}
}

func (s *Session) notify() {
	snap := s.Snapshot()

	s.subMu.Lock()
	ids := make([]int, 0, len(s.subs))
	for id := range s.subs {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	fns := make([]func(Snapshot), 0, len(ids))
	for _, id := range ids {
		fns = append(fns, s.subs[id])
	}
	s.subMu.Unlock()

	for _, fn := range fns {
		fn(snap)
	}
}
