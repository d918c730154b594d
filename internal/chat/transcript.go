package chat

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ApologyMessage replaces an assistant turn whose stream failed.
const ApologyMessage = "Sorry, I ran into a problem answering that. Please try again."

var (
	ErrEmptyMessage = errors.New("message is empty")
	ErrTargetOpen   = errors.New("an assistant reply is still streaming")
)

type Message struct {
	ID        string
	Role      Role
	Content   string
	CreatedAt time.Time
}

// Transcript is the ordered message log of one document's conversation.
// At most one assistant message is open for streaming at a time.
type Transcript struct {
	messages []Message
	targetID string
	now      func() time.Time
	newID    func() string
}

func NewTranscript() *Transcript {
	return &Transcript{
		now:   time.Now,
		newID: uuid.NewString,
	}
}

// Greeting is the assistant's opening message for a document.
func Greeting(fileName string) string {
	return fmt.Sprintf("Hello! I'm your AI study assistant. I've analyzed your document %q and I'm ready to answer any questions you have about the content. Feel free to ask me about specific concepts, definitions, or relationships between topics!", fileName)
}

// Seed appends a closed assistant message, used for the greeting.
func (t *Transcript) Seed(content string) Message {
	msg := t.newMessage(RoleAssistant, content)
	t.messages = append(t.messages, msg)
	return msg
}

func (t *Transcript) AppendUser(text string) (Message, error) {
	if strings.TrimSpace(text) == "" {
		return Message{}, ErrEmptyMessage
	}
	msg := t.newMessage(RoleUser, text)
	t.messages = append(t.messages, msg)
	return msg, nil
}

// BeginAssistantTurn appends an empty assistant message and marks it as the
// streaming target.
func (t *Transcript) BeginAssistantTurn() (string, error) {
	if t.targetID != "" {
		return "", ErrTargetOpen
	}
	msg := t.newMessage(RoleAssistant, "")
	t.messages = append(t.messages, msg)
	t.targetID = msg.ID
	return msg.ID, nil
}

// AppendToTarget appends delta to the open target. It is a no-op when no
// target is open.
func (t *Transcript) AppendToTarget(delta string) {
	idx := t.targetIndex()
	if idx < 0 || delta == "" {
		return
	}
	t.messages[idx].Content += delta
}

// CloseTarget closes the open target. A non-nil final replaces its content.
func (t *Transcript) CloseTarget(final *string) {
	idx := t.targetIndex()
	if idx < 0 {
		return
	}
	if final != nil {
		t.messages[idx].Content = *final
	}
	t.targetID = ""
}

// FailTarget closes the open target with ApologyMessage.
func (t *Transcript) FailTarget() {
	apology := ApologyMessage
	t.CloseTarget(&apology)
}

// Target returns the open streaming target, if any.
func (t *Transcript) Target() (Message, bool) {
	idx := t.targetIndex()
	if idx < 0 {
		return Message{}, false
	}
	return t.messages[idx], true
}

func (t *Transcript) TargetID() string {
	return t.targetID
}

func (t *Transcript) Streaming() bool {
	return t.targetID != ""
}

// Messages returns a copy of the log in display order.
func (t *Transcript) Messages() []Message {
	out := make([]Message, len(t.messages))
	copy(out, t.messages)
	return out
}

func (t *Transcript) Len() int {
	return len(t.messages)
}

func (t *Transcript) newMessage(role Role, content string) Message {
	return Message{
		ID:        t.newID(),
		Role:      role,
		Content:   content,
		CreatedAt: t.now(),
	}
}

func (t *Transcript) targetIndex() int {
	if t.targetID == "" {
		return -1
	}
	// The target is almost always the last message.
	for i := len(t.messages) - 1; i >= 0; i-- {
		if t.messages[i].ID == t.targetID {
			return i
		}
	}
	return -1
}
