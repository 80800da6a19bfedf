package mailbox

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	// mailboxDir is the directory name within a debate directory that holds inboxes.
	mailboxDir = "mailbox"

	// indexFile is the append-only JSONL file within each inbox.
	indexFile = "index.jsonl"
)

// Store persists messages as JSONL, one append-only index per recipient.
type Store struct {
	rootDir string
	mu      sync.Mutex
}

// NewStore creates a Store rooted at the given directory.
// Inbox directories are created lazily on first write.
func NewStore(rootDir string) *Store {
	return &Store{rootDir: rootDir}
}

// Send validates msg, fills in a missing ID or Timestamp, and appends it
// to the recipient's index. It returns the stored message.
func (s *Store) Send(msg Message) (Message, error) {
	switch {
	case msg.From == "":
		return msg, fmt.Errorf("mailbox: message From field is required")
	case msg.To == "":
		return msg, fmt.Errorf("mailbox: message To field is required")
	case !ValidateMessageType(msg.Type):
		return msg, fmt.Errorf("mailbox: unknown message type %q", msg.Type)
	}

	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	if msg.Timestamp.IsZero() {
		msg.Timestamp = time.Now()
	}

	dir := s.inbox(msg.To)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return msg, fmt.Errorf("mailbox: create directory: %w", err)
	}

	data, err := json.Marshal(msg)
	if err != nil {
		return msg, fmt.Errorf("mailbox: marshal message: %w", err)
	}
	data = append(data, '\n')

	return msg, s.appendLine(filepath.Join(dir, indexFile), data)
}

// ReadBroadcast returns all messages from the broadcast inbox.
func (s *Store) ReadBroadcast() ([]Message, error) {
	return readIndex(s.inbox(BroadcastRecipient))
}

// ReadFor returns all messages addressed directly to recipient.
func (s *Store) ReadFor(recipient string) ([]Message, error) {
	if recipient == "" {
		return nil, fmt.Errorf("mailbox: recipient is required")
	}
	return readIndex(s.inbox(recipient))
}

// ReadAll returns broadcast and targeted messages for recipient, oldest first.
func (s *Store) ReadAll(recipient string) ([]Message, error) {
	broadcast, err := s.ReadBroadcast()
	if err != nil {
		return nil, err
	}
	targeted, err := s.ReadFor(recipient)
	if err != nil {
		return nil, err
	}

	all := slices.Concat(broadcast, targeted)
	slices.SortStableFunc(all, func(a, b Message) int {
		return a.Timestamp.Compare(b.Timestamp)
	})
	return all, nil
}

func (s *Store) inbox(recipient string) string {
	return filepath.Join(s.rootDir, mailboxDir, recipient)
}

// readIndex returns nil without error when the index does not exist.
// Malformed lines are skipped.
func readIndex(dir string) ([]Message, error) {
	f, err := os.Open(filepath.Join(dir, indexFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("mailbox: open index: %w", err)
	}
	defer func() { _ = f.Close() }()

	var messages []Message
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var msg Message
		if err := json.Unmarshal(line, &msg); err != nil {
			continue
		}
		messages = append(messages, msg)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("mailbox: scan index: %w", err)
	}
	return messages, nil
}

func (s *Store) appendLine(path string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("mailbox: open index for append: %w", err)
	}
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		return fmt.Errorf("mailbox: append to index: %w", err)
	}
	return f.Close()
}
