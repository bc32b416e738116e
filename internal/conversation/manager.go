package conversation

import (
	"context"
	"fmt"
	"sync"

	"github.com/nadine-ai/resubmission-copilot/pkg/logging"
)

// seedMessageCount is the fixed system-context block at the head of every
// thread: behavioral prompt, policy detail, visit context. Once written,
// these entries are never evicted by windowing.
const seedMessageCount = 3

// DefaultMessageWindow is how many post-seed messages a thread retains.
const DefaultMessageWindow = 20

// SeedContext is the per-thread system context written exactly once.
type SeedContext struct {
	SystemPrompt string
	PolicyText   string
	VisitText    string
}

func (s SeedContext) messages() []ChatMessage {
	return []ChatMessage{
		SystemMessage(s.SystemPrompt),
		SystemMessage(s.PolicyText),
		SystemMessage(visitContextPreamble + "\n" + s.VisitText),
	}
}

// ManagerConfig carries the generation parameters the manager passes to
// the model on every turn.
type ManagerConfig struct {
	Model       string
	MaxTokens   int32
	Temperature float32
	Window      int
}

// Manager owns per-thread conversational state: it seeds system context
// exactly once per thread, windows history destructively to bound token
// growth, and serializes turns on the same thread. Distinct threads
// proceed in parallel.
type Manager struct {
	store  ThreadStore
	llm    LLMClient
	logger *logging.Logger
	cfg    ManagerConfig

	// Thread IDs are minted per request, so lock entries are refcounted
	// and removed once the last holder releases them.
	mu    sync.Mutex
	locks map[string]*threadLock
}

type threadLock struct {
	mu   sync.Mutex
	refs int
}

// NewManager wires a manager over a thread store and an LLM client.
func NewManager(store ThreadStore, llm LLMClient, logger *logging.Logger, cfg ManagerConfig) *Manager {
	if store == nil {
		panic("conversation: thread store cannot be nil")
	}
	if llm == nil {
		panic("conversation: llm client cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.Window <= 0 {
		cfg.Window = DefaultMessageWindow
	}
	return &Manager{store: store, llm: llm, logger: logger, cfg: cfg, locks: make(map[string]*threadLock)}
}

// IsFirstTurn reports whether a thread still needs its seed context. The
// check looks for conversational content rather than counting messages: a
// thread that exists with zero persisted entries is a first turn, and a
// retrieval fault that surfaced a partial log without any user or
// assistant entry is treated the same way. Reseeding instructions is
// harmless; duplicating them across turns is not, and turns are persisted
// atomically so a seed-only log never exists.
func IsFirstTurn(history []ChatMessage) bool {
	for _, msg := range history {
		if msg.Role == ChatRoleUser || msg.Role == ChatRoleAssistant {
			return false
		}
	}
	return true
}

// AppendAndRespond runs one chat turn: seed if first turn, append the
// user message, window, generate, persist. A generation failure persists
// nothing, so the thread never holds a half-written turn.
func (m *Manager) AppendAndRespond(ctx context.Context, threadID string, seed SeedContext, userMessage string) (string, error) {
	unlock := m.lockThread(threadID)
	defer unlock()

	history := m.loadOrEmpty(ctx, threadID)
	if IsFirstTurn(history) {
		history = seed.messages()
	}
	history = append(history, UserMessage(userMessage))
	history = Window(history, m.cfg.Window)

	return m.completeAndPersist(ctx, threadID, history, history)
}

// Justify runs a one-shot justification turn inside the thread: no user
// message is appended; the instruction and the serialized claim data are
// injected as system entries, and the model's output is persisted as an
// assistant message so later turns see it as prior context.
func (m *Manager) Justify(ctx context.Context, threadID string, seed SeedContext, instruction, claimInfo string) (string, error) {
	unlock := m.lockThread(threadID)
	defer unlock()

	history := m.loadOrEmpty(ctx, threadID)
	if IsFirstTurn(history) {
		history = seed.messages()
	}
	history = append(history, SystemMessage(instruction), SystemMessage(claimInfo))
	history = Window(history, m.cfg.Window)

	// Providers refuse a message list with no user or assistant entry,
	// which is exactly what a justify turn on a fresh thread produces.
	// On the wire the claim payload plays the user part; the stored log
	// keeps it as system context.
	request := make([]ChatMessage, len(history))
	copy(request, history)
	request[len(request)-1] = UserMessage(claimInfo)

	return m.completeAndPersist(ctx, threadID, request, history)
}

// History exposes the persisted thread log for inspection.
func (m *Manager) History(ctx context.Context, threadID string) ([]ChatMessage, error) {
	return m.store.Load(ctx, threadID)
}

// completeAndPersist sends request to the model and, on success, persists
// history plus the assistant reply. The two usually coincide; justify
// turns reshape the request without changing what is stored.
func (m *Manager) completeAndPersist(ctx context.Context, threadID string, request, history []ChatMessage) (string, error) {
	resp, err := m.llm.Complete(ctx, LLMRequest{
		Model:       m.cfg.Model,
		Messages:    request,
		MaxTokens:   m.cfg.MaxTokens,
		Temperature: m.cfg.Temperature,
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrGeneration, err)
	}

	history = append(history, AssistantMessage(resp.Text))
	if err := m.store.Replace(ctx, threadID, history); err != nil {
		return "", fmt.Errorf("conversation: persist turn for thread %s: %w", threadID, err)
	}
	return resp.Text, nil
}

func (m *Manager) loadOrEmpty(ctx context.Context, threadID string) []ChatMessage {
	history, err := m.store.Load(ctx, threadID)
	if err != nil {
		// Conservative: a retrieval fault becomes a fresh thread.
		m.logger.Warn("thread load failed, treating as first turn",
			"thread_id", threadID,
			"error", err,
		)
		return nil
	}
	return history
}

func (m *Manager) lockThread(threadID string) func() {
	m.mu.Lock()
	l := m.locks[threadID]
	if l == nil {
		l = &threadLock{}
		m.locks[threadID] = l
	}
	l.refs++
	m.mu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()
		m.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(m.locks, threadID)
		}
		m.mu.Unlock()
	}
}

// Window trims a thread log to the seed block plus the most recent window
// entries. The caller persists the trimmed log, so truncation is a
// destructive replace; trimming an already-trimmed log changes nothing.
func Window(history []ChatMessage, window int) []ChatMessage {
	if window <= 0 || len(history) <= seedMessageCount {
		return history
	}
	convo := history[seedMessageCount:]
	if len(convo) <= window {
		return history
	}
	out := make([]ChatMessage, 0, seedMessageCount+window)
	out = append(out, history[:seedMessageCount]...)
	out = append(out, convo[len(convo)-window:]...)
	return out
}
