package conversation

import (
	"context"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	brtypes "github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"
)

type fakeConverseAPI struct {
	inputs []*bedrockruntime.ConverseInput
	text   string
}

func (f *fakeConverseAPI) Converse(ctx context.Context, params *bedrockruntime.ConverseInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.ConverseOutput, error) {
	f.inputs = append(f.inputs, params)
	return &bedrockruntime.ConverseOutput{
		Output: &brtypes.ConverseOutputMemberMessage{
			Value: brtypes.Message{
				Role:    brtypes.ConversationRoleAssistant,
				Content: []brtypes.ContentBlock{&brtypes.ContentBlockMemberText{Value: f.text}},
			},
		},
	}, nil
}

// A justify turn on a brand-new thread carries only system context plus
// the instruction and claim payload. That must still form a valid
// Converse request: the claim rides as the user message.
func TestJustifyOnFreshThreadReachesBedrock(t *testing.T) {
	api := &fakeConverseAPI{text: "I prescribed this service because the diagnosis required it."}
	store := NewMemoryThreadStore()
	m := NewManager(store, NewBedrockLLMClient(api), nil, ManagerConfig{Model: "test-model", Window: 10})

	ctx := context.Background()
	claim := "Service: MRI\nPrice: 1200\n"
	text, err := m.Justify(ctx, "fresh-thread", testSeed(), "Draft a justification.", claim)
	if err != nil {
		t.Fatalf("Justify: %v", err)
	}
	if text != api.text {
		t.Errorf("text = %q", text)
	}
	if len(api.inputs) != 1 {
		t.Fatalf("converse called %d times, want 1", len(api.inputs))
	}

	// The claim payload is the sole conversational message on the wire;
	// everything else travels as system blocks.
	input := api.inputs[0]
	if len(input.Messages) != 1 {
		t.Fatalf("request has %d messages, want 1", len(input.Messages))
	}
	if input.Messages[0].Role != brtypes.ConversationRoleUser {
		t.Errorf("message role = %q, want user", input.Messages[0].Role)
	}
	block, ok := input.Messages[0].Content[0].(*brtypes.ContentBlockMemberText)
	if !ok || !strings.Contains(block.Value, "Service: MRI") {
		t.Errorf("message content = %+v, want the claim payload", input.Messages[0].Content)
	}
	if len(input.System) < 4 {
		t.Errorf("system blocks = %d, want seed plus instruction", len(input.System))
	}

	// The stored log keeps the claim as system context, no user entry.
	history, _ := store.Load(ctx, "fresh-thread")
	if got := countRole(history, ChatRoleUser); got != 0 {
		t.Errorf("persisted user messages = %d, want 0", got)
	}
	if got := countRole(history, ChatRoleAssistant); got != 1 {
		t.Errorf("persisted assistant messages = %d, want 1", got)
	}
}

func TestBedrockRejectsSystemOnlyRequest(t *testing.T) {
	api := &fakeConverseAPI{text: "unused"}
	c := NewBedrockLLMClient(api)

	_, err := c.Complete(context.Background(), LLMRequest{
		Model:    "test-model",
		Messages: []ChatMessage{SystemMessage("a"), SystemMessage("b")},
	})
	if err == nil {
		t.Fatal("expected error for a request with no user or assistant message")
	}
	if len(api.inputs) != 0 {
		t.Errorf("converse called %d times, want 0", len(api.inputs))
	}
}
