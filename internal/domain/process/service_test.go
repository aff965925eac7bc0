package process

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agenthub/services/channel-api/internal/domain/agent"
	"agenthub/services/channel-api/internal/domain/llm"
	"agenthub/services/channel-api/internal/domain/message"
)

type statusChange struct {
	ID   string
	From message.Status
	To   message.Status
}

type fakeMessageRepo struct {
	pending     []*message.Message
	created     []*message.Message
	transitions []statusChange
	failed      map[string]string
	createErr   error
	updateErr   error
}

func newFakeMessageRepo(pending ...*message.Message) *fakeMessageRepo {
	return &fakeMessageRepo{pending: pending, failed: map[string]string{}}
}

func (f *fakeMessageRepo) Create(_ context.Context, msg *message.Message) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.created = append(f.created, msg)
	return nil
}

func (f *fakeMessageRepo) GetByID(context.Context, string) (*message.Message, error) {
	return nil, nil
}

func (f *fakeMessageRepo) ListByStatus(_ context.Context, direction message.Direction, status message.Status, limit int) ([]*message.Message, error) {
	var out []*message.Message
	for _, msg := range f.pending {
		if msg.Direction == direction && msg.Status == status && len(out) < limit {
			out = append(out, msg)
		}
	}
	return out, nil
}

func (f *fakeMessageRepo) ClaimQueued(context.Context, int) ([]*message.Message, error) {
	return nil, nil
}

func (f *fakeMessageRepo) UpdateStatus(_ context.Context, id string, from, to message.Status) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	f.transitions = append(f.transitions, statusChange{ID: id, From: from, To: to})
	return nil
}

func (f *fakeMessageRepo) MarkFailed(_ context.Context, id string, _ message.Status, reason string) error {
	f.failed[id] = reason
	return nil
}

func (f *fakeMessageRepo) MarkSent(context.Context, string, time.Time) error { return nil }

func (f *fakeMessageRepo) Requeue(context.Context, string) error { return nil }

type fakeConversations struct {
	touched  []string
	touchErr error
}

func (f *fakeConversations) Touch(_ context.Context, id string, _ time.Time) error {
	f.touched = append(f.touched, id)
	return f.touchErr
}

type fakeAgentRepo struct {
	agents map[string]*agent.Agent
}

func (f *fakeAgentRepo) GetByID(_ context.Context, id string) (*agent.Agent, error) {
	if ag, ok := f.agents[id]; ok {
		return ag, nil
	}
	return nil, errors.New("agent not found")
}

type fakeGenerator struct {
	calls int
	reply string
	err   error
}

func (f *fakeGenerator) GenerateReply(context.Context, *agent.Agent, []llm.ChatMessage) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

func strPtr(s string) *string { return &s }

func inboundReceived(id string, withLinkage bool) *message.Message {
	msg := &message.Message{
		ID:        id,
		Channel:   message.ChannelTelegram,
		Direction: message.DirectionInbound,
		Role:      message.RoleUser,
		Type:      message.TypeText,
		Status:    message.StatusReceived,
	}
	msg.SetText("what are your opening hours?")
	if withLinkage {
		msg.AgentID = strPtr("agent_1")
		msg.ConversationID = strPtr("conv_1")
		msg.ConnectionID = strPtr("conn_1")
		msg.ChatID = strPtr("9001")
	}
	return msg
}

func testAgents() *fakeAgentRepo {
	return &fakeAgentRepo{agents: map[string]*agent.Agent{
		"agent_1": {ID: "agent_1", Model: "gpt-4o-mini", SystemPrompt: "be helpful"},
	}}
}

func TestRun_GeneratesReplyAndQueuesOutbound(t *testing.T) {
	repo := newFakeMessageRepo(inboundReceived("msg_in", true))
	conversations := &fakeConversations{}
	generator := &fakeGenerator{reply: "we open at 9am"}
	svc := NewService(repo, conversations, testAgents(), generator, 10, time.Second, zerolog.Nop())

	result, err := svc.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, result.Processed)
	assert.Equal(t, 0, result.Failed)
	assert.Equal(t, 1, generator.calls)

	require.Len(t, repo.created, 1)
	reply := repo.created[0]
	assert.Equal(t, message.DirectionOutbound, reply.Direction)
	assert.Equal(t, message.RoleAgent, reply.Role)
	assert.Equal(t, message.StatusQueued, reply.Status)
	assert.Equal(t, "we open at 9am", reply.Text())
	assert.Equal(t, "msg_in", reply.Metadata["reply_to"])
	assert.Equal(t, "gpt-4o-mini", reply.Metadata["model"])
	require.NotNil(t, reply.ConversationID)
	assert.Equal(t, "conv_1", *reply.ConversationID)
	require.NotNil(t, reply.ChatID)
	assert.Equal(t, "9001", *reply.ChatID)

	require.Len(t, repo.transitions, 1)
	assert.Equal(t, statusChange{ID: "msg_in", From: message.StatusReceived, To: message.StatusProcessed}, repo.transitions[0])

	assert.Equal(t, []string{"conv_1"}, conversations.touched)
}

func TestRun_MissingLinkageFailsWithoutGenerating(t *testing.T) {
	repo := newFakeMessageRepo(inboundReceived("msg_orphan", false))
	generator := &fakeGenerator{reply: "never sent"}
	svc := NewService(repo, &fakeConversations{}, testAgents(), generator, 10, time.Second, zerolog.Nop())

	result, err := svc.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, result.Processed)
	assert.Equal(t, 1, result.Failed)
	assert.Equal(t, 0, generator.calls)
	assert.Empty(t, repo.created)
	assert.Contains(t, repo.failed["msg_orphan"], "missing agent linkage")
}

func TestRun_GenerationFailureIsTerminal(t *testing.T) {
	repo := newFakeMessageRepo(inboundReceived("msg_in", true))
	generator := &fakeGenerator{err: errors.New("llm upstream 503")}
	svc := NewService(repo, &fakeConversations{}, testAgents(), generator, 10, time.Second, zerolog.Nop())

	result, err := svc.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, result.Failed)
	assert.Equal(t, 1, generator.calls)
	assert.Empty(t, repo.created)
	assert.Contains(t, repo.failed["msg_in"], "reply generation failed")
}

func TestRun_OneFailureNeverBlocksSiblings(t *testing.T) {
	repo := newFakeMessageRepo(
		inboundReceived("msg_bad", false),
		inboundReceived("msg_good", true),
	)
	generator := &fakeGenerator{reply: "hi"}
	svc := NewService(repo, &fakeConversations{}, testAgents(), generator, 10, time.Second, zerolog.Nop())

	result, err := svc.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, result.Processed)
	assert.Equal(t, 1, result.Failed)
	require.Len(t, repo.created, 1)
	assert.Contains(t, repo.failed, "msg_bad")
}

func TestRun_RespectsBatchSize(t *testing.T) {
	repo := newFakeMessageRepo(
		inboundReceived("msg_1", true),
		inboundReceived("msg_2", true),
		inboundReceived("msg_3", true),
	)
	generator := &fakeGenerator{reply: "ok"}
	svc := NewService(repo, &fakeConversations{}, testAgents(), generator, 2, time.Second, zerolog.Nop())

	result, err := svc.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, result.Processed)
	assert.Equal(t, 2, generator.calls)
}

func TestRun_TouchFailureDoesNotFailProcessing(t *testing.T) {
	repo := newFakeMessageRepo(inboundReceived("msg_in", true))
	conversations := &fakeConversations{touchErr: errors.New("conversation gone")}
	generator := &fakeGenerator{reply: "hi"}
	svc := NewService(repo, conversations, testAgents(), generator, 10, time.Second, zerolog.Nop())

	result, err := svc.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, result.Processed)
	assert.Equal(t, 0, result.Failed)
	assert.Equal(t, []string{"conv_1"}, conversations.touched)
	require.Len(t, repo.transitions, 1)
}

func TestRun_FinalizeFailureDoesNotLeaveMessageRetryable(t *testing.T) {
	repo := newFakeMessageRepo(inboundReceived("msg_in", true))
	repo.updateErr = errors.New("connection reset")
	generator := &fakeGenerator{reply: "hi"}
	svc := NewService(repo, &fakeConversations{}, testAgents(), generator, 10, time.Second, zerolog.Nop())

	result, err := svc.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, result.Processed)
	assert.Equal(t, 1, result.Failed)
	assert.Equal(t, 1, generator.calls)

	// The reply stays queued; the inbound row is failed with a pointer to
	// it so the next run cannot generate a duplicate.
	require.Len(t, repo.created, 1)
	require.Contains(t, repo.failed, "msg_in")
	assert.Contains(t, repo.failed["msg_in"], repo.created[0].ID)
	assert.Contains(t, repo.failed["msg_in"], "finalize failed")
}
