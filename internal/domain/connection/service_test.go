package connection

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agenthub/services/channel-api/internal/domain/message"
	"agenthub/services/channel-api/internal/utils/platformerrors"
)

type fakeRepo struct {
	conn *Connection
	err  error
}

func (f *fakeRepo) GetByID(context.Context, string) (*Connection, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.conn, nil
}

func (f *fakeRepo) FindByWebhookSecret(context.Context, string, string) (*Connection, error) {
	return f.conn, f.err
}

func (f *fakeRepo) FindByAgent(context.Context, string, string) (*Connection, error) {
	return f.conn, f.err
}

type fakeDecryptor struct {
	plaintext string
	err       error
}

func (f *fakeDecryptor) DecryptString(string) (string, error) {
	return f.plaintext, f.err
}

func activeConnection(blob string) *Connection {
	return &Connection{
		ID:                   "conn_1",
		AgentID:              "agent_1",
		Platform:             message.ChannelTelegram,
		Status:               StatusActive,
		EncryptedCredentials: blob,
	}
}

func TestResolveCredentials_DecryptsBlob(t *testing.T) {
	repo := &fakeRepo{conn: activeConnection("sealed")}
	decryptor := &fakeDecryptor{plaintext: `{"bot_token": "123:abc"}`}
	svc := NewService(repo, decryptor, zerolog.Nop())

	conn, creds, err := svc.ResolveCredentials(context.Background(), "conn_1")
	require.NoError(t, err)
	assert.Equal(t, "conn_1", conn.ID)
	assert.Equal(t, "123:abc", creds.BotToken)
}

func TestResolveCredentials_InactiveConnection(t *testing.T) {
	conn := activeConnection("sealed")
	conn.Status = StatusInactive
	svc := NewService(&fakeRepo{conn: conn}, &fakeDecryptor{}, zerolog.Nop())

	_, _, err := svc.ResolveCredentials(context.Background(), "conn_1")
	require.Error(t, err)
	assert.True(t, platformerrors.IsType(err, platformerrors.ErrorTypeCredential))
	assert.Contains(t, err.Error(), "not active")
}

func TestResolveCredentials_MissingBlob(t *testing.T) {
	svc := NewService(&fakeRepo{conn: activeConnection("")}, &fakeDecryptor{}, zerolog.Nop())

	_, _, err := svc.ResolveCredentials(context.Background(), "conn_1")
	require.Error(t, err)
	assert.True(t, platformerrors.IsType(err, platformerrors.ErrorTypeCredential))
	assert.Contains(t, err.Error(), "no stored credentials")
}

func TestResolveCredentials_DecryptFailure(t *testing.T) {
	decryptor := &fakeDecryptor{err: errors.New("cipher: message authentication failed")}
	svc := NewService(&fakeRepo{conn: activeConnection("sealed")}, decryptor, zerolog.Nop())

	_, _, err := svc.ResolveCredentials(context.Background(), "conn_1")
	require.Error(t, err)
	assert.True(t, platformerrors.IsType(err, platformerrors.ErrorTypeCredential))
}

func TestResolveCredentials_InvalidJSONBlob(t *testing.T) {
	decryptor := &fakeDecryptor{plaintext: "not-json"}
	svc := NewService(&fakeRepo{conn: activeConnection("sealed")}, decryptor, zerolog.Nop())

	_, _, err := svc.ResolveCredentials(context.Background(), "conn_1")
	require.Error(t, err)
	assert.True(t, platformerrors.IsType(err, platformerrors.ErrorTypeCredential))
}

func TestResolveCredentials_LookupErrorPassesThrough(t *testing.T) {
	lookupErr := platformerrors.NewError(context.Background(), platformerrors.LayerRepository,
		platformerrors.ErrorTypeNotFound, "connection not found", nil, "test-not-found")
	svc := NewService(&fakeRepo{err: lookupErr}, &fakeDecryptor{}, zerolog.Nop())

	_, _, err := svc.ResolveCredentials(context.Background(), "conn_missing")
	require.Error(t, err)
	assert.True(t, platformerrors.IsType(err, platformerrors.ErrorTypeNotFound))
}
