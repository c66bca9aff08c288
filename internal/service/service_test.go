package service

import (
	"context"
	"errors"
	"testing"

	"github.com/maloquacious/datacycle/internal/logger"
	"github.com/maloquacious/datacycle/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeStore is an in-memory store.Store.
type fakeStore struct {
	records  []store.Record
	listErr  error
	pingErr  error
	state    store.StoreState
	stateErr error
}

func (f *fakeStore) Ping(context.Context) error      { return f.pingErr }
func (f *fakeStore) Close() error                    { return nil }
func (f *fakeStore) Bootstrap(context.Context) error { return nil }
func (f *fakeStore) CheckState(context.Context) (store.StoreState, error) {
	return f.state, f.stateErr
}
func (f *fakeStore) GetSchemaVersion(context.Context) (string, error) { return "1", nil }
func (f *fakeStore) ListRecords(context.Context) ([]store.Record, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.records, nil
}
func (f *fakeStore) InsertRecord(_ context.Context, data string) (store.Record, error) {
	r := store.Record{ID: int64(len(f.records) + 1), Data: data}
	f.records = append(f.records, r)
	return r, nil
}

// recordingLogger captures Error calls.
type recordingLogger struct {
	errors []string
}

func (l *recordingLogger) Info(string, ...any)  {}
func (l *recordingLogger) Warn(string, ...any)  {}
func (l *recordingLogger) Debug(string, ...any) {}
func (l *recordingLogger) Error(msg string, _ ...any) {
	l.errors = append(l.errors, msg)
}

func TestListRecords(t *testing.T) {
	want := []store.Record{{ID: 1, Data: "a"}, {ID: 2, Data: "b"}}
	svc := New(&fakeStore{records: want}, logger.Discard)

	got, err := svc.ListRecords(context.Background())
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestListRecords_StoreError(t *testing.T) {
	boom := errors.New("connection refused")
	log := &recordingLogger{}
	svc := New(&fakeStore{listErr: boom}, log)

	got, err := svc.ListRecords(context.Background())
	assert.Nil(t, got)
	assert.ErrorIs(t, err, boom)
	assert.Len(t, log.errors, 1)
}

func TestReady(t *testing.T) {
	tests := []struct {
		name      string
		store     *fakeStore
		wantState store.StoreState
		wantErr   bool
	}{
		{name: "ready", store: &fakeStore{state: store.StateReady}, wantState: store.StateReady},
		{name: "uninitialized", store: &fakeStore{state: store.StateUninitialized}, wantState: store.StateUninitialized},
		{name: "unreachable", store: &fakeStore{pingErr: errors.New("down")}, wantState: store.StateMissing, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			state, err := New(tt.store, logger.Discard).Ready(context.Background())
			assert.Equal(t, tt.wantState, state)
			assert.Equal(t, tt.wantErr, err != nil)
		})
	}
}

func TestNew_DefaultLogger(t *testing.T) {
	svc := New(&fakeStore{}, nil)
	assert.Equal(t, logger.Default, svc.log)
}
