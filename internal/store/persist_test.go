package store

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskdeck/internal/domain"
)

type memoryKV struct {
	mu     sync.Mutex
	items  map[string]string
	writes int
	err    error
}

func newMemoryKV() *memoryKV {
	return &memoryKV{items: map[string]string{}}
}

func (m *memoryKV) GetItem(ctx context.Context, key string) (*string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.items[key]
	if !ok {
		return nil, nil
	}
	return &v, nil
}

func (m *memoryKV) SetItem(ctx context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.writes++
	m.items[key] = value
	return nil
}

func TestEncodeDecodeState(t *testing.T) {
	st := domain.NewState()
	st.Tasks = append(st.Tasks, domain.NewTask("t1", "p1", "Plan", domain.PriorityHigh, baseTime))
	st.PendingDeletes = st.PendingDeletes.With(domain.KindProject, "gone")

	raw, err := EncodeState(st)
	require.NoError(t, err)
	assert.Contains(t, raw, `"version":1`)
	assert.NotContains(t, raw, "loading")

	back, err := DecodeState(raw)
	require.NoError(t, err)
	require.Len(t, back.Tasks, 1)
	assert.Equal(t, "Plan", back.Tasks[0].Title)
	assert.Equal(t, []string{"gone"}, back.PendingDeletes.Projects)

	_, err = DecodeState("{not json")
	assert.Error(t, err)
}

func TestDecodeState_OlderDocument(t *testing.T) {
	back, err := DecodeState(`{"state":{"tasks":[{"id":"t1","title":"Old","status":"todo","priority":"low"}]},"version":0}`)
	require.NoError(t, err)
	require.Len(t, back.Tasks, 1)
	assert.NotNil(t, back.Tasks[0].TimeSpentPerDay)
	assert.NotNil(t, back.ArchivedTasks)
	assert.NotNil(t, back.PendingDeletes.Tasks)
}

func TestLoad(t *testing.T) {
	ctx := context.Background()
	kv := newMemoryKV()

	_, ok, err := Load(ctx, kv, DefaultStorageKey)
	require.NoError(t, err)
	assert.False(t, ok)

	raw, err := EncodeState(domain.NewState())
	require.NoError(t, err)
	require.NoError(t, kv.SetItem(ctx, DefaultStorageKey, raw))

	_, ok, err = Load(ctx, kv, DefaultStorageKey)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestKVPersister_WriteThrough(t *testing.T) {
	ctx := context.Background()
	kv := newMemoryKV()
	persister := NewKVPersister(kv, "", time.Second)
	defer persister.Close()

	s, _ := newTestStore(WithPersister(persister))
	p := s.AddProject("Work", "")
	s.AddTask(p.ID, "Plan", domain.PriorityLow)
	require.NoError(t, persister.Flush(ctx))

	loaded, ok, err := Load(ctx, kv, DefaultStorageKey)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Len(t, loaded.Projects, 1)
	assert.Len(t, loaded.Tasks, 1)
}

func TestKVPersister_CoalescesAndDrainsOnClose(t *testing.T) {
	ctx := context.Background()
	kv := newMemoryKV()
	persister := NewKVPersister(kv, "custom", 0)

	for i := 0; i < 50; i++ {
		st := domain.NewState()
		st.Projects = append(st.Projects, domain.NewProject("p", "v", "", baseTime.Add(time.Duration(i)*time.Second)))
		persister.Save(st)
	}
	require.NoError(t, persister.Close())
	require.NoError(t, persister.Close(), "second close is a no-op")

	loaded, ok, err := Load(ctx, kv, "custom")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, baseTime.Add(49*time.Second), loaded.Projects[0].CreatedAt)
	assert.LessOrEqual(t, kv.writes, 50)

	persister.Save(domain.NewState())
	assert.NoError(t, persister.Flush(ctx), "flush after close returns immediately")
}

func TestKVPersister_WriteFailureIsLogged(t *testing.T) {
	buf := captureLog(t)
	kv := newMemoryKV()
	kv.err = errors.New("disk full")
	persister := NewKVPersister(kv, "", 0)
	defer persister.Close()

	persister.Save(domain.NewState())
	require.NoError(t, persister.Flush(context.Background()))
	assert.Contains(t, buf.String(), "disk full")
}
