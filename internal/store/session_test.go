package store

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskdeck/internal/domain"
	"taskdeck/internal/logging"
	"taskdeck/internal/remote"
	"taskdeck/internal/remote/remotetest"
)

func session(userID string) *domain.Session {
	return &domain.Session{AccessToken: "token-" + userID, User: domain.User{ID: userID, Email: userID + "@example.com"}}
}

func captureLog(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := logging.SetOutput(&buf)
	t.Cleanup(func() { logging.SetOutput(prev) })
	return &buf
}

func TestSetSession_FetchesProfile(t *testing.T) {
	fake := remotetest.NewFake()
	fake.Put(remote.TableProfiles, remote.Row{"id": "u1", "is_pro": true})
	s, _ := newTestStore(WithRemote(fake))

	s.SetSession(session("u1"))

	st := s.Snapshot()
	assert.False(t, st.Loading)
	require.NotNil(t, st.User)
	assert.Equal(t, "u1", st.User.ID)

	assert.Eventually(t, func() bool {
		p := s.Snapshot().Profile
		return p != nil && p.IsPro
	}, time.Second, 5*time.Millisecond)
}

func TestSetSession_MissingProfileRowMeansNotPro(t *testing.T) {
	fake := remotetest.NewFake()
	s, _ := newTestStore(WithRemote(fake))

	s.SetSession(session("u1"))
	s.Wait()

	st := s.Snapshot()
	require.NotNil(t, st.Profile)
	assert.False(t, st.Profile.IsPro)
}

func TestSetSession_ProfileFetchFailureLeavesProfileEmpty(t *testing.T) {
	buf := captureLog(t)
	fake := remotetest.NewFake()
	fake.FailOn("select", remote.TableProfiles, errors.New("offline"))
	s, _ := newTestStore(WithRemote(fake))

	s.SetSession(session("u1"))
	s.Wait()

	assert.Nil(t, s.Snapshot().Profile)
	assert.NotNil(t, s.Snapshot().Session)
	assert.Contains(t, buf.String(), "offline")
}

func TestSetSession_StaleProfileIsDiscarded(t *testing.T) {
	fake := remotetest.NewFake()
	fake.Put(remote.TableProfiles,
		remote.Row{"id": "u1", "is_pro": true},
		remote.Row{"id": "u2", "is_pro": false},
	)

	release := make(chan struct{})
	var once sync.Once
	fake.BeforeCall = func(op, table string) {
		// Hold the first profile fetch until the user has switched.
		once.Do(func() { <-release })
	}
	s, _ := newTestStore(WithRemote(fake))

	s.SetSession(session("u1"))
	s.SetSession(session("u2"))
	close(release)
	s.Wait()

	st := s.Snapshot()
	require.NotNil(t, st.User)
	assert.Equal(t, "u2", st.User.ID)
	require.NotNil(t, st.Profile)
	assert.Equal(t, "u2", st.Profile.ID)
	assert.False(t, st.Profile.IsPro)
}

func TestSetSession_SameUserRefetchesProfile(t *testing.T) {
	fake := remotetest.NewFake()
	fake.Put(remote.TableProfiles, remote.Row{"id": "u1", "is_pro": false})
	s, _ := newTestStore(WithRemote(fake))

	s.SetSession(session("u1"))
	s.Wait()
	require.NotNil(t, s.Snapshot().Profile)
	assert.False(t, s.Snapshot().Profile.IsPro)

	fake.Put(remote.TableProfiles, remote.Row{"id": "u1", "is_pro": true})
	refreshed := session("u1")
	refreshed.AccessToken = "rotated"
	s.SetSession(refreshed)
	s.Wait()

	st := s.Snapshot()
	assert.Equal(t, "rotated", st.Session.AccessToken)
	require.NotNil(t, st.Profile)
	assert.True(t, st.Profile.IsPro)
	assert.Len(t, fake.Calls("select", remote.TableProfiles), 2)
}

func TestSetSession_FailedRefetchKeepsProfile(t *testing.T) {
	fake := remotetest.NewFake()
	fake.Put(remote.TableProfiles, remote.Row{"id": "u1", "is_pro": true})
	s, _ := newTestStore(WithRemote(fake))

	s.SetSession(session("u1"))
	s.Wait()
	fake.FailOn("select", remote.TableProfiles, errors.New("offline"))
	s.SetSession(session("u1"))
	s.Wait()

	st := s.Snapshot()
	require.NotNil(t, st.Profile)
	assert.True(t, st.Profile.IsPro)
	assert.Len(t, fake.Calls("select", remote.TableProfiles), 2)
}

func TestSetSession_Nil(t *testing.T) {
	s, _ := newTestStore()
	s.SetSession(session("u1"))
	s.SetSession(nil)

	st := s.Snapshot()
	assert.Nil(t, st.Session)
	assert.Nil(t, st.User)
	assert.False(t, st.Loading)
}

func TestSignOut_ClearsIdentityEvenWhenRemoteFails(t *testing.T) {
	buf := captureLog(t)
	fake := remotetest.NewFake()
	fake.Put(remote.TableProfiles, remote.Row{"id": "u1", "is_pro": true})
	fake.FailOn("signout", "", errors.New("network down"))
	s, _ := newTestStore(WithRemote(fake))
	s.AddTask("p1", "Keep me", domain.PriorityLow)

	s.SetSession(session("u1"))
	s.Wait()
	s.SignOut(context.Background())

	st := s.Snapshot()
	assert.Nil(t, st.Session)
	assert.Nil(t, st.User)
	assert.Nil(t, st.Profile)
	assert.Len(t, st.Tasks, 1, "local data survives sign-out")
	assert.Contains(t, buf.String(), "network down")
	assert.Len(t, fake.Calls("signout", ""), 1)
}
