package store

import (
	"context"

	"taskdeck/internal/domain"
	"taskdeck/internal/logging"
	"taskdeck/internal/remote"
)

// SetSession stores the session, derives the user and ends loading. Every
// non-nil session triggers a background profile fetch; the previous profile
// stays in place for the same user until the fetch lands. A nil session
// clears the identity.
func (s *Store) SetSession(session *domain.Session) {
	var fetchFor string
	s.mutate(func(st *domain.State) bool {
		st.Loading = false
		if session == nil {
			st.Session, st.User, st.Profile = nil, nil, nil
			return true
		}

		sess := *session
		user := sess.User
		if st.User == nil || st.User.ID != user.ID {
			st.Profile = nil
		}
		st.Session = &sess
		st.User = &user
		fetchFor = user.ID
		return true
	})

	if fetchFor != "" && s.remote != nil {
		s.background.Add(1)
		go func() {
			defer s.background.Done()
			s.fetchProfile(fetchFor)
		}()
	}
}

// fetchProfile loads the profile of userID and applies it only if userID is
// still the signed-in user.
func (s *Store) fetchProfile(userID string) {
	ctx, cancel := context.WithTimeout(context.Background(), s.profileTimeout)
	defer cancel()

	rows, err := s.remote.Select(ctx, remote.TableProfiles, remote.Filter{"id": userID})
	if err != nil {
		logging.Warnf("profile fetch for %s failed: %v", userID, err)
		return
	}

	profile := domain.Profile{ID: userID}
	if len(rows) > 0 {
		if profile, err = domain.ProfileFromRemote(rows[0]); err != nil {
			logging.Warnf("profile for %s unreadable: %v", userID, err)
			return
		}
	}

	s.mutate(func(st *domain.State) bool {
		if st.User == nil || st.User.ID != userID {
			logging.Debugf("discarding profile of %s: user changed", userID)
			return false
		}
		st.Profile = &profile
		return true
	})
}

// SignOut asks the remote to end the session and clears the local identity
// whether or not the remote call succeeded.
func (s *Store) SignOut(ctx context.Context) {
	if s.remote != nil {
		if err := s.remote.SignOut(ctx); err != nil {
			logging.Warnf("remote sign-out failed: %v", err)
		}
	}
	s.mutate(func(st *domain.State) bool {
		st.Session, st.User, st.Profile = nil, nil, nil
		return true
	})
}
