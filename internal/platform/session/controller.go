package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Auth error taxonomy. Backend failures outside this set are passed through
// verbatim.
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrProfileNotFound    = errors.New("user profile not found")
	ErrSessionExpired     = errors.New("session expired")
)

const (
	// refreshCheckInterval bounds how often one user's proactive refresh
	// may run; the store sweep shares the cadence.
	refreshCheckInterval = time.Minute
	// refreshWindow is the remaining validity below which a refresh is due.
	refreshWindow = 5 * time.Minute
)

// CredentialChecker verifies a credential pair and returns the user identity.
type CredentialChecker interface {
	CheckCredentials(ctx context.Context, email, password string) (uuid.UUID, error)
}

// ProfileDirectory fetches user profiles and records login timestamps.
type ProfileDirectory interface {
	FetchProfile(ctx context.Context, userID uuid.UUID) (*UserProfile, error)
	RecordLogin(ctx context.Context, userID uuid.UUID, at time.Time) error
}

// Controller drives the session lifecycle: sign-in, sign-out, token recovery,
// proactive refresh, and the auth event stream. The server carries many
// signed-in users at once, so every operation acts on the caller's session;
// the controller holds no per-user state beyond refresh throttling.
type Controller struct {
	store    Store
	creds    CredentialChecker
	profiles ProfileDirectory
	tokens   *TokenIssuer
	bcast    *Broadcaster
	logger   zerolog.Logger

	mu          sync.Mutex
	lastRefresh map[uuid.UUID]time.Time
}

func NewController(store Store, creds CredentialChecker, profiles ProfileDirectory, tokens *TokenIssuer, logger zerolog.Logger) *Controller {
	return &Controller{
		store:       store,
		creds:       creds,
		profiles:    profiles,
		tokens:      tokens,
		bcast:       NewBroadcaster(),
		logger:      logger,
		lastRefresh: make(map[uuid.UUID]time.Time),
	}
}

// Subscribe returns a handle to the auth event stream. Callers must
// Unsubscribe when done.
func (c *Controller) Subscribe() *Subscription {
	return c.bcast.Subscribe()
}

// SignIn checks credentials, fetches the profile, issues a token, persists
// the session snapshot and publishes a SignedIn event. The last-login write
// is fire-and-forget: its failure never fails the sign-in.
func (c *Controller) SignIn(ctx context.Context, email, password string) (*Session, error) {
	userID, err := c.creds.CheckCredentials(ctx, email, password)
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	profile, err := c.profiles.FetchProfile(ctx, userID)
	if err != nil {
		return nil, ErrProfileNotFound
	}

	token, expiry, err := c.tokens.Issue(profile)
	if err != nil {
		return nil, err
	}

	s := &Session{
		UserID:     profile.ID,
		Token:      token,
		Expiry:     expiry,
		HospitalID: profile.HospitalID,
		Role:       profile.Role,
		IsActive:   profile.IsActive,
		Profile:    profile,
	}

	if err := c.store.Save(ctx, s); err != nil {
		return nil, err
	}

	go func() {
		lctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := c.profiles.RecordLogin(lctx, profile.ID, time.Now()); err != nil {
			c.logger.Warn().Err(err).Str("user_id", profile.ID.String()).Msg("last-login write failed")
		}
	}()

	c.bcast.Publish(Event{Kind: EventSignedIn, Session: s})
	return s, nil
}

// Recover rebuilds a session from a previously issued token. The profile is
// re-fetched so the session reflects current account state.
func (c *Controller) Recover(ctx context.Context, token string) (*Session, error) {
	claims, err := c.tokens.Verify(token)
	if err != nil {
		return nil, ErrSessionExpired
	}

	s, err := SessionFromClaims(claims, token)
	if err != nil {
		return nil, err
	}

	profile, err := c.profiles.FetchProfile(ctx, s.UserID)
	if err != nil {
		return nil, ErrProfileNotFound
	}
	s.Profile = profile
	s.Role = profile.Role
	s.HospitalID = profile.HospitalID
	s.IsActive = profile.IsActive

	c.bcast.Publish(Event{Kind: EventSignedIn, Session: s})
	return s, nil
}

// SignOut deletes the caller's persisted snapshot, invalidating the token
// even before it expires. Only the given session is touched; other users'
// sessions stay live. The sign-out completes even when the store delete
// fails; the error is logged, not returned.
func (c *Controller) SignOut(ctx context.Context, s *Session) {
	if s == nil {
		return
	}

	c.mu.Lock()
	delete(c.lastRefresh, s.UserID)
	c.mu.Unlock()

	if err := c.store.Delete(ctx, s.Token); err != nil {
		c.logger.Warn().Err(err).Str("user_id", s.UserID.String()).Msg("failed to delete persisted session")
	}

	c.bcast.Publish(Event{Kind: EventSignedOut})
}

// RefreshSession proactively refreshes the caller's token. It runs at most
// once per minute per user and only when the token's remaining validity has
// dropped below five minutes; outside those conditions the session is
// returned unchanged. A refresh failure forces the caller's sign-out.
func (c *Controller) RefreshSession(ctx context.Context, s *Session) (*Session, error) {
	if s == nil {
		return nil, ErrSessionExpired
	}

	c.mu.Lock()
	if time.Since(c.lastRefresh[s.UserID]) < refreshCheckInterval {
		c.mu.Unlock()
		return s, nil
	}
	if s.Remaining() > refreshWindow {
		c.mu.Unlock()
		return s, nil
	}
	c.lastRefresh[s.UserID] = time.Now()
	c.mu.Unlock()

	refreshed, err := c.refresh(ctx, s)
	if err != nil {
		c.logger.Error().Err(err).Str("user_id", s.UserID.String()).Msg("session refresh failed, forcing sign-out")
		c.SignOut(ctx, s)
		return nil, err
	}

	c.bcast.Publish(Event{Kind: EventTokenRefreshed, Session: refreshed})
	return refreshed, nil
}

func (c *Controller) refresh(ctx context.Context, s *Session) (*Session, error) {
	profile, err := c.profiles.FetchProfile(ctx, s.UserID)
	if err != nil {
		return nil, err
	}

	token, expiry, err := c.tokens.Issue(profile)
	if err != nil {
		return nil, err
	}

	refreshed := &Session{
		UserID:     profile.ID,
		Token:      token,
		Expiry:     expiry,
		HospitalID: profile.HospitalID,
		Role:       profile.Role,
		IsActive:   profile.IsActive,
		Profile:    profile,
	}
	if err := c.store.Save(ctx, refreshed); err != nil {
		return nil, err
	}
	if err := c.store.Delete(ctx, s.Token); err != nil {
		c.logger.Warn().Err(err).Msg("failed to delete superseded session")
	}
	return refreshed, nil
}

// Run sweeps expired session rows from the store until ctx is cancelled, so
// abandoned sessions do not accumulate between sign-outs.
func (c *Controller) Run(ctx context.Context) {
	ticker := time.NewTicker(refreshCheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := c.store.DeleteExpired(ctx); err != nil {
				c.logger.Warn().Err(err).Msg("expired session sweep failed")
			}
		}
	}
}

// Close tears down the event stream.
func (c *Controller) Close() {
	c.bcast.Close()
}
