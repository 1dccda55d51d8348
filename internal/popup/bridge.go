package popup

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/jellydator/ttlcache/v3"
	"github.com/rs/zerolog/log"
)

const (
	// DefaultTimeout bounds how long an attempt may stay unresolved.
	DefaultTimeout = 60 * time.Second
	// DefaultPollInterval is how often the popup is checked for a
	// manual close.
	DefaultPollInterval = time.Second

	capabilityProbeTimeout = 5 * time.Second
)

// Popup is an opened provider window.
type Popup interface {
	Closed() bool
	Close()
}

// WindowOpener opens popup windows. A nil popup with a nil error means
// the browser blocked the window.
type WindowOpener interface {
	Open(url, name string) (Popup, error)
}

// Capability is the result of probing the server's federated-login
// support. Known is false when the probe itself failed; callers should
// then attempt the handshake anyway and let the server reject it.
type Capability struct {
	Known       bool
	Configured  bool
	CallbackURL string
}

// Bridge drives popup handshakes against one server on behalf of one
// client origin. Messages from any other origin are dropped.
type Bridge struct {
	apiURL       string
	clientOrigin string
	opener       WindowOpener
	sessions     SessionStore
	httpClient   *http.Client
	pollInterval time.Duration
	newID        func() string
	onSuccess    func(Result)

	attempts *ttlcache.Cache[string, *Attempt]
}

// Option configures a Bridge.
type Option func(*Bridge)

// WithTimeout overrides the attempt timeout.
func WithTimeout(d time.Duration) Option {
	return func(b *Bridge) {
		b.attempts = newAttemptCache(d)
	}
}

// WithPollInterval overrides the close-poll interval.
func WithPollInterval(d time.Duration) Option {
	return func(b *Bridge) { b.pollInterval = d }
}

// WithHTTPClient overrides the client used for the capability probe.
func WithHTTPClient(c *http.Client) Option {
	return func(b *Bridge) { b.httpClient = c }
}

// WithIDGenerator overrides correlation id generation.
func WithIDGenerator(fn func() string) Option {
	return func(b *Bridge) { b.newID = fn }
}

// WithSuccessHook registers a callback invoked once per successful
// attempt, after the session has been persisted. Callers use it to
// reload their view of the signed-in user.
func WithSuccessHook(fn func(Result)) Option {
	return func(b *Bridge) { b.onSuccess = fn }
}

// NewBridge creates a bridge. Close it to release the expiry worker.
func NewBridge(apiURL, clientOrigin string, opener WindowOpener, sessions SessionStore, opts ...Option) *Bridge {
	b := &Bridge{
		apiURL:       apiURL,
		clientOrigin: clientOrigin,
		opener:       opener,
		sessions:     sessions,
		httpClient:   &http.Client{Timeout: capabilityProbeTimeout},
		pollInterval: DefaultPollInterval,
		newID:        uuid.NewString,
		attempts:     newAttemptCache(DefaultTimeout),
	}
	for _, opt := range opts {
		opt(b)
	}
	go b.attempts.Start()
	return b
}

// Expiry of the attempt cache is the timeout path: an entry that was
// neither resolved nor deleted within the TTL times its attempt out.
func newAttemptCache(timeout time.Duration) *ttlcache.Cache[string, *Attempt] {
	cache := ttlcache.New(
		ttlcache.WithTTL[string, *Attempt](timeout),
		ttlcache.WithDisableTouchOnHit[string, *Attempt](),
	)
	cache.OnEviction(func(_ context.Context, reason ttlcache.EvictionReason, item *ttlcache.Item[string, *Attempt]) {
		if reason == ttlcache.EvictionReasonExpired {
			item.Value().OnTimeout()
		}
	})
	return cache
}

// Close stops the expiry worker.
func (b *Bridge) Close() {
	b.attempts.Stop()
}

// CheckCapability probes the server before opening a popup. A failed
// probe does not forbid the handshake, it only withholds the answer.
func (b *Bridge) CheckCapability(ctx context.Context) Capability {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, b.apiURL+"/api/google-auth-check", nil)
	if err != nil {
		return Capability{}
	}

	resp, err := b.httpClient.Do(req)
	if err != nil {
		log.Warn().Err(err).Msg("capability probe failed, attempting handshake anyway")
		return Capability{}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Warn().Int("status", resp.StatusCode).Msg("capability probe failed, attempting handshake anyway")
		return Capability{}
	}

	var body struct {
		Configured  bool   `json:"configured"`
		CallbackURL string `json:"callbackUrl"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return Capability{}
	}
	return Capability{Known: true, Configured: body.Configured, CallbackURL: body.CallbackURL}
}

// Begin opens the provider popup and registers the attempt. The caller
// waits on the attempt's Done channel for the outcome.
func (b *Bridge) Begin(forceSelection bool) (*Attempt, error) {
	id := b.newID()

	q := url.Values{}
	q.Set("unique", id)
	if forceSelection {
		q.Set("force_selection", "true")
	}
	startURL := b.apiURL + "/api/auth/google?" + q.Encode()

	window, err := b.opener.Open(startURL, "GoogleAuth_"+id)
	if err != nil || window == nil {
		return nil, ErrPopupBlocked
	}

	attempt := newAttempt(id, forceSelection, window, b.sessions, b.onSuccess)
	b.attempts.Set(id, attempt, ttlcache.DefaultTTL)

	go b.pollClosed(attempt, window)
	log.Debug().Str("attempt_id", id).Bool("force_selection", forceSelection).Msg("handshake attempt started")
	return attempt, nil
}

// Deliver routes a posted message to the pending attempt. Messages from
// origins other than the client or the server are dropped without
// touching any attempt.
func (b *Bridge) Deliver(origin string, raw []byte) bool {
	if origin != b.clientOrigin && origin != b.apiURL {
		log.Warn().Str("origin", origin).Msg("dropping message from untrusted origin")
		return false
	}

	var msg Message
	if err := json.Unmarshal(raw, &msg); err != nil {
		log.Warn().Err(err).Msg("dropping malformed handshake message")
		return false
	}

	for id, item := range b.attempts.Items() {
		if item.Value().OnMessage(msg) {
			b.attempts.Delete(id)
			return true
		}
	}
	return false
}

func (b *Bridge) pollClosed(attempt *Attempt, window Popup) {
	ticker := time.NewTicker(b.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-attempt.Done():
			b.attempts.Delete(attempt.ID)
			return
		case <-ticker.C:
			if window.Closed() {
				attempt.OnClosedDetected()
				b.attempts.Delete(attempt.ID)
				return
			}
		}
	}
}
