// Package auth owns the login session of the agent. A Gateway is built
// once at startup from the persisted session and is shared by every
// component that talks to the collector.
package auth

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/rocks-app/agent/internal/models"
	"github.com/rocks-app/agent/internal/session"
	"github.com/rocks-app/agent/internal/transport"
)

// ErrNotAuthenticated is reported when an operation needs a token and
// none is present. Its text is the user-facing message.
var ErrNotAuthenticated = errors.New("user not authenticated")

const msgMissingToken = "login response missing token"

// IdentitySource supplies the machine fingerprint sent on login.
type IdentitySource interface {
	Resolve(ctx context.Context) models.MachineIdentity
}

// Gateway is the Unauthenticated/Authenticated state machine over a
// session. It is the only writer of the session file.
type Gateway struct {
	client   *transport.Client
	store    *session.Store
	identity IdentitySource
	logger   *zap.Logger

	mu   sync.RWMutex
	sess session.Session
}

// New loads the persisted session and restores its token on client.
func New(client *transport.Client, store *session.Store, identity IdentitySource, logger *zap.Logger) *Gateway {
	if logger == nil {
		logger = zap.NewNop()
	}
	g := &Gateway{
		client:   client,
		store:    store,
		identity: identity,
		logger:   logger.Named("auth"),
		sess:     store.Load(),
	}
	if g.sess.IsAuthenticated() {
		client.SetAuthToken(*g.sess.AuthToken)
		g.logger.Info("Restored persisted session",
			zap.String("machine_type", g.sess.MachineType))
	}
	return g
}

// Authenticate logs in with the given credentials and the machine
// fingerprint. On failure the session is left untouched and the
// collector's Result is returned as is.
func (g *Gateway) Authenticate(ctx context.Context, email, password string) transport.Result {
	id := g.identity.Resolve(ctx)

	res := g.client.Login(ctx, transport.LoginRequest{
		Email:           email,
		Password:        password,
		MACAddress:      id.MACAddress,
		Username:        id.Hostname,
		OperatingSystem: id.OperatingSystem,
	})
	if !res.Success {
		g.logger.Warn("Login failed",
			zap.String("email", email),
			zap.Int("status", res.StatusCode),
			zap.String("error", res.Error))
		return res
	}

	body := res.Object()
	token, _ := body["token"].(string)
	if token == "" {
		g.logger.Warn("Login succeeded without a token", zap.String("email", email))
		return transport.Failure(transport.KindProtocol, msgMissingToken, res.StatusCode)
	}
	machineType := extractMachineType(body)

	g.mu.Lock()
	g.sess = session.Session{
		AuthToken:   &token,
		MachineType: machineType,
		MachineInfo: &id,
	}
	snapshot := g.sess
	g.mu.Unlock()

	g.client.SetAuthToken(token)
	g.logger.Info("Authenticated",
		zap.String("email", email),
		zap.String("machine_type", machineType))

	if err := g.store.Save(snapshot); err != nil {
		g.logger.Error("Failed to persist session", zap.Error(err))
	}
	return res
}

// extractMachineType looks for the machine type at "type", then
// "data.type", then "data.status.type".
func extractMachineType(body map[string]interface{}) string {
	if t, ok := body["type"].(string); ok && t != "" {
		return t
	}
	data, _ := body["data"].(map[string]interface{})
	if t, ok := data["type"].(string); ok && t != "" {
		return t
	}
	status, _ := data["status"].(map[string]interface{})
	if t, ok := status["type"].(string); ok && t != "" {
		return t
	}
	return session.DefaultMachineType
}

// Logout clears the token everywhere and persists the session. The
// cached machine type and identity are kept.
func (g *Gateway) Logout() error {
	g.mu.Lock()
	g.sess.AuthToken = nil
	snapshot := g.sess
	g.mu.Unlock()

	g.client.SetAuthToken("")
	g.logger.Info("Logged out")
	return g.store.Save(snapshot)
}

// IsAuthenticated reports whether a token is held.
func (g *Gateway) IsAuthenticated() bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.sess.IsAuthenticated()
}

// Token returns the current token, or "".
func (g *Gateway) Token() string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if g.sess.AuthToken == nil {
		return ""
	}
	return *g.sess.AuthToken
}

// MachineType returns the machine type from the last login, "pc" if none.
func (g *Gateway) MachineType() string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if g.sess.MachineType == "" {
		return session.DefaultMachineType
	}
	return g.sess.MachineType
}

// MachineInfo returns the identity cached in the session, resolving it
// when the session has none.
func (g *Gateway) MachineInfo(ctx context.Context) models.MachineIdentity {
	g.mu.RLock()
	info := g.sess.MachineInfo
	g.mu.RUnlock()
	if info != nil {
		return *info
	}
	return g.identity.Resolve(ctx)
}

// SubmitMetrics sends snap as {"data": snap}. Without a token it fails
// immediately and no request is made.
func (g *Gateway) SubmitMetrics(ctx context.Context, snap models.MetricSnapshot) transport.Result {
	if !g.IsAuthenticated() {
		return notAuthenticated()
	}
	return g.client.UpdateMachineStatus(ctx, statusPayload{Data: snap})
}

// UpdateConfig sends cfg to the collector. It requires a token.
func (g *Gateway) UpdateConfig(ctx context.Context, cfg models.MonitoringConfig) transport.Result {
	if !g.IsAuthenticated() {
		return notAuthenticated()
	}
	g.logger.Info("Updating machine configuration")
	return g.PushConfig(ctx, cfg)
}

// PushConfig sends cfg without checking for a token first. It is meant
// for callers in this process that already hold a session; the
// collector still rejects unauthenticated calls.
func (g *Gateway) PushConfig(ctx context.Context, cfg models.MonitoringConfig) transport.Result {
	info := g.MachineInfo(ctx)
	payload := BuildConfigPayload(cfg, info.MACAddress, g.MachineType())

	g.logger.Debug("Sending machine configuration",
		zap.String("machine_name", payload.Data.Name),
		zap.String("mac_address", payload.Data.MAC),
		zap.Int("frequency", payload.Data.Frequency))
	return g.client.UpdateMachineConfig(ctx, payload)
}

// GetConfig fetches this machine's configuration from the collector.
func (g *Gateway) GetConfig(ctx context.Context) transport.Result {
	if !g.IsAuthenticated() {
		return notAuthenticated()
	}
	return g.client.GetMachineConfig(ctx, g.MachineInfo(ctx).MACAddress)
}

// Health checks the collector. No token is needed.
func (g *Gateway) Health(ctx context.Context) transport.Result {
	return g.client.Health(ctx)
}

func notAuthenticated() transport.Result {
	return transport.Failure(transport.KindAuthRequired, ErrNotAuthenticated.Error(), 0)
}
