package transport

import (
	"context"
	"net/http"
	"net/url"
)

// Collector endpoints.
const (
	PathLogin         = "/api/login"
	PathUpdateConfig  = "/api/update_confg_maquina"
	PathMachineStatus = "/api/maquina/status"
	PathMachine       = "/api/machine/"
	PathHealth        = "/api/health"
)

// LoginRequest is the body of POST /api/login. The collector expects the
// operating system under the key "c".
type LoginRequest struct {
	Email           string `json:"email"`
	Password        string `json:"password"`
	MACAddress      string `json:"mac_address"`
	Username        string `json:"username"`
	OperatingSystem string `json:"c"`
}

// Login posts credentials and the machine fingerprint.
func (c *Client) Login(ctx context.Context, req LoginRequest, opts ...RequestOption) Result {
	return c.Request(ctx, http.MethodPost, PathLogin, req, opts...)
}

// UpdateMachineConfig posts a machine configuration payload.
func (c *Client) UpdateMachineConfig(ctx context.Context, payload interface{}, opts ...RequestOption) Result {
	return c.Request(ctx, http.MethodPost, PathUpdateConfig, payload, opts...)
}

// UpdateMachineStatus puts a monitoring payload ({"data": snapshot}).
func (c *Client) UpdateMachineStatus(ctx context.Context, payload interface{}, opts ...RequestOption) Result {
	return c.Request(ctx, http.MethodPut, PathMachineStatus, payload, opts...)
}

// GetMachineConfig fetches the stored configuration of a machine.
func (c *Client) GetMachineConfig(ctx context.Context, macAddress string, opts ...RequestOption) Result {
	return c.Request(ctx, http.MethodGet, PathMachine+url.PathEscape(macAddress), nil, opts...)
}

// Health checks that the collector is up.
func (c *Client) Health(ctx context.Context, opts ...RequestOption) Result {
	return c.Request(ctx, http.MethodGet, PathHealth, nil, opts...)
}
