// Package realtime exposes the orbital operations over NATS request-reply
// so fleet services can compute positions and passes without speaking HTTP.
package realtime

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"

	"github.com/salcedoinaki/stellar/internal/services"
	"github.com/salcedoinaki/stellar/internal/utils"
)

// Subjects served by the bridge.
const (
	SubjectPropagate  = "orbital.propagate"
	SubjectTrajectory = "orbital.trajectory"
	SubjectVisibility = "orbital.visibility"

	// queueGroup load-balances requests across bridge instances.
	queueGroup = "orbital"

	handlerTimeout = 30 * time.Second
)

// BridgeConfig holds configuration for the NATS bridge.
type BridgeConfig struct {
	NATSURL       string
	ReconnectWait time.Duration
	MaxReconnects int
	PingInterval  time.Duration
}

// DefaultBridgeConfig returns a default configuration.
func DefaultBridgeConfig() BridgeConfig {
	return BridgeConfig{
		NATSURL:       nats.DefaultURL,
		ReconnectWait: 2 * time.Second,
		MaxReconnects: 60,
		PingInterval:  30 * time.Second,
	}
}

// Bridge serves orbital requests arriving over NATS.
type Bridge struct {
	nc            *nats.Conn
	svc           *services.OrbitalService
	log           *utils.Logger
	mu            sync.Mutex
	subscriptions []*nats.Subscription
}

// NewBridge connects to NATS. The caller treats a connection failure as
// non-fatal: the HTTP surface works without the bridge.
func NewBridge(cfg BridgeConfig, svc *services.OrbitalService, log *utils.Logger) (*Bridge, error) {
	opts := []nats.Option{
		nats.ReconnectWait(cfg.ReconnectWait),
		nats.MaxReconnects(cfg.MaxReconnects),
		nats.PingInterval(cfg.PingInterval),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info("[NATS] reconnected to %s", nc.ConnectedUrl())
		}),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			if err != nil {
				log.Warn("[NATS] disconnected: %v", err)
			}
		}),
	}

	nc, err := nats.Connect(cfg.NATSURL, opts...)
	if err != nil {
		return nil, err
	}

	return &Bridge{nc: nc, svc: svc, log: log}, nil
}

// reply is the envelope every bridge response uses.
type reply struct {
	RequestID string      `json:"request_id"`
	Success   bool        `json:"success"`
	Data      interface{} `json:"data,omitempty"`
	Error     string      `json:"error,omitempty"`
}

// Start subscribes the operation subjects.
func (b *Bridge) Start() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	subs := []struct {
		subject string
		handler nats.MsgHandler
	}{
		{SubjectPropagate, b.handlePropagate},
		{SubjectTrajectory, b.handleTrajectory},
		{SubjectVisibility, b.handleVisibility},
	}

	for _, s := range subs {
		sub, err := b.nc.QueueSubscribe(s.subject, queueGroup, s.handler)
		if err != nil {
			return err
		}
		b.subscriptions = append(b.subscriptions, sub)
	}

	b.log.Info("[NATS] bridge serving %s, %s, %s", SubjectPropagate, SubjectTrajectory, SubjectVisibility)
	return nil
}

// Stop drains the subscriptions and closes the connection.
func (b *Bridge) Stop() {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, sub := range b.subscriptions {
		sub.Unsubscribe()
	}
	b.subscriptions = nil
	b.nc.Drain()
}

func (b *Bridge) handlePropagate(msg *nats.Msg) {
	var req services.PropagateRequest
	if err := json.Unmarshal(msg.Data, &req); err != nil {
		b.respondError(msg, err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), handlerTimeout)
	defer cancel()

	result, err := b.svc.Propagate(ctx, req)
	if err != nil {
		b.respondError(msg, err)
		return
	}
	b.respond(msg, result)
}

func (b *Bridge) handleTrajectory(msg *nats.Msg) {
	var req services.TrajectoryRequest
	if err := json.Unmarshal(msg.Data, &req); err != nil {
		b.respondError(msg, err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), handlerTimeout)
	defer cancel()

	samples, err := b.svc.Trajectory(ctx, req)
	if err != nil {
		b.respondError(msg, err)
		return
	}
	b.respond(msg, samples)
}

func (b *Bridge) handleVisibility(msg *nats.Msg) {
	var req services.VisibilityRequest
	if err := json.Unmarshal(msg.Data, &req); err != nil {
		b.respondError(msg, err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), handlerTimeout)
	defer cancel()

	found, err := b.svc.Visibility(ctx, req)
	if err != nil {
		b.respondError(msg, err)
		return
	}
	b.respond(msg, found)
}

func (b *Bridge) respond(msg *nats.Msg, data interface{}) {
	payload, err := json.Marshal(reply{
		RequestID: uuid.New().String(),
		Success:   true,
		Data:      data,
	})
	if err != nil {
		b.respondError(msg, err)
		return
	}
	msg.Respond(payload)
}

func (b *Bridge) respondError(msg *nats.Msg, err error) {
	payload, _ := json.Marshal(reply{
		RequestID: uuid.New().String(),
		Success:   false,
		Error:     err.Error(),
	})
	msg.Respond(payload)
}
