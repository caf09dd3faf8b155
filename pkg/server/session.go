package server

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/commatea/hapticbridge/pkg/message"
	"github.com/commatea/hapticbridge/pkg/message/version"
)

const serverName = "hapticbridge"

// maxSupportedSpec is the highest spec version this server negotiates
// (spec.md §4.2: versions 0..3 are all implemented).
const maxSupportedSpec = version.Spec3

// Session is one client connection's protocol state: whether the
// handshake completed, the negotiated spec version, and the ping
// watchdog bound to this connection's declared MaxPingTime (spec.md §6
// "Handshake").
type Session struct {
	manager  *Manager
	watchdog *PingWatchdog
	log      *slog.Logger

	handshakeDone bool
	clientSpec    version.Spec
	logSubscribed bool
	logLevel      string
}

// NewSession returns a fresh, pre-handshake Session bound to manager.
// maxPingTime is the server's configured ping interval in milliseconds;
// 0 disables the watchdog (spec.md §6).
func NewSession(manager *Manager, maxPingTime uint32, log *slog.Logger) *Session {
	return &Session{
		manager:  manager,
		watchdog: NewPingWatchdog(time.Duration(maxPingTime)*time.Millisecond, manager, log),
		log:      log,
	}
}

// Watchdog returns the session's ping watchdog, started by the caller
// alongside the connection's read loop.
func (s *Session) Watchdog() *PingWatchdog { return s.watchdog }

// ClientSpec returns the negotiated spec version. Before the handshake
// completes it is Spec0, the most conservative encoding.
func (s *Session) ClientSpec() version.Spec { return s.clientSpec }

// LogSubscription reports whether the client has an active RequestLog
// subscription and, if so, the minimum level it asked for. A connector
// forwarding pkg/logger output to this session checks this before
// pushing a Log message (spec.md §9 "Test"/"Log"/"RequestLog" variants).
func (s *Session) LogSubscription() (subscribed bool, level string) {
	return s.logSubscribed, s.logLevel
}

// Dispatch handles one decoded client message end-to-end: handshake
// messages update session state directly, Ping resets the watchdog, and
// everything else is routed to the device manager once the handshake is
// complete (spec.md §4.1/§4.5/§6).
func (s *Session) Dispatch(ctx context.Context, env version.Envelope) message.Message {
	id := env.Message.GetId()

	if !s.handshakeDone {
		if req, ok := env.Message.(*message.RequestServerInfo); ok {
			return s.handshake(req)
		}
		return message.ToWireError(id, &message.HandshakeError{Reason: "first message must be RequestServerInfo"})
	}

	if client, ok := env.Message.(message.ClientOriginated); ok {
		if err := message.RequireNonZeroID(id); err != nil {
			return message.ToWireError(id, err)
		}
		if v, ok := client.(message.Validatable); ok {
			if err := v.Validate(); err != nil {
				return message.ToWireError(id, err)
			}
		}
	}

	switch m := env.Message.(type) {
	case *message.RequestServerInfo:
		return message.ToWireError(id, &message.HandshakeError{Reason: "handshake already completed"})
	case *message.Ping:
		s.watchdog.Reset()
		return &message.Ok{Id: id}
	case *message.Test:
		return &message.Test{Id: id, TestString: m.TestString}
	case *message.RequestLog:
		s.logSubscribed = true
		s.logLevel = m.LogLevel
		return &message.Ok{Id: id}
	case *message.RequestDeviceList:
		return s.manager.DeviceList(id, s.clientSpec)
	case *message.StopAllDevices:
		resp, err := s.manager.StopAllDevices(ctx)
		if err != nil {
			return message.ToWireError(id, err)
		}
		resp.SetId(id)
		return resp
	case *message.StartScanning:
		s.manager.StartScanning()
		return &message.Ok{Id: id}
	case *message.StopScanning:
		s.manager.StopScanning()
		return &message.Ok{Id: id}
	case message.DeviceMessage:
		resp, err := s.manager.ParseDeviceMessage(ctx, m)
		if err != nil {
			return message.ToWireError(id, err)
		}
		resp.SetId(id)
		return resp
	default:
		return message.ToWireError(id, message.NewInvalidMessageContents(fmt.Sprintf("unhandled message type %T", m)))
	}
}

func (s *Session) handshake(req *message.RequestServerInfo) message.Message {
	clientSpec := version.Spec(req.MessageVersion)
	negotiated := clientSpec
	if negotiated > maxSupportedSpec {
		negotiated = maxSupportedSpec
	}
	s.clientSpec = negotiated
	s.handshakeDone = true

	maxPing := uint32(0)
	if s.watchdog.Enabled() {
		maxPing = uint32(s.watchdog.maxPingTime.Milliseconds())
	}

	return &message.ServerInfo{
		Id:             req.Id,
		ServerName:     serverName,
		MessageVersion: uint32(negotiated),
		MaxPingTime:    maxPing,
	}
}
