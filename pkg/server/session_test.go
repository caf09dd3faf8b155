package server

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/commatea/hapticbridge/pkg/message"
	"github.com/commatea/hapticbridge/pkg/message/version"
)

func newTestSession() *Session {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewSession(NewManager(), 0, log)
}

func envelope(m message.Message) version.Envelope {
	return version.Envelope{Message: m}
}

func TestSessionRejectsNonHandshakeFirstMessage(t *testing.T) {
	s := newTestSession()
	resp := s.Dispatch(context.Background(), envelope(&message.Ping{Id: 1}))
	errResp, ok := resp.(*message.Error)
	if !ok || errResp.ErrorCode != message.ErrorInit {
		t.Fatalf("Dispatch() = %+v, want a HandshakeError before handshake completes", resp)
	}
}

func TestSessionHandshakeNegotiatesDownToMaxSupported(t *testing.T) {
	s := newTestSession()
	resp := s.Dispatch(context.Background(), envelope(&message.RequestServerInfo{Id: 1, MessageVersion: 99}))
	info, ok := resp.(*message.ServerInfo)
	if !ok {
		t.Fatalf("Dispatch() = %+v, want *ServerInfo", resp)
	}
	if version.Spec(info.MessageVersion) != maxSupportedSpec {
		t.Fatalf("negotiated MessageVersion = %d, want %d", info.MessageVersion, maxSupportedSpec)
	}
	if s.ClientSpec() != maxSupportedSpec {
		t.Fatalf("ClientSpec() = %v, want %v", s.ClientSpec(), maxSupportedSpec)
	}
}

func TestSessionHandshakeNegotiatesClientLowerSpec(t *testing.T) {
	s := newTestSession()
	resp := s.Dispatch(context.Background(), envelope(&message.RequestServerInfo{Id: 1, MessageVersion: 1}))
	info := resp.(*message.ServerInfo)
	if info.MessageVersion != 1 {
		t.Fatalf("negotiated MessageVersion = %d, want 1", info.MessageVersion)
	}
}

func TestSessionRejectsSecondHandshake(t *testing.T) {
	s := newTestSession()
	s.Dispatch(context.Background(), envelope(&message.RequestServerInfo{Id: 1, MessageVersion: 3}))

	resp := s.Dispatch(context.Background(), envelope(&message.RequestServerInfo{Id: 2, MessageVersion: 3}))
	errResp, ok := resp.(*message.Error)
	if !ok || errResp.ErrorCode != message.ErrorInit {
		t.Fatalf("Dispatch() = %+v, want a HandshakeError for a second handshake attempt", resp)
	}
}

func TestSessionRejectsInvalidMessageAfterHandshake(t *testing.T) {
	s := newTestSession()
	s.Dispatch(context.Background(), envelope(&message.RequestServerInfo{Id: 1, MessageVersion: 3}))

	resp := s.Dispatch(context.Background(), envelope(&message.ScalarCmd{Id: 2, Scalars: []message.ScalarSubcommand{
		{Index: 0, Scalar: 1.5, ActuatorType: "Vibrate"},
	}}))
	if _, ok := resp.(*message.Error); !ok {
		t.Fatalf("Dispatch() = %+v, want a validation Error for an out-of-range Scalar", resp)
	}
}

func TestSessionPingResetsWatchdogAndReturnsOk(t *testing.T) {
	s := newTestSession()
	s.Dispatch(context.Background(), envelope(&message.RequestServerInfo{Id: 1, MessageVersion: 3}))

	resp := s.Dispatch(context.Background(), envelope(&message.Ping{Id: 2}))
	ok, isOk := resp.(*message.Ok)
	if !isOk || ok.Id != 2 {
		t.Fatalf("Dispatch(Ping) = %+v, want Ok{Id:2}", resp)
	}
}

func TestSessionTestEchoesString(t *testing.T) {
	s := newTestSession()
	s.Dispatch(context.Background(), envelope(&message.RequestServerInfo{Id: 1, MessageVersion: 3}))

	resp := s.Dispatch(context.Background(), envelope(&message.Test{Id: 2, TestString: "hello"}))
	echoed, ok := resp.(*message.Test)
	if !ok || echoed.TestString != "hello" || echoed.Id != 2 {
		t.Fatalf("Dispatch(Test) = %+v, want echoed TestString", resp)
	}
}

func TestSessionRequestDeviceListDelegatesToManager(t *testing.T) {
	s := newTestSession()
	s.Dispatch(context.Background(), envelope(&message.RequestServerInfo{Id: 1, MessageVersion: 3}))

	resp := s.Dispatch(context.Background(), envelope(&message.RequestDeviceList{Id: 2}))
	list, ok := resp.(*message.DeviceList)
	if !ok || list.Id != 2 {
		t.Fatalf("Dispatch(RequestDeviceList) = %+v, want DeviceList{Id:2}", resp)
	}
}

func TestSessionDeviceMessageRoutesThroughManager(t *testing.T) {
	s := newTestSession()
	s.Dispatch(context.Background(), envelope(&message.RequestServerInfo{Id: 1, MessageVersion: 3}))

	resp := s.Dispatch(context.Background(), envelope(&message.ScalarCmd{Id: 2, DeviceIndex: 99, Scalars: []message.ScalarSubcommand{{Index: 0, Scalar: 0.5}}}))
	errResp, ok := resp.(*message.Error)
	if !ok || errResp.ErrorCode != message.ErrorDevice {
		t.Fatalf("Dispatch(ScalarCmd) on an unregistered device = %+v, want a DeviceError", resp)
	}
	if errResp.Id != 2 {
		t.Fatalf("Error.Id = %d, want 2", errResp.Id)
	}
}

func TestSessionRequestLogTracksSubscription(t *testing.T) {
	s := newTestSession()
	s.Dispatch(context.Background(), envelope(&message.RequestServerInfo{Id: 1, MessageVersion: 3}))

	if subscribed, _ := s.LogSubscription(); subscribed {
		t.Fatal("expected no log subscription before RequestLog")
	}

	s.Dispatch(context.Background(), envelope(&message.RequestLog{Id: 2, LogLevel: "debug"}))
	subscribed, level := s.LogSubscription()
	if !subscribed || level != "debug" {
		t.Fatalf("LogSubscription() = (%v, %q), want (true, \"debug\")", subscribed, level)
	}
}

func TestSessionUnhandledMessageTypeIsError(t *testing.T) {
	s := newTestSession()
	s.Dispatch(context.Background(), envelope(&message.RequestServerInfo{Id: 1, MessageVersion: 3}))

	resp := s.Dispatch(context.Background(), envelope(&message.Log{Id: 2}))
	if _, ok := resp.(*message.Error); !ok {
		t.Fatalf("Dispatch(Log) = %+v, want an Error for a server-only message", resp)
	}
}
