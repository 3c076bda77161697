package services

import (
	"context"

	"chat-relay/contract"
	"chat-relay/runtime"
)

// IRelayService is the surface the transport adapters program against.
type IRelayService interface {
	Connect(sink contract.EventSink) *runtime.Session
	Join(ctx context.Context, s *runtime.Session, name, token string)
	SendMessage(ctx context.Context, s *runtime.Session, to, content string)
	Typing(ctx context.Context, s *runtime.Session, target string, isTyping bool)
	Disconnect(ctx context.Context, s *runtime.Session)
	OnlineNames() []string
}

// RelayService is a thin facade over the relay engine.
type RelayService struct {
	relay *runtime.Relay
}

func NewRelayService(relay *runtime.Relay) *RelayService {
	return &RelayService{relay: relay}
}

func (s *RelayService) Connect(sink contract.EventSink) *runtime.Session {
	return s.relay.Connect(sink)
}

func (s *RelayService) Join(ctx context.Context, sess *runtime.Session, name, token string) {
	s.relay.Join(ctx, sess, name, token)
}

func (s *RelayService) SendMessage(ctx context.Context, sess *runtime.Session, to, content string) {
	s.relay.SendMessage(ctx, sess, to, content)
}

func (s *RelayService) Typing(ctx context.Context, sess *runtime.Session, target string, isTyping bool) {
	s.relay.Typing(ctx, sess, target, isTyping)
}

func (s *RelayService) Disconnect(ctx context.Context, sess *runtime.Session) {
	s.relay.Disconnect(ctx, sess)
}

func (s *RelayService) OnlineNames() []string {
	return s.relay.OnlineNames()
}
