package domain

import (
	"context"

	"github.com/Nzm15/battle-arena-main/domain"
)

// Connection は論理セッションに紐づく物理的な接続を表します。
type Connection struct {
	session   *domain.Session
	transport domain.Transport
}

func NewConnection(session *domain.Session, transport domain.Transport) *Connection {
	return &Connection{
		session:   session,
		transport: transport,
	}
}

func (c *Connection) Write(ctx context.Context, frame domain.Frame) error {
	if err := c.transport.Write(ctx, frame); err != nil {
		return err
	}
	c.session.TouchWrite()
	return nil
}

func (c *Connection) Read(ctx context.Context) (domain.Frame, error) {
	frame, err := c.transport.Read(ctx)
	if err != nil {
		return domain.Frame{}, err
	}
	c.session.TouchRead()
	return frame, nil
}

func (c *Connection) Close(reason string) {
	_ = c.transport.Close(1000, reason)
}
