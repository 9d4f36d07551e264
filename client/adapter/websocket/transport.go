package adapterwebsocket

import (
	"context"
	"fmt"
	"net/http"

	"github.com/coder/websocket"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/Nzm15/battle-arena-main/domain"
)

// 状態スナップショットは大きくなりうるので既定の32KiBより広く取る
const readLimit = 1 << 20

type wsTransport struct {
	conn *websocket.Conn
}

func NewTransportFrom(conn *websocket.Conn) domain.Transport {
	conn.SetReadLimit(readLimit)
	return &wsTransport{conn: conn}
}

func (t *wsTransport) Read(ctx context.Context) (domain.Frame, error) {
	typ, data, err := t.conn.Read(ctx)
	if err != nil {
		return domain.Frame{}, err
	}
	kind := domain.FrameText
	if typ == websocket.MessageBinary {
		kind = domain.FrameBinary
	}
	return domain.Frame{Kind: kind, Data: data}, nil
}

func (t *wsTransport) Write(ctx context.Context, frame domain.Frame) error {
	typ := websocket.MessageText
	if frame.Kind == domain.FrameBinary {
		typ = websocket.MessageBinary
	}
	return t.conn.Write(ctx, typ, frame.Data)
}

func (t *wsTransport) Close(code int32, reason string) error {
	return t.conn.Close(websocket.StatusCode(code), reason)
}

// Dialer は coder/websocket でゲームサーバーに接続します。
type Dialer struct {
	client *http.Client
	header http.Header
}

type DialerOption func(*Dialer)

// WithBearerToken はハンドシェイク時に Authorization ヘッダーを付与します。
func WithBearerToken(token string) DialerOption {
	return func(d *Dialer) {
		if token != "" {
			d.header.Set("Authorization", "Bearer "+token)
		}
	}
}

func WithHTTPClient(client *http.Client) DialerOption {
	return func(d *Dialer) {
		d.client = client
	}
}

// NewDialer はハンドシェイクをOpenTelemetryで計測するHTTPクライアントを使う Dialer を返します。
func NewDialer(opts ...DialerOption) *Dialer {
	d := &Dialer{
		// Timeout を設定するとアップグレード後の接続まで切られるので0のままにする
		client: &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)},
		header: http.Header{},
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

var _ domain.Dialer = (*Dialer)(nil)

func (d *Dialer) Dial(ctx context.Context, url string) (domain.Transport, error) {
	conn, _, err := websocket.Dial(ctx, url, &websocket.DialOptions{
		HTTPClient: d.client,
		HTTPHeader: d.header.Clone(),
	})
	if err != nil {
		return nil, fmt.Errorf("websocket dial: %w", err)
	}
	return NewTransportFrom(conn), nil
}
