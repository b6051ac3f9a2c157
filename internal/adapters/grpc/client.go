package grpc

import (
	"context"
	"fmt"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"

	"github.com/quentinrf/darkwatt/internal/domain"
	"github.com/quentinrf/darkwatt/internal/messaging"
)

// Client is a typed LuminanceService client.
type Client struct {
	conn *grpc.ClientConn
}

// Dial connects to addr. Pass insecure.NewCredentials() for plaintext.
func Dial(addr string, creds credentials.TransportCredentials) (*Client, error) {
	conn, err := grpc.NewClient(addr,
		grpc.WithTransportCredentials(creds),
		grpc.WithDefaultCallOptions(grpc.CallContentSubtype(codecName)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}
	return &Client{conn: conn}, nil
}

// Close closes the connection.
func (c *Client) Close() error {
	return c.conn.Close()
}

func invoke[Resp any](ctx context.Context, c *Client, method string, req messaging.Request) (*Resp, error) {
	out := new(Resp)
	if err := c.conn.Invoke(ctx, fullMethod(method), req, out, grpc.CallContentSubtype(codecName)); err != nil {
		return nil, err
	}
	return out, nil
}

// GetData fetches the full current state.
func (c *Client) GetData(ctx context.Context) (*messaging.DataResponse, error) {
	return invoke[messaging.DataResponse](ctx, c, "GetData", messaging.GetData{})
}

// GetLatest fetches the newest sample.
func (c *Client) GetLatest(ctx context.Context) (*messaging.LatestResponse, error) {
	return invoke[messaging.LatestResponse](ctx, c, "GetLatest", messaging.GetLatest{})
}

// GetRangeAverage averages samples over [start, end).
func (c *Client) GetRangeAverage(ctx context.Context, start, end time.Time) (*messaging.AverageResponse, error) {
	return invoke[messaging.AverageResponse](ctx, c, "GetRangeAverage", messaging.GetRangeAverage{Start: start, End: end})
}

// GetDayAverage averages one calendar day given as YYYY-MM-DD.
func (c *Client) GetDayAverage(ctx context.Context, date string) (*messaging.AverageResponse, error) {
	return invoke[messaging.AverageResponse](ctx, c, "GetDayAverage", messaging.GetDayAverage{Date: date})
}

// GetHistory fetches samples over [start, end) with statistics.
func (c *Client) GetHistory(ctx context.Context, start, end time.Time) (*messaging.HistoryResponse, error) {
	return invoke[messaging.HistoryResponse](ctx, c, "GetHistory", messaging.GetHistory{Start: start, End: end})
}

// GetTotalTrackedSites counts distinct sampled surfaces.
func (c *Client) GetTotalTrackedSites(ctx context.Context) (*messaging.CountResponse, error) {
	return invoke[messaging.CountResponse](ctx, c, "GetTotalTrackedSites", messaging.GetTotalTrackedSites{})
}

// FocusChanged reports the focused surface; "" clears it.
func (c *Client) FocusChanged(ctx context.Context, source string) error {
	_, err := invoke[messaging.Ack](ctx, c, "FocusChanged", messaging.FocusChanged{Source: source})
	return err
}

// ReportTheme reports a page's theme verdict.
func (c *Client) ReportTheme(ctx context.Context, source string, mode domain.ThemeMode) error {
	_, err := invoke[messaging.Ack](ctx, c, "ReportTheme", messaging.ReportTheme{Source: source, Mode: mode})
	return err
}

// ClassifyDocument classifies raw HTML on the server.
func (c *Client) ClassifyDocument(ctx context.Context, req messaging.ClassifyDocument) (*messaging.ThemeResponse, error) {
	return invoke[messaging.ThemeResponse](ctx, c, "ClassifyDocument", req)
}

// LoadConfig asks the server to reload its configuration.
func (c *Client) LoadConfig(ctx context.Context) error {
	_, err := invoke[messaging.Ack](ctx, c, "LoadConfig", messaging.LoadConfig{})
	return err
}

// ChangeStream receives Changes from a Subscribe call.
type ChangeStream struct {
	stream grpc.ClientStream
}

// Recv blocks for the next update.
func (s *ChangeStream) Recv() (*domain.Changes, error) {
	changes := new(domain.Changes)
	if err := s.stream.RecvMsg(changes); err != nil {
		return nil, err
	}
	return changes, nil
}

// Subscribe opens a change stream that lives as long as ctx.
func (c *Client) Subscribe(ctx context.Context) (*ChangeStream, error) {
	stream, err := c.conn.NewStream(ctx, &ServiceDesc.Streams[0], fullMethod("Subscribe"), grpc.CallContentSubtype(codecName))
	if err != nil {
		return nil, err
	}
	if err := stream.SendMsg(&SubscribeRequest{}); err != nil {
		return nil, err
	}
	if err := stream.CloseSend(); err != nil {
		return nil, err
	}
	return &ChangeStream{stream: stream}, nil
}
