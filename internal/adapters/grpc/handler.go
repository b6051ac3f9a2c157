package grpc

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/quentinrf/darkwatt/internal/broadcast"
	"github.com/quentinrf/darkwatt/internal/domain"
	"github.com/quentinrf/darkwatt/internal/messaging"
)

// LuminanceServiceHandler implements the gRPC LuminanceService
type LuminanceServiceHandler struct {
	dispatcher *messaging.Dispatcher
	hub        *broadcast.Hub
}

// NewLuminanceServiceHandler creates a new gRPC handler
func NewLuminanceServiceHandler(dispatcher *messaging.Dispatcher, hub *broadcast.Hub) *LuminanceServiceHandler {
	return &LuminanceServiceHandler{
		dispatcher: dispatcher,
		hub:        hub,
	}
}

// Handle dispatches one unary request
func (h *LuminanceServiceHandler) Handle(ctx context.Context, req messaging.Request) (messaging.Response, error) {
	name := fmt.Sprintf("%T", req)
	log.Debug().Str("request", name).Msg("request received")

	resp, err := h.dispatcher.Dispatch(ctx, req)
	if err != nil {
		st := toStatus(err)
		if st.Code() == codes.Internal {
			log.Error().Err(err).Str("request", name).Msg("request failed")
		} else {
			log.Warn().Err(err).Str("request", name).Msg("request rejected")
		}
		return nil, st.Err()
	}
	return resp, nil
}

// Subscribe streams every published Changes until the client goes away
func (h *LuminanceServiceHandler) Subscribe(req *SubscribeRequest, stream grpc.ServerStream) error {
	sub := h.hub.Subscribe()
	defer h.hub.Unsubscribe(sub.ID)

	log.Info().Str("subscriber", sub.ID).Msg("change stream opened")
	defer log.Info().Str("subscriber", sub.ID).Msg("change stream closed")

	ctx := stream.Context()
	for {
		select {
		case <-ctx.Done():
			return nil
		case changes, ok := <-sub.C:
			if !ok {
				return status.Error(codes.Unavailable, "server shutting down")
			}
			if err := stream.SendMsg(&changes); err != nil {
				return err
			}
		}
	}
}

// toStatus maps domain and protocol errors onto gRPC codes
func toStatus(err error) *status.Status {
	switch {
	case errors.Is(err, messaging.ErrUnknownRequest),
		errors.Is(err, messaging.ErrInvalidRequest),
		errors.Is(err, domain.ErrInvalidRange),
		errors.Is(err, domain.ErrInvalidLuminance):
		return status.New(codes.InvalidArgument, err.Error())
	case errors.Is(err, domain.ErrSampleNotFound):
		return status.New(codes.NotFound, err.Error())
	case errors.Is(err, context.Canceled):
		return status.New(codes.Canceled, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.New(codes.DeadlineExceeded, err.Error())
	default:
		return status.New(codes.Internal, "internal error")
	}
}
