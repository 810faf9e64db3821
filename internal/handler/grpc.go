package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/MikhailRaia/slug-shortener/internal/model"
	"github.com/MikhailRaia/slug-shortener/internal/proto"
	"github.com/MikhailRaia/slug-shortener/internal/service"
	"github.com/MikhailRaia/slug-shortener/internal/storage"
)

// ShortenerGRPCServer exposes the link service over gRPC. Unlike the HTTP
// API it reports each failure kind with its own status code.
type ShortenerGRPCServer struct {
	proto.UnimplementedShortLinkServiceServer
	linkService LinkService
}

func NewShortenerGRPCServer(linkService LinkService) *ShortenerGRPCServer {
	return &ShortenerGRPCServer{
		linkService: linkService,
	}
}

func (s *ShortenerGRPCServer) Health(_ context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	return structpb.NewStruct(map[string]interface{}{"status": http.StatusOK})
}

func (s *ShortenerGRPCServer) Resolve(ctx context.Context, req *wrapperspb.StringValue) (*wrapperspb.StringValue, error) {
	link, err := s.linkService.Resolve(ctx, req.GetValue())
	if err != nil {
		return nil, grpcError(err)
	}

	if link == nil {
		return nil, status.Error(codes.NotFound, "Unable to find url")
	}

	return wrapperspb.String(link.Dest), nil
}

func (s *ShortenerGRPCServer) Create(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var createReq model.CreateRequest

	fields := req.GetFields()
	for name, dst := range map[string]*json.RawMessage{"dest": &createReq.Dest, "slug": &createReq.Slug} {
		v, ok := fields[name]
		if !ok {
			continue
		}
		raw, err := v.MarshalJSON()
		if err != nil {
			return nil, status.Errorf(codes.InvalidArgument, "%s: %v", name, err)
		}
		*dst = raw
	}

	created, err := s.linkService.Create(ctx, createReq)
	if err != nil {
		return nil, grpcError(err)
	}

	return structpb.NewStruct(map[string]interface{}{
		"_id":        created.ID,
		"slug":       created.Slug,
		"dest":       created.Dest,
		"created_at": created.CreatedAt.Format(time.RFC3339Nano),
	})
}

func grpcError(err error) error {
	var vErr *service.ValidationError
	switch {
	case errors.As(err, &vErr):
		return status.Error(codes.InvalidArgument, vErr.Error())
	case errors.Is(err, storage.ErrDuplicateKey):
		return status.Error(codes.AlreadyExists, ErrSlugInUse.Error())
	case errors.Is(err, storage.ErrUnavailable):
		return status.Error(codes.Unavailable, err.Error())
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	default:
		return status.Errorf(codes.Internal, "failed to process request: %v", err)
	}
}
