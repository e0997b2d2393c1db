package gateway

import (
	"context"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// Method names of the remote user service.
const (
	methodGetUser    = "/userservice.UserService/GetUser"
	methodCreateUser = "/userservice.UserService/CreateUser"
)

// UserServiceClient is the remote procedure surface the REST shim forwards
// to. Results come back as loose maps and are rendered to the response
// body unchanged.
type UserServiceClient interface {
	GetUser(ctx context.Context, id string) (map[string]any, error)
	CreateUser(ctx context.Context, id string) (map[string]any, error)
}

type grpcUserServiceClient struct {
	conn *grpc.ClientConn
}

// Dial opens a client connection to the user service. The connection is
// lazy; the remote does not need to be reachable at startup.
func Dial(addr string) (UserServiceClient, error) {
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("dial user service %q: %w", addr, err)
	}
	return &grpcUserServiceClient{conn: conn}, nil
}

func (c *grpcUserServiceClient) GetUser(ctx context.Context, id string) (map[string]any, error) {
	return c.invoke(ctx, methodGetUser, id)
}

func (c *grpcUserServiceClient) CreateUser(ctx context.Context, id string) (map[string]any, error) {
	return c.invoke(ctx, methodCreateUser, id)
}

// invoke performs one unary call. The request carries the id as string
// field 1, the wire layout of the service's UserRequest/CreateUserRequest
// messages; the reply is decoded as a generic struct.
func (c *grpcUserServiceClient) invoke(ctx context.Context, method, id string) (map[string]any, error) {
	reply := new(structpb.Struct)
	if err := c.conn.Invoke(ctx, method, wrapperspb.String(id), reply); err != nil {
		return nil, err
	}
	return reply.AsMap(), nil
}
