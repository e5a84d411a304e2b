package e2e

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"testing"
	"time"
	"touroku/repositories"

	"github.com/google/uuid"
	"github.com/gookit/color"
	"github.com/stretchr/testify/suite"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/proto"
)

const stepTimeout = 30 * time.Second

type BaseSuite struct {
	suite.Suite
	Config Config
}

// SetupSuite loads the environment configuration before running tests
func (s *BaseSuite) SetupSuite() {
	var err error
	s.Config, err = LoadConfig()
	s.Require().NoError(err)
}

// Header prints a colorized step title in the test logs
func (s *BaseSuite) Header(t *testing.T, name string) {
	header := fmt.Sprintf("  ====== %s ======", name)
	if s.Config.Colours {
		header = color.New(color.BgBlack, color.FgGreen).Render(header)
	}
	t.Log(header)
}

// WithStores runs fn once per configured live store.
// Mongo gets a throwaway collection, dropped afterwards.
func (s *BaseSuite) WithStores(name string, fn func(ctx context.Context, backend string, repo repositories.IRegistrationRepository)) {
	stores := 0
	if s.Config.MongoURL != "" {
		stores++
		s.Run("mongo", func() {
			s.Header(s.T(), name+" [mongo]")
			ctx, cancel := context.WithTimeout(context.Background(), stepTimeout)
			defer cancel()

			collection := "csn_data_" + strings.ReplaceAll(uuid.NewString(), "-", "")
			repo, err := repositories.OpenMongoRegistrationRepository(ctx, s.Config.MongoURL, s.Config.MongoDB, collection, slog.Default())
			s.Require().NoError(err)
			defer func() {
				_ = repo.Drop(context.Background())
				_ = repo.Close(context.Background())
			}()

			fn(ctx, "mongo", repo)
		})
	}
	if s.Config.RedisURL != "" {
		stores++
		s.Run("redis", func() {
			s.Header(s.T(), name+" [redis]")
			ctx, cancel := context.WithTimeout(context.Background(), stepTimeout)
			defer cancel()

			repo, err := repositories.OpenRedisRegistrationRepository(ctx, s.Config.RedisURL, slog.Default())
			s.Require().NoError(err)
			defer func() { _ = repo.Close(context.Background()) }()

			fn(ctx, "redis", repo)
		})
	}
	if stores == 0 {
		s.T().Skip("no live store configured, set E2E_MONGODB_URL or E2E_REDIS_URL")
	}
}

// GrpcConn initializes a gRPC connection with logging, colors, and JSON debugging
func (s *BaseSuite) GrpcConn(t *testing.T, name string, addr string) *grpc.ClientConn {
	s.Header(t, name)

	marshaler := protojson.MarshalOptions{
		UseProtoNames:   true,
		Multiline:       true,
		EmitUnpopulated: true,
	}

	conn, err := grpc.NewClient(addr,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithUnaryInterceptor(func(ctx context.Context, method string, req, reply interface{}, cc *grpc.ClientConn, invoker grpc.UnaryInvoker, opts ...grpc.CallOption) error {
			start := time.Now()
			err := invoker(ctx, method, req, reply, cc, opts...)

			logBuilder := strings.Builder{}
			fmt.Fprintf(&logBuilder, "GRPC %s [%s] in %v", method, status.Code(err), time.Since(start))

			// Log full JSON request/response bodies if E2E_DEBUG_JSON is enabled
			if s.Config.DebugJSON {
				fmt.Fprintln(&logBuilder, "\nREQUEST:")
				fmt.Fprintln(&logBuilder, marshaler.Format(req.(proto.Message)))
				if err != nil {
					fmt.Fprintln(&logBuilder, "ERROR:", err)
				} else {
					fmt.Fprintln(&logBuilder, "RESPONSE:")
					fmt.Fprintln(&logBuilder, marshaler.Format(reply.(proto.Message)))
				}
			}
			t.Log(logBuilder.String())
			return err
		}),
	)
	s.Require().NoError(err, "Failed to connect to gRPC server at "+addr)
	return conn
}

// WithHealth provides a health client on a running bot within a contextual test step
func (s *BaseSuite) WithHealth(name string, fn func(ctx context.Context, client healthpb.HealthClient)) {
	if s.Config.HealthAddr == "" {
		s.T().Skip("E2E_HEALTH_ADDR not set")
	}
	conn := s.GrpcConn(s.T(), name, s.Config.HealthAddr)
	defer conn.Close()

	ctx, cancel := context.WithTimeout(context.Background(), stepTimeout)
	defer cancel()

	fn(ctx, healthpb.NewHealthClient(conn))
}
