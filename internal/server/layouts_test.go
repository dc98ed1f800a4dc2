package server

import (
	"context"
	"log/slog"
	"net"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/joseph-ayodele/bankfiles/internal/common"
	"github.com/joseph-ayodele/bankfiles/internal/layout"
	"github.com/joseph-ayodele/bankfiles/internal/repository"
	"github.com/joseph-ayodele/bankfiles/internal/services/layouts"
)

type stubRenderer struct {
	pdf []byte
	err error
}

func (s stubRenderer) Render(context.Context, uuid.UUID, uuid.UUID) ([]byte, error) {
	return s.pdf, s.err
}

func line(n int, puts map[int]string) string {
	b := []byte(strings.Repeat(" ", n))
	for pos, v := range puts {
		copy(b[pos-1:], v)
	}
	return string(b)
}

func sample240() string {
	return strings.Join([]string{
		line(240, map[int]string{1: "00100000"}),
		line(240, map[int]string{1: "00100011"}),
		line(240, map[int]string{1: "00100013", 14: "P", 78: "15032025", 86: "000000000015050"}),
		line(240, map[int]string{1: "00100013", 14: "Q", 34: "FULANO DE TAL"}),
		line(240, map[int]string{1: "00100015"}),
		line(240, map[int]string{1: "00199999"}),
	}, "\n")
}

func newServer(t *testing.T, r SlipRenderer) *LayoutServer {
	t.Helper()
	ctx := context.Background()
	db, err := repository.OpenLocal(ctx, ":memory:", slog.Default())
	require.NoError(t, err)
	t.Cleanup(func() { repository.Close(db, slog.Default()) })
	require.NoError(t, repository.Migrate(ctx, db))
	l := layouts.NewService(repository.NewConfigurationRepository(db, nil), layout.NewCounter(), nil)
	return NewLayoutServer(l, r, nil)
}

func dial(t *testing.T, srv LayoutServiceServer) *grpc.ClientConn {
	t.Helper()
	lis := bufconn.Listen(1 << 20)
	gs := grpc.NewServer(grpc.UnaryInterceptor(RequestContextInterceptor(nil)))
	RegisterLayoutServiceServer(gs, srv)
	go func() { _ = gs.Serve(lis) }()
	t.Cleanup(gs.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func mustStruct(t *testing.T, m map[string]any) *structpb.Struct {
	t.Helper()
	s, err := structpb.NewStruct(m)
	require.NoError(t, err)
	return s
}

func TestLayoutServer_OverGRPC(t *testing.T) {
	conn := dial(t, newServer(t, stubRenderer{pdf: []byte("%PDF-1.3")}))
	ctx := metadata.AppendToOutgoingContext(context.Background(), MetadataBankID, "001", MetadataRequestID, "req-1")

	detected := new(structpb.Struct)
	require.NoError(t, conn.Invoke(ctx, FullMethod("DetectKind"), mustStruct(t, map[string]any{"content": sample240()}), detected))
	assert.Equal(t, "240", detected.GetFields()["kind"].GetStringValue())
	assert.Equal(t, float64(6), detected.GetFields()["lines"].GetNumberValue())

	generated := new(structpb.Struct)
	require.NoError(t, conn.Invoke(ctx, FullMethod("GenerateConfiguration"), mustStruct(t, map[string]any{
		"name": "bb", "content": sample240(), "persist": true, "make_default": true,
	}), generated))
	assert.Equal(t, "001", generated.GetFields()["bank_id"].GetStringValue())
	id := generated.GetFields()["id"].GetStringValue()
	require.NotEmpty(t, id)

	got := new(structpb.Struct)
	require.NoError(t, conn.Invoke(ctx, FullMethod("GetConfiguration"), mustStruct(t, map[string]any{}), got))
	assert.Equal(t, id, got.GetFields()["id"].GetStringValue())

	extracted := new(structpb.Struct)
	require.NoError(t, conn.Invoke(ctx, FullMethod("ExtractRecords"), mustStruct(t, map[string]any{"content": sample240()}), extracted))
	records := extracted.GetFields()["records"].GetListValue().GetValues()
	require.Len(t, records, 2)
	assert.Equal(t, "R$ 150,50", records[0].GetStructValue().GetFields()["valor"].GetStringValue())

	pdf := new(wrapperspb.BytesValue)
	require.NoError(t, conn.Invoke(ctx, FullMethod("RenderSlip"), mustStruct(t, map[string]any{
		"template_id": uuid.NewString(), "record_id": uuid.NewString(),
	}), pdf))
	assert.Equal(t, []byte("%PDF-1.3"), pdf.GetValue())
}

func TestLayoutServer_ErrorCodes(t *testing.T) {
	ctx := context.Background()
	srv := newServer(t, stubRenderer{err: common.NotFoundf("template %s", "x")})

	_, err := srv.GetConfiguration(ctx, mustStruct(t, map[string]any{"bank_id": "999"}))
	assert.Equal(t, codes.NotFound, status.Code(err))

	_, err = srv.GetConfiguration(ctx, mustStruct(t, map[string]any{"id": "nope"}))
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	_, err = srv.GenerateConfiguration(ctx, mustStruct(t, map[string]any{"bank_id": "001"}))
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	_, err = srv.RenderSlip(ctx, mustStruct(t, map[string]any{"template_id": "x"}))
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	_, err = srv.RenderSlip(ctx, mustStruct(t, map[string]any{"template_id": uuid.NewString(), "record_id": uuid.NewString()}))
	assert.Equal(t, codes.NotFound, status.Code(err))
}

func TestRequestContextInterceptor(t *testing.T) {
	icpt := RequestContextInterceptor(nil)
	ctx := metadata.NewIncomingContext(context.Background(), metadata.Pairs(MetadataBankID, "341"))

	var gotBank, gotReq string
	_, err := icpt(ctx, nil, &grpc.UnaryServerInfo{FullMethod: FullMethod("DetectKind")}, func(ctx context.Context, _ any) (any, error) {
		gotBank = common.BankIDFromContext(ctx)
		gotReq = common.RequestIDFromContext(ctx)
		return nil, nil
	})
	require.NoError(t, err)
	assert.Equal(t, "341", gotBank)
	_, perr := uuid.Parse(gotReq)
	assert.NoError(t, perr)
}

func TestLayoutServiceDesc(t *testing.T) {
	assert.Equal(t, ServiceName, LayoutServiceDesc.ServiceName)
	assert.Nil(t, LayoutServiceDesc.Metadata)
	var names []string
	for _, m := range LayoutServiceDesc.Methods {
		names = append(names, m.MethodName)
	}
	assert.Equal(t, []string{"DetectKind", "GenerateConfiguration", "GetConfiguration", "ExtractRecords", "RenderSlip"}, names)
}
