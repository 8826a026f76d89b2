package grpcserver

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-kit/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"orderingRoles/internal/auth"
	"orderingRoles/internal/role"
	"orderingRoles/internal/testutil"
	"orderingRoles/models"
	"orderingRoles/repository"
)

const (
	testSecret    = "test-secret"
	testIDPSecret = "test-idp-secret"
	testIssuer    = "https://idp.example.com"
)

var fixedNow = time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)

func newTestServer(t *testing.T, name string) *Server {
	t.Helper()
	d := testutil.OpenInMemoryDB(t, name)
	return &Server{
		Users:    repository.NewUserRepository(d),
		Resolver: role.NewDefaultResolver(),
		Issuer:   auth.NewIssuer(testSecret, time.Hour),
		Verifier: auth.NewIDTokenVerifier(testIDPSecret, testIssuer),
		Now:      func() time.Time { return fixedNow },
		Logger:   log.NewNopLogger(),
	}
}

func idToken(t *testing.T, email string) string {
	t.Helper()
	return testutil.GenerateIDToken(t, testIDPSecret, testIssuer, email, time.Now().Add(time.Hour), nil)
}

func asPrincipal(email, r string) context.Context {
	return auth.WithPrincipal(context.Background(), &auth.Principal{
		Email: email,
		Name:  role.ExtractLocalPart(email),
		Role:  r,
	})
}

func TestServer_SignIn(t *testing.T) {
	s := newTestServer(t, "grpcsignin")

	tests := []struct {
		name      string
		token     string
		email     string
		wantCode  codes.Code
		wantRole  string
		wantLocal string
	}{
		{name: "empty token", token: "  ", wantCode: codes.InvalidArgument},
		{name: "bare email", token: "tsubasa@attacker.invalid", wantCode: codes.Unauthenticated},
		{name: "forged token", token: testutil.GenerateIDToken(t, "forged", testIssuer, "tsubasa@example.com", time.Now().Add(time.Hour), nil), wantCode: codes.Unauthenticated},
		{name: "session token", token: testutil.GenerateJWTHS256(t, testSecret, "tsubasa@example.com", role.Admin, time.Now().Add(time.Hour)), wantCode: codes.Unauthenticated},
		{name: "allow-listed", token: idToken(t, "tsubasa@example.com"), email: "tsubasa@example.com", wantRole: role.Admin, wantLocal: "tsubasa"},
		{name: "regular user", token: idToken(t, "random.user@example.com"), email: "random.user@example.com", wantRole: "random.user", wantLocal: "random.user"},
		{name: "no at sign", token: idToken(t, "guest"), email: "guest", wantRole: role.Admin, wantLocal: "guest"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := s.SignIn(context.Background(), wrapperspb.String(tt.token))
			if tt.wantCode != codes.OK {
				assert.Equal(t, tt.wantCode, status.Code(err))
				return
			}
			require.NoError(t, err)
			f := resp.GetFields()
			assert.Equal(t, tt.wantRole, f["role"].GetStringValue())
			assert.Equal(t, tt.wantLocal, f["local_part"].GetStringValue())
			assert.Equal(t, fixedNow.Add(time.Hour).Format(time.RFC3339), f["expires_at"].GetStringValue())
			assert.NotEmpty(t, f["token"].GetStringValue())

			u, err := s.Users.GetByEmail(context.Background(), tt.email)
			require.NoError(t, err)
			require.NotNil(t, u)
			assert.Equal(t, tt.wantRole, u.Role)
		})
	}

	t.Run("nil request", func(t *testing.T) {
		_, err := s.SignIn(context.Background(), nil)
		assert.Equal(t, codes.InvalidArgument, status.Code(err))
	})

	t.Run("rejected sign-ins record nobody", func(t *testing.T) {
		u, err := s.Users.GetByEmail(context.Background(), "tsubasa@attacker.invalid")
		require.NoError(t, err)
		assert.Nil(t, u)
	})
}

func TestServer_ResolveRole(t *testing.T) {
	s := newTestServer(t, "grpcresolve")

	_, err := s.ResolveRole(context.Background(), wrapperspb.String("a@b"))
	assert.Equal(t, codes.Unauthenticated, status.Code(err))

	ctx := asPrincipal("random.user@example.com", "random.user")
	cases := map[string][2]string{
		"tsubasa@example.com":     {"tsubasa", role.Admin},
		"random.user@example.com": {"random.user", "random.user"},
		"nobody":                  {"nobody", "nobody"},
		"":                        {"", ""},
	}
	for in, want := range cases {
		resp, err := s.ResolveRole(ctx, wrapperspb.String(in))
		require.NoError(t, err, in)
		assert.Equal(t, want[0], resp.GetFields()["local_part"].GetStringValue(), in)
		assert.Equal(t, want[1], resp.GetFields()["role"].GetStringValue(), in)
	}
}

func TestServer_WhoAmI_RecomputesRole(t *testing.T) {
	s := newTestServer(t, "grpcwhoami")

	// Token issued when alice was admin; the live allow-list does not list her.
	resp, err := s.WhoAmI(asPrincipal("alice@example.com", role.Admin), &emptypb.Empty{})
	require.NoError(t, err)
	assert.Equal(t, "alice", resp.GetFields()["role"].GetStringValue())
	assert.Equal(t, "alice@example.com", resp.GetFields()["email"].GetStringValue())

	resp, err = s.WhoAmI(asPrincipal("test@example.com", "test"), &emptypb.Empty{})
	require.NoError(t, err)
	assert.Equal(t, role.Admin, resp.GetFields()["role"].GetStringValue())
}

func TestServer_AdminOnly(t *testing.T) {
	s := newTestServer(t, "grpcadminonly")
	_, err := s.SignIn(context.Background(), wrapperspb.String(idToken(t, "bob@example.com")))
	require.NoError(t, err)

	_, err = s.ListUsers(asPrincipal("bob@example.com", "bob"), nil)
	assert.Equal(t, codes.PermissionDenied, status.Code(err))
	_, err = s.ListAdmins(asPrincipal("bob@example.com", role.Admin), &emptypb.Empty{})
	assert.Equal(t, codes.PermissionDenied, status.Code(err))

	adminCtx := asPrincipal("admin@example.com", role.Admin)
	resp, err := s.ListUsers(adminCtx, nil)
	require.NoError(t, err)
	users := resp.GetFields()["users"].GetListValue().GetValues()
	require.Len(t, users, 1)
	assert.Equal(t, "bob@example.com", users[0].GetStructValue().GetFields()["email"].GetStringValue())
	assert.Empty(t, resp.GetFields()["next_page_token"].GetStringValue())

	admins, err := s.ListAdmins(adminCtx, &emptypb.Empty{})
	require.NoError(t, err)
	var names []string
	for _, v := range admins.GetValues() {
		names = append(names, v.GetStringValue())
	}
	assert.Equal(t, role.DefaultAdmins(), names)
}

type failingUsers struct {
	repository.UserRepositoryI
}

func (failingUsers) Upsert(context.Context, string, string, string) (*models.User, error) {
	return nil, errors.New("disk full")
}

func TestServer_SignIn_StorageError(t *testing.T) {
	s := newTestServer(t, "grpcsigninerr")
	s.Users = failingUsers{}
	_, err := s.SignIn(context.Background(), wrapperspb.String(idToken(t, "bob@example.com")))
	assert.Equal(t, codes.Internal, status.Code(err))
}

func TestServer_ListUsers_Pagination(t *testing.T) {
	s := newTestServer(t, "grpclistpages")
	ctx := context.Background()
	for _, email := range []string{"a@example.com", "b@example.com", "c@example.com", "d@example.com", "e@example.com"} {
		_, err := s.Users.Upsert(ctx, email, role.ExtractLocalPart(email), role.ExtractLocalPart(email))
		require.NoError(t, err)
	}
	adminCtx := asPrincipal("admin@example.com", role.Admin)

	var got []string
	token := ""
	for page := 0; page < 5; page++ {
		req, err := structpb.NewStruct(map[string]any{"page_size": 2, "page_token": token})
		require.NoError(t, err)
		resp, err := s.ListUsers(adminCtx, req)
		require.NoError(t, err)
		for _, v := range resp.GetFields()["users"].GetListValue().GetValues() {
			got = append(got, v.GetStructValue().GetFields()["email"].GetStringValue())
		}
		token = resp.GetFields()["next_page_token"].GetStringValue()
		if token == "" {
			break
		}
	}
	assert.Equal(t, []string{"a@example.com", "b@example.com", "c@example.com", "d@example.com", "e@example.com"}, got)

	bad, err := structpb.NewStruct(map[string]any{"page_token": "!!not-a-token"})
	require.NoError(t, err)
	_, err = s.ListUsers(adminCtx, bad)
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestOffsetToken(t *testing.T) {
	o, err := decodeOffset(encodeOffset(40))
	require.NoError(t, err)
	assert.Equal(t, 40, o)

	_, err = decodeOffset(encodeOffset(-1))
	assert.Error(t, err)
}
