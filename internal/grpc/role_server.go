package grpcserver

import (
	"context"
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"orderingRoles/internal/auth"
	"orderingRoles/internal/role"
	"orderingRoles/models"
	"orderingRoles/repository"
)

const (
	maxPageSize     = 100 // Maximum allowed page size for ListUsers.
	defaultPageSize = 20  // Default page size for ListUsers.
)

// Server bundles dependencies and implements roles.v1.RoleService.
type Server struct {
	Users    repository.UserRepositoryI
	Resolver *role.Resolver
	Issuer   *auth.Issuer
	Verifier *auth.IDTokenVerifier
	Now      func() time.Time
	Logger   log.Logger
}

var _ RoleServiceServer = (*Server)(nil)

func (s *Server) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now().UTC()
}

func (s *Server) logger() log.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return log.NewNopLogger()
}

// SignIn exchanges an identity-provider ID token for a session token.
// The email comes from the verified token, never from the caller.
func (s *Server) SignIn(ctx context.Context, req *wrapperspb.StringValue) (*structpb.Struct, error) {
	raw := strings.TrimSpace(req.GetValue())
	if raw == "" {
		return nil, status.Error(codes.InvalidArgument, "id_token is required")
	}
	email, err := s.Verifier.Verify(raw)
	if err != nil {
		level.Warn(s.logger()).Log("msg", "sign-in rejected", "err", err)
		return nil, status.Errorf(codes.Unauthenticated, "invalid id token: %v", err)
	}
	local := role.ExtractLocalPart(email)
	r := s.Resolver.Resolve(local)

	if _, err := s.Users.Upsert(ctx, email, local, r); err != nil {
		return nil, status.Errorf(codes.Internal, "record user: %v", err)
	}
	token, exp, err := s.Issuer.Issue(email, r, s.now())
	if err != nil {
		return nil, status.Errorf(codes.Internal, "issue token: %v", err)
	}
	level.Info(s.logger()).Log("msg", "signed in", "local_part", local, "role", r)

	return structpb.NewStruct(map[string]any{
		"token":      token,
		"role":       r,
		"local_part": local,
		"expires_at": exp.UTC().Format(time.RFC3339),
	})
}

// ResolveRole resolves the role for an arbitrary address. It never fails on content.
func (s *Server) ResolveRole(ctx context.Context, req *wrapperspb.StringValue) (*structpb.Struct, error) {
	if _, err := auth.RequirePrincipal(ctx); err != nil {
		return nil, err
	}
	local := role.ExtractLocalPart(req.GetValue())
	return structpb.NewStruct(map[string]any{
		"local_part": local,
		"role":       s.Resolver.Resolve(local),
	})
}

// WhoAmI reports the caller's identity with the role recomputed from the current allow-list.
func (s *Server) WhoAmI(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	p, err := auth.RequirePrincipal(ctx)
	if err != nil {
		return nil, err
	}
	r := s.Resolver.Resolve(p.Name)
	u, err := s.Users.Upsert(ctx, p.Email, p.Name, r)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "record user: %v", err)
	}
	return structpb.NewStruct(userFields(u))
}

// ListUsers returns one page of recorded users ordered by id. Admin only.
// The request may carry page_size (capped at maxPageSize) and page_token;
// the response holds users and next_page_token, empty on the last page.
func (s *Server) ListUsers(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if _, err := auth.RequireAdmin(ctx, s.Resolver); err != nil {
		return nil, err
	}
	fields := req.GetFields()
	size := int(fields["page_size"].GetNumberValue())
	if size <= 0 {
		size = defaultPageSize
	}
	if size > maxPageSize {
		size = maxPageSize
	}
	offset := 0
	if tok := strings.TrimSpace(fields["page_token"].GetStringValue()); tok != "" {
		o, err := decodeOffset(tok)
		if err != nil {
			return nil, status.Errorf(codes.InvalidArgument, "invalid page_token: %v", err)
		}
		offset = o
	}

	// One extra row tells whether another page exists.
	list, err := s.Users.List(ctx, size+1, offset)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "list users: %v", err)
	}
	next := ""
	if len(list) > size {
		list = list[:size]
		next = encodeOffset(offset + size)
	}
	users := make([]any, 0, len(list))
	for i := range list {
		users = append(users, userFields(&list[i]))
	}
	return structpb.NewStruct(map[string]any{
		"users":           users,
		"next_page_token": next,
	})
}

// ListAdmins returns the allow-list in configured order. Admin only.
func (s *Server) ListAdmins(ctx context.Context, _ *emptypb.Empty) (*structpb.ListValue, error) {
	if _, err := auth.RequireAdmin(ctx, s.Resolver); err != nil {
		return nil, err
	}
	admins := s.Resolver.Admins()
	out := make([]any, len(admins))
	for i, a := range admins {
		out[i] = a
	}
	return structpb.NewList(out)
}

func userFields(u *models.User) map[string]any {
	return map[string]any{
		"id":         u.ID,
		"email":      u.Email,
		"local_part": u.Username,
		"role":       u.Role,
		"last_seen":  u.LastSeen,
	}
}

// encodeOffset builds an opaque page token.
func encodeOffset(offset int) string {
	return base64.RawURLEncoding.EncodeToString([]byte(strconv.Itoa(offset)))
}

// decodeOffset parses a page token from encodeOffset.
func decodeOffset(token string) (int, error) {
	b, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return 0, fmt.Errorf("base64: %w", err)
	}
	o, err := strconv.Atoi(string(b))
	if err != nil {
		return 0, fmt.Errorf("parse offset: %w", err)
	}
	if o < 0 {
		return 0, fmt.Errorf("negative offset")
	}
	return o, nil
}
