package auth

import (
	"context"

	"github.com/pkg/errors"
)

const (
	XUserNameHeader = "X-User-Name"
	XUserRoleHeader = "X-User-Role"
)

type (
	userNameKey struct{}
	userRoleKey struct{}
)

var (
	ErrNoUserName = errors.New("user-name is empty")
	ErrNoUserRole = errors.New("user-role is empty")
)

func SetAuthContext(ctx context.Context, userName, role string) context.Context {
	ctx = context.WithValue(ctx, userNameKey{}, userName)
	return context.WithValue(ctx, userRoleKey{}, role)
}

func GetUserName(ctx context.Context) (string, error) {
	name, ok := ctx.Value(userNameKey{}).(string)
	if !ok || name == "" {
		return "", ErrNoUserName
	}
	return name, nil
}

func GetUserRole(ctx context.Context) (string, error) {
	role, ok := ctx.Value(userRoleKey{}).(string)
	if !ok || role == "" {
		return "", ErrNoUserRole
	}
	return role, nil
}
