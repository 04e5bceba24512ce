package client

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// UserDetails mirrors the user service's internal lookup contract.
type UserDetails struct {
	ID       uuid.UUID `json:"id"`
	Username string    `json:"username"`
	Role     string    `json:"role"`
}

type UserClient interface {
	Get(ctx context.Context, id uuid.UUID) (*UserDetails, error)
}

type userClient struct {
	internal *Internal
}

func NewUserClient(baseURL, token string, timeout time.Duration, log *zap.Logger) UserClient {
	return &userClient{
		internal: NewInternal(baseURL, token, timeout, log.With(zap.String("peer", "user"))),
	}
}

func (c *userClient) Get(ctx context.Context, id uuid.UUID) (*UserDetails, error) {
	var user UserDetails
	path := fmt.Sprintf("/internal/user/%s", id.String())
	if err := c.internal.do(ctx, http.MethodGet, path, nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}
