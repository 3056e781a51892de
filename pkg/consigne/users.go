package consigne

import (
	"context"
	"net/http"
)

func (c *Client) Authenticate(ctx context.Context, username, password string) (AuthResult, error) {
	const op = "authenticate"

	env, err := call[AuthResult](ctx, c, op, http.MethodPost, AuthRequest{Username: username, Password: password}, "auth_provider")
	if err != nil {
		return AuthResult{}, err
	}

	return payload(op, env)
}

// SearchUser runs the backend fuzzy search on members.
func (c *Client) SearchUser(ctx context.Context, input string) ([]UserTuple, error) {
	const op = "search_user"

	env, err := call[SearchUserResponse](ctx, c, op, http.MethodPost, SearchUserRequest{Input: input}, "search-user")
	if err != nil {
		return nil, err
	}

	data, err := payload(op, env)
	if err != nil {
		return nil, err
	}

	return data.Matches, nil
}

// GetShiftsUsers lists the members of the current shifts.
func (c *Client) GetShiftsUsers(ctx context.Context) ([]UserTuple, error) {
	const op = "get_shifts_users"

	env, err := call[ShiftsUsersResponse](ctx, c, op, http.MethodGet, nil, "get-shifts-users")
	if err != nil {
		return nil, err
	}

	data, err := payload(op, env)
	if err != nil {
		return nil, err
	}

	return data.Users, nil
}
