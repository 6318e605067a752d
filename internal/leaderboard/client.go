package leaderboard

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	errorsmod "cosmossdk.io/errors"
)

// Client forwards counter updates to a remote leaderboard service. It
// satisfies Tracker so the façade does not care whether counters live in
// the local Store or behind HTTP.
type Client struct {
	base string
	http *http.Client
}

func NewHTTPClient(base string) *Client {
	return &Client{
		base: base,
		http: &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *Client) post(path string) error {
	resp, err := c.http.Post(c.base+path, "application/json", nil)
	if err != nil {
		return errorsmod.Wrap(ErrUnavailable, err.Error())
	}
	defer resp.Body.Close()
	switch resp.StatusCode {
	case http.StatusOK, http.StatusCreated:
		return nil
	case http.StatusNotFound:
		return errorsmod.Wrapf(ErrUnknownUser, "POST %s", path)
	default:
		return errorsmod.Wrapf(ErrUnavailable, "POST %s: status %d", path, resp.StatusCode)
	}
}

func (c *Client) GameStarted(userID string) error {
	return c.post(fmt.Sprintf("/new_game/%s", userID))
}

func (c *Client) GameWon(userID string) error {
	return c.post(fmt.Sprintf("/won_game/%s", userID))
}

func (c *Client) Rows() ([]Row, error) {
	resp, err := c.http.Get(c.base + "/leaderboard")
	if err != nil {
		return nil, errorsmod.Wrap(ErrUnavailable, err.Error())
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, errorsmod.Wrapf(ErrUnavailable, "GET /leaderboard: status %d", resp.StatusCode)
	}
	var rows []Row
	if err := json.NewDecoder(resp.Body).Decode(&rows); err != nil {
		return nil, errorsmod.Wrap(ErrUnavailable, err.Error())
	}
	return rows, nil
}
