package ipc

import (
	"context"

	"github.com/1broseidon/readsplit/internal/platform"
	"github.com/1broseidon/readsplit/internal/reader"
)

// Remote serves the Coordinator interface by forwarding to a running
// daemon, so callers can drive either the daemon or an in-process
// coordinator. Deadlines come from the client timeout, not ctx.
type Remote struct {
	client *Client
}

func NewRemote(client *Client) *Remote {
	return &Remote{client: client}
}

func (r *Remote) Arrange(ctx context.Context, path string) (reader.ArrangeResult, error) {
	res, err := r.client.Arrange(path)
	if err != nil {
		return reader.ArrangeResult{}, err
	}
	return *res, nil
}

func (r *Remote) Scroll(ctx context.Context, req reader.ScrollRequest) error {
	return r.client.Scroll(ScrollPayload{
		Direction: string(req.Direction),
		Speed:     req.Speed,
		Reverse:   req.Reverse,
	})
}

func (r *Remote) Capture(ctx context.Context, path string, reveal bool) (string, error) {
	return r.client.Capture(path, reveal)
}

func (r *Remote) Status() (reader.Status, error) {
	st, err := r.client.GetStatus()
	if err != nil {
		return reader.Status{}, err
	}
	return st.Status, nil
}

func (r *Remote) Displays(ctx context.Context) ([]platform.DisplayInfo, error) {
	d, err := r.client.GetDisplays()
	if err != nil {
		return nil, err
	}
	return d.Displays, nil
}
