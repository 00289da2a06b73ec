package openrouter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
)

// Catalogue filters accepted by FilterModels.
const (
	FilterFree = "free"
	FilterPaid = "paid"
	FilterAll  = "all"
)

// ErrUnknownFilter is returned by FilterModels for anything but free, paid or all.
var ErrUnknownFilter = errors.New("openrouter: filter must be free, paid or all")

// ListModels fetches the provider's model catalogue from GET /models.
func (c *Client) ListModels(ctx context.Context) ([]RemoteModel, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/models", nil)
	if err != nil {
		return nil, fmt.Errorf("openrouter: build request: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("openrouter: list models: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("openrouter: list models: status=%d, read body: %w", resp.StatusCode, err)
		}
		return nil, fmt.Errorf("openrouter: list models: status=%d body=%s", resp.StatusCode, string(b))
	}

	var out modelsResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("openrouter: decode models: %w", err)
	}
	c.log.WithField("count", len(out.Data)).Debug("Fetched model catalogue")
	return out.Data, nil
}

// FilterModels keeps the models matching filter, sorted by ID.
func FilterModels(all []RemoteModel, filter string) ([]RemoteModel, error) {
	var keep func(RemoteModel) bool
	switch filter {
	case FilterAll:
		keep = func(RemoteModel) bool { return true }
	case FilterFree:
		keep = RemoteModel.Free
	case FilterPaid:
		keep = func(m RemoteModel) bool { return !m.Free() }
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFilter, filter)
	}

	out := make([]RemoteModel, 0, len(all))
	for _, m := range all {
		if keep(m) {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}
