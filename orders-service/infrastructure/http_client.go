package infrastructure

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/draftea/order-system/orders-service/domain"
	"github.com/pkg/errors"
)

const maxErrorBody = 512

// jsonClient sends JSON requests to a collaborator service and maps
// response codes onto domain error kinds.
type jsonClient struct {
	service  string
	baseURL  string
	client   *http.Client
	rejected map[int]bool
}

func newJSONClient(service, baseURL string, timeout time.Duration, rejected ...int) *jsonClient {
	codes := make(map[int]bool, len(rejected))
	for _, code := range rejected {
		codes[code] = true
	}
	return &jsonClient{
		service:  service,
		baseURL:  strings.TrimRight(baseURL, "/"),
		client:   &http.Client{Timeout: timeout},
		rejected: codes,
	}
}

// do sends body as JSON and decodes a 2xx response into out when out is not nil
func (c *jsonClient) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return errors.Wrapf(err, "failed to encode %s request", c.service)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return errors.Wrapf(err, "failed to build %s request", c.service)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return domain.WrapError(domain.KindUnexpected, err, fmt.Sprintf("%s service unreachable", c.service))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return c.statusError(resp)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return domain.WrapError(domain.KindUnexpected, err, fmt.Sprintf("invalid %s response", c.service))
	}
	return nil
}

func (c *jsonClient) statusError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	msg := fmt.Sprintf("%s service returned %d", c.service, resp.StatusCode)
	if detail := strings.TrimSpace(string(raw)); detail != "" {
		msg = fmt.Sprintf("%s: %s", msg, detail)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return domain.NewNotFoundError(msg)
	case c.rejected[resp.StatusCode]:
		return domain.NewError(domain.KindRejected, msg)
	default:
		return domain.NewError(domain.KindUnexpected, msg)
	}
}
