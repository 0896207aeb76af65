package station

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// ErrNoTarget is returned when a side channel request requires a station
// target but none has been subscribed.
var ErrNoTarget = errors.New("no station target")

// PlugResponder posts operator answers to user input plugs. It carries
// no state besides its HTTP client and works without a subscription.
type PlugResponder struct {
	client HTTPClient
}

// NewPlugResponder creates a responder with the given options.
func NewPlugResponder(opts ...Option) *PlugResponder {
	cfg := newServiceConfig(opts)
	return &PlugResponder{client: cfg.client}
}

// Respond posts a plug response to http://host:port/tests/<id>/plugs/<plug>.
func (r *PlugResponder) Respond(host string, port int, testID, plugName string, response any) error {
	return respondPlug(r.client, host, port, testID, plugName, response)
}

func respondPlug(client HTTPClient, host string, port int, testID, plugName string, response any) error {
	body, err := json.Marshal(response)
	if err != nil {
		return fmt.Errorf("plug response: %w", err)
	}

	url := fmt.Sprintf("http://%s:%d/tests/%s/plugs/%s", host, port, testID, plugName)
	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("plug response: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("plug response: unexpected status %d", resp.StatusCode)
	}
	return nil
}
