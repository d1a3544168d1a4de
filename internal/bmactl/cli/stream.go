package cli

import (
	"bufio"
	"context"
	"fmt"
	"net/http"
	"strings"
)

// StreamSSE connects to baseURL+path and invokes onEvent for every
// "event: <kind>\ndata: <payload>\n\n" frame received, until the server
// closes the stream or ctx is cancelled.
func StreamSSE(ctx context.Context, baseURL, path string, onEvent func(event, data string)) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("build stream request: %w", err)
	}
	req.Header.Set("Accept", "text/event-stream")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("connect to stream: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("stream returned status %d", resp.StatusCode)
	}

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var event, data string
	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case strings.HasPrefix(line, "event: "):
			event = strings.TrimPrefix(line, "event: ")
		case strings.HasPrefix(line, "data: "):
			data = strings.TrimPrefix(line, "data: ")
		case line == "":
			if data != "" {
				onEvent(event, data)
			}
			event, data = "", ""
		}
	}
	return scanner.Err()
}
