package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/sourcegraph/conc/pool"

	"github.com/theoremus-urban-solutions/at-realtime/gtfsrt"
)

// fetcher reads previously saved feed responses from local files or plain
// URLs, without the API key the live client sends.
type fetcher struct {
	httpClient *http.Client
}

func newFetcher() *fetcher {
	return &fetcher{httpClient: &http.Client{}}
}

// fetch decodes the feed response at urlOrPath. A saved upstream error is
// returned as an error.
func (f *fetcher) fetch(ctx context.Context, urlOrPath string) (*gtfsrt.Envelope, error) {
	env, err := f.read(ctx, urlOrPath)
	if err != nil {
		return nil, err
	}
	if env.Failed() {
		return nil, fmt.Errorf("%s: upstream status %q: %s", urlOrPath, env.Status, env.Error)
	}
	return env, nil
}

func (f *fetcher) read(ctx context.Context, urlOrPath string) (*gtfsrt.Envelope, error) {
	if !strings.HasPrefix(urlOrPath, "http://") && !strings.HasPrefix(urlOrPath, "https://") {
		file, err := os.Open(urlOrPath)
		if err != nil {
			return nil, err
		}
		defer func() { _ = file.Close() }()
		return gtfsrt.DecodeReader(file)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, urlOrPath, nil)
	if err != nil {
		return nil, err
	}
	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", urlOrPath, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("HTTP %d from %s", resp.StatusCode, urlOrPath)
	}
	return gtfsrt.DecodeReader(resp.Body)
}

// fetchBoth reads both feeds concurrently.
func (f *fetcher) fetchBoth(ctx context.Context, tripUpdates, vehiclePositions string) (tu, vp *gtfsrt.Envelope, err error) {
	p := pool.New().WithContext(ctx).WithCancelOnError().WithFirstError()
	p.Go(func(ctx context.Context) error {
		env, err := f.fetch(ctx, tripUpdates)
		if err != nil {
			return fmt.Errorf("trip updates: %w", err)
		}
		tu = env
		return nil
	})
	p.Go(func(ctx context.Context) error {
		env, err := f.fetch(ctx, vehiclePositions)
		if err != nil {
			return fmt.Errorf("vehicle positions: %w", err)
		}
		vp = env
		return nil
	})
	if err := p.Wait(); err != nil {
		return nil, nil, err
	}
	return tu, vp, nil
}
