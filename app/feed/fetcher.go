package feed

import (
	"context"
	"io"
	"net/http"
	"time"
)

// Fetcher turns a feed source URL into a parsed, normalized Result or a
// classified FetchError. The network round trip happens entirely outside
// the storage layer's serialization, so a slow remote server never stalls
// readers or writers.
type Fetcher struct {
	httpClient *http.Client
	parser     *Parser
	userAgent  string
}

func NewFetcher(httpClient *http.Client, parser *Parser, userAgent string) *Fetcher {
	return &Fetcher{
		httpClient: httpClient,
		parser:     parser,
		userAgent:  userAgent,
	}
}

// Run issues a synchronous GET for source. The download timestamp is taken
// at the attempt, not at per-entry parse time, so every entry of one fetch
// shares it.
func (f *Fetcher) Run(ctx context.Context, source string) (*Result, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
	if err != nil {
		return nil, &FetchError{Source: source, BadSource: true, Err: err}
	}

	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.httpClient.Do(req)
	epochDownloaded := time.Now().Unix()
	if err != nil {
		return nil, &FetchError{Source: source, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &FetchError{Source: source, StatusCode: resp.StatusCode, BadSource: true}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &FetchError{Source: source, Err: err}
	}

	// The effective document base for resolving relative links: the final
	// location reported by the server when present, else the source itself.
	base := resp.Header.Get("Content-Location")
	if base == "" {
		base = source
	}

	metadata, entries := f.parser.Run(data, base)

	return &Result{
		Metadata:        metadata,
		Entries:         entries,
		EpochDownloaded: epochDownloaded,
	}, nil
}
