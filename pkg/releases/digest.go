package releases

import (
	"context"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/hex"
	"errors"
	"fmt"
	"hash"
	"io"
	"net/http"

	"github.com/docker/go-units"
	"golang.org/x/crypto/blake2b"

	"github.com/fulmenhq/relinfo/pkg/logger"
	"github.com/fulmenhq/relinfo/pkg/transport"
)

// Digest fields added to each asset.
const (
	SHA256Field  = "sha256"
	SHA512Field  = "sha512"
	BLAKE2bField = "blake2b"
)

// chunkSize is the read size when streaming an asset.
const chunkSize = 8 * 1024

// Digests holds lowercase hex digests of one asset.
type Digests struct {
	SHA256  string
	SHA512  string
	BLAKE2b string // BLAKE2b-512
	Size    int64
}

// DigestCalculator downloads assets and hashes them in a single pass.
type DigestCalculator struct {
	client *transport.Client
}

// NewDigestCalculator creates a calculator using client for downloads.
func NewDigestCalculator(client *transport.Client) *DigestCalculator {
	return &DigestCalculator{client: client}
}

// Compute streams the asset at url and returns its digests. The body is
// never buffered whole.
func (d *DigestCalculator) Compute(ctx context.Context, url string) (Digests, error) {
	h := http.Header{}
	h.Set("Accept", transport.MediaTypeOctetStream)

	resp, err := d.client.Get(ctx, url, h)
	if err != nil {
		return Digests{}, &NetworkError{Source: "github", URL: url, Wrapped: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if err := checkStatus(resp, "asset", url); err != nil {
		// No validators are sent, so a 304 is as unexpected as any other code
		if IsNotModified(err) {
			err = &StatusError{Resource: "asset", URL: url, StatusCode: resp.StatusCode}
		}
		return Digests{}, err
	}

	b2, err := blake2b.New512(nil)
	if err != nil {
		return Digests{}, fmt.Errorf("failed to initialise blake2b: %w", err)
	}
	s256 := sha256.New()
	s512 := sha512.New()
	hashers := []hash.Hash{s256, s512, b2}

	var total int64
	buf := make([]byte, chunkSize)
	for {
		n, rerr := resp.Body.Read(buf)
		if n > 0 {
			for _, hh := range hashers {
				_, _ = hh.Write(buf[:n])
			}
			total += int64(n)
		}
		if errors.Is(rerr, io.EOF) {
			break
		}
		if rerr != nil {
			return Digests{}, &NetworkError{Source: "github", URL: url, Wrapped: rerr}
		}
	}

	logger.Debug("Asset digested",
		logger.String("url", url),
		logger.String("size", units.HumanSize(float64(total))))

	return Digests{
		SHA256:  hex.EncodeToString(s256.Sum(nil)),
		SHA512:  hex.EncodeToString(s512.Sum(nil)),
		BLAKE2b: hex.EncodeToString(b2.Sum(nil)),
		Size:    total,
	}, nil
}

// Annotate digests every asset of release in order and records the results
// on the assets. If any asset fails, no asset is modified.
func (d *DigestCalculator) Annotate(ctx context.Context, release Release) error {
	assets := release.Assets()
	results := make([]Digests, len(assets))

	var total int64
	for i, asset := range assets {
		url, ok := asset[URLField].(string)
		if !ok || url == "" {
			return &SchemaError{Resource: "asset", Message: fmt.Sprintf("asset %d has no %q string", i, URLField)}
		}
		dg, err := d.Compute(ctx, url)
		if err != nil {
			return err
		}
		results[i] = dg
		total += dg.Size
	}

	for i, asset := range assets {
		asset[SHA256Field] = results[i].SHA256
		asset[SHA512Field] = results[i].SHA512
		asset[BLAKE2bField] = results[i].BLAKE2b
	}

	if len(assets) > 0 {
		logger.Info("Asset digests calculated",
			logger.Int("assets", len(assets)),
			logger.String("downloaded", units.HumanSize(float64(total))))
	}
	return nil
}
