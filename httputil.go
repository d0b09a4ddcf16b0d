package buvette

import (
	"bufio"
	"bytes"
	"crypto/sha1"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httputil"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"

	"github.com/rcpark/buvette/date"
)

// diskCache caches HTTP responses on disk. The cache key includes the
// current day, so entries expire daily: good enough for product
// metadata that rarely changes.
type diskCache struct {
	base http.RoundTripper
}

func (c *diskCache) RoundTrip(req *http.Request) (*http.Response, error) {
	key := fmt.Sprintf("%x", sha1.Sum([]byte(date.Today().String()+" "+req.Method+" "+req.URL.String())))
	file := filepath.Join(os.TempDir(), "buvette-"+key)

	if content, err := os.ReadFile(file); err == nil {
		if resp, err := http.ReadResponse(bufio.NewReader(bytes.NewReader(content)), req); err == nil {
			return resp, nil
		}
	}

	resp, err := c.base.RoundTrip(req)
	if err != nil {
		return nil, err
	}
	log.Debug("http", "method", resp.Request.Method, "url", resp.Request.URL, "status", resp.Status)
	if resp.StatusCode >= 300 {
		return resp, nil
	}
	if content, err := httputil.DumpResponse(resp, true); err == nil {
		if err := os.WriteFile(file, content, 0644); err != nil {
			log.Debug("cache write failed", "err", err)
		}
	}
	return resp, nil
}

// cachedClient returns an HTTP client whose responses are cached on
// disk with daily expiry.
func cachedClient() *http.Client {
	return &http.Client{Transport: &diskCache{base: http.DefaultTransport}}
}

// jwget GETs addr and unmarshals the JSON response into data.
func jwget(client *http.Client, addr string, data any) error {
	resp, err := client.Get(addr)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("cannot GET %v: %v", addr, resp.Status)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	return json.Unmarshal(body, data)
}
