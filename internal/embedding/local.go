package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os/exec"
	"syscall"
	"time"
)

// LocalConfig configures a provider backed by a local embedding server
// process communicating over HTTP.
type LocalConfig struct {
	BinaryPath string
	Port       int
	Dimensions int
	Version    string
}

// localProvider manages a local embedding server subprocess and talks to
// it over a loopback HTTP API.
type localProvider struct {
	cfg         LocalConfig
	cmd         *exec.Cmd
	client      *http.Client
	initialized bool
}

// NewLocalProvider starts (or attaches to) a local embedding server and
// returns a Provider backed by it.
func NewLocalProvider(ctx context.Context, cfg LocalConfig) (Provider, error) {
	p := &localProvider{
		cfg:    cfg,
		client: &http.Client{Timeout: 30 * time.Second},
	}
	if err := p.initialize(ctx); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *localProvider) initialize(ctx context.Context) error {
	if p.isHealthy() {
		p.initialized = true
		return nil
	}

	p.cmd = exec.CommandContext(ctx, p.cfg.BinaryPath)
	if err := p.cmd.Start(); err != nil {
		return fmt.Errorf("starting embedding server: %w", err)
	}

	if err := p.waitForHealthy(ctx, 60*time.Second); err != nil {
		return fmt.Errorf("embedding server failed to become healthy: %w", err)
	}
	p.initialized = true
	return nil
}

func (p *localProvider) isHealthy() bool {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	req, _ := http.NewRequestWithContext(ctx, "GET", p.url("/"), nil)
	resp, err := p.client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

func (p *localProvider) waitForHealthy(ctx context.Context, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return fmt.Errorf("timeout waiting for embedding server")
		case <-ticker.C:
			if p.isHealthy() {
				return nil
			}
		}
	}
}

func (p *localProvider) url(path string) string {
	return fmt.Sprintf("http://127.0.0.1:%d%s", p.cfg.Port, path)
}

type embedRequest struct {
	Texts []string `json:"texts"`
}

type embedResponse struct {
	Embeddings [][]float32 `json:"embeddings"`
}

func (p *localProvider) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if !p.initialized {
		return nil, fmt.Errorf("embedding provider not initialized")
	}

	body, err := json.Marshal(embedRequest{Texts: texts})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, "POST", p.url("/embed"), bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("embedding request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("embedding server returned status %d", resp.StatusCode)
	}

	var out embedResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decoding embedding response: %w", err)
	}
	return out.Embeddings, nil
}

func (p *localProvider) Dimensions() int { return p.cfg.Dimensions }
func (p *localProvider) Version() string { return p.cfg.Version }

// Close sends SIGTERM and waits briefly before SIGKILL.
func (p *localProvider) Close() error {
	if p.cmd == nil || p.cmd.Process == nil {
		return nil
	}

	if err := p.cmd.Process.Signal(syscall.SIGTERM); err != nil {
		return err
	}

	done := make(chan error, 1)
	go func() { done <- p.cmd.Wait() }()

	select {
	case err := <-done:
		return err
	case <-time.After(5 * time.Second):
		return p.cmd.Process.Kill()
	}
}
