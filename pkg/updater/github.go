package updater

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/Masterminds/semver/v3"

	"github.com/entrhq/ghostchat/pkg/config"
)

const (
	apiTimeout    = 30 * time.Second
	headerTimeout = 30 * time.Second
)

// ErrNoPendingRelease is returned by DownloadUpdate before a check found a
// newer release.
var ErrNoPendingRelease = errors.New("no release to download")

type release struct {
	TagName    string         `json:"tag_name"`
	Draft      bool           `json:"draft"`
	Prerelease bool           `json:"prerelease"`
	Assets     []releaseAsset `json:"assets"`
}

type releaseAsset struct {
	Name string `json:"name"`
	URL  string `json:"browser_download_url"`
}

// GitHubBackend checks a GitHub-style releases API and downloads the first
// asset of a newer release.
type GitHubBackend struct {
	client      *http.Client
	downloads   *http.Client
	apiBase     string
	owner       string
	repo        string
	downloadDir string
	current     *semver.Version

	mu       sync.Mutex
	cfg      Config
	listener Listener
	pending  *release
	wg       sync.WaitGroup
}

// NewGitHubBackend creates a backend for the running version.
func NewGitHubBackend(opts config.UpdateOptions, currentVersion string) (*GitHubBackend, error) {
	current, err := semver.NewVersion(currentVersion)
	if err != nil {
		return nil, fmt.Errorf("invalid running version %q: %w", currentVersion, err)
	}

	downloadDir := opts.DownloadDir
	if downloadDir == "" {
		downloadDir = filepath.Join(os.TempDir(), "ghostchat-updates")
	}

	return &GitHubBackend{
		client:      &http.Client{Timeout: apiTimeout},
		downloads:   newDownloadClient(),
		apiBase:     opts.APIBaseURL,
		owner:       opts.Owner,
		repo:        opts.Repo,
		downloadDir: downloadDir,
		current:     current,
	}, nil
}

// newDownloadClient has no overall deadline: installers can take minutes.
// A server that never answers still fails after headerTimeout, and the
// caller's context bounds the transfer.
func newDownloadClient() *http.Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.ResponseHeaderTimeout = headerTimeout
	return &http.Client{Transport: transport}
}

// Configure stores cfg and the listener for later events.
func (b *GitHubBackend) Configure(cfg Config, l Listener) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.cfg = cfg
	b.listener = l
}

// CheckForUpdatesAndNotify looks for a newer release in the background.
func (b *GitHubBackend) CheckForUpdatesAndNotify(ctx context.Context) error {
	b.mu.Lock()
	l, cfg := b.listener, b.cfg
	b.mu.Unlock()
	if l == nil {
		return errors.New("backend not configured")
	}

	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		l.CheckingForUpdate()

		if isDevBuild(b.current) && !cfg.ForceDevUpdateConfig {
			l.UpdateNotAvailable()
			return
		}

		rel, err := b.latest(ctx, cfg.AllowPrerelease)
		if err != nil {
			l.Error(err)
			return
		}
		if rel == nil {
			l.UpdateNotAvailable()
			return
		}

		b.mu.Lock()
		b.pending = rel
		b.mu.Unlock()
		l.UpdateAvailable(rel.TagName)
	}()
	return nil
}

// DownloadUpdate fetches the first asset of the release found by the last
// check into the download directory.
func (b *GitHubBackend) DownloadUpdate(ctx context.Context) error {
	b.mu.Lock()
	l, rel := b.listener, b.pending
	b.mu.Unlock()
	if rel == nil {
		return ErrNoPendingRelease
	}
	if len(rel.Assets) == 0 {
		return fmt.Errorf("release %s has no assets", rel.TagName)
	}

	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		if _, err := b.download(ctx, rel.Assets[0]); err != nil {
			l.Error(err)
			return
		}
		l.UpdateDownloaded()
	}()
	return nil
}

// Wait blocks until background work finishes.
func (b *GitHubBackend) Wait() {
	b.wg.Wait()
}

// latest returns the newest visible release above the running version, or
// nil when there is none.
func (b *GitHubBackend) latest(ctx context.Context, allowPrerelease bool) (*release, error) {
	var releases []release
	if allowPrerelease {
		if err := b.getJSON(ctx, fmt.Sprintf("%s/repos/%s/%s/releases", b.apiBase, b.owner, b.repo), &releases); err != nil {
			return nil, err
		}
	} else {
		var rel release
		if err := b.getJSON(ctx, fmt.Sprintf("%s/repos/%s/%s/releases/latest", b.apiBase, b.owner, b.repo), &rel); err != nil {
			return nil, err
		}
		releases = append(releases, rel)
	}

	var (
		best        *release
		bestVersion *semver.Version
	)
	for i := range releases {
		rel := &releases[i]
		if rel.Draft {
			continue
		}
		v, err := semver.NewVersion(rel.TagName)
		if err != nil {
			continue
		}
		if !v.GreaterThan(b.current) {
			continue
		}
		if bestVersion == nil || v.GreaterThan(bestVersion) {
			best, bestVersion = rel, v
		}
	}
	if best != nil {
		// Report the normalized version, without a leading v.
		best.TagName = bestVersion.String()
	}
	return best, nil
}

func (b *GitHubBackend) getJSON(ctx context.Context, url string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := b.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to fetch releases: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("failed to fetch releases: %s", resp.Status)
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("failed to decode releases: %w", err)
	}
	return nil
}

func (b *GitHubBackend) download(ctx context.Context, asset releaseAsset) (string, error) {
	if err := os.MkdirAll(b.downloadDir, 0750); err != nil {
		return "", fmt.Errorf("failed to create download directory: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, asset.URL, nil)
	if err != nil {
		return "", err
	}
	resp, err := b.downloads.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to download %s: %w", asset.Name, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("failed to download %s: %s", asset.Name, resp.Status)
	}

	dest := filepath.Join(b.downloadDir, filepath.Base(asset.Name))
	tmp := dest + ".part"
	f, err := os.Create(tmp)
	if err != nil {
		return "", fmt.Errorf("failed to create %s: %w", tmp, err)
	}
	if _, err := io.Copy(f, resp.Body); err != nil {
		f.Close()
		os.Remove(tmp)
		return "", fmt.Errorf("failed to write %s: %w", tmp, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return "", err
	}
	if err := os.Rename(tmp, dest); err != nil {
		return "", fmt.Errorf("failed to move download into place: %w", err)
	}
	return dest, nil
}

// isDevBuild reports whether the running version is a local development
// build, which only checks for updates when forced.
func isDevBuild(v *semver.Version) bool {
	return v.Prerelease() == "dev" || v.Metadata() == "dev"
}
