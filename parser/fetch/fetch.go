// Package fetch implements the optional `fetch(url, branch) → local_path`
// external collaborator: a convenience for turning a
// GitHub repository URL into a local checkout the parser can walk.
// Grounded on internal/github/client.go's rate-limited github.Client
// wrapper; tarball extraction uses the standard library since no archive
// library appears anywhere in the retrieved pack.
package fetch

import (
	"archive/tar"
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/go-github/v57/github"
	"golang.org/x/time/rate"

	"github.com/viant/coderag/errs"
)

// Fetcher downloads a repository's tarball for a given branch and extracts
// it under a caller-provided working directory.
type Fetcher struct {
	client      *github.Client
	httpClient  *http.Client
	rateLimiter *rate.Limiter
}

// New builds a Fetcher. token may be empty for public repositories.
func New(token string) *Fetcher {
	client := github.NewClient(nil)
	if token != "" {
		client = client.WithAuthToken(token)
	}
	return &Fetcher{
		client:      client,
		httpClient:  &http.Client{Timeout: 2 * time.Minute},
		rateLimiter: rate.NewLimiter(rate.Every(time.Second), 2),
	}
}

// Fetch resolves repoURL (an "owner/repo" slug or a full github.com URL) at
// branch, downloads its tarball, and extracts it into workDir. It returns
// the local path the parser should walk (the single top-level directory
// the tarball unpacks into).
func (f *Fetcher) Fetch(ctx context.Context, repoURL, branch, workDir string) (string, error) {
	owner, name, err := parseOwnerRepo(repoURL)
	if err != nil {
		return "", errs.Wrap(errs.InvalidInput, err)
	}

	if err := f.rateLimiter.Wait(ctx); err != nil {
		return "", errs.Wrap(errs.FetchFailed, err)
	}

	archiveURL, _, err := f.client.Repositories.GetArchiveLink(ctx, owner, name, github.Tarball, &github.RepositoryContentGetOptions{Ref: branch}, true)
	if err != nil {
		return "", errs.Wrap(errs.FetchFailed, fmt.Errorf("resolve archive link for %s/%s@%s: %w", owner, name, branch, err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, archiveURL.String(), nil)
	if err != nil {
		return "", errs.Wrap(errs.Internal, err)
	}
	resp, err := f.httpClient.Do(req)
	if err != nil {
		return "", errs.Wrap(errs.FetchFailed, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", errs.New(errs.FetchFailed, fmt.Sprintf("download archive for %s/%s@%s: status %d", owner, name, branch, resp.StatusCode))
	}

	if err := os.MkdirAll(workDir, 0755); err != nil {
		return "", errs.Wrap(errs.Internal, err)
	}
	return extractTarGz(resp.Body, workDir)
}

func parseOwnerRepo(repoURL string) (owner, name string, err error) {
	slug := repoURL
	if u, parseErr := url.Parse(repoURL); parseErr == nil && u.Host != "" {
		slug = strings.Trim(u.Path, "/")
	}
	slug = strings.TrimSuffix(slug, ".git")
	parts := strings.Split(slug, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("fetch: cannot parse owner/repo from %q", repoURL)
	}
	return parts[0], parts[1], nil
}

// extractTarGz unpacks a gzip-compressed tarball into destDir and returns
// the path of its single top-level directory, which is how GitHub's
// codeload archives are always shaped ("<owner>-<repo>-<sha>/...").
func extractTarGz(r io.Reader, destDir string) (string, error) {
	gz, err := gzip.NewReader(r)
	if err != nil {
		return "", errs.Wrap(errs.FetchFailed, err)
	}
	defer gz.Close()

	tr := tar.NewReader(gz)
	var root string
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", errs.Wrap(errs.FetchFailed, err)
		}

		cleaned := filepath.Clean(hdr.Name)
		if strings.HasPrefix(cleaned, "..") {
			continue // reject path traversal in a hostile archive
		}
		if root == "" {
			if parts := strings.SplitN(cleaned, string(filepath.Separator), 2); len(parts) > 0 {
				root = parts[0]
			}
		}

		target := filepath.Join(destDir, cleaned)
		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, 0755); err != nil {
				return "", errs.Wrap(errs.Internal, err)
			}
		case tar.TypeReg:
			if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
				return "", errs.Wrap(errs.Internal, err)
			}
			out, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, os.FileMode(hdr.Mode))
			if err != nil {
				return "", errs.Wrap(errs.Internal, err)
			}
			if _, err := io.Copy(out, tr); err != nil {
				out.Close()
				return "", errs.Wrap(errs.Internal, err)
			}
			out.Close()
		}
	}
	if root == "" {
		return "", errs.New(errs.FetchFailed, "archive contained no entries")
	}
	return filepath.Join(destDir, root), nil
}
