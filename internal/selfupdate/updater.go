package selfupdate

import (
	"archive/tar"
	"archive/zip"
	"bufio"
	"compress/gzip"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"hash"
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"runtime"
	"strings"
)

var (
	ErrDevBuild      = errors.New("cannot update a development build")
	ErrAlreadyLatest = errors.New("already running the latest version")
	ErrChecksum      = errors.New("checksum verification failed")
)

// UpdateInput selects the version to install. An empty TargetVersion means
// the latest release.
type UpdateInput struct {
	CurrentVersion string
	TargetVersion  string
}

// UpdateProgress is reported at each stage of Update.
type UpdateProgress struct {
	Stage   string
	Message string
}

// platform names the release archive for one OS/arch and the executable
// inside it.
type platform struct {
	archive string
	binary  string
}

func (p platform) isZip() bool { return strings.HasSuffix(p.archive, ".zip") }

var releaseArch = map[string]string{
	"amd64": "x86_64",
	"arm64": "arm64",
	"386":   "i386",
}

func platformFor(goos, goarch string) (platform, error) {
	if goos == "darwin" {
		return platform{archive: "eiken_Darwin_all.tar.gz", binary: "eiken"}, nil
	}

	arch, ok := releaseArch[goarch]
	if !ok {
		return platform{}, fmt.Errorf("unsupported architecture: %s", goarch)
	}
	switch goos {
	case "linux":
		return platform{archive: "eiken_Linux_" + arch + ".tar.gz", binary: "eiken"}, nil
	case "windows":
		return platform{archive: "eiken_Windows_" + arch + ".zip", binary: "eiken.exe"}, nil
	}
	return platform{}, fmt.Errorf("unsupported operating system: %s", goos)
}

// Update downloads the release archive for this platform, checks it against
// the release's checksums.txt and swaps the running executable for the one
// inside. The archive and the new binary are staged next to the executable
// so the final rename never crosses filesystems.
func (c *Checker) Update(ctx context.Context, input *UpdateInput, progress func(UpdateProgress)) error {
	if progress == nil {
		progress = func(UpdateProgress) {}
	}
	if input.CurrentVersion == DevVersion {
		return ErrDevBuild
	}

	tag := input.TargetVersion
	if tag == "" {
		progress(UpdateProgress{Stage: "check", Message: "Checking for latest version..."})
		res, err := c.Check(ctx, &CheckInput{Version: input.CurrentVersion})
		if err != nil {
			return fmt.Errorf("check for updates: %w", err)
		}
		if !res.UpdateAvailable {
			return ErrAlreadyLatest
		}
		tag = res.LatestVersion
	}

	plat, err := platformFor(runtime.GOOS, runtime.GOARCH)
	if err != nil {
		return err
	}
	target, err := c.execPath()
	if err != nil {
		return fmt.Errorf("resolve executable path: %w", err)
	}
	info, err := os.Stat(target)
	if err != nil {
		return fmt.Errorf("stat executable: %w", err)
	}

	progress(UpdateProgress{Stage: "verify", Message: "Fetching checksums..."})
	want, err := c.checksum(ctx, tag, plat.archive)
	if err != nil {
		return err
	}

	staging, err := os.MkdirTemp(filepath.Dir(target), ".eiken-update-*")
	if err != nil {
		return fmt.Errorf("create staging dir: %w", err)
	}
	defer func() { _ = os.RemoveAll(staging) }()

	progress(UpdateProgress{Stage: "download", Message: fmt.Sprintf("Downloading %s...", tag)})
	archivePath := filepath.Join(staging, plat.archive)
	got, err := c.download(ctx, c.assetURL(tag, plat.archive), archivePath)
	if err != nil {
		return fmt.Errorf("download archive: %w", err)
	}
	if got != want {
		return fmt.Errorf("%w: %s: expected %s, got %s", ErrChecksum, plat.archive, want, got)
	}

	progress(UpdateProgress{Stage: "extract", Message: "Extracting binary..."})
	binPath := filepath.Join(staging, plat.binary)
	if err := unpack(archivePath, plat, binPath, info.Mode().Perm()); err != nil {
		return fmt.Errorf("extract binary: %w", err)
	}

	progress(UpdateProgress{Stage: "apply", Message: "Applying update..."})
	if err := os.Rename(binPath, target); err != nil {
		return fmt.Errorf("replace executable: %w", err)
	}

	progress(UpdateProgress{Stage: "done", Message: fmt.Sprintf("Updated to %s", tag)})
	return nil
}

func (c *Checker) assetURL(tag, name string) string {
	return strings.TrimRight(c.downloadBaseURL, "/") +
		path.Join("/", c.owner, c.repo, "releases/download", tag, name)
}

// checksum returns the sha256 listed for asset in the release's
// checksums.txt ("<hex>  <name>" per line).
func (c *Checker) checksum(ctx context.Context, tag, asset string) (string, error) {
	body, err := c.get(ctx, c.assetURL(tag, "checksums.txt"))
	if err != nil {
		return "", fmt.Errorf("download checksums: %w", err)
	}
	defer func() { _ = body.Close() }()

	sum, err := findChecksum(body, asset)
	if err != nil {
		return "", fmt.Errorf("read checksums: %w", err)
	}
	if sum == "" {
		return "", fmt.Errorf("no checksum for %s in checksums.txt", asset)
	}
	return sum, nil
}

// findChecksum scans r for asset. Malformed lines are skipped; a missing
// entry yields "".
func findChecksum(r io.Reader, asset string) (string, error) {
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		fields := strings.Fields(sc.Text())
		if len(fields) == 2 && fields[1] == asset {
			return strings.ToLower(fields[0]), nil
		}
	}
	return "", sc.Err()
}

// download streams url into dst and returns the hex sha256 of the body.
func (c *Checker) download(ctx context.Context, url, dst string) (string, error) {
	body, err := c.get(ctx, url)
	if err != nil {
		return "", err
	}
	defer func() { _ = body.Close() }()

	f, err := os.Create(dst)
	if err != nil {
		return "", err
	}
	h := sha256.New()
	if _, err := io.Copy(io.MultiWriter(f, h), body); err != nil {
		_ = f.Close()
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", err
	}
	return hexSum(h), nil
}

func (c *Checker) get(ctx context.Context, url string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		_ = resp.Body.Close()
		return nil, fmt.Errorf("HTTP %d for %s", resp.StatusCode, url)
	}
	return resp.Body, nil
}

func hexSum(h hash.Hash) string {
	return hex.EncodeToString(h.Sum(nil))
}

// unpack copies plat.binary out of the archive at src into dst with mode.
func unpack(src string, plat platform, dst string, mode os.FileMode) error {
	out, err := os.OpenFile(dst, os.O_CREATE|os.O_EXCL|os.O_WRONLY, mode)
	if err != nil {
		return err
	}
	if plat.isZip() {
		err = unzipFile(src, plat.binary, out)
	} else {
		err = untarFile(src, plat.binary, out)
	}
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return err
	}
	// OpenFile's mode is filtered by the umask.
	return os.Chmod(dst, mode)
}

func untarFile(src, name string, w io.Writer) error {
	f, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	gz, err := gzip.NewReader(f)
	if err != nil {
		return fmt.Errorf("open gzip: %w", err)
	}
	defer func() { _ = gz.Close() }()

	tr := tar.NewReader(gz)
	for {
		hdr, err := tr.Next()
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("binary %q not found in archive", name)
		}
		if err != nil {
			return fmt.Errorf("read tar: %w", err)
		}
		if hdr.Typeflag == tar.TypeReg && path.Base(hdr.Name) == name {
			_, err := io.Copy(w, tr)
			return err
		}
	}
}

func unzipFile(src, name string, w io.Writer) error {
	zr, err := zip.OpenReader(src)
	if err != nil {
		return fmt.Errorf("open zip: %w", err)
	}
	defer func() { _ = zr.Close() }()

	for _, f := range zr.File {
		if f.FileInfo().IsDir() || path.Base(f.Name) != name {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return err
		}
		defer func() { _ = rc.Close() }()
		_, err = io.Copy(w, rc)
		return err
	}
	return fmt.Errorf("binary %q not found in archive", name)
}
