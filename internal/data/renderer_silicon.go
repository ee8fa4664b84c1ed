package data

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/colorcodebot/colorcodebot/internal/biz/repo"
)

// DefaultSiliconFonts is the font fallback chain passed to silicon
var DefaultSiliconFonts = []string{
	"Iosevka Term Custom",
	"Symbols Nerd Font Mono",
	"OpenMoji",
	"NanumGothicCoding",
}

const (
	siliconPadHoriz  = 20
	siliconPadVert   = 25
	siliconBlurRadii = 5
)

// siliconRenderer renders images with the silicon CLI
type siliconRenderer struct {
	path  string
	fonts []string
}

// NewSiliconRenderer creates a renderer running the silicon binary at path
func NewSiliconRenderer(path string, fonts []string) repo.Renderer {
	if path == "" {
		path = "silicon"
	}
	if len(fonts) == 0 {
		fonts = DefaultSiliconFonts
	}
	return &siliconRenderer{path: path, fonts: fonts}
}

// siliconArgs builds the command line writing to out
func (r *siliconRenderer) siliconArgs(req repo.RenderRequest, out string) []string {
	args := []string{
		"-o", out,
		"-l", string(req.Syntax),
		"--theme", req.Theme,
		"--pad-horiz", strconv.Itoa(siliconPadHoriz),
		"--pad-vert", strconv.Itoa(siliconPadVert),
		"--shadow-blur-radius", strconv.Itoa(siliconBlurRadii),
	}
	if req.BackgroundImage != "" {
		args = append(args, "--background-image", req.BackgroundImage)
	}
	if len(r.fonts) > 0 {
		args = append(args, "-f", strings.Join(r.fonts, "; "))
	}
	return args
}

// Render writes a PNG into a fresh directory under req.Folder. The code is
// passed on stdin.
func (r *siliconRenderer) Render(ctx context.Context, req repo.RenderRequest) (string, error) {
	folder := req.Folder
	if folder == "" {
		folder = os.TempDir()
	}
	dir := filepath.Join(folder, uuid.NewString())
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create render directory: %w", err)
	}
	out := filepath.Join(dir, uuid.NewString()+".png")

	cmd := exec.CommandContext(ctx, r.path, r.siliconArgs(req, out)...)
	cmd.Stdin = strings.NewReader(req.Text)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("silicon failed (theme %s, syntax %s): %w: %s",
			req.Theme, req.Syntax, err, strings.TrimSpace(stderr.String()))
	}
	if _, err := os.Stat(out); err != nil {
		return "", fmt.Errorf("silicon produced no image: %w", err)
	}
	return out, nil
}
