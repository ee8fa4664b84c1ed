package repo

import (
	"context"

	"github.com/colorcodebot/colorcodebot/internal/biz/domain"
)

// RenderRequest describes one image to render
type RenderRequest struct {
	Text            string
	Syntax          domain.SyntaxID
	Theme           string
	BackgroundImage string
	Folder          string // directory for the output file
}

// Renderer turns code into a highlighted image
type Renderer interface {
	// Render returns the path of the generated image
	Render(ctx context.Context, req RenderRequest) (string, error)
}
