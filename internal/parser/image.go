package parser

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"io"

	"github.com/dgallion1/taskdraft/internal/llm"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// ErrNoVision is returned for images when no vision provider is configured.
var ErrNoVision = errors.New("image transcription is not configured")

const transcribePrompt = `Transcribe literalmente todo el texto que aparece en la imagen.
Conserva los saltos de línea y la numeración de las preguntas tal como aparecen.
No añadas comentarios, traducciones ni formato markdown.`

// visionMediaTypes are the formats the vision APIs accept as-is.
var visionMediaTypes = map[string]string{
	"png":  "image/png",
	"jpeg": "image/jpeg",
	"gif":  "image/gif",
	"webp": "image/webp",
}

// ImageParser transcribes scanned statements with a vision-capable model.
type ImageParser struct {
	Vision llm.Provider
}

func (p *ImageParser) Extract(ctx context.Context, r io.Reader, filename string) (string, error) {
	if p.Vision == nil {
		return "", ErrNoVision
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("read image: %w", err)
	}
	img, err := prepareImage(data)
	if err != nil {
		return "", err
	}

	resp, err := p.Vision.Generate(ctx, llm.Request{
		Messages: []llm.Message{{
			Role:    llm.RoleUser,
			Content: transcribePrompt,
			Images:  []llm.Image{img},
		}},
		MaxTokens: 4096,
	})
	if err != nil {
		return "", fmt.Errorf("transcribe image: %w", err)
	}
	return resp.Text, nil
}

// prepareImage detects the format and re-encodes formats the vision APIs
// reject (bmp, tiff) as PNG.
func prepareImage(data []byte) (llm.Image, error) {
	_, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return llm.Image{}, fmt.Errorf("decode image: %w", err)
	}
	if mt, ok := visionMediaTypes[format]; ok {
		return llm.Image{MediaType: mt, Data: data}, nil
	}

	decoded, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return llm.Image{}, fmt.Errorf("decode %s image: %w", format, err)
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, decoded); err != nil {
		return llm.Image{}, fmt.Errorf("encode png: %w", err)
	}
	return llm.Image{MediaType: "image/png", Data: buf.Bytes()}, nil
}
