package convert

import (
	"context"
	"errors"
)

// Format is the output format requested from the external tool.
type Format string

const (
	FormatPDF Format = "pdf"
	FormatPNG Format = "png"
)

var (
	ErrTimeout  = errors.New("conversion timed out")
	ErrNoOutput = errors.New("conversion produced no output")
)

// Converter renders one presentation file into the requested format inside
// outDir and returns the path of the produced file. Implementations must
// honor ctx cancellation.
type Converter interface {
	Convert(ctx context.Context, inputPath, outDir string, format Format) (string, error)
}
