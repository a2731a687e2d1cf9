package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"slide2pdf/internal/convert"
	"slide2pdf/internal/model"
	"slide2pdf/internal/pkg/ziputil"
	"slide2pdf/internal/registry"
)

var (
	ErrNoFiles        = errors.New("no file uploaded")
	ErrTooManyFiles   = errors.New("too many files")
	ErrBadExtension   = errors.New("only .ppt and .pptx files are allowed")
	ErrFileTooLarge   = errors.New("file too large")
	ErrConvertTimeout = errors.New("conversion timed out")
	ErrNoOutput       = errors.New("conversion produced no output")
	ErrArchive        = errors.New("building archive failed")
)

// RecordPublisher forwards finished-conversion events to the history
// pipeline. A nil publisher disables history.
type RecordPublisher interface {
	Publish(ctx context.Context, record model.ConversionRecord) error
}

type ConvertService struct {
	converter    convert.Converter
	registry     registry.Registry
	publisher    RecordPublisher
	artifactsDir string
	scratchRoot  string
	maxFiles     int
	maxFileSize  int64
}

type ConvertResult struct {
	ArtifactID string
	Filename   string
}

type PreviewResult struct {
	ArtifactID string
}

func NewConvertService(
	converter convert.Converter,
	reg registry.Registry,
	publisher RecordPublisher,
	artifactsDir string,
	scratchRoot string,
	maxFiles int,
	maxFileSize int64,
) *ConvertService {
	if maxFiles <= 0 {
		maxFiles = 50
	}
	if maxFileSize <= 0 {
		maxFileSize = 50 << 20
	}
	return &ConvertService{
		converter:    converter,
		registry:     reg,
		publisher:    publisher,
		artifactsDir: artifactsDir,
		scratchRoot:  scratchRoot,
		maxFiles:     maxFiles,
		maxFileSize:  maxFileSize,
	}
}

// ConvertAll converts the uploaded presentations to PDF. One input registers
// the PDF directly; several inputs are packed into a single zip. Validation
// happens before anything touches the filesystem or the external tool.
func (s *ConvertService) ConvertAll(ctx context.Context, files []*multipart.FileHeader) (*ConvertResult, error) {
	if err := s.validate(files); err != nil {
		return nil, err
	}

	start := time.Now()
	requestID := uuid.NewString()

	result, err := s.convertAll(ctx, requestID, files)
	s.publishRecord(requestID, files, result, err, time.Since(start))
	return result, err
}

func (s *ConvertService) convertAll(ctx context.Context, requestID string, files []*multipart.FileHeader) (*ConvertResult, error) {
	scratch, err := os.MkdirTemp(s.scratchRoot, "convert-")
	if err != nil {
		return nil, fmt.Errorf("create scratch dir failed: %w", err)
	}
	defer cleanupScratch(scratch)

	inDir := filepath.Join(scratch, "in")
	outDir := filepath.Join(scratch, "out")
	for _, dir := range []string{inDir, outDir} {
		if err := os.Mkdir(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create scratch subdir failed: %w", err)
		}
	}

	var pdfPaths []string
	for i, file := range files {
		inPath := filepath.Join(inDir, scratchName(i, file.Filename))
		if err := saveUpload(file, inPath); err != nil {
			return nil, err
		}

		pdfPath, err := s.converter.Convert(ctx, inPath, outDir, convert.FormatPDF)
		if err != nil {
			return nil, mapConvertErr(err)
		}
		pdfPaths = append(pdfPaths, pdfPath)
	}

	art := model.Artifact{
		ID:        requestID,
		Kind:      model.ArtifactDownload,
		CreatedAt: time.Now(),
	}
	if len(pdfPaths) == 1 {
		art.Path = filepath.Join(s.artifactsDir, requestID+".pdf")
		art.DisplayName = pdfName(files[0].Filename)
		art.ContentType = "application/pdf"
		if err := moveFile(pdfPaths[0], art.Path); err != nil {
			return nil, fmt.Errorf("store artifact failed: %w", err)
		}
	} else {
		zipInputs, err := renameForArchive(filepath.Join(scratch, "zip"), pdfPaths, files)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrArchive, err)
		}
		zipPath := filepath.Join(scratch, "converted.zip")
		if err := ziputil.Pack(zipPath, zipInputs); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrArchive, err)
		}
		art.Path = filepath.Join(s.artifactsDir, requestID+".zip")
		art.DisplayName = "converted.zip"
		art.ContentType = "application/zip"
		if err := moveFile(zipPath, art.Path); err != nil {
			return nil, fmt.Errorf("store artifact failed: %w", err)
		}
	}

	if err := s.registry.Put(ctx, art); err != nil {
		_ = os.Remove(art.Path)
		return nil, fmt.Errorf("register artifact failed: %w", err)
	}

	return &ConvertResult{ArtifactID: art.ID, Filename: art.DisplayName}, nil
}

// PreviewPNG renders the first slide of the upload to a PNG and registers it
// for one retrieval.
func (s *ConvertService) PreviewPNG(ctx context.Context, file *multipart.FileHeader) (*PreviewResult, error) {
	if err := s.validate([]*multipart.FileHeader{file}); err != nil {
		return nil, err
	}

	previewID := uuid.NewString()
	art := model.Artifact{
		ID:          previewID,
		Kind:        model.ArtifactPreview,
		Path:        filepath.Join(s.artifactsDir, previewID+".png"),
		DisplayName: pngName(file.Filename),
		ContentType: "image/png",
		CreatedAt:   time.Now(),
	}

	err := s.withScratch(ctx, file, convert.FormatPNG, func(outPath string) error {
		return moveFile(outPath, art.Path)
	})
	if err != nil {
		return nil, err
	}

	if err := s.registry.Put(ctx, art); err != nil {
		_ = os.Remove(art.Path)
		return nil, fmt.Errorf("register preview failed: %w", err)
	}
	return &PreviewResult{ArtifactID: previewID}, nil
}

// PreviewPDF converts the upload and returns the PDF bytes directly, leaving
// nothing registered.
func (s *ConvertService) PreviewPDF(ctx context.Context, file *multipart.FileHeader) ([]byte, error) {
	if err := s.validate([]*multipart.FileHeader{file}); err != nil {
		return nil, err
	}

	var pdfBytes []byte
	err := s.withScratch(ctx, file, convert.FormatPDF, func(outPath string) error {
		b, err := os.ReadFile(outPath)
		if err != nil {
			return fmt.Errorf("read converted pdf failed: %w", err)
		}
		pdfBytes = b
		return nil
	})
	if err != nil {
		return nil, err
	}
	return pdfBytes, nil
}

// withScratch runs one conversion inside a throwaway scratch dir and hands
// the produced file to consume before the dir is removed.
func (s *ConvertService) withScratch(ctx context.Context, file *multipart.FileHeader, format convert.Format, consume func(outPath string) error) error {
	scratch, err := os.MkdirTemp(s.scratchRoot, "preview-")
	if err != nil {
		return fmt.Errorf("create scratch dir failed: %w", err)
	}
	defer cleanupScratch(scratch)

	inPath := filepath.Join(scratch, scratchName(0, file.Filename))
	if err := saveUpload(file, inPath); err != nil {
		return err
	}

	outPath, err := s.converter.Convert(ctx, inPath, scratch, format)
	if err != nil {
		return mapConvertErr(err)
	}
	return consume(outPath)
}

func (s *ConvertService) validate(files []*multipart.FileHeader) error {
	if len(files) == 0 {
		return ErrNoFiles
	}
	if len(files) > s.maxFiles {
		return fmt.Errorf("%w: at most %d per request", ErrTooManyFiles, s.maxFiles)
	}
	for _, file := range files {
		ext := strings.ToLower(filepath.Ext(file.Filename))
		if ext != ".ppt" && ext != ".pptx" {
			return fmt.Errorf("%w: %s", ErrBadExtension, file.Filename)
		}
		if file.Size > s.maxFileSize {
			return fmt.Errorf("%w: %s exceeds %d bytes", ErrFileTooLarge, file.Filename, s.maxFileSize)
		}
	}
	return nil
}

func (s *ConvertService) publishRecord(requestID string, files []*multipart.FileHeader, result *ConvertResult, convErr error, elapsed time.Duration) {
	if s.publisher == nil {
		return
	}

	record := model.ConversionRecord{
		RequestID:  requestID,
		FileCount:  len(files),
		InputNames: joinNames(files),
		Succeeded:  convErr == nil,
		DurationMS: elapsed.Milliseconds(),
	}
	if result != nil {
		record.OutputName = result.Filename
	}
	if convErr != nil {
		record.FailReason = convErr.Error()
	}

	pubCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := s.publisher.Publish(pubCtx, record); err != nil {
		log.Printf("publish conversion record failed: %v", err)
	}
}

func mapConvertErr(err error) error {
	switch {
	case errors.Is(err, convert.ErrTimeout):
		return ErrConvertTimeout
	case errors.Is(err, convert.ErrNoOutput):
		return ErrNoOutput
	default:
		return err
	}
}

func saveUpload(file *multipart.FileHeader, dst string) error {
	src, err := file.Open()
	if err != nil {
		return fmt.Errorf("open upload %s failed: %w", file.Filename, err)
	}
	defer src.Close()

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("create scratch copy failed: %w", err)
	}
	defer out.Close()

	if _, err := io.Copy(out, src); err != nil {
		return fmt.Errorf("write scratch copy failed: %w", err)
	}
	return nil
}

// scratchName keeps the original base name (the external tool derives its
// output name from it) but prefixes an index so duplicate uploads in one
// request cannot clobber each other.
func scratchName(i int, original string) string {
	base := filepath.Base(original)
	base = strings.ReplaceAll(base, string(os.PathSeparator), "_")
	if base == "" || base == "." {
		base = "upload.pptx"
	}
	return fmt.Sprintf("%02d_%s", i, base)
}

func pdfName(original string) string {
	base := filepath.Base(original)
	return strings.TrimSuffix(base, filepath.Ext(base)) + ".pdf"
}

func pngName(original string) string {
	base := filepath.Base(original)
	return strings.TrimSuffix(base, filepath.Ext(base)) + ".png"
}

// renameForArchive moves the converted PDFs into their own dir under names
// matching the uploads, so zip entries carry the names the user sent rather
// than the index-prefixed scratch names. Repeats get an index suffix.
func renameForArchive(dir string, pdfPaths []string, files []*multipart.FileHeader) ([]string, error) {
	if err := os.Mkdir(dir, 0o755); err != nil {
		return nil, err
	}
	taken := make(map[string]bool, len(pdfPaths))
	renamed := make([]string, 0, len(pdfPaths))
	for i, path := range pdfPaths {
		name := pdfName(files[i].Filename)
		if taken[name] {
			name = fmt.Sprintf("%s_%d.pdf", strings.TrimSuffix(name, ".pdf"), i+1)
		}
		taken[name] = true

		dst := filepath.Join(dir, name)
		if err := os.Rename(path, dst); err != nil {
			return nil, err
		}
		renamed = append(renamed, dst)
	}
	return renamed, nil
}

func joinNames(files []*multipart.FileHeader) string {
	names := make([]string, 0, len(files))
	for _, file := range files {
		names = append(names, filepath.Base(file.Filename))
	}
	return strings.Join(names, ", ")
}

func moveFile(src, dst string) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	if err := os.Rename(src, dst); err == nil {
		return nil
	}
	// Rename fails across filesystems (tmpfs scratch, disk artifacts).
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}
	return os.Remove(src)
}

func cleanupScratch(dir string) {
	if err := os.RemoveAll(dir); err != nil {
		log.Printf("remove scratch dir %s failed: %v", dir, err)
	}
}
