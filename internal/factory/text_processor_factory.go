package factory

import (
	"github.com/mikey/email-defender/internal/config"
	"github.com/mikey/email-defender/internal/utils"
	"go.uber.org/zap"
)

const (
	// DefaultPreviewSize is the preview width used when none is configured
	DefaultPreviewSize = 120

	// minPreviewSize leaves room for at least one character beside the ellipsis
	minPreviewSize = 4
)

// TextProcessorFactory creates the text processors used for email previews
// and resolves how wide those previews may be
type TextProcessorFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewTextProcessorFactory creates a new TextProcessorFactory
func NewTextProcessorFactory(cfg *config.Config, logger *zap.Logger) *TextProcessorFactory {
	return &TextProcessorFactory{
		cfg:    cfg,
		logger: logger.Named("preview"),
	}
}

// CreateTextProcessor creates a new TextProcessor
func (f *TextProcessorFactory) CreateTextProcessor() *utils.TextProcessor {
	return utils.NewTextProcessor(f.logger)
}

// PreviewSize returns the configured preview width. Unset or too narrow
// values fall back to DefaultPreviewSize.
func (f *TextProcessorFactory) PreviewSize() int {
	size := f.cfg.GetInt("frontend.preview_size")
	if size < minPreviewSize {
		if size != 0 {
			f.logger.Warn("Preview size too small, using default",
				zap.Int("configured", size),
				zap.Int("default", DefaultPreviewSize))
		}
		return DefaultPreviewSize
	}
	return size
}
