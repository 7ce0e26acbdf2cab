package factory

import (
	"fmt"
	"io"
	"os"

	"github.com/mikey/email-defender/internal/adapters/frontend"
	"github.com/mikey/email-defender/internal/config"
	"github.com/mikey/email-defender/internal/core"
	"github.com/mikey/email-defender/internal/ports"
	"go.uber.org/zap"
)

// FrontendFactory creates frontends based on configuration
type FrontendFactory struct {
	cfg         *config.Config
	logger      *zap.Logger
	textFactory *TextProcessorFactory
	input       io.Reader
	output      io.Writer
}

// NewFrontendFactory creates a new frontend factory reading commands from
// stdin and printing to stdout
func NewFrontendFactory(cfg *config.Config, logger *zap.Logger, textFactory *TextProcessorFactory) *FrontendFactory {
	return &FrontendFactory{
		cfg:         cfg,
		logger:      logger,
		textFactory: textFactory,
		input:       os.Stdin,
		output:      os.Stdout,
	}
}

// CreateFrontend creates a frontend based on the configuration
func (f *FrontendFactory) CreateFrontend(game ports.GameSession, events <-chan core.Event) (ports.Frontend, error) {
	frontendCfg, err := f.cfg.GetFrontend()
	if err != nil {
		return nil, err
	}

	switch frontendCfg.Type {
	case "console":
		var input io.Reader
		if frontendCfg.Interactive {
			input = f.input
		}
		return frontend.NewConsoleFrontend(
			game,
			events,
			input,
			f.textFactory.CreateTextProcessor(),
			f.output,
			frontendCfg.StatusInterval,
			f.textFactory.PreviewSize(),
			f.logger,
		), nil
	case "headless":
		return frontend.NewHeadlessFrontend(
			game,
			events,
			frontendCfg.StatusInterval,
			f.logger,
		), nil
	default:
		return nil, fmt.Errorf("unsupported frontend type: %s", frontendCfg.Type)
	}
}
