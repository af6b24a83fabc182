package app

import (
	"context"
	"io"
	"os"

	"github.com/ludo-technologies/conscan/domain"
	"github.com/ludo-technologies/conscan/internal/config"
	"github.com/ludo-technologies/conscan/internal/constants"
	"github.com/ludo-technologies/conscan/internal/metrics"
	"github.com/ludo-technologies/conscan/service"
)

// AnalyzeUseCase orchestrates one connascence analysis run: resolve
// config, run the service, format the result.
type AnalyzeUseCase struct {
	loader     *service.ConfigLoader
	fileHelper *FileHelper
}

// NewAnalyzeUseCase creates a new analyze use case
func NewAnalyzeUseCase() *AnalyzeUseCase {
	return &AnalyzeUseCase{
		loader:     service.NewConfigLoader(),
		fileHelper: NewFileHelper(),
	}
}

// Execute runs analysis for the request and writes the formatted result
func (uc *AnalyzeUseCase) Execute(ctx context.Context, req domain.AnalyzeRequest) (*domain.AnalysisResult, error) {
	cfg, err := uc.loader.LoadForRequest(req)
	if err != nil {
		return nil, err
	}
	req = uc.loader.RequestDefaults(req, cfg)
	uc.fileHelper.RespectGitignore = cfg.Analysis.RespectGitignore

	progress := service.NewProgressManager(writerIsTerminal(req.OutputWriter))
	defer progress.Close()

	svc, err := service.NewAnalyzeService(cfg, uc.fileHelper, progress)
	if err != nil {
		return nil, err
	}

	result, err := svc.Analyze(ctx, req)
	if err != nil {
		return nil, err
	}

	if req.SaveBaseline && result.Metrics != nil {
		path := cfg.Metrics.BaselinePath
		if path == "" {
			path = constants.BaselineFileName
		}
		if err := metrics.SaveBaseline(path, result.Metrics); err != nil {
			return nil, err
		}
	}

	if req.OutputWriter != nil {
		formatter := service.NewOutputFormatter(req.ShowDetails)
		if err := formatter.Write(result, req.OutputFormat, req.OutputWriter); err != nil {
			return nil, err
		}
	}
	return result, nil
}

// Service builds the configured analyze service without running it;
// used by the watch use case which owns the run loop.
func (uc *AnalyzeUseCase) Service(req domain.AnalyzeRequest) (*service.AnalyzeServiceImpl, *config.Config, error) {
	cfg, err := uc.loader.LoadForRequest(req)
	if err != nil {
		return nil, nil, err
	}
	uc.fileHelper.RespectGitignore = cfg.Analysis.RespectGitignore

	svc, err := service.NewAnalyzeService(cfg, uc.fileHelper, &service.NoOpProgressManager{})
	if err != nil {
		return nil, nil, err
	}
	return svc, cfg, nil
}

// writerIsTerminal enables progress bars only when output goes to a
// terminal-bound stream; piping results disables them.
func writerIsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}
