package app

import (
	"context"

	"github.com/ludo-technologies/conscan/domain"
	"github.com/ludo-technologies/conscan/internal/config"
	"github.com/ludo-technologies/conscan/service"
)

// FixUseCase orchestrates automated remediation
type FixUseCase struct {
	fileHelper *FileHelper
}

// NewFixUseCase creates a new fix use case
func NewFixUseCase() *FixUseCase {
	return &FixUseCase{fileHelper: NewFileHelper()}
}

// Execute proposes and optionally applies patches for the request
func (uc *FixUseCase) Execute(ctx context.Context, req domain.FixRequest) (*domain.FixResponse, error) {
	var cfg *config.Config
	var err error
	if req.ConfigPath != "" {
		cfg, err = config.LoadConfig(req.ConfigPath)
	} else {
		target := ""
		if len(req.Paths) > 0 {
			target = req.Paths[0]
		}
		cfg, err = config.LoadConfigWithTarget("", target)
	}
	if err != nil {
		return nil, err
	}
	uc.fileHelper.RespectGitignore = cfg.Analysis.RespectGitignore

	svc := service.NewFixService(cfg, uc.fileHelper)
	return svc.Fix(ctx, req)
}
