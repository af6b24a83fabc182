package service

import (
	"context"
	"os"
	"time"

	"github.com/ludo-technologies/conscan/domain"
	"github.com/ludo-technologies/conscan/internal/analyzer"
	"github.com/ludo-technologies/conscan/internal/config"
	"github.com/ludo-technologies/conscan/internal/fixer"
	"github.com/ludo-technologies/conscan/internal/version"
)

// FixServiceImpl implements domain.FixService: it re-runs detection on
// the target files, asks the fixer strategies for patch suggestions, and
// hands them to the safe applier.
type FixServiceImpl struct {
	cfg       *config.Config
	reader    domain.SourceFileReader
	generator *fixer.Generator
	applier   *fixer.Applier
}

// NewFixService creates a fix service over a loaded config
func NewFixService(cfg *config.Config, reader domain.SourceFileReader) *FixServiceImpl {
	return &FixServiceImpl{
		cfg:       cfg,
		reader:    reader,
		generator: fixer.NewGenerator(),
		applier:   fixer.NewApplier(),
	}
}

// Fix analyzes the requested paths, proposes patches and, unless the
// request is a dry run, applies the ones the policy allows.
func (s *FixServiceImpl) Fix(ctx context.Context, req domain.FixRequest) (*domain.FixResponse, error) {
	files, err := s.reader.CollectSourceFiles(req.Paths, req.Recursive, s.cfg.Analysis.IncludePatterns, s.cfg.Analysis.ExcludePatterns)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, domain.NewInvalidInputError("no source files found in the given paths", nil)
	}

	policy := s.policyFor(req)
	dispatcher := analyzer.NewDispatcher()

	response := &domain.FixResponse{
		Results:     make(map[string]*domain.ApplyResult),
		GeneratedAt: time.Now().Format(time.RFC3339),
		Version:     version.GetVersion(),
	}

	for _, path := range files {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		source, err := s.reader.ReadFile(path)
		if err != nil {
			continue
		}

		dispatch := dispatcher.Analyze(path, source, &s.cfg.Thresholds)
		if dispatch.Unit == nil {
			// Fallback and parse-failure paths have no tree for the
			// strategies to inspect
			continue
		}

		patches := s.generator.Propose(dispatch.Unit, dispatch.Violations)
		if len(patches) == 0 {
			continue
		}
		response.Suggestions = append(response.Suggestions, patches...)

		if req.DryRun {
			continue
		}

		result := s.applier.Apply(path, source, patches, policy)
		response.Results[path] = result
		response.TotalApplied += len(result.Applied)
		response.TotalSkipped += len(result.Skipped)
		response.TotalRolledBack += len(result.RolledBack)

		if len(result.Applied) > 0 && result.NewSource != string(source) {
			if err := writeFilePreservingMode(path, []byte(result.NewSource)); err != nil {
				return nil, domain.NewPatchError("failed to write patched source for "+path, err)
			}
		}
	}

	return response, nil
}

// policyFor resolves the effective safety policy, request over config
func (s *FixServiceImpl) policyFor(req domain.FixRequest) domain.SafetyPolicy {
	policy := domain.SafetyPolicy{
		ConfidenceThreshold: s.cfg.Fix.MinConfidence,
		MaxSafety:           domain.SafetyLevel(s.cfg.Fix.MaxSafety),
	}
	if req.ConfidenceThreshold > 0 {
		policy.ConfidenceThreshold = req.ConfidenceThreshold
	}
	if req.MaxSafety != "" {
		policy.MaxSafety = req.MaxSafety
	}
	return policy
}

func writeFilePreservingMode(path string, content []byte) error {
	mode := os.FileMode(0o644)
	if info, err := os.Stat(path); err == nil {
		mode = info.Mode()
	}
	return os.WriteFile(path, content, mode)
}
