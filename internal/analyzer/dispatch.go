package analyzer

import (
	"path/filepath"
	"strings"

	"github.com/ludo-technologies/conscan/domain"
	"github.com/ludo-technologies/conscan/internal/config"
	"github.com/ludo-technologies/conscan/internal/parser"
)

// TreeProvider is the parsing capability for one non-native language.
// The core depends only on this interface; providers for additional
// languages can be injected without touching the detectors.
type TreeProvider interface {
	// Language returns the tag this provider parses
	Language() domain.Language

	// ParseTree parses source into the internal AST
	ParseTree(filename string, source []byte) (*parser.Node, error)
}

// sitterProvider backs a TreeProvider with a grammar-specific parser
type sitterProvider struct {
	language domain.Language
	parse    func() *parser.Parser
}

func (p *sitterProvider) Language() domain.Language {
	return p.language
}

func (p *sitterProvider) ParseTree(filename string, source []byte) (*parser.Node, error) {
	ps := p.parse()
	defer ps.Close()
	return ps.ParseFile(filename, source)
}

// NewJavaScriptProvider returns the JavaScript tree provider
func NewJavaScriptProvider() TreeProvider {
	return &sitterProvider{language: domain.LanguageJavaScript, parse: parser.NewJavaScriptParser}
}

// NewTypeScriptProvider returns the TypeScript/TSX tree provider
func NewTypeScriptProvider() TreeProvider {
	return &sitterProvider{language: domain.LanguageTypeScript, parse: parser.NewTypeScriptParser}
}

// Dispatcher routes a file to the right parser and detector combination.
// Native sources get the full structured path; other supported languages
// go through an injected TreeProvider; anything else degrades to the
// line-oriented heuristic detectors, which never fail.
type Dispatcher struct {
	orchestrator *Orchestrator
	providers    map[domain.Language]TreeProvider
}

// NewDispatcher creates a dispatcher with the built-in provider set
func NewDispatcher() *Dispatcher {
	d := &Dispatcher{
		orchestrator: NewOrchestrator(),
		providers:    make(map[domain.Language]TreeProvider),
	}
	d.RegisterProvider(NewJavaScriptProvider())
	d.RegisterProvider(NewTypeScriptProvider())
	return d
}

// RegisterProvider installs or replaces the provider for a language
func (d *Dispatcher) RegisterProvider(p TreeProvider) {
	d.providers[p.Language()] = p
}

// DetectLanguage maps a file extension to a language tag
func DetectLanguage(path string) domain.Language {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".py", ".pyi":
		return domain.LanguagePython
	case ".js", ".jsx", ".mjs", ".cjs":
		return domain.LanguageJavaScript
	case ".ts", ".tsx", ".mts":
		return domain.LanguageTypeScript
	case ".go":
		return domain.LanguageGo
	default:
		return domain.LanguageUnknown
	}
}

// DispatchResult is the outcome of analyzing one file
type DispatchResult struct {
	Language   domain.Language
	Unit       *SourceUnit
	Violations []*domain.Violation
	Failures   []DetectorFailure

	// Fallback marks results produced by the heuristic line scan
	Fallback bool

	// ParseFailed marks native sources that could not be parsed; the
	// violation list then holds the single critical parse finding.
	ParseFailed bool
}

// Analyze routes one file through the appropriate pipeline. It never
// returns an error: parse failures become findings and unsupported
// languages fall back to heuristics.
func (d *Dispatcher) Analyze(path string, source []byte, thresholds *config.ThresholdConfig) *DispatchResult {
	language := DetectLanguage(path)

	switch language {
	case domain.LanguagePython:
		return d.analyzeNative(path, source, thresholds)
	default:
		if provider, ok := d.providers[language]; ok {
			if result := d.analyzeWithProvider(provider, path, source, thresholds); result != nil {
				return result
			}
		}
		result := AnalyzeFallback(path, source, thresholds)
		result.Language = language
		return result
	}
}

func (d *Dispatcher) analyzeNative(path string, source []byte, thresholds *config.ThresholdConfig) *DispatchResult {
	p := parser.NewParser()
	defer p.Close()

	tree, err := p.ParseFile(path, source)
	if err != nil {
		v := domain.NewViolation(
			domain.CategoryAlgorithm,
			domain.SeverityCritical,
			path, 1, 0,
			"source could not be parsed: "+err.Error(),
		)
		v.Remediation = "Fix the syntax errors; the file was skipped by all detectors"
		return &DispatchResult{
			Language:    domain.LanguagePython,
			Violations:  []*domain.Violation{v},
			ParseFailed: true,
		}
	}

	unit := &SourceUnit{
		Path:        path,
		Language:    domain.LanguagePython,
		Lines:       parser.SplitLines(source),
		Tree:        tree,
		Fingerprint: domain.SourceFingerprint(source),
	}
	violations, failures := d.orchestrator.Analyze(unit, thresholds)
	return &DispatchResult{
		Language:   domain.LanguagePython,
		Unit:       unit,
		Violations: violations,
		Failures:   failures,
	}
}

// analyzeWithProvider runs the structured path over a provider-parsed
// tree; returns nil when parsing fails so the caller can fall back.
func (d *Dispatcher) analyzeWithProvider(provider TreeProvider, path string, source []byte, thresholds *config.ThresholdConfig) *DispatchResult {
	tree, err := provider.ParseTree(path, source)
	if err != nil || tree == nil {
		return nil
	}

	unit := &SourceUnit{
		Path:        path,
		Language:    provider.Language(),
		Lines:       parser.SplitLines(source),
		Tree:        tree,
		Fingerprint: domain.SourceFingerprint(source),
	}
	violations, failures := d.orchestrator.Analyze(unit, thresholds)
	return &DispatchResult{
		Language:   provider.Language(),
		Unit:       unit,
		Violations: violations,
		Failures:   failures,
	}
}
