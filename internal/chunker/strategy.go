package chunker

import (
	"regexp"

	"github.com/regulaware/dossier-cli/internal/core/domain"
)

// Strategy is the closed set of chunking strategies. Selection is an
// ordered rule chain over document metadata; adding a strategy means
// adding a variant here and a case in every switch, checked at compile time.
type Strategy int

const (
	// StrategyOCRLowConfidence uses large chunks with heavy overlap so the
	// surrounding context compensates for OCR noise.
	StrategyOCRLowConfidence Strategy = iota

	// StrategyOCRStandard handles OCR text of acceptable confidence.
	StrategyOCRStandard

	// StrategyRiskAnalysis splits preferentially at risk/hazard ID lines
	// so chunks align with FMEA rows.
	StrategyRiskAnalysis

	// StrategyDesignRecord splits design inputs/outputs at requirement-ID lines.
	StrategyDesignRecord

	// StrategyTestRecord splits test protocols/reports at test-case-ID lines.
	StrategyTestRecord

	// StrategySectioned splits at declared section boundaries, falling back
	// to paragraph breaks.
	StrategySectioned

	// StrategyLargeDocument uses small precision-oriented chunks for long
	// paginated documents.
	StrategyLargeDocument

	// StrategySemantic is the generic default: paragraph, line, sentence,
	// then word boundaries.
	StrategySemantic
)

// lowOCRConfidence is the threshold below which OCR text gets the
// large-chunk treatment.
const lowOCRConfidence = 0.70

// largeDocumentPages is the page count above which a paginated document
// is chunked for precision over recall.
const largeDocumentPages = 50

// minDeclaredSections is the section count required for section-aligned
// splitting.
const minDeclaredSections = 4

// ID-line boundary patterns. Splits happen before each match so the ID
// line starts its chunk.
var (
	riskIDLine        = regexp.MustCompile(`(?m)^\s*(?:RISK|HAZ|FMEA)[-_ ]?\d+`)
	requirementIDLine = regexp.MustCompile(`(?m)^\s*(?:REQ|SRS|PRS|DI|DO|UN)[-_ ]?\d+`)
	testCaseIDLine    = regexp.MustCompile(`(?m)^\s*(?:TC|TEST|VER|VAL)[-_ ]?\d+`)
)

// Params holds a strategy's sizing and separator configuration.
type Params struct {
	// MaxTokens is the estimated-token ceiling per chunk, overlap included.
	MaxTokens int

	// Overlap is the estimated token count carried from the tail of each
	// chunk into the head of the next.
	Overlap int

	// Separators is the ordered fallback list tried by the splitter.
	Separators []separator
}

// String returns the strategy name recorded on produced chunks.
func (s Strategy) String() string {
	switch s {
	case StrategyOCRLowConfidence:
		return "ocr-low-confidence"
	case StrategyOCRStandard:
		return "ocr-standard"
	case StrategyRiskAnalysis:
		return "risk-analysis"
	case StrategyDesignRecord:
		return "design-record"
	case StrategyTestRecord:
		return "test-record"
	case StrategySectioned:
		return "sectioned"
	case StrategyLargeDocument:
		return "large-document"
	case StrategySemantic:
		return "semantic"
	}
	return "unknown"
}

// Params returns the sizing and separators for the strategy.
func (s Strategy) Params() Params {
	switch s {
	case StrategyOCRLowConfidence:
		return Params{MaxTokens: 2000, Overlap: 400, Separators: textSeparators()}
	case StrategyOCRStandard:
		return Params{MaxTokens: 1500, Overlap: 300, Separators: textSeparators()}
	case StrategyRiskAnalysis:
		return Params{MaxTokens: 1000, Overlap: 100, Separators: idSeparators(riskIDLine)}
	case StrategyDesignRecord:
		return Params{MaxTokens: 1200, Overlap: 150, Separators: idSeparators(requirementIDLine)}
	case StrategyTestRecord:
		return Params{MaxTokens: 1000, Overlap: 100, Separators: idSeparators(testCaseIDLine)}
	case StrategySectioned:
		return Params{MaxTokens: 2000, Overlap: 200, Separators: textSeparators()}
	case StrategyLargeDocument:
		return Params{MaxTokens: 600, Overlap: 100, Separators: textSeparators()}
	case StrategySemantic:
		return Params{MaxTokens: 1000, Overlap: 100, Separators: textSeparators()}
	}
	return Params{MaxTokens: 1000, Overlap: 100, Separators: textSeparators()}
}

// Select picks the strategy for a document. Rules are evaluated in order;
// the first match wins.
func Select(doc *domain.ParsedDocument) Strategy {
	meta := doc.Metadata

	if meta.OCRDerived && meta.OCRConfidence < lowOCRConfidence {
		return StrategyOCRLowConfidence
	}
	if meta.OCRDerived {
		return StrategyOCRStandard
	}

	switch meta.DocumentType {
	case "risk-analysis":
		return StrategyRiskAnalysis
	case "design-input", "design-output":
		return StrategyDesignRecord
	case "test-protocol", "test-report", "verification":
		return StrategyTestRecord
	}

	if len(meta.Sections) >= minDeclaredSections {
		return StrategySectioned
	}
	if meta.PageCount > largeDocumentPages {
		return StrategyLargeDocument
	}

	return StrategySemantic
}

// textSeparators is the generic fallback chain: paragraph, line, sentence,
// then word boundaries.
func textSeparators() []separator {
	return []separator{
		literalSeparator("\n\n"),
		literalSeparator("\n"),
		literalSeparator(". "),
		literalSeparator(" "),
	}
}

// idSeparators puts an ID-line boundary ahead of the generic chain.
func idSeparators(idLine *regexp.Regexp) []separator {
	return append([]separator{boundarySeparator(idLine)}, textSeparators()...)
}
