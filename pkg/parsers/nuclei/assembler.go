package nuclei

import (
	"fmt"
	"strings"

	"github.com/openctemio/scanhistory/pkg/domain/finding"
	"github.com/openctemio/scanhistory/pkg/domain/shared"
)

// Assembler builds findings from nuclei result lines.
type Assembler struct {
	newID shared.IDGenerator
}

// Option configures an Assembler.
type Option func(*Assembler)

// WithIDGenerator replaces the random ID source.
func WithIDGenerator(gen shared.IDGenerator) Option {
	return func(a *Assembler) {
		if gen != nil {
			a.newID = gen
		}
	}
}

// NewAssembler creates an Assembler that assigns random UUIDs.
func NewAssembler(opts ...Option) *Assembler {
	a := &Assembler{newID: shared.NewID}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Assemble decodes one result line into a finding. Errors wrap finding.ErrParse;
// on error no finding is returned.
func (a *Assembler) Assemble(line []byte) (*finding.Finding, error) {
	root, err := Decode(line)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", finding.ErrParse, err)
	}
	if root.Kind() != KindObject {
		return nil, fmt.Errorf("%w: %w: line holds a JSON %s, not an object",
			finding.ErrParse, ErrUnexpectedType, root.Kind())
	}
	return a.build(root), nil
}

func (a *Assembler) build(root Value) *finding.Finding {
	field := func(path ...Step) *string {
		return Text(Lookup(root, path...))
	}
	info := func(path ...Step) *string {
		return field(append([]Step{Key("info")}, path...)...)
	}
	class := func(path ...Step) *string {
		return info(append([]Step{Key("classification")}, path...)...)
	}
	firstOf := func(key string) *string {
		return Text(First(Lookup(root, Key("info"), Key("classification"), Key(key))))
	}

	curlValue, ok := Lookup(root, Key("curl-command"))
	curl := TextOr(curlValue, ok, "")
	*curl = EscapeQuotes(*curl)

	ipValue, ok := Lookup(root, Key("ip"))

	cveID := firstOf("cve-id")
	cweID := firstOf("cwe-id")

	return &finding.Finding{
		ID: a.newID(),

		Template:         field(Key("template-id")),
		Host:             field(Key("host")),
		IP:               TextOr(ipValue, ok, finding.DefaultIP),
		Timestamp:        field(Key("timestamp")),
		Severity:         info(Key("severity")),
		CurlCommand:      curl,
		ExtractorName:    field(Key("extractor-name")),
		ExtractedResults: field(Key("extracted-results")),

		CVEID:       cveID,
		CWEID:       cweID,
		CVSSMetrics: class(Key("cvss-metrics")),
		CVSSScore:   class(Key("cvss-score")),
		Description: class(Key("description")),
		Remediation: class(Key("remediation")),

		Info: finding.Info{
			Name:        info(Key("name")),
			Author:      info(Key("author")),
			Tags:        info(Key("tags")),
			Description: info(Key("description")),
			Reference:   info(Key("reference")),
			Severity:    info(Key("severity")),

			MetadataVendor:     info(Key("metadata"), Key("vendor")),
			MetadataProduct:    info(Key("metadata"), Key("product")),
			MetadataMaxRequest: info(Key("metadata"), Key("max-request")),
			MetadataEPSSScore:  info(Key("metadata"), Key("epss-score")),

			ClassificationCVEID:       cloneText(cveID),
			ClassificationCWEID:       cloneText(cweID),
			ClassificationCVSSMetrics: class(Key("cvss-metrics")),
			ClassificationCVSSScore:   class(Key("cvss-score")),
			ClassificationEPSSScore:   class(Key("epss-score")),
			ClassificationCPE:         class(Key("cpe")),
		},

		Type:          field(Key("type")),
		MatchedAt:     field(Key("matched-at")),
		Request:       field(Key("request")),
		Response:      field(Key("response")),
		MatcherStatus: field(Key("matcher-status")),
		MatcherName:   field(Key("matcher-name")),
		Meta:          field(Key("meta")),
	}
}

// EscapeQuotes doubles every single quote in s.
func EscapeQuotes(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}

func cloneText(s *string) *string {
	if s == nil {
		return nil
	}
	c := *s
	return &c
}
