// Package finding defines the persisted scan finding, the errors raised while
// ingesting findings and the storage contracts for writing and reporting on them.
package finding

import "github.com/openctemio/scanhistory/pkg/domain/shared"

// DefaultIP is stored when a result carries no ip.
const DefaultIP = "0.0.0.0"

// Finding is one normalized scan result. A nil field is stored as NULL.
// Fields that hold lists or objects in the source carry their JSON text.
type Finding struct {
	ID shared.ID

	Template         *string
	Host             *string
	IP               *string
	Timestamp        *string
	Severity         *string
	CurlCommand      *string
	ExtractorName    *string
	ExtractedResults *string

	CVEID       *string
	CWEID       *string
	CVSSMetrics *string
	CVSSScore   *string
	Description *string
	Remediation *string

	Info Info

	Type          *string
	MatchedAt     *string
	Request       *string
	Response      *string
	MatcherStatus *string
	MatcherName   *string
	Meta          *string
}

// Info holds the template metadata columns (info_*).
type Info struct {
	Name        *string
	Author      *string
	Tags        *string
	Description *string
	Reference   *string
	Severity    *string

	MetadataVendor     *string
	MetadataProduct    *string
	MetadataMaxRequest *string
	MetadataEPSSScore  *string

	ClassificationCVEID       *string
	ClassificationCWEID       *string
	ClassificationCVSSMetrics *string
	ClassificationCVSSScore   *string
	ClassificationEPSSScore   *string
	ClassificationCPE         *string
}
