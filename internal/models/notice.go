package models

// NoticeKind classifies a degraded-but-successful outcome.
type NoticeKind string

const (
	NoticeNoTechnicalData     NoticeKind = "no_technical_data"
	NoticeNoDocuments         NoticeKind = "no_documents"
	NoticeExtractionFailed    NoticeKind = "extraction_failed"
	NoticeCompanyLookupFailed NoticeKind = "company_lookup_failed"
	NoticeCorpusFallback      NoticeKind = "corpus_fallback"
	NoticeNoQualifyingContent NoticeKind = "no_qualifying_content"
)

// Notice is carried on a result instead of failing the call.
type Notice struct {
	Kind    NoticeKind `json:"kind"`
	Message string     `json:"message"`
	// Document names the affected file for per-document notices.
	Document string `json:"document,omitempty"`
}
