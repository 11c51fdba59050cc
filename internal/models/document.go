package models

import "time"

// Document is one file in the PDF corpus. PageCount and Title are filled on
// demand and stay zero when the file cannot be parsed.
type Document struct {
	Name       string    `json:"name"`
	Path       string    `json:"path"`
	Size       int64     `json:"size"`
	ModifiedAt time.Time `json:"modified_at"`
	PageCount  int       `json:"page_count,omitempty"`
	Title      string    `json:"title,omitempty"`
}

// CandidateSource records which rule admitted a document to the candidate set.
type CandidateSource string

const (
	CandidateBySymbol   CandidateSource = "symbol"
	CandidateByPattern  CandidateSource = "pattern"
	CandidateByCompany  CandidateSource = "company_name"
	CandidateByFallback CandidateSource = "fallback"
)

// DocumentMatch is a ranked candidate with the reasons behind its score.
type DocumentMatch struct {
	Document Document        `json:"document"`
	Score    float64         `json:"score"`
	Reasons  []string        `json:"reasons,omitempty"`
	Via      CandidateSource `json:"via"`
}

// RankResult is the ranker's output. Fallback is set when no rule matched and
// the whole corpus was ranked instead.
type RankResult struct {
	Symbol     string          `json:"symbol"`
	Pattern    string          `json:"pattern,omitempty"`
	Matches    []DocumentMatch `json:"matches"`
	Fallback   bool            `json:"fallback"`
	CorpusSize int             `json:"corpus_size"`
	Notices    []Notice        `json:"notices,omitempty"`
}

// Page is the extracted text of one PDF page (1-indexed).
type Page struct {
	Number int    `json:"number"`
	Text   string `json:"text"`
}

// Table is a grid of cells detected on a page; every row has the same width.
type Table struct {
	Page int        `json:"page"`
	Rows [][]string `json:"rows"`
}

// DocumentMetadata is the lightweight description returned by the extractor.
type DocumentMetadata struct {
	Title       string `json:"title,omitempty"`
	Author      string `json:"author,omitempty"`
	Subject     string `json:"subject,omitempty"`
	Creator     string `json:"creator,omitempty"`
	Producer    string `json:"producer,omitempty"`
	PageCount   int    `json:"page_count"`
	FileSize    int64  `json:"file_size"`
	IsEncrypted bool   `json:"is_encrypted"`
}
