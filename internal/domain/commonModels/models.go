package commonModels

import "time"

// Document is handed to the pipeline once and never modified afterwards.
type Document struct {
	Id          string    `json:"document_id"`
	Name        string    `json:"document_name,omitempty"`
	Text        string    `json:"text"`
	ContentType DocType   `json:"content_type,omitempty"`
	ReceivedAt  time.Time `json:"received_at"`
}

type ByteRange struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

func (b ByteRange) Len() int {
	return b.End - b.Start
}

// Chunk is a contiguous slice of a document's text, Text == doc.Text[Start:End].
type Chunk struct {
	Index       int       `json:"index"`
	TotalChunks int       `json:"total_chunks"`
	Text        string    `json:"text"`
	ByteRange   ByteRange `json:"byte_range"`
}

type DocType string

var PDF DocType = "PDF"
var DOCX DocType = "DOCX"
var TXT DocType = "TXT"
var ERR DocType = "ERROR"
