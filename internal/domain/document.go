package domain

// GroundingDocument is the immutable text snapshot of one processed
// statement, embedded verbatim into every AI request for that upload.
type GroundingDocument struct {
	Text   string `json:"-"`
	Digest string `json:"digest"`
}

// IsZero reports whether no document has been built
func (d GroundingDocument) IsZero() bool {
	return d.Digest == "" && d.Text == ""
}

// Upload file type constants
const (
	FileTypeXLSX = "xlsx"
	FileTypeCSV  = "csv"
)

// Upload describes the file currently loaded into the pipeline
type Upload struct {
	ID       string `json:"id"`
	Filename string `json:"filename"`
	FileType string `json:"file_type"`
	FileSize int64  `json:"file_size"`
	Rows     int    `json:"rows"`
}
