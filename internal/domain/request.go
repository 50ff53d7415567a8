package domain

// IngestionRequest is a tagged variant with one case per source type. Each
// case carries only the fields relevant to it, already resolved to plain
// text: format parsing and crawling happen upstream of the engine.
type IngestionRequest interface {
	// DocID returns a caller-supplied document ID, or "" to have one
	// generated at ingestion time.
	DocID() string
	Title() string
	Source() SourceType
	Text() string

	sealed()
}

// TextRequest ingests pasted or typed text. Label is an optional
// human-readable title; the engine falls back to a generated one.
type TextRequest struct {
	ID    string
	Label string
	Body  string
}

func (r TextRequest) DocID() string      { return r.ID }
func (r TextRequest) Title() string      { return r.Label }
func (r TextRequest) Source() SourceType { return SourceText }
func (r TextRequest) Text() string       { return r.Body }
func (TextRequest) sealed()              {}

// FileRequest ingests text extracted from an uploaded file.
type FileRequest struct {
	ID       string
	Filename string
	Content  string
}

func (r FileRequest) DocID() string      { return r.ID }
func (r FileRequest) Title() string      { return r.Filename }
func (r FileRequest) Source() SourceType { return SourceFile }
func (r FileRequest) Text() string       { return r.Content }
func (FileRequest) sealed()              {}

// URLRequest ingests text extracted from a crawled web page.
type URLRequest struct {
	ID        string
	URL       string
	PageTitle string
	Content   string
}

func (r URLRequest) DocID() string { return r.ID }

func (r URLRequest) Title() string {
	if r.PageTitle != "" {
		return r.PageTitle
	}
	return r.URL
}

func (r URLRequest) Source() SourceType { return SourceURL }
func (r URLRequest) Text() string       { return r.Content }
func (URLRequest) sealed()              {}
