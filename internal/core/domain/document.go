package domain

// Page is one physical page of a loaded document, in document order.
type Page struct {
	Text   string `json:"text"`
	Number int    `json:"number"`
	Source string `json:"source"`
}

// Chunk is a token-bounded span of document text. Its TokenCount never
// exceeds the splitter's configured budget. A chunk may span two pages;
// Page and Source come from the chunk's first unit of text.
type Chunk struct {
	Seq        int    `json:"seq"`
	Text       string `json:"text"`
	TokenCount int    `json:"token_count"`
	Page       int    `json:"page"`
	Source     string `json:"source"`
}
