package comments

// createCommentRequest adds a comment to a design. Mentions are parsed
// out of the text server-side.
type createCommentRequest struct {
	AuthorName string `json:"authorName" validate:"required,min=1,max=100"`
	Text       string `json:"text" validate:"required,min=1,max=2000"`
}
