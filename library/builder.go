package library

// BookBuilder accumulates book fields and produces Book snapshots.
type BookBuilder struct {
	title  string
	author string
	isbn   string
}

func NewBookBuilder() *BookBuilder { return &BookBuilder{} }

func (bb *BookBuilder) SetTitle(title string) *BookBuilder {
	bb.title = title
	return bb
}

func (bb *BookBuilder) SetAuthor(author string) *BookBuilder {
	bb.author = author
	return bb
}

func (bb *BookBuilder) SetISBN(isbn string) *BookBuilder {
	bb.isbn = isbn
	return bb
}

// Build returns the accumulated fields as a new Book. Empty fields are kept as is.
func (bb *BookBuilder) Build() Book {
	return Book{Title: bb.title, Author: bb.author, ISBN: bb.isbn}
}

// BuildValid is Build followed by Book.Validate.
func (bb *BookBuilder) BuildValid() (Book, error) {
	b := bb.Build()
	if err := b.Validate(); err != nil {
		return Book{}, err
	}
	return b, nil
}
