package domain

import "time"

// Photo is the root of the photo/comment aggregate. Its comment collection can
// only be changed through AddComment and RemoveComment, which keep every
// comment's back-reference pointing at the photo whose collection holds it.
type Photo struct {
	ID          int64
	URL         string
	Description string

	comments       []*PhotoComment
	commentsLoaded bool
}

// NewPhoto returns a transient photo with an empty, loaded comment collection.
func NewPhoto(url, description string) *Photo {
	return &Photo{URL: url, Description: description, commentsLoaded: true}
}

// Comments returns a copy of the collection. Mutating the returned slice does
// not change the aggregate.
func (p *Photo) Comments() []*PhotoComment {
	out := make([]*PhotoComment, len(p.comments))
	copy(out, p.comments)
	return out
}

// CommentsLoaded reports whether the collection reflects the stored comments.
// Photos read without fetching their comments report false, and updates of
// such photos leave stored comments untouched.
func (p *Photo) CommentsLoaded() bool {
	return p.commentsLoaded
}

// Comment returns the comment with the given identifier, or nil.
func (p *Photo) Comment(id int64) *PhotoComment {
	for _, c := range p.comments {
		if c.ID != 0 && c.ID == id {
			return c
		}
	}
	return nil
}

// AddComment appends c to the collection and points its back-reference at p.
// A comment owned by another photo is first detached from that photo.
func (p *Photo) AddComment(c *PhotoComment) {
	if c == nil {
		return
	}
	if c.photo == p && p.indexOf(c) >= 0 {
		return
	}
	if c.photo != nil && c.photo != p {
		c.photo.detach(c)
	}
	p.comments = append(p.comments, c)
	c.photo = p
}

// RemoveComment takes c out of the collection and clears its back-reference.
// Once the photo is stored, a removed comment that no other photo has adopted
// is deleted. It reports whether c was part of the collection.
func (p *Photo) RemoveComment(c *PhotoComment) bool {
	if c == nil {
		return false
	}
	removed := p.detach(c)
	if removed == nil {
		return false
	}
	removed.photo = nil
	c.photo = nil
	return true
}

// LoadComments replaces the collection with comments read from the store.
func (p *Photo) LoadComments(comments []*PhotoComment) {
	for _, c := range p.comments {
		c.photo = nil
	}
	p.comments = nil
	for _, c := range comments {
		p.AddComment(c)
	}
	p.commentsLoaded = true
}

func (p *Photo) detach(c *PhotoComment) *PhotoComment {
	i := p.indexOf(c)
	if i < 0 {
		return nil
	}
	removed := p.comments[i]
	p.comments = append(p.comments[:i], p.comments[i+1:]...)
	return removed
}

// indexOf matches by identity, or by identifier once the comment is stored.
func (p *Photo) indexOf(c *PhotoComment) int {
	for i, existing := range p.comments {
		if existing == c || (c.ID != 0 && existing.ID == c.ID) {
			return i
		}
	}
	return -1
}

type PhotoComment struct {
	ID        int64
	Text      string
	CreatedOn time.Time

	photo *Photo
}

// NewPhotoComment returns a comment with no owner. It must be added to a
// photo before it can be stored.
func NewPhotoComment(text string) *PhotoComment {
	return &PhotoComment{Text: text}
}

func (c *PhotoComment) Photo() *Photo {
	return c.photo
}

// PhotoID returns the owning photo's identifier, or 0 when the comment is
// detached or its photo has not been stored yet.
func (c *PhotoComment) PhotoID() int64 {
	if c.photo == nil {
		return 0
	}
	return c.photo.ID
}
