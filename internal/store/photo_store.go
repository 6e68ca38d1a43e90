package store

import (
	"context"
	"fmt"
	"time"

	"github.com/vbonduro/txdao/internal/domain"
	"github.com/vbonduro/txdao/internal/unitofwork"
)

var (
	photos = mapping[domain.Photo]{
		table:   "photo",
		columns: "id, url, description",
		scan: func(row scanner) (*domain.Photo, error) {
			p := &domain.Photo{}
			if err := row.Scan(&p.ID, &p.URL, &p.Description); err != nil {
				return nil, err
			}
			return p, nil
		},
	}

	comments = mapping[domain.PhotoComment]{
		table:   "photo_comment",
		columns: "id, text, created_on",
		scan: func(row scanner) (*domain.PhotoComment, error) {
			c := &domain.PhotoComment{}
			if err := row.Scan(&c.ID, &c.Text, &c.CreatedOn); err != nil {
				return nil, err
			}
			return c, nil
		},
	}
)

// inserted records what the store assigned to a new comment so it can be
// copied onto the caller's comment once the transaction commits.
type inserted struct {
	comment   *domain.PhotoComment
	id        int64
	createdOn time.Time
}

func assign(written []inserted) {
	for _, w := range written {
		w.comment.ID = w.id
		w.comment.CreatedOn = w.createdOn
	}
}

// PhotoStore persists the photo aggregate. Comments are written, reassigned
// and deleted only through their photo.
type PhotoStore struct {
	exec *unitofwork.Executor
}

func NewPhotoStore(exec *unitofwork.Executor) *PhotoStore {
	return &PhotoStore{exec: exec}
}

// Save inserts a new photo together with every comment in its collection. The
// whole aggregate is stored or nothing is.
func (s *PhotoStore) Save(ctx context.Context, p *domain.Photo) error {
	if err := checkPhoto("save photo", p); err != nil {
		return err
	}
	if p.ID != 0 {
		return fmt.Errorf("save photo: id %d already assigned: %w", p.ID, domain.ErrInvalidArgument)
	}
	pending := p.Comments()
	for _, c := range pending {
		if c.ID != 0 {
			return fmt.Errorf("save photo: comment %d is already stored: %w", c.ID, domain.ErrInvalidArgument)
		}
	}

	type saved struct {
		id       int64
		comments []inserted
	}
	result, err := unitofwork.PerformReturning(ctx, s.exec, "save photo", func(ctx context.Context, sess *unitofwork.Session) (saved, error) {
		id, err := insert(ctx, sess, photos.table,
			"INSERT INTO photo (url, description) VALUES (?, ?)", p.URL, p.Description)
		if err != nil {
			return saved{}, err
		}
		written := make([]inserted, 0, len(pending))
		for _, c := range pending {
			w, err := insertComment(ctx, sess, id, c)
			if err != nil {
				return saved{}, err
			}
			written = append(written, w)
		}
		return saved{id: id, comments: written}, nil
	})
	if err != nil {
		return err
	}

	p.ID = result.id
	assign(result.comments)
	return nil
}

// FindByID returns the photo without reading its comments, or nil, nil.
// Updating the returned photo never deletes stored comments.
func (s *PhotoStore) FindByID(ctx context.Context, id int64) (*domain.Photo, error) {
	return unitofwork.PerformReadOnly(ctx, s.exec, "find photo by id", func(ctx context.Context, sess *unitofwork.Session) (*domain.Photo, error) {
		return photos.findByID(ctx, sess, id)
	})
}

// FindByIDFetchComments returns the photo with its comments materialized in
// the same transaction. A missing photo fails with domain.ErrNotFound.
func (s *PhotoStore) FindByIDFetchComments(ctx context.Context, id int64) (*domain.Photo, error) {
	return unitofwork.PerformReadOnly(ctx, s.exec, "find photo with comments", func(ctx context.Context, sess *unitofwork.Session) (*domain.Photo, error) {
		p, err := photos.single(ctx, sess, "id = ?", id)
		if err != nil {
			return nil, err
		}
		if err := loadComments(ctx, sess, p); err != nil {
			return nil, err
		}
		return p, nil
	})
}

func (s *PhotoStore) FindAll(ctx context.Context) ([]*domain.Photo, error) {
	return unitofwork.PerformReadOnly(ctx, s.exec, "find all photos", func(ctx context.Context, sess *unitofwork.Session) ([]*domain.Photo, error) {
		return photos.findAll(ctx, sess)
	})
}

// Update writes the caller's copy of the photo. New comments in its collection
// are inserted and known ones have their text updated. Stored comments missing
// from the collection are deleted only when the collection was loaded.
func (s *PhotoStore) Update(ctx context.Context, p *domain.Photo) error {
	if err := checkPhoto("update photo", p); err != nil {
		return err
	}
	if p.ID == 0 {
		return fmt.Errorf("update photo: id is required: %w", domain.ErrInvalidArgument)
	}

	written, err := unitofwork.PerformReturning(ctx, s.exec, "update photo", func(ctx context.Context, sess *unitofwork.Session) ([]inserted, error) {
		if _, err := photos.mustFindByID(ctx, sess, p.ID); err != nil {
			return nil, err
		}
		if err := execOne(ctx, sess, photos.table,
			"UPDATE photo SET url = ?, description = ? WHERE id = ?", p.URL, p.Description, p.ID); err != nil {
			return nil, err
		}
		return syncComments(ctx, sess, p)
	})
	if err != nil {
		return err
	}

	assign(written)
	return nil
}

// Remove deletes the photo and all of its comments.
func (s *PhotoStore) Remove(ctx context.Context, p *domain.Photo) error {
	if p == nil {
		return fmt.Errorf("remove photo: nil photo: %w", domain.ErrInvalidArgument)
	}
	if p.ID == 0 {
		return fmt.Errorf("remove photo: id is required: %w", domain.ErrInvalidArgument)
	}

	return s.exec.Perform(ctx, "remove photo", func(ctx context.Context, sess *unitofwork.Session) error {
		current, err := photos.mustFindByID(ctx, sess, p.ID)
		if err != nil {
			return err
		}
		if _, err := sess.ExecContext(ctx, "DELETE FROM photo_comment WHERE photo_id = ?", current.ID); err != nil {
			return fmt.Errorf("failed to delete comments of photo %d: %w", current.ID, err)
		}
		return photos.deleteByID(ctx, sess, current.ID)
	})
}

// AddComment attaches a new comment to a stored photo. The returned comment's
// photo is the one read in the same transaction, with the new comment in its
// collection.
func (s *PhotoStore) AddComment(ctx context.Context, photoID int64, text string) (*domain.PhotoComment, error) {
	if photoID == 0 {
		return nil, fmt.Errorf("add comment: photo id is required: %w", domain.ErrInvalidArgument)
	}
	if text == "" {
		return nil, fmt.Errorf("add comment: text is required: %w", domain.ErrInvalidArgument)
	}

	w, err := unitofwork.PerformReturning(ctx, s.exec, "add comment", func(ctx context.Context, sess *unitofwork.Session) (inserted, error) {
		p, err := photos.mustFindByID(ctx, sess, photoID)
		if err != nil {
			return inserted{}, err
		}
		if err := loadComments(ctx, sess, p); err != nil {
			return inserted{}, err
		}
		c := domain.NewPhotoComment(text)
		p.AddComment(c)
		return insertComment(ctx, sess, p.ID, c)
	})
	if err != nil {
		return nil, err
	}

	assign([]inserted{w})
	return w.comment, nil
}

// RemoveComment takes a comment out of its photo's collection. The comment
// has no other owner, so its row is deleted.
func (s *PhotoStore) RemoveComment(ctx context.Context, photoID, commentID int64) error {
	if photoID == 0 || commentID == 0 {
		return fmt.Errorf("remove comment: photo and comment ids are required: %w", domain.ErrInvalidArgument)
	}

	return s.exec.Perform(ctx, "remove comment", func(ctx context.Context, sess *unitofwork.Session) error {
		p, err := photos.mustFindByID(ctx, sess, photoID)
		if err != nil {
			return err
		}
		if err := loadComments(ctx, sess, p); err != nil {
			return err
		}
		c := p.Comment(commentID)
		if c == nil {
			return fmt.Errorf("comment %d of photo %d: %w", commentID, photoID, domain.ErrNotFound)
		}
		p.RemoveComment(c)
		_, err = syncComments(ctx, sess, p)
		return err
	})
}

func (s *PhotoStore) CountComments(ctx context.Context, photoID int64) (int, error) {
	return unitofwork.PerformReadOnly(ctx, s.exec, "count comments", func(ctx context.Context, sess *unitofwork.Session) (int, error) {
		var n int
		if err := sess.QueryRowContext(ctx, "SELECT COUNT(*) FROM photo_comment WHERE photo_id = ?", photoID).Scan(&n); err != nil {
			return 0, fmt.Errorf("failed to count comments: %w", err)
		}
		return n, nil
	})
}

func checkPhoto(op string, p *domain.Photo) error {
	if p == nil {
		return fmt.Errorf("%s: nil photo: %w", op, domain.ErrInvalidArgument)
	}
	if p.URL == "" {
		return fmt.Errorf("%s: url is required: %w", op, domain.ErrInvalidArgument)
	}
	if p.Description == "" {
		return fmt.Errorf("%s: description is required: %w", op, domain.ErrInvalidArgument)
	}
	return nil
}

func loadComments(ctx context.Context, sess *unitofwork.Session, p *domain.Photo) error {
	cs, err := comments.listWhere(ctx, sess, "photo_id = ?", p.ID)
	if err != nil {
		return err
	}
	p.LoadComments(cs)
	return nil
}

func insertComment(ctx context.Context, sess *unitofwork.Session, photoID int64, c *domain.PhotoComment) (inserted, error) {
	if photoID == 0 || c.Photo() == nil {
		return inserted{}, fmt.Errorf("comment has no owning photo: %w", domain.ErrInvalidArgument)
	}
	id, err := insert(ctx, sess, comments.table,
		"INSERT INTO photo_comment (text, photo_id) VALUES (?, ?)", c.Text, photoID)
	if err != nil {
		return inserted{}, err
	}
	var createdOn time.Time
	if err := sess.QueryRowContext(ctx, "SELECT created_on FROM photo_comment WHERE id = ?", id).Scan(&createdOn); err != nil {
		return inserted{}, fmt.Errorf("failed to read comment creation time: %w", err)
	}
	return inserted{comment: c, id: id, createdOn: createdOn}, nil
}

// syncComments writes the collection of p. Comments moved here from another
// photo are reassigned. When the collection was loaded, stored comments
// missing from it are deleted as orphans.
func syncComments(ctx context.Context, sess *unitofwork.Session, p *domain.Photo) ([]inserted, error) {
	stored, err := comments.listWhere(ctx, sess, "photo_id = ?", p.ID)
	if err != nil {
		return nil, err
	}
	orphans := make(map[int64]struct{}, len(stored))
	for _, c := range stored {
		orphans[c.ID] = struct{}{}
	}
	removeOrphans := p.CommentsLoaded()

	var written []inserted
	for _, c := range p.Comments() {
		if c.ID == 0 {
			w, err := insertComment(ctx, sess, p.ID, c)
			if err != nil {
				return nil, err
			}
			written = append(written, w)
			continue
		}
		if _, ok := orphans[c.ID]; ok {
			delete(orphans, c.ID)
			if err := execOne(ctx, sess, comments.table,
				"UPDATE photo_comment SET text = ? WHERE id = ?", c.Text, c.ID); err != nil {
				return nil, err
			}
			continue
		}
		if err := execOne(ctx, sess, comments.table,
			"UPDATE photo_comment SET text = ?, photo_id = ? WHERE id = ?", c.Text, p.ID, c.ID); err != nil {
			return nil, err
		}
	}

	if !removeOrphans {
		return written, nil
	}
	for id := range orphans {
		if err := comments.deleteByID(ctx, sess, id); err != nil {
			return nil, err
		}
	}
	return written, nil
}
