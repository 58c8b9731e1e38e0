package services

import (
	"context"
	"errors"
	"testing"

	"github.com/dmitrijs2005/conduit/internal/common"
)

func newCommentService(t *testing.T, rm *fakeRepoManager) *CommentService {
	t.Helper()
	db, _ := newSQLMockDB(t)
	t.Cleanup(func() { db.Close() })
	return NewCommentService(db, rm)
}

func TestCommentAdd_Success(t *testing.T) {
	rm := newFakeRepoManager()
	s := newCommentService(t, rm)

	author := rm.addUser(t, "jake")
	commenter := rm.addUser(t, "anne")
	article := rm.addArticle(t, author.ID, "dragons")

	view, err := s.Add(context.Background(), article.Slug, commenter.ID, "It takes a Jacobian")
	if err != nil {
		t.Fatalf("Add error: %v", err)
	}
	if view.Body != "It takes a Jacobian" || view.Author.Username != "anne" {
		t.Fatalf("unexpected view: %+v", view)
	}
	if view.ID == "" {
		t.Fatal("expected an id")
	}
}

func TestCommentAdd_BlankBody(t *testing.T) {
	rm := newFakeRepoManager()
	s := newCommentService(t, rm)

	_, err := s.Add(context.Background(), "any", "u-1", "")

	var ve *common.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("want ValidationError, got %v", err)
	}
	if got := ve.Fields["body"]; len(got) != 1 || got[0] != "can't be blank" {
		t.Fatalf("unexpected field errors: %+v", ve.Fields)
	}
}

func TestCommentAdd_UnknownArticle(t *testing.T) {
	rm := newFakeRepoManager()
	s := newCommentService(t, rm)

	_, err := s.Add(context.Background(), "ghost", "u-1", "hello")
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("want common.ErrorNotFound, got %v", err)
	}
}

func TestCommentList_NewestFirst(t *testing.T) {
	rm := newFakeRepoManager()
	s := newCommentService(t, rm)

	author := rm.addUser(t, "jake")
	article := rm.addArticle(t, author.ID, "dragons")

	if _, err := s.Add(context.Background(), article.Slug, author.ID, "first"); err != nil {
		t.Fatalf("Add error: %v", err)
	}
	if _, err := s.Add(context.Background(), article.Slug, author.ID, "second"); err != nil {
		t.Fatalf("Add error: %v", err)
	}

	views, err := s.List(context.Background(), article.Slug, "")
	if err != nil {
		t.Fatalf("List error: %v", err)
	}
	if len(views) != 2 || views[0].Body != "second" || views[1].Body != "first" {
		t.Fatalf("expected newest first, got %+v", views)
	}
}

func TestCommentList_Empty(t *testing.T) {
	rm := newFakeRepoManager()
	s := newCommentService(t, rm)

	author := rm.addUser(t, "jake")
	article := rm.addArticle(t, author.ID, "dragons")

	views, err := s.List(context.Background(), article.Slug, "")
	if err != nil {
		t.Fatalf("List error: %v", err)
	}
	if views == nil || len(views) != 0 {
		t.Fatalf("expected empty non-nil slice, got %+v", views)
	}
}

func TestCommentDelete_AuthorOnly(t *testing.T) {
	rm := newFakeRepoManager()
	s := newCommentService(t, rm)

	author := rm.addUser(t, "jake")
	other := rm.addUser(t, "mallory")
	article := rm.addArticle(t, author.ID, "dragons")

	view, err := s.Add(context.Background(), article.Slug, author.ID, "mine")
	if err != nil {
		t.Fatalf("Add error: %v", err)
	}

	if err := s.Delete(context.Background(), article.Slug, view.ID, other.ID); !errors.Is(err, common.ErrorForbidden) {
		t.Fatalf("want common.ErrorForbidden, got %v", err)
	}

	if err := s.Delete(context.Background(), article.Slug, view.ID, author.ID); err != nil {
		t.Fatalf("Delete error: %v", err)
	}
	if len(rm.commentRepo.comments) != 0 {
		t.Fatal("comment must be removed")
	}
}

func TestCommentDelete_WrongArticle(t *testing.T) {
	rm := newFakeRepoManager()
	s := newCommentService(t, rm)

	author := rm.addUser(t, "jake")
	first := rm.addArticle(t, author.ID, "dragons")
	second := rm.addArticle(t, author.ID, "cats")

	view, err := s.Add(context.Background(), first.Slug, author.ID, "on dragons")
	if err != nil {
		t.Fatalf("Add error: %v", err)
	}

	// The comment id exists, but under a different article.
	err = s.Delete(context.Background(), second.Slug, view.ID, author.ID)
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("want common.ErrorNotFound, got %v", err)
	}
}
