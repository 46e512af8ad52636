package wallet

import (
	"context"
	"errors"
	"testing"

	"github.com/knowshare/walletd/pkg/suggestion"
)

func TestSubmitSuggestionChargesFee(test *testing.T) {
	test.Parallel()
	store := newStubStore(test)
	service := mustNewService(test, store)
	article := seedArticle(test, store, Article{AuthorID: "author"})
	mustGrant(test, service, "editor", 25)

	created, err := service.SubmitSuggestion(context.Background(), "editor", article.ArticleID, "fix the second paragraph")
	if err != nil {
		test.Fatalf("submit suggestion: %v", err)
	}
	if created.State != suggestion.StatePending {
		test.Fatalf("expected pending suggestion, got %s", created.State)
	}
	if got := mustBalance(test, service, "editor"); got != 25-SuggestionFee {
		test.Fatalf("expected balance %d, got %d", 25-SuggestionFee, got)
	}
	fee := store.lastEntryFor(test, "editor")
	if fee.Type != EntryDebit || fee.Ref != RefSuggestion || fee.Amount != SuggestionFee {
		test.Fatalf("unexpected fee entry: %+v", fee)
	}
}

func TestSubmitSuggestionRequiresContent(test *testing.T) {
	test.Parallel()
	store := newStubStore(test)
	service := mustNewService(test, store)

	_, err := service.SubmitSuggestion(context.Background(), "editor", "article-1", "   ")
	if !errors.Is(err, ErrInvalidContent) {
		test.Fatalf(errorMismatchMessage, ErrInvalidContent, err)
	}
}

func TestSubmitSuggestionRejectsUnknownArticle(test *testing.T) {
	test.Parallel()
	store := newStubStore(test)
	service := mustNewService(test, store)
	mustGrant(test, service, "editor", 25)

	_, err := service.SubmitSuggestion(context.Background(), "editor", "missing", "text")
	if !errors.Is(err, ErrUnknownArticle) {
		test.Fatalf(errorMismatchMessage, ErrUnknownArticle, err)
	}
}

func TestSubmitSuggestionRejectsSecondOpenSuggestion(test *testing.T) {
	test.Parallel()
	store := newStubStore(test)
	service := mustNewService(test, store)
	article := seedArticle(test, store, Article{AuthorID: "author"})
	mustGrant(test, service, "editor", 50)

	if _, err := service.SubmitSuggestion(context.Background(), "editor", article.ArticleID, "first"); err != nil {
		test.Fatalf("first suggestion: %v", err)
	}
	_, err := service.SubmitSuggestion(context.Background(), "editor", article.ArticleID, "second")
	if !errors.Is(err, ErrSuggestionOpen) {
		test.Fatalf(errorMismatchMessage, ErrSuggestionOpen, err)
	}
}

func TestSubmitSuggestionRejectsInsufficientFunds(test *testing.T) {
	test.Parallel()
	store := newStubStore(test)
	service := mustNewService(test, store)
	article := seedArticle(test, store, Article{AuthorID: "author"})
	mustGrant(test, service, "editor", SuggestionFee-1)

	_, err := service.SubmitSuggestion(context.Background(), "editor", article.ArticleID, "text")
	if !errors.Is(err, ErrInsufficientFunds) {
		test.Fatalf(errorMismatchMessage, ErrInsufficientFunds, err)
	}
	if len(store.suggestions) != 0 {
		test.Fatalf("expected no suggestions, got %d", len(store.suggestions))
	}
}

func TestReviewSuggestionAppliesTransition(test *testing.T) {
	test.Parallel()
	store := newStubStore(test)
	service := mustNewService(test, store)
	article := seedArticle(test, store, Article{AuthorID: "author"})
	mustGrant(test, service, "editor", 50)
	created, err := service.SubmitSuggestion(context.Background(), "editor", article.ArticleID, "text")
	if err != nil {
		test.Fatalf("submit suggestion: %v", err)
	}

	state, err := service.ReviewSuggestion(context.Background(), "author", created.SuggestionID, suggestion.ActionApprove)
	if err != nil {
		test.Fatalf("review suggestion: %v", err)
	}
	if state != suggestion.StateApproved {
		test.Fatalf("expected approved, got %s", state)
	}
	if store.suggestions[created.SuggestionID].State != suggestion.StateApproved {
		test.Fatal("expected stored state to be approved")
	}
}

func TestReviewSuggestionInvalidActionIsNoOp(test *testing.T) {
	test.Parallel()
	store := newStubStore(test)
	service := mustNewService(test, store)
	article := seedArticle(test, store, Article{AuthorID: "author"})
	mustGrant(test, service, "editor", 50)
	created, err := service.SubmitSuggestion(context.Background(), "editor", article.ArticleID, "text")
	if err != nil {
		test.Fatalf("submit suggestion: %v", err)
	}

	state, err := service.ReviewSuggestion(context.Background(), "author", created.SuggestionID, suggestion.ActionFinal)
	if err != nil {
		test.Fatalf("review suggestion: %v", err)
	}
	if state != suggestion.StatePending {
		test.Fatalf("expected unchanged pending state, got %s", state)
	}
}

func TestReviewSuggestionRejectsNonAuthor(test *testing.T) {
	test.Parallel()
	store := newStubStore(test)
	service := mustNewService(test, store)
	article := seedArticle(test, store, Article{AuthorID: "author"})
	mustGrant(test, service, "editor", 50)
	created, err := service.SubmitSuggestion(context.Background(), "editor", article.ArticleID, "text")
	if err != nil {
		test.Fatalf("submit suggestion: %v", err)
	}

	_, err = service.ReviewSuggestion(context.Background(), "editor", created.SuggestionID, suggestion.ActionApprove)
	if !errors.Is(err, ErrNotAuthor) {
		test.Fatalf(errorMismatchMessage, ErrNotAuthor, err)
	}
}

func TestReviewSuggestionFullLifecycle(test *testing.T) {
	test.Parallel()
	store := newStubStore(test)
	service := mustNewService(test, store)
	article := seedArticle(test, store, Article{AuthorID: "author"})
	mustGrant(test, service, "editor", 50)
	created, err := service.SubmitSuggestion(context.Background(), "editor", article.ArticleID, "text")
	if err != nil {
		test.Fatalf("submit suggestion: %v", err)
	}

	steps := []struct {
		action suggestion.Action
		want   suggestion.State
	}{
		{action: suggestion.ActionReject, want: suggestion.StateRejected},
		{action: suggestion.ActionAppeal, want: suggestion.StateAppeal},
		{action: suggestion.ActionFinal, want: suggestion.StateFinal},
	}
	for _, step := range steps {
		state, err := service.ReviewSuggestion(context.Background(), "author", created.SuggestionID, step.action)
		if err != nil {
			test.Fatalf("review %s: %v", step.action, err)
		}
		if state != step.want {
			test.Fatalf("expected %s after %s, got %s", step.want, step.action, state)
		}
	}
}

func TestReviewSuggestionRejectsUnknownSuggestion(test *testing.T) {
	test.Parallel()
	store := newStubStore(test)
	service := mustNewService(test, store)

	_, err := service.ReviewSuggestion(context.Background(), "author", "missing", suggestion.ActionApprove)
	if !errors.Is(err, ErrUnknownSuggestion) {
		test.Fatalf(errorMismatchMessage, ErrUnknownSuggestion, err)
	}
}
