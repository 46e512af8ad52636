package wallet

import (
	"context"
	"errors"
	"testing"
)

func seedArticle(test *testing.T, store *stubStore, article Article) Article {
	test.Helper()
	created, err := store.InsertArticle(context.Background(), article)
	if err != nil {
		test.Fatalf("seed article: %v", err)
	}
	return created
}

func TestUpgradePremiumChargesFlatFee(test *testing.T) {
	test.Parallel()
	store := newStubStore(test)
	service := mustNewService(test, store)
	article := seedArticle(test, store, Article{AuthorID: "author", Title: "draft"})
	mustGrant(test, service, "author", 200)

	if err := service.UpgradePremium(context.Background(), "author", article.ArticleID, 149); err != nil {
		test.Fatalf("upgrade premium: %v", err)
	}
	if got := mustBalance(test, service, "author"); got != 200-PremiumUpgradeFee {
		test.Fatalf("expected balance %d, got %d", 200-PremiumUpgradeFee, got)
	}
	upgraded := store.articles[article.ArticleID]
	if !upgraded.IsPremium {
		test.Fatal("expected article to be premium")
	}
	if upgraded.Price != 149 {
		test.Fatalf("expected price 149, got %d", upgraded.Price)
	}
	debit := store.lastEntryFor(test, "author")
	if debit.Type != EntryDebit || debit.Ref != RefPremiumArticle || debit.Amount != PremiumUpgradeFee {
		test.Fatalf("unexpected fee entry: %+v", debit)
	}
}

func TestUpgradePremiumAllowsZeroPrice(test *testing.T) {
	test.Parallel()
	store := newStubStore(test)
	service := mustNewService(test, store)
	article := seedArticle(test, store, Article{AuthorID: "author"})
	mustGrant(test, service, "author", PremiumUpgradeFee)

	if err := service.UpgradePremium(context.Background(), "author", article.ArticleID, 0); err != nil {
		test.Fatalf("upgrade premium: %v", err)
	}
	if !store.articles[article.ArticleID].IsPremium {
		test.Fatal("expected article to be premium")
	}
}

func TestUpgradePremiumRejectsNegativePrice(test *testing.T) {
	test.Parallel()
	store := newStubStore(test)
	service := mustNewService(test, store)

	err := service.UpgradePremium(context.Background(), "author", "article-1", -1)
	if !errors.Is(err, ErrInvalidAmount) {
		test.Fatalf(errorMismatchMessage, ErrInvalidAmount, err)
	}
}

func TestUpgradePremiumRejectsForeignArticle(test *testing.T) {
	test.Parallel()
	store := newStubStore(test)
	service := mustNewService(test, store)
	article := seedArticle(test, store, Article{AuthorID: "author"})
	mustGrant(test, service, "intruder", 500)

	err := service.UpgradePremium(context.Background(), "intruder", article.ArticleID, 10)
	if !errors.Is(err, ErrNotAuthor) {
		test.Fatalf(errorMismatchMessage, ErrNotAuthor, err)
	}
	if got := mustBalance(test, service, "intruder"); got != 500 {
		test.Fatalf("expected balance unchanged at 500, got %d", got)
	}
}

func TestUpgradePremiumTreatsMissingArticleAsForeign(test *testing.T) {
	test.Parallel()
	store := newStubStore(test)
	service := mustNewService(test, store)

	err := service.UpgradePremium(context.Background(), "author", "missing", 10)
	if !errors.Is(err, ErrNotAuthor) {
		test.Fatalf(errorMismatchMessage, ErrNotAuthor, err)
	}
}

func TestUpgradePremiumRejectsInsufficientFunds(test *testing.T) {
	test.Parallel()
	store := newStubStore(test)
	service := mustNewService(test, store)
	article := seedArticle(test, store, Article{AuthorID: "author"})
	mustGrant(test, service, "author", PremiumUpgradeFee-1)

	err := service.UpgradePremium(context.Background(), "author", article.ArticleID, 10)
	if !errors.Is(err, ErrInsufficientFunds) {
		test.Fatalf(errorMismatchMessage, ErrInsufficientFunds, err)
	}
	if store.articles[article.ArticleID].IsPremium {
		test.Fatal("expected article to stay non-premium")
	}
}

func TestUnlockArticlePaysFlooredRoyalty(test *testing.T) {
	test.Parallel()
	store := newStubStore(test)
	service := mustNewService(test, store)
	article := seedArticle(test, store, Article{AuthorID: "author", IsPremium: true, Price: 149})
	mustGrant(test, service, "buyer", 200)

	authorShare, err := service.UnlockArticle(context.Background(), "buyer", article.ArticleID)
	if err != nil {
		test.Fatalf("unlock: %v", err)
	}
	if authorShare != 29 {
		test.Fatalf("expected floored author share 29, got %d", authorShare)
	}
	if got := mustBalance(test, service, "buyer"); got != 51 {
		test.Fatalf("expected buyer balance 51, got %d", got)
	}
	if got := mustBalance(test, service, "author"); got != 29 {
		test.Fatalf("expected author balance 29, got %d", got)
	}
	if len(store.unlocks) != 1 {
		test.Fatalf("expected 1 unlock record, got %d", len(store.unlocks))
	}
	royalty := store.lastEntryFor(test, "author")
	if royalty.Ref != RefPremiumRoyalty {
		test.Fatalf("expected royalty ref, got %s", royalty.Ref)
	}
}

func TestUnlockArticleFreePremiumWritesOnlyUnlock(test *testing.T) {
	test.Parallel()
	store := newStubStore(test)
	service := mustNewService(test, store)
	article := seedArticle(test, store, Article{AuthorID: "author", IsPremium: true, Price: 0})

	authorShare, err := service.UnlockArticle(context.Background(), "buyer", article.ArticleID)
	if err != nil {
		test.Fatalf("unlock: %v", err)
	}
	if authorShare != 0 {
		test.Fatalf("expected zero author share, got %d", authorShare)
	}
	if len(store.entries) != 0 {
		test.Fatalf("expected no ledger entries, got %d", len(store.entries))
	}
	if len(store.unlocks) != 1 {
		test.Fatalf("expected 1 unlock record, got %d", len(store.unlocks))
	}
}

func TestUnlockArticleLowPriceSkipsRoyaltyEntry(test *testing.T) {
	test.Parallel()
	store := newStubStore(test)
	service := mustNewService(test, store)
	article := seedArticle(test, store, Article{AuthorID: "author", IsPremium: true, Price: 4})
	mustGrant(test, service, "buyer", 10)

	authorShare, err := service.UnlockArticle(context.Background(), "buyer", article.ArticleID)
	if err != nil {
		test.Fatalf("unlock: %v", err)
	}
	if authorShare != 0 {
		test.Fatalf("expected zero author share for price 4, got %d", authorShare)
	}
	if got := mustBalance(test, service, "author"); got != 0 {
		test.Fatalf("expected author balance 0, got %d", got)
	}
	if got := mustBalance(test, service, "buyer"); got != 6 {
		test.Fatalf("expected buyer balance 6, got %d", got)
	}
}

func TestUnlockArticleRejectsNonPremium(test *testing.T) {
	test.Parallel()
	store := newStubStore(test)
	service := mustNewService(test, store)
	article := seedArticle(test, store, Article{AuthorID: "author"})

	_, err := service.UnlockArticle(context.Background(), "buyer", article.ArticleID)
	if !errors.Is(err, ErrArticleNotPremium) {
		test.Fatalf(errorMismatchMessage, ErrArticleNotPremium, err)
	}
}

func TestUnlockArticleRejectsUnknownArticle(test *testing.T) {
	test.Parallel()
	store := newStubStore(test)
	service := mustNewService(test, store)

	_, err := service.UnlockArticle(context.Background(), "buyer", "missing")
	if !errors.Is(err, ErrUnknownArticle) {
		test.Fatalf(errorMismatchMessage, ErrUnknownArticle, err)
	}
}

func TestUnlockArticleRejectsInsufficientFunds(test *testing.T) {
	test.Parallel()
	store := newStubStore(test)
	service := mustNewService(test, store)
	article := seedArticle(test, store, Article{AuthorID: "author", IsPremium: true, Price: 50})
	mustGrant(test, service, "buyer", 49)

	_, err := service.UnlockArticle(context.Background(), "buyer", article.ArticleID)
	if !errors.Is(err, ErrInsufficientFunds) {
		test.Fatalf(errorMismatchMessage, ErrInsufficientFunds, err)
	}
	if len(store.unlocks) != 0 {
		test.Fatalf("expected no unlock records, got %d", len(store.unlocks))
	}
}

func TestUnlockArticleRepeatPurchaseChargesAgain(test *testing.T) {
	test.Parallel()
	store := newStubStore(test)
	service := mustNewService(test, store)
	article := seedArticle(test, store, Article{AuthorID: "author", IsPremium: true, Price: 10})
	mustGrant(test, service, "buyer", 30)

	for round := 0; round < 2; round++ {
		if _, err := service.UnlockArticle(context.Background(), "buyer", article.ArticleID); err != nil {
			test.Fatalf("unlock round %d: %v", round, err)
		}
	}
	if got := mustBalance(test, service, "buyer"); got != 10 {
		test.Fatalf("expected buyer balance 10 after two purchases, got %d", got)
	}
	if len(store.unlocks) != 2 {
		test.Fatalf("expected 2 unlock records, got %d", len(store.unlocks))
	}
}
