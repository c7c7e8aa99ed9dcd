package usecase

import (
	"context"
	"errors"
	"testing"

	"ContentPipeline/internal/domain"
)

func TestToRowKeepsEveryField(t *testing.T) {
	t.Parallel()

	item := domain.EnrichedItem{
		RawItem: domain.RawItem{
			Title:    "Puppy teeth",
			URL:      "https://petmd.com/teeth",
			Source:   "PetMD",
			ImageURL: "https://petmd.com/teeth.jpg",
			Category: "health",
		},
		SuggestedTitleKo: "강아지 이빨 관리",
		SummaryKo:        "요약",
	}

	row := ToRow(item)
	if row.OriginalURL != item.URL || row.ImageURL != item.ImageURL || row.SourceName != item.Source {
		t.Fatalf("renamed fields lost: %+v", row)
	}
	if row.Category != item.Category || row.SuggestedTitleKo != item.SuggestedTitleKo || row.SummaryKo != item.SummaryKo {
		t.Fatalf("copied fields lost: %+v", row)
	}
	if row.InitialDraftMarkdown != nil {
		t.Fatalf("draft should stay empty, got %q", *row.InitialDraftMarkdown)
	}
}

func TestPublisherInsertsOnce(t *testing.T) {
	t.Parallel()

	repo := &fakeRepository{}
	p := NewPublisher(repo, testLogger, nil)

	items := []domain.EnrichedItem{
		{RawItem: domain.RawItem{URL: "https://a"}, SuggestedTitleKo: "가", SummaryKo: "가"},
		{RawItem: domain.RawItem{URL: "https://b"}, SuggestedTitleKo: "나", SummaryKo: "나"},
	}
	n, err := p.Publish(context.Background(), items)
	if err != nil {
		t.Fatalf("Publish error: %v", err)
	}
	if n != 2 || len(repo.batches) != 1 || len(repo.batches[0]) != 2 {
		t.Fatalf("expected one batch of 2, got n=%d batches=%v", n, repo.batches)
	}
}

func TestPublisherInsertFailure(t *testing.T) {
	t.Parallel()

	boom := errors.New("unique violation")
	p := NewPublisher(&fakeRepository{err: boom}, testLogger, nil)

	_, err := p.Publish(context.Background(), []domain.EnrichedItem{{}})
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped insert error, got %v", err)
	}
}

func TestPublisherMissingConfigSkipsInsert(t *testing.T) {
	t.Parallel()

	repo := &fakeRepository{validateErr: domain.NewMissingConfig("publisher", "SUPABASE_URL")}
	p := NewPublisher(repo, testLogger, nil)

	_, err := p.Publish(context.Background(), []domain.EnrichedItem{{}})
	if !errors.Is(err, domain.ErrMissingConfig) {
		t.Fatalf("expected ErrMissingConfig, got %v", err)
	}
	if len(repo.batches) != 0 {
		t.Fatal("insert must not be attempted")
	}
}
