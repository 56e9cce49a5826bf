package retrieval_test

import (
	"context"
	"testing"

	"github.com/robolearn/robolearn/internal/content"
	"github.com/robolearn/robolearn/internal/retrieval"
	"github.com/robolearn/robolearn/internal/testutil"
)

// TestIndexAndSearch exercises the full index-then-search path against a
// real pgvector instance. Identical text always embeds to the same mock
// vector, so an exact-text query must return its own passage first with
// a score of ~1.
func TestIndexAndSearch(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}

	db, cleanup := testutil.SetupTestDB(t)
	defer cleanup()

	g := testutil.NewGenkit(t)
	embedder := testutil.NewMockEmbedder(retrieval.EmbeddingDim).Register(g)

	indexer, err := retrieval.NewIndexer(db.Pool, embedder, nil)
	if err != nil {
		t.Fatalf("NewIndexer: %v", err)
	}
	searcher, err := retrieval.NewSearcher(db.Pool, embedder, 5, nil)
	if err != nil {
		t.Fatalf("NewSearcher: %v", err)
	}

	ctx := context.Background()
	topicsText := "Topics carry typed messages between publishers and subscribers."
	servicesText := "Services provide synchronous request and response communication."

	for _, ch := range []content.Chapter{
		{ID: "ch03", Title: "Topics", Body: topicsText},
		{ID: "ch04", Title: "Services", Body: servicesText},
	} {
		n, err := indexer.IndexChapter(ctx, ch)
		if err != nil {
			t.Fatalf("IndexChapter(%s): %v", ch.ID, err)
		}
		if n != 1 {
			t.Fatalf("IndexChapter(%s) = %d passages, want 1", ch.ID, n)
		}
	}

	matches, err := searcher.Search(ctx, topicsText)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(matches) != 2 {
		t.Fatalf("matches = %d, want 2", len(matches))
	}
	if matches[0].Passage != topicsText {
		t.Errorf("top match = %q, want the topics passage", matches[0].Passage)
	}
	if matches[0].Score < 0.99 {
		t.Errorf("exact-text score = %f, want ~1", matches[0].Score)
	}
	if matches[0].SourceRef != "Topics §1" {
		t.Errorf("source_ref = %q", matches[0].SourceRef)
	}

	// Chapter scoping excludes everything else.
	scoped, err := searcher.Search(ctx, topicsText, retrieval.WithChapter("ch04"))
	if err != nil {
		t.Fatalf("scoped Search: %v", err)
	}
	if len(scoped) != 1 || scoped[0].Passage != servicesText {
		t.Errorf("scoped matches = %+v, want only the services passage", scoped)
	}
}

// TestReindexReplacesPassages verifies re-indexing drops stale passages.
func TestReindexReplacesPassages(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}

	db, cleanup := testutil.SetupTestDB(t)
	defer cleanup()

	g := testutil.NewGenkit(t)
	embedder := testutil.NewMockEmbedder(retrieval.EmbeddingDim).Register(g)

	indexer, err := retrieval.NewIndexer(db.Pool, embedder, nil)
	if err != nil {
		t.Fatalf("NewIndexer: %v", err)
	}
	searcher, err := retrieval.NewSearcher(db.Pool, embedder, 10, nil)
	if err != nil {
		t.Fatalf("NewSearcher: %v", err)
	}

	ctx := context.Background()
	ch := content.Chapter{ID: "ch01", Title: "Intro", Body: "Original text about nodes."}
	if _, err := indexer.IndexChapter(ctx, ch); err != nil {
		t.Fatalf("IndexChapter: %v", err)
	}

	ch.Body = "Revised text about nodes and lifecycles."
	if _, err := indexer.IndexChapter(ctx, ch); err != nil {
		t.Fatalf("reindex: %v", err)
	}

	matches, err := searcher.Search(ctx, "nodes", retrieval.WithChapter("ch01"))
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(matches) != 1 {
		t.Fatalf("matches = %d, want 1 after reindex", len(matches))
	}
	if matches[0].Passage != "Revised text about nodes and lifecycles." {
		t.Errorf("stale passage survived reindex: %q", matches[0].Passage)
	}
}
