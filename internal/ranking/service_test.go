package ranking

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/hanbyul-dev/matchup/internal/item"
	"github.com/hanbyul-dev/matchup/internal/topic"
)

func newTestRanking(t *testing.T) (*Service, *topic.InMemoryRepository, *item.InMemoryRepository) {
	t.Helper()
	topics := topic.NewInMemoryRepository()
	items := item.NewInMemoryRepository()
	return NewService(topics, items, nil), topics, items
}

func TestRanking_ByRating(t *testing.T) {
	svc, topics, items := newTestRanking(t)
	ctx := context.Background()

	top := &topic.Topic{Title: "battle", Mode: "A"}
	if err := topics.Create(ctx, top); err != nil {
		t.Fatalf("Create topic failed: %v", err)
	}
	ratings := []int{1400, 1700, 1550}
	for i, r := range ratings {
		it := &item.Item{TopicID: top.ID, Name: fmt.Sprintf("i%d", i), Rating: r}
		if err := items.Create(ctx, it); err != nil {
			t.Fatalf("Create item failed: %v", err)
		}
	}

	rows, err := svc.Ranking(ctx, top.ID)
	if err != nil {
		t.Fatalf("Ranking failed: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("Expected 3 rows, got %d", len(rows))
	}
	if rows[0].Rating != 1700 || rows[2].Rating != 1400 {
		t.Errorf("Expected rating order, got %d..%d", rows[0].Rating, rows[2].Rating)
	}
}

func TestRanking_FactUsesCuratedOrder(t *testing.T) {
	svc, topics, items := newTestRanking(t)
	ctx := context.Background()

	top := &topic.Topic{Title: "tallest mountains", ViewType: "FACT"}
	if err := topics.Create(ctx, top); err != nil {
		t.Fatalf("Create topic failed: %v", err)
	}
	// Curated order disagrees with ratings on purpose.
	seed := []*item.Item{
		{TopicID: top.ID, Name: "second", RankOrder: 2, Rating: 3000},
		{TopicID: top.ID, Name: "first", RankOrder: 1, Rating: 100},
	}
	for _, it := range seed {
		if err := items.Create(ctx, it); err != nil {
			t.Fatalf("Create item failed: %v", err)
		}
	}

	rows, err := svc.Ranking(ctx, top.ID)
	if err != nil {
		t.Fatalf("Ranking failed: %v", err)
	}
	if rows[0].Name != "first" || rows[1].Name != "second" {
		t.Errorf("Fact topics must rank by curated order: %s, %s", rows[0].Name, rows[1].Name)
	}
}

func TestRanking_DeltaAcrossCalls(t *testing.T) {
	svc, topics, items := newTestRanking(t)
	ctx := context.Background()

	top := &topic.Topic{Title: "battle", Mode: "A"}
	if err := topics.Create(ctx, top); err != nil {
		t.Fatalf("Create topic failed: %v", err)
	}
	a := &item.Item{TopicID: top.ID, Name: "a", Rating: 1600}
	b := &item.Item{TopicID: top.ID, Name: "b", Rating: 1500}
	for _, it := range []*item.Item{a, b} {
		if err := items.Create(ctx, it); err != nil {
			t.Fatalf("Create item failed: %v", err)
		}
	}

	// First call snapshots a=1, b=2 with zero deltas.
	rows, err := svc.Ranking(ctx, top.ID)
	if err != nil {
		t.Fatalf("Ranking failed: %v", err)
	}
	if rows[0].Delta != 0 || rows[1].Delta != 0 {
		t.Errorf("First projection should have zero deltas: %+v", rows)
	}

	// b overtakes a.
	aCur, _ := items.GetByID(ctx, a.ID)
	bCur, _ := items.GetByID(ctx, b.ID)
	bCur.Rating = 1700
	bCur.Wins, bCur.Matches = 1, 1
	aCur.Losses, aCur.Matches = 1, 1
	if err := items.ApplyOutcome(ctx, bCur, aCur); err != nil {
		t.Fatalf("ApplyOutcome failed: %v", err)
	}

	rows, err = svc.Ranking(ctx, top.ID)
	if err != nil {
		t.Fatalf("Ranking failed: %v", err)
	}
	if rows[0].ItemID != b.ID {
		t.Fatalf("Expected b first after overtake, got %s", rows[0].ItemID)
	}
	if rows[0].Delta != 1 {
		t.Errorf("Expected b delta +1, got %d", rows[0].Delta)
	}
	if rows[1].Delta != -1 {
		t.Errorf("Expected a delta -1, got %d", rows[1].Delta)
	}
}

func TestRanking_TopicNotFound(t *testing.T) {
	svc, _, _ := newTestRanking(t)
	_, err := svc.Ranking(context.Background(), "missing")
	if !errors.Is(err, topic.ErrTopicNotFound) {
		t.Errorf("Expected ErrTopicNotFound, got %v", err)
	}
}

func TestRanking_EmptyTopic(t *testing.T) {
	svc, topics, _ := newTestRanking(t)
	ctx := context.Background()

	top := &topic.Topic{Title: "empty", Mode: "A"}
	if err := topics.Create(ctx, top); err != nil {
		t.Fatalf("Create topic failed: %v", err)
	}

	rows, err := svc.Ranking(ctx, top.ID)
	if err != nil {
		t.Fatalf("Ranking failed: %v", err)
	}
	if len(rows) != 0 {
		t.Errorf("Expected empty projection, got %d rows", len(rows))
	}
}
