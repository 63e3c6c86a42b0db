// Package ranking turns item stats into ordered, rank-numbered rows for
// result views. The projection is pure; persistence of rank snapshots for
// movement deltas lives in the service.
package ranking

import (
	"sort"

	"github.com/hanbyul-dev/matchup/internal/item"
)

// Row is one line of a rendered ranking.
type Row struct {
	ItemID   string `json:"item_id"`
	Name     string `json:"name"`
	ImageURL string `json:"image_url,omitempty"`

	Rating  int `json:"rating"`
	Wins    int `json:"wins"`
	Losses  int `json:"losses"`
	Matches int `json:"matches"`

	// Rank uses competition numbering: tied ratings share a rank and
	// the next distinct rating resumes at its list position.
	Rank int `json:"rank"`

	// Delta is positions gained since the previous snapshot; negative
	// means dropped, zero means unchanged or previously unseen.
	Delta int `json:"delta"`
}

// ByScore projects items into rating order, best first. Equal ratings
// share a rank; after a tie group of size n the next rank jumps by n, so
// two seconds are followed by a fourth. Ties order by name, then ID.
func ByScore(items []*item.Item) []Row {
	sorted := make([]*item.Item, len(items))
	copy(sorted, items)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Rating != sorted[j].Rating {
			return sorted[i].Rating > sorted[j].Rating
		}
		if sorted[i].Name != sorted[j].Name {
			return sorted[i].Name < sorted[j].Name
		}
		return sorted[i].ID < sorted[j].ID
	})

	rows := make([]Row, len(sorted))
	for i, it := range sorted {
		rank := i + 1
		if i > 0 && it.Rating == sorted[i-1].Rating {
			rank = rows[i-1].Rank
		}
		rows[i] = newRow(it, rank)
	}
	return rows
}

// ByOrder projects items in curated order for fact topics. Stats play no
// part; ranks are sequential with no ties. Items sharing a rank_order
// fall back to name order.
func ByOrder(items []*item.Item) []Row {
	sorted := make([]*item.Item, len(items))
	copy(sorted, items)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].RankOrder != sorted[j].RankOrder {
			return sorted[i].RankOrder < sorted[j].RankOrder
		}
		if sorted[i].Name != sorted[j].Name {
			return sorted[i].Name < sorted[j].Name
		}
		return sorted[i].ID < sorted[j].ID
	})

	rows := make([]Row, len(sorted))
	for i, it := range sorted {
		rows[i] = newRow(it, i+1)
	}
	return rows
}

// ApplyDeltas fills each row's Delta from a previous item-to-rank map.
// Items absent from the snapshot keep a zero delta.
func ApplyDeltas(rows []Row, previous map[string]int) {
	for i := range rows {
		if prev, ok := previous[rows[i].ItemID]; ok {
			rows[i].Delta = prev - rows[i].Rank
		}
	}
}

// Ranks extracts the item-to-rank map of a projection, the form stored
// as a snapshot.
func Ranks(rows []Row) map[string]int {
	out := make(map[string]int, len(rows))
	for _, r := range rows {
		out[r.ItemID] = r.Rank
	}
	return out
}

func newRow(it *item.Item, rank int) Row {
	return Row{
		ItemID:   it.ID,
		Name:     it.Name,
		ImageURL: it.ImageURL,
		Rating:   it.Rating,
		Wins:     it.Wins,
		Losses:   it.Losses,
		Matches:  it.Matches,
		Rank:     rank,
	}
}
