// Package model defines the core menu and restaurant data types.
package model

import (
	"sort"
	"time"
)

// Review is a single customer review as returned by the places provider.
type Review struct {
	Text        string    `json:"text"`
	PublishTime time.Time `json:"publish_time"`
}

// RestaurantProfile is a read-only snapshot of a restaurant fetched for one
// orchestration run. Reviews are ordered newest first.
type RestaurantProfile struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	Types   []string `json:"types,omitempty"`
	Reviews []Review `json:"reviews,omitempty"`
}

// SortReviewsNewestFirst orders reviews by publish time, newest first.
// Reviews without a timestamp keep their relative order after dated ones.
func SortReviewsNewestFirst(reviews []Review) {
	sort.SliceStable(reviews, func(i, j int) bool {
		a, b := reviews[i].PublishTime, reviews[j].PublishTime
		if a.IsZero() || b.IsZero() {
			return !a.IsZero() && b.IsZero()
		}
		return a.After(b)
	})
}

// Newest returns the most recent review, or false if there are none.
func (p *RestaurantProfile) Newest() (Review, bool) {
	if p == nil || len(p.Reviews) == 0 {
		return Review{}, false
	}
	return p.Reviews[0], true
}

// ReviewTexts returns the bodies of reviews in [from, to), clamped to the
// available range.
func (p *RestaurantProfile) ReviewTexts(from, to int) []string {
	if p == nil {
		return nil
	}
	if from < 0 {
		from = 0
	}
	if to > len(p.Reviews) {
		to = len(p.Reviews)
	}
	if from >= to {
		return nil
	}
	texts := make([]string, 0, to-from)
	for _, r := range p.Reviews[from:to] {
		texts = append(texts, r.Text)
	}
	return texts
}
