package store

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/rcliao/menu-cache/internal/model"
)

// DefaultCollection is the Firestore collection holding cached menus.
const DefaultCollection = "cached_menus"

const revisionsCollection = "revisions"

// FirestoreStore implements Store on Cloud Firestore. Each restaurant is one
// document keyed by restaurant id, with a revisions subcollection.
type FirestoreStore struct {
	client     *firestore.Client
	collection string
}

// NewFirestoreStore connects to Firestore. The emulator is used when
// FIRESTORE_EMULATOR_HOST is set.
func NewFirestoreStore(ctx context.Context, projectID, collection string) (*FirestoreStore, error) {
	if projectID == "" {
		return nil, errors.New("firestore project id is required")
	}
	if collection == "" {
		collection = DefaultCollection
	}
	client, err := firestore.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("firestore client: %w", err)
	}
	return &FirestoreStore{client: client, collection: collection}, nil
}

type firestoreItem struct {
	Description string `firestore:"description"`
	Category    string `firestore:"category,omitempty"`
	Available   *bool  `firestore:"available,omitempty"`
	Popular     bool   `firestore:"popular,omitempty"`
	Recommended bool   `firestore:"recommended,omitempty"`
	Spicy       bool   `firestore:"spicy,omitempty"`
}

type firestoreMenuDoc struct {
	RestaurantID    string                   `firestore:"restaurantId"`
	RestaurantName  string                   `firestore:"restaurantName"`
	Menu            map[string]firestoreItem `firestore:"menu"`
	Source          string                   `firestore:"source"`
	ReviewsAnalyzed int                      `firestore:"reviewsAnalyzed"`
	ItemCount       int                      `firestore:"itemCount"`
	LastUpdated     time.Time                `firestore:"lastUpdated"`
	CachedAt        time.Time                `firestore:"cachedAt"`
	Version         int                      `firestore:"version"`
	RevisionID      string                   `firestore:"revisionId"`
}

type firestoreRevisionDoc struct {
	ID         string           `firestore:"id"`
	Version    int              `firestore:"version"`
	Supersedes string           `firestore:"supersedes,omitempty"`
	CreatedAt  time.Time        `firestore:"createdAt"`
	Record     firestoreMenuDoc `firestore:"record"`
}

func toDoc(rec *model.CachedMenuRecord) firestoreMenuDoc {
	doc := firestoreMenuDoc{
		RestaurantID:    rec.RestaurantID,
		RestaurantName:  rec.RestaurantName,
		Menu:            make(map[string]firestoreItem, len(rec.Menu)),
		Source:          string(rec.Source),
		ReviewsAnalyzed: rec.ReviewsAnalyzed,
		ItemCount:       len(rec.Menu),
		LastUpdated:     rec.LastUpdated.UTC(),
		CachedAt:        rec.CachedAt.UTC(),
	}
	for name, item := range rec.Menu {
		doc.Menu[name] = firestoreItem{
			Description: item.Description,
			Category:    item.Category,
			Available:   item.Available,
			Popular:     item.Popular,
			Recommended: item.Recommended,
			Spicy:       item.Spicy,
		}
	}
	return doc
}

func (d firestoreMenuDoc) record() *model.CachedMenuRecord {
	rec := &model.CachedMenuRecord{
		RestaurantID:    d.RestaurantID,
		RestaurantName:  d.RestaurantName,
		Menu:            model.Menu{},
		Source:          model.Provenance(d.Source),
		ReviewsAnalyzed: d.ReviewsAnalyzed,
		LastUpdated:     d.LastUpdated,
		CachedAt:        d.CachedAt,
	}
	for name, item := range d.Menu {
		rec.Menu.Add(model.MenuItem{
			Name:        name,
			Description: item.Description,
			ItemAttributes: model.ItemAttributes{
				Category:    item.Category,
				Available:   item.Available,
				Popular:     item.Popular,
				Recommended: item.Recommended,
				Spicy:       item.Spicy,
			},
		})
	}
	return rec
}

func isNotFound(err error) bool {
	return status.Code(err) == codes.NotFound
}

// unavailable maps transport-level failures onto ErrStoreUnavailable.
func unavailable(op string, err error) error {
	switch status.Code(err) {
	case codes.Unavailable, codes.DeadlineExceeded, codes.PermissionDenied, codes.Unauthenticated:
		return fmt.Errorf("%s: %w: %v", op, ErrStoreUnavailable, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}

func (s *FirestoreStore) Get(ctx context.Context, id string) (*model.CachedMenuRecord, error) {
	snap, err := s.client.Collection(s.collection).Doc(id).Get(ctx)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, unavailable("get "+id, err)
	}
	var doc firestoreMenuDoc
	if err := snap.DataTo(&doc); err != nil {
		return nil, fmt.Errorf("decode %s: %w", id, err)
	}
	return doc.record(), nil
}

func (s *FirestoreStore) Put(ctx context.Context, rec *model.CachedMenuRecord) error {
	if rec == nil || rec.RestaurantID == "" {
		return errors.New("record requires a restaurant id")
	}
	ref := s.client.Collection(s.collection).Doc(rec.RestaurantID)

	err := s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		doc := toDoc(rec)
		doc.Version = 1
		var supersedes string

		snap, err := tx.Get(ref)
		switch {
		case err == nil:
			var prev firestoreMenuDoc
			if err := snap.DataTo(&prev); err == nil {
				doc.Version = prev.Version + 1
				supersedes = prev.RevisionID
			}
		case !isNotFound(err):
			return err
		}

		doc.RevisionID = uuid.NewString()
		rev := firestoreRevisionDoc{
			ID:         doc.RevisionID,
			Version:    doc.Version,
			Supersedes: supersedes,
			CreatedAt:  time.Now().UTC(),
			Record:     doc,
		}
		if err := tx.Create(ref.Collection(revisionsCollection).Doc(rev.ID), rev); err != nil {
			return err
		}
		return tx.Set(ref, doc)
	})
	if err != nil {
		return unavailable("put "+rec.RestaurantID, err)
	}
	return nil
}

func (s *FirestoreStore) Delete(ctx context.Context, id string) error {
	ref := s.client.Collection(s.collection).Doc(id)
	if _, err := ref.Get(ctx); err != nil {
		if isNotFound(err) {
			return ErrNotFound
		}
		return unavailable("delete "+id, err)
	}
	if _, err := ref.Delete(ctx); err != nil {
		return unavailable("delete "+id, err)
	}
	return nil
}

func (s *FirestoreStore) List(ctx context.Context, p ListParams) ([]*model.CachedMenuRecord, error) {
	q := s.client.Collection(s.collection).Query
	if p.Source != "" {
		q = q.Where("source", "==", string(p.Source))
	} else {
		q = q.OrderBy("cachedAt", firestore.Desc)
		if limit := p.limit(); limit > 0 {
			q = q.Limit(limit)
		}
	}

	snaps, err := q.Documents(ctx).GetAll()
	if err != nil {
		return nil, unavailable("list", err)
	}

	records := make([]*model.CachedMenuRecord, 0, len(snaps))
	for _, snap := range snaps {
		var doc firestoreMenuDoc
		if err := snap.DataTo(&doc); err != nil {
			return nil, fmt.Errorf("decode %s: %w", snap.Ref.ID, err)
		}
		records = append(records, doc.record())
	}

	// Source-filtered queries are ordered client side to avoid a composite index.
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].CachedAt.After(records[j].CachedAt)
	})
	if limit := p.limit(); limit > 0 && len(records) > limit {
		records = records[:limit]
	}
	return records, nil
}

func (s *FirestoreStore) History(ctx context.Context, id string, limit int) ([]Revision, error) {
	if limit <= 0 {
		limit = 20
	}
	snaps, err := s.client.Collection(s.collection).Doc(id).Collection(revisionsCollection).
		OrderBy("version", firestore.Desc).Limit(limit).Documents(ctx).GetAll()
	if err != nil {
		return nil, unavailable("history "+id, err)
	}

	revs := make([]Revision, 0, len(snaps))
	for _, snap := range snaps {
		var doc firestoreRevisionDoc
		if err := snap.DataTo(&doc); err != nil {
			return nil, fmt.Errorf("decode revision %s: %w", snap.Ref.ID, err)
		}
		rec := doc.Record.record()
		revs = append(revs, Revision{
			ID:              doc.ID,
			RestaurantID:    id,
			Version:         doc.Version,
			Supersedes:      doc.Supersedes,
			Source:          rec.Source,
			ReviewsAnalyzed: rec.ReviewsAnalyzed,
			ItemCount:       doc.Record.ItemCount,
			CreatedAt:       doc.CreatedAt,
			Record:          rec,
		})
	}
	return revs, nil
}

func (s *FirestoreStore) Stats(ctx context.Context) (*Stats, error) {
	st := &Stats{Backend: "firestore", Path: s.collection}

	snaps, err := s.client.Collection(s.collection).Select("source", "itemCount", "version").Documents(ctx).GetAll()
	if err != nil {
		return st, unavailable("stats", err)
	}

	counts := map[model.Provenance]int{}
	for _, snap := range snaps {
		var doc firestoreMenuDoc
		if err := snap.DataTo(&doc); err != nil {
			continue
		}
		st.Restaurants++
		st.Items += doc.ItemCount
		st.Revisions += doc.Version
		counts[model.Provenance(doc.Source)]++
	}
	for src, n := range counts {
		st.BySource = append(st.BySource, SourceStats{Source: src, Count: n})
	}
	sort.Slice(st.BySource, func(i, j int) bool {
		if st.BySource[i].Count != st.BySource[j].Count {
			return st.BySource[i].Count > st.BySource[j].Count
		}
		return st.BySource[i].Source < st.BySource[j].Source
	})
	return st, nil
}

func (s *FirestoreStore) Close() error {
	return s.client.Close()
}
