package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/Werneck0live/personal-controller/internal/embedding"
	"github.com/Werneck0live/personal-controller/internal/models"
)

var (
	ErrNotFound          = errors.New("record not found")
	ErrDuplicate         = errors.New("duplicate unique key")
	ErrDimensionMismatch = errors.New("vector dimension mismatch")
	ErrUnknownCollection = errors.New("unknown collection")
)

// Store persists records per collection and keeps the vector index.
//
// Get decodes into dst (a pointer to the record type) and List into a
// pointer to a slice. List returns newest first; limit 0 means no limit.
type Store interface {
	Insert(ctx context.Context, rec models.Record) error
	Get(ctx context.Context, collection, id string, dst any) error
	List(ctx context.Context, collection string, limit, skip int64, dst any) error
	Replace(ctx context.Context, rec models.Record) error
	Delete(ctx context.Context, collection, id string) error
	Count(ctx context.Context, collection string) (int64, error)

	Index(ctx context.Context, e IndexEntry) error
	// Unindex drops every vector of one record.
	Unindex(ctx context.Context, collection, id string) error
	Search(ctx context.Context, vector []float32, topK int) ([]Match, error)

	Close(ctx context.Context) error
}

// IndexEntry is one embedded chunk of a record.
type IndexEntry struct {
	ID         string    `bson:"_id" json:"id"`
	Collection string    `bson:"collection" json:"collection"`
	RecordID   string    `bson:"record_id" json:"record_id"`
	Chunk      int       `bson:"chunk" json:"chunk"`
	Text       string    `bson:"text" json:"text"`
	Vector     []float32 `bson:"vector" json:"vector"`
}

// Match is a search hit: the best scoring chunk of one record.
type Match struct {
	ID         string  `json:"id"`
	Collection string  `json:"collection"`
	RecordID   string  `json:"record_id"`
	Score      float32 `json:"score"`
}

// Stats counts records of every known collection.
func Stats(ctx context.Context, s Store) (map[string]int64, error) {
	out := make(map[string]int64, len(models.Collections))
	for _, c := range models.Collections {
		n, err := s.Count(ctx, c)
		if err != nil {
			return nil, fmt.Errorf("count %s: %w", c, err)
		}
		out[c] = n
	}
	return out, nil
}

func checkCollection(c string) error {
	if models.New(c) == nil {
		return fmt.Errorf("%w: %s", ErrUnknownCollection, c)
	}
	return nil
}

// prepare validates and stamps a record before it is written.
func prepare(rec models.Record) error {
	if err := checkCollection(rec.Collection()); err != nil {
		return err
	}
	if rec.GetID() == "" {
		rec.SetID(models.NewID())
	}
	rec.Touch(time.Now().UTC(), "")
	return rec.Validate()
}

// uniqueKey returns the natural key of rec, if it has a non-empty one.
func uniqueKey(rec models.Record) (field, value string, ok bool) {
	k, isKeyed := rec.(models.Keyed)
	if !isKeyed {
		return "", "", false
	}
	field, value = k.UniqueKey()
	return field, value, value != ""
}

// keyField is the unique field of a collection, "" when it has none.
func keyField(collection string) string {
	k, ok := models.New(collection).(models.Keyed)
	if !ok {
		return ""
	}
	f, _ := k.UniqueKey()
	return f
}

// rank scores entries against vector keeping the best chunk per record,
// sorted by score descending (ties keep input order).
func rank(vector []float32, entries []IndexEntry, topK int) ([]Match, error) {
	if topK <= 0 {
		return []Match{}, nil
	}
	best := make(map[string]int)
	out := []Match{}
	for _, e := range entries {
		if len(e.Vector) != len(vector) {
			return nil, fmt.Errorf("%w: entry %s has %d, query %d", ErrDimensionMismatch, e.ID, len(e.Vector), len(vector))
		}
		score, err := embedding.CosineSimilarity(vector, e.Vector)
		if err != nil {
			return nil, err
		}
		key := e.Collection + "/" + e.RecordID
		if i, ok := best[key]; ok {
			if score > out[i].Score {
				out[i].Score = score
				out[i].ID = e.ID
			}
			continue
		}
		best[key] = len(out)
		out = append(out, Match{ID: e.ID, Collection: e.Collection, RecordID: e.RecordID, Score: score})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	if len(out) > topK {
		out = out[:topK]
	}
	return out, nil
}

func checkEntry(e IndexEntry, dim int) error {
	if e.ID == "" || e.RecordID == "" {
		return fmt.Errorf("index entry needs id and record_id")
	}
	if err := checkCollection(e.Collection); err != nil {
		return err
	}
	if len(e.Vector) != dim {
		return fmt.Errorf("%w: got %d, index is %d", ErrDimensionMismatch, len(e.Vector), dim)
	}
	return nil
}

// decodeList turns stored JSON documents into the slice pointed by dst.
func decodeList(docs [][]byte, dst any) error {
	buf := make([]byte, 0, 64*len(docs)+2)
	buf = append(buf, '[')
	for i, d := range docs {
		if i > 0 {
			buf = append(buf, ',')
		}
		buf = append(buf, d...)
	}
	buf = append(buf, ']')
	return json.Unmarshal(buf, dst)
}

// window applies skip/limit to n items and returns the [from, to) range.
func window(n int, limit, skip int64) (int, int) {
	from := int(skip)
	if from > n {
		from = n
	}
	to := n
	if limit > 0 && from+int(limit) < to {
		to = from + int(limit)
	}
	return from, to
}

// ListAll loads every record of a collection as T.
func ListAll[T any](ctx context.Context, s Store, collection string) ([]T, error) {
	items := []T{}
	if err := s.List(ctx, collection, 0, 0, &items); err != nil {
		return nil, err
	}
	return items, nil
}
