package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"sitebuilder/internal/domain"
)

const mongoTimeout = 10 * time.Second

// MongoStore implements domain.PageStore and domain.SnapshotStore on
// MongoDB. Each page's snapshot is a single document, so a save replaces
// components and selection in one atomic write.
type MongoStore struct {
	client    *mongo.Client
	pages     *mongo.Collection
	snapshots *mongo.Collection
}

type mongoSnapshot struct {
	PageID     string           `bson:"_id"`
	Components []mongoComponent `bson:"components"`
	SelectedID string           `bson:"selectedId"`
	SavedAt    time.Time        `bson:"savedAt"`
}

// Props are kept as JSON text so nested values round-trip as plain
// []any/map[string]any instead of driver document types.
type mongoComponent struct {
	ID        string `bson:"id"`
	ParentID  string `bson:"parentId"`
	Type      string `bson:"type"`
	Order     int    `bson:"order"`
	PropsJSON string `bson:"propsJson"`
}

// OpenMongo connects to uri and uses database dbName.
func OpenMongo(ctx context.Context, uri, dbName string) (*MongoStore, error) {
	if dbName == "" {
		dbName = "sitebuilder"
	}
	client, err := mongo.Connect(options.Client().ApplyURI(uri).SetConnectTimeout(mongoTimeout))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, mongoTimeout)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo ping: %w", err)
	}
	db := client.Database(dbName)
	return &MongoStore{
		client:    client,
		pages:     db.Collection("pages"),
		snapshots: db.Collection("snapshots"),
	}, nil
}

// Close disconnects the client.
func (s *MongoStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), mongoTimeout)
	defer cancel()
	return s.client.Disconnect(ctx)
}

// mongoNow truncates to the millisecond precision of BSON dates.
func mongoNow() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}

func (s *MongoStore) CreatePage(p *domain.Page) error {
	ctx, cancel := context.WithTimeout(context.Background(), mongoTimeout)
	defer cancel()
	now := mongoNow()
	p.CreatedAt = now
	p.UpdatedAt = now
	if _, err := s.pages.InsertOne(ctx, p); err != nil {
		return fmt.Errorf("insert page: %w", err)
	}
	return nil
}

func (s *MongoStore) GetPage(id string) (*domain.Page, error) {
	ctx, cancel := context.WithTimeout(context.Background(), mongoTimeout)
	defer cancel()
	var p domain.Page
	err := s.pages.FindOne(ctx, bson.M{"_id": id}).Decode(&p)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("get page %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get page: %w", err)
	}
	return &p, nil
}

func (s *MongoStore) ListPages() ([]domain.Page, error) {
	ctx, cancel := context.WithTimeout(context.Background(), mongoTimeout)
	defer cancel()
	cursor, err := s.pages.Find(ctx, bson.D{}, options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("list pages: %w", err)
	}
	var pages []domain.Page
	if err := cursor.All(ctx, &pages); err != nil {
		return nil, fmt.Errorf("decode pages: %w", err)
	}
	return pages, nil
}

func (s *MongoStore) UpdatePage(p *domain.Page) error {
	ctx, cancel := context.WithTimeout(context.Background(), mongoTimeout)
	defer cancel()
	p.UpdatedAt = mongoNow()
	res, err := s.pages.UpdateOne(ctx, bson.M{"_id": p.ID}, bson.M{"$set": bson.M{
		"name":      p.Name,
		"slug":      p.Slug,
		"updatedAt": p.UpdatedAt,
	}})
	if err != nil {
		return fmt.Errorf("update page: %w", err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("update page %s: %w", p.ID, ErrNotFound)
	}
	return nil
}

func (s *MongoStore) DeletePage(id string) error {
	if err := s.DeleteSnapshot(id); err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), mongoTimeout)
	defer cancel()
	if _, err := s.pages.DeleteOne(ctx, bson.M{"_id": id}); err != nil {
		return fmt.Errorf("delete page: %w", err)
	}
	return nil
}

func (s *MongoStore) SaveSnapshot(pageID string, snap domain.Snapshot) error {
	doc := mongoSnapshot{
		PageID:     pageID,
		Components: make([]mongoComponent, 0, len(snap.Components)),
		SelectedID: snap.SelectedID,
		SavedAt:    mongoNow(),
	}
	for _, c := range snap.Components {
		props, err := json.Marshal(c.Props)
		if err != nil {
			return fmt.Errorf("marshal props of %s: %w", c.ID, err)
		}
		doc.Components = append(doc.Components, mongoComponent{
			ID:        c.ID,
			ParentID:  c.ParentID,
			Type:      string(c.Type),
			Order:     c.Order,
			PropsJSON: string(props),
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), mongoTimeout)
	defer cancel()
	_, err := s.snapshots.ReplaceOne(ctx, bson.M{"_id": pageID}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	return nil
}

func (s *MongoStore) LoadSnapshot(pageID string) (domain.Snapshot, error) {
	snap := domain.Snapshot{Components: []domain.Component{}}

	ctx, cancel := context.WithTimeout(context.Background(), mongoTimeout)
	defer cancel()
	var doc mongoSnapshot
	err := s.snapshots.FindOne(ctx, bson.M{"_id": pageID}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return snap, nil
	}
	if err != nil {
		return snap, fmt.Errorf("load snapshot: %w", err)
	}

	for _, mc := range doc.Components {
		c := domain.Component{
			ID:       mc.ID,
			ParentID: mc.ParentID,
			Type:     domain.ComponentType(mc.Type),
			Order:    mc.Order,
		}
		if err := json.Unmarshal([]byte(mc.PropsJSON), &c.Props); err != nil {
			return snap, fmt.Errorf("decode props of %s: %w", mc.ID, err)
		}
		snap.Components = append(snap.Components, c)
	}
	snap.SelectedID = doc.SelectedID
	return snap, nil
}

func (s *MongoStore) DeleteSnapshot(pageID string) error {
	ctx, cancel := context.WithTimeout(context.Background(), mongoTimeout)
	defer cancel()
	if _, err := s.snapshots.DeleteOne(ctx, bson.M{"_id": pageID}); err != nil {
		return fmt.Errorf("delete snapshot: %w", err)
	}
	return nil
}
