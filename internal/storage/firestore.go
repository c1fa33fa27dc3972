package storage

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/pauljones0/offer-catalog/internal/models"
)

const (
	firestoreCollection = "catalog"
	firestoreDocument   = "live"
)

// FirestoreMirror keeps the snapshot in a single Firestore document, so
// each publish overwrites it atomically.
type FirestoreMirror struct {
	client *firestore.Client
}

type snapshotDoc struct {
	Offers      []models.Offer `firestore:"offers"`
	PublishedAt time.Time      `firestore:"publishedAt"`
}

func NewFirestoreMirror(ctx context.Context, projectID string) (*FirestoreMirror, error) {
	client, err := firestore.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("firestore.NewClient: %w", err)
	}
	return &FirestoreMirror{client: client}, nil
}

func (m *FirestoreMirror) Close() error {
	return m.client.Close()
}

func (m *FirestoreMirror) Load(ctx context.Context) ([]models.Offer, error) {
	doc, err := m.client.Collection(firestoreCollection).Doc(firestoreDocument).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get snapshot document: %w", err)
	}
	if !doc.Exists() {
		return nil, nil
	}

	var snap snapshotDoc
	if err := doc.DataTo(&snap); err != nil {
		return nil, fmt.Errorf("failed to unmarshal snapshot document: %w", err)
	}
	return snap.Offers, nil
}

func (m *FirestoreMirror) Save(ctx context.Context, offers []models.Offer) error {
	_, err := m.client.Collection(firestoreCollection).Doc(firestoreDocument).Set(ctx, snapshotDoc{
		Offers:      offers,
		PublishedAt: time.Now(),
	})
	if err != nil {
		return fmt.Errorf("failed to write snapshot document: %w", err)
	}
	return nil
}
