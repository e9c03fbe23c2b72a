package client

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go/v4"
	"github.com/krakosik/demoday/internal/dto"
	"github.com/sirupsen/logrus"
	"google.golang.org/api/option"
)

// MessageBus carries ballot-accepted notifications to every replica.
type MessageBus interface {
	Publish(ctx context.Context, message []byte) error
	Subscribe(id string) (<-chan []byte, error)
	Unsubscribe(id string) error
	Close() error
}

type Clients interface {
	// Firestore is nil unless the firestore store driver is selected.
	Firestore() *firestore.Client
	Bus() MessageBus
	Close() error
}

type clients struct {
	firestoreClient *firestore.Client
	bus             MessageBus
}

func (c clients) Firestore() *firestore.Client {
	return c.firestoreClient
}

func (c clients) Bus() MessageBus {
	return c.bus
}

// Close shuts the bus down. The Firestore client is owned by the store built
// on top of it.
func (c clients) Close() error {
	return c.bus.Close()
}

func NewClients(ctx context.Context, cfg dto.Config) (Clients, error) {
	c := &clients{}

	if cfg.StoreDriver == dto.StoreDriverFirestore {
		fs, err := NewFirestoreClient(ctx, cfg)
		if err != nil {
			return nil, err
		}
		c.firestoreClient = fs
	}

	if cfg.RabbitMQURL == "" {
		logrus.Info("RABBITMQ_URL not set; using in-process message bus")
		c.bus = NewLocalBus()
		return c, nil
	}
	bus, err := NewRabbitMQBus(cfg.RabbitMQURL)
	if err != nil {
		if c.firestoreClient != nil {
			_ = c.firestoreClient.Close()
		}
		return nil, fmt.Errorf("%w: connect to RabbitMQ: %v", dto.ErrConfiguration, err)
	}
	c.bus = bus
	return c, nil
}

// NewFirestoreClient opens Firestore through the Firebase app. Without
// FIREBASE_KEY the app falls back to application default credentials, which
// also covers FIRESTORE_EMULATOR_HOST.
func NewFirestoreClient(ctx context.Context, cfg dto.Config) (*firestore.Client, error) {
	decodedFirebaseKey, err := cfg.DecodeFirebaseKey()
	if err != nil {
		return nil, err
	}
	var opts []option.ClientOption
	if decodedFirebaseKey != nil {
		opts = append(opts, option.WithCredentialsJSON(decodedFirebaseKey))
	}
	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: cfg.FirebaseProjectID}, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: firebase app: %v", dto.ErrConfiguration, err)
	}
	fs, err := app.Firestore(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: firestore client: %v", dto.ErrConfiguration, err)
	}
	return fs, nil
}
