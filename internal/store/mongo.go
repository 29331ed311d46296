package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"burza/internal/config"
	"burza/internal/models"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	tablesCollection       = "tables"
	reservationsCollection = "reservations"

	readTimeout  = 5 * time.Second
	writeTimeout = 10 * time.Second
)

// Mongo is the persistent document store backed by MongoDB.
type Mongo struct {
	client       *mongo.Client
	tables       *mongo.Collection
	reservations *mongo.Collection
	logger       *zerolog.Logger
}

// NewMongo connects to MongoDB and pings it before returning.
func NewMongo(ctx context.Context, cfg config.MongoConfig, logger *zerolog.Logger) (*Mongo, error) {
	opts := options.Client().ApplyURI(cfg.URI)
	if cfg.PoolSize > 0 {
		opts.SetMaxPoolSize(cfg.PoolSize)
	}

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, readTimeout)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	db := client.Database(cfg.Database)
	return &Mongo{
		client:       client,
		tables:       db.Collection(tablesCollection),
		reservations: db.Collection(reservationsCollection),
		logger:       logger,
	}, nil
}

func (m *Mongo) Close(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}

// withTimeout adds a deadline unless the call already runs inside a session
// transaction, whose context must not be wrapped.
func withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := ctx.(mongo.SessionContext); ok {
		return ctx, func() {}
	}
	if _, has := ctx.Deadline(); has {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, timeout)
}

// patchUpdate translates a TablePatch into a mongo update document. Clearing
// reservationId is expressed as $unset so absence survives round-trips.
func patchUpdate(patch models.TablePatch) bson.M {
	set := bson.M{}
	if patch.Status != "" {
		set["status"] = patch.Status
	}
	if patch.ReservationID != "" {
		set["reservationId"] = patch.ReservationID
	}

	update := bson.M{}
	if len(set) > 0 {
		update["$set"] = set
	}
	if patch.ClearReservationID {
		update["$unset"] = bson.M{"reservationId": ""}
	}
	return update
}

func (m *Mongo) ListTables(ctx context.Context) ([]models.Table, error) {
	ctx, cancel := withTimeout(ctx, readTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "y", Value: 1}, {Key: "x", Value: 1}})
	cursor, err := m.tables.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("query tables: %w", err)
	}
	defer cursor.Close(ctx)

	var tables []models.Table
	if err := cursor.All(ctx, &tables); err != nil {
		return nil, fmt.Errorf("decode tables: %w", err)
	}
	return tables, nil
}

func (m *Mongo) GetTable(ctx context.Context, id string) (*models.Table, error) {
	ctx, cancel := withTimeout(ctx, readTimeout)
	defer cancel()

	var table models.Table
	err := m.tables.FindOne(ctx, bson.M{"_id": id}).Decode(&table)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("table %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("find table: %w", err)
	}
	return &table, nil
}

func (m *Mongo) PutTable(ctx context.Context, table models.Table) error {
	ctx, cancel := withTimeout(ctx, writeTimeout)
	defer cancel()

	opts := options.Replace().SetUpsert(true)
	if _, err := m.tables.ReplaceOne(ctx, bson.M{"_id": table.ID}, table, opts); err != nil {
		return fmt.Errorf("put table %s: %w", table.ID, err)
	}
	return nil
}

func (m *Mongo) InsertTables(ctx context.Context, tables []models.Table) error {
	if len(tables) == 0 {
		return nil
	}
	ctx, cancel := withTimeout(ctx, writeTimeout)
	defer cancel()

	docs := make([]interface{}, len(tables))
	for i, t := range tables {
		docs[i] = t
	}
	if _, err := m.tables.InsertMany(ctx, docs); err != nil {
		return fmt.Errorf("insert tables: %w", err)
	}
	return nil
}

func (m *Mongo) UpdateTable(ctx context.Context, id string, patch models.TablePatch) error {
	if patch.IsZero() {
		return nil
	}
	ctx, cancel := withTimeout(ctx, writeTimeout)
	defer cancel()

	result, err := m.tables.UpdateOne(ctx, bson.M{"_id": id}, patchUpdate(patch))
	if err != nil {
		return fmt.Errorf("update table %s: %w", id, err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("table %s: %w", id, ErrNotFound)
	}
	return nil
}

// UpdateTables applies one patch to every id inside a session transaction so
// a reservation's tables never observably diverge in status.
func (m *Mongo) UpdateTables(ctx context.Context, ids []string, patch models.TablePatch) error {
	if len(ids) == 0 || patch.IsZero() {
		return nil
	}

	session, err := m.client.StartSession()
	if err != nil {
		return fmt.Errorf("start session: %w", err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sessCtx mongo.SessionContext) (any, error) {
		result, err := m.tables.UpdateMany(sessCtx, bson.M{"_id": bson.M{"$in": ids}}, patchUpdate(patch))
		if err != nil {
			return nil, err
		}
		if result.MatchedCount != int64(len(ids)) {
			return nil, fmt.Errorf("matched %d of %d tables: %w", result.MatchedCount, len(ids), ErrNotFound)
		}
		return nil, nil
	})
	if err != nil {
		return fmt.Errorf("batch update tables: %w", err)
	}
	return nil
}

func (m *Mongo) ResetTables(ctx context.Context) error {
	ctx, cancel := withTimeout(ctx, writeTimeout)
	defer cancel()

	update := bson.M{
		"$set":   bson.M{"status": models.TableBlocked},
		"$unset": bson.M{"reservationId": ""},
	}
	if _, err := m.tables.UpdateMany(ctx, bson.M{}, update); err != nil {
		return fmt.Errorf("reset tables: %w", err)
	}
	return nil
}

func (m *Mongo) DeleteAllTables(ctx context.Context) (int64, error) {
	ctx, cancel := withTimeout(ctx, writeTimeout)
	defer cancel()

	result, err := m.tables.DeleteMany(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("delete tables: %w", err)
	}
	return result.DeletedCount, nil
}

func (m *Mongo) ListReservations(ctx context.Context) ([]models.Reservation, error) {
	ctx, cancel := withTimeout(ctx, readTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := m.reservations.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("query reservations: %w", err)
	}
	defer cursor.Close(ctx)

	var reservations []models.Reservation
	if err := cursor.All(ctx, &reservations); err != nil {
		return nil, fmt.Errorf("decode reservations: %w", err)
	}
	return reservations, nil
}

func (m *Mongo) GetReservation(ctx context.Context, id string) (*models.Reservation, error) {
	ctx, cancel := withTimeout(ctx, readTimeout)
	defer cancel()

	var reservation models.Reservation
	err := m.reservations.FindOne(ctx, bson.M{"_id": id}).Decode(&reservation)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("reservation %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("find reservation: %w", err)
	}
	return &reservation, nil
}

func (m *Mongo) CreateReservation(ctx context.Context, reservation *models.Reservation) error {
	ctx, cancel := withTimeout(ctx, writeTimeout)
	defer cancel()

	now := time.Now().UTC().Truncate(time.Millisecond)
	if reservation.CreatedAt.IsZero() {
		reservation.CreatedAt = now
	}
	if reservation.UpdatedAt.IsZero() {
		reservation.UpdatedAt = now
	}

	if _, err := m.reservations.InsertOne(ctx, reservation); err != nil {
		return fmt.Errorf("create reservation: %w", err)
	}
	return nil
}

func (m *Mongo) UpdateReservationStatus(ctx context.Context, id string, status string) error {
	reservation, err := m.GetReservation(ctx, id)
	if err != nil {
		return err
	}

	ctx, cancel := withTimeout(ctx, writeTimeout)
	defer cancel()

	update := bson.M{"$set": bson.M{
		"status":    status,
		"updatedAt": statusChangeTime(reservation.CreatedAt),
	}}
	result, err := m.reservations.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return fmt.Errorf("update reservation %s: %w", id, err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("reservation %s: %w", id, ErrNotFound)
	}
	return nil
}

func (m *Mongo) DeleteReservation(ctx context.Context, id string) error {
	ctx, cancel := withTimeout(ctx, writeTimeout)
	defer cancel()

	result, err := m.reservations.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete reservation %s: %w", id, err)
	}
	if result.DeletedCount == 0 {
		return fmt.Errorf("reservation %s: %w", id, ErrNotFound)
	}
	return nil
}

func (m *Mongo) DeleteAllReservations(ctx context.Context) (int64, error) {
	ctx, cancel := withTimeout(ctx, writeTimeout)
	defer cancel()

	result, err := m.reservations.DeleteMany(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("delete reservations: %w", err)
	}
	return result.DeletedCount, nil
}
