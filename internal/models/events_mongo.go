package models

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

type MongodbRepo struct {
	mongodbClient *mongo.Client
	dbName        string
	colName       string
}

func MongodbNewRepo(mongodbClient *mongo.Client, dbName, colName string) *MongodbRepo {
	return &MongodbRepo{
		mongodbClient: mongodbClient,
		dbName:        dbName,
		colName:       colName,
	}
}

func (mdb *MongodbRepo) Name() string { return "mongodb" }

func (mdb *MongodbRepo) GetCollection() (*mongo.Collection, error) {
	if mdb.mongodbClient == nil {
		return nil, NewAdapterError("ClientNotInitialized", errors.New("mongodb client is not initialized"))
	}
	return mdb.mongodbClient.Database(mdb.dbName).Collection(mdb.colName), nil
}

func (mdb *MongodbRepo) GetItem(ctx context.Context, id string) (*EventItem, error) {
	col, err := mdb.GetCollection()
	if err != nil {
		return nil, err
	}
	var item EventItem
	err = col.FindOne(ctx, bson.M{"_id": id}).Decode(&item)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, mongoError(fmt.Errorf("error finding event %s: %w", id, err))
	}
	return &item, nil
}

func (mdb *MongodbRepo) PutItem(ctx context.Context, item *EventItem) error {
	col, err := mdb.GetCollection()
	if err != nil {
		return err
	}
	opts := options.Replace().SetUpsert(true)
	if _, err := col.ReplaceOne(ctx, bson.M{"_id": item.EventID}, item, opts); err != nil {
		return mongoError(fmt.Errorf("error writing event %s: %w", item.EventID, err))
	}
	return nil
}

func (mdb *MongodbRepo) UpdateItem(ctx context.Context, id string, upd UpdateExpr) (*EventItem, error) {
	col, err := mdb.GetCollection()
	if err != nil {
		return nil, err
	}
	set := bson.M{}
	for field, value := range upd.Assignments() {
		set[field] = value
	}
	if len(set) == 0 {
		return nil, NewAdapterError(CodeInternal, ErrEmptyUpdate)
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var item EventItem
	err = col.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&item)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, errItemNotFound(id)
	}
	if err != nil {
		return nil, mongoError(fmt.Errorf("error updating event %s: %w", id, err))
	}
	return &item, nil
}

func (mdb *MongodbRepo) DeleteItem(ctx context.Context, id string) error {
	col, err := mdb.GetCollection()
	if err != nil {
		return err
	}
	res, err := col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return mongoError(fmt.Errorf("error deleting event %s: %w", id, err))
	}
	if res.DeletedCount == 0 {
		return errItemNotFound(id)
	}
	return nil
}

func (mdb *MongodbRepo) Scan(ctx context.Context, filter *ScanFilter, limit int) ([]EventItem, error) {
	col, err := mdb.GetCollection()
	if err != nil {
		return nil, err
	}
	query := bson.M{}
	if filter != nil {
		query[filter.Field] = filter.Value
	}

	cursor, err := col.Find(ctx, query, options.Find().SetLimit(int64(limit)))
	if err != nil {
		return nil, mongoError(fmt.Errorf("error finding events: %w", err))
	}
	defer cursor.Close(ctx)

	items := make([]EventItem, 0, limit)
	if err := cursor.All(ctx, &items); err != nil {
		return nil, mongoError(fmt.Errorf("error decoding events: %w", err))
	}
	return items, nil
}

func (mdb *MongodbRepo) Ping(ctx context.Context) error {
	if mdb.mongodbClient == nil {
		return NewAdapterError("ClientNotInitialized", errors.New("mongodb client is not initialized"))
	}
	if err := mdb.mongodbClient.Ping(ctx, readpref.Primary()); err != nil {
		return mongoError(fmt.Errorf("failed to ping MongoDB: %w", err))
	}
	return nil
}

func mongoError(err error) *AdapterError {
	var cmdErr mongo.CommandError
	var writeErr mongo.WriteException
	switch {
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return NewAdapterError("", err)
	case mongo.IsTimeout(err):
		return NewAdapterError(CodeTimeout, err)
	case mongo.IsNetworkError(err):
		return NewAdapterError("NetworkError", err)
	case errors.As(err, &cmdErr) && cmdErr.Name != "":
		return NewAdapterError(cmdErr.Name, err)
	case errors.As(err, &writeErr):
		return NewAdapterError("WriteException", err)
	default:
		return NewAdapterError("", err)
	}
}
