// Package mongodb stores tasks and users as documents in MongoDB.
package mongodb

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Kishan-kumar001/mern-task-manager/models"
	"github.com/Kishan-kumar001/mern-task-manager/store"
)

var _ store.Store = (*Store)(nil)

type Store struct {
	client *mongo.Client
	tasks  *mongo.Collection
	users  *mongo.Collection
}

// Open connects to uri and prepares the tasks and users collections of
// database name.
func Open(ctx context.Context, uri, name string) (*Store, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}
	if err := client.Ping(ctx, nil); err != nil {
		client.Disconnect(context.Background())
		return nil, err
	}

	database := client.Database(name)
	s := &Store{
		client: client,
		tasks:  database.Collection("tasks"),
		users:  database.Collection("users"),
	}

	_, err = s.tasks.Indexes().CreateOne(ctx, mongo.IndexModel{Keys: bson.D{{Key: "user", Value: 1}}})
	if err != nil {
		client.Disconnect(context.Background())
		return nil, err
	}
	_, err = s.users.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "username", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		client.Disconnect(context.Background())
		return nil, err
	}
	return s, nil
}

func (s *Store) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

func (s *Store) ListTasks(ctx context.Context, ownerID string) ([]models.Task, error) {
	cur, err := s.tasks.Find(ctx, bson.M{"user": ownerID})
	if err != nil {
		return nil, err
	}
	tasks := []models.Task{}
	if err := cur.All(ctx, &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

func (s *Store) GetTask(ctx context.Context, id string) (*models.Task, error) {
	var task models.Task
	if err := s.tasks.FindOne(ctx, bson.M{"_id": id}).Decode(&task); err != nil {
		return nil, translate(err)
	}
	return &task, nil
}

func (s *Store) InsertTask(ctx context.Context, task *models.Task) error {
	_, err := s.tasks.InsertOne(ctx, task)
	return err
}

func (s *Store) UpdateTask(ctx context.Context, task *models.Task) error {
	res, err := s.tasks.UpdateByID(ctx, task.ID, bson.M{"$set": bson.M{
		"title":       task.Title,
		"description": task.Description,
		"updatedAt":   task.UpdatedAt,
	}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return store.ErrRecordNotFound
	}
	return nil
}

func (s *Store) DeleteTask(ctx context.Context, id string) error {
	res, err := s.tasks.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return store.ErrRecordNotFound
	}
	return nil
}

func (s *Store) InsertUser(ctx context.Context, user *models.User) error {
	_, err := s.users.InsertOne(ctx, user)
	return translate(err)
}

func (s *Store) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	return s.findUser(ctx, bson.M{"_id": id})
}

func (s *Store) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.findUser(ctx, bson.M{"username": username})
}

func (s *Store) findUser(ctx context.Context, filter bson.M) (*models.User, error) {
	var u models.User
	if err := s.users.FindOne(ctx, filter).Decode(&u); err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

// translate maps driver errors onto the store sentinels. Only the users
// collection has a unique index, so a duplicate key is a taken username.
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return store.ErrRecordNotFound
	case mongo.IsDuplicateKeyError(err):
		return store.ErrDuplicateUser
	}
	return err
}
