package repository

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
)

// repositoryImpl is the concrete implementation of Repository interface.
type repositoryImpl struct {
	db       *sqlx.DB
	message  MessageRepository
	contact  ContactRepository
	debug    DebugRepository
	instance InstanceRepository
}

// NewRepository creates a new repository instance.
func NewRepository(db *sqlx.DB) Repository {
	return &repositoryImpl{
		db:       db,
		message:  NewMessageRepository(db),
		contact:  NewContactRepository(db),
		debug:    NewDebugRepository(db),
		instance: NewInstanceRepository(db),
	}
}

func (r *repositoryImpl) Message() MessageRepository {
	return r.message
}

func (r *repositoryImpl) Contact() ContactRepository {
	return r.contact
}

func (r *repositoryImpl) Debug() DebugRepository {
	return r.debug
}

func (r *repositoryImpl) Instance() InstanceRepository {
	return r.instance
}

// Ping checks if the database connection is healthy.
func (r *repositoryImpl) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	return r.db.PingContext(ctx)
}
