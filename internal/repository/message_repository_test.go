package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/popeskul/crm-inbox/internal/models"
	"github.com/popeskul/crm-inbox/internal/repository"
)

func newMessage(tenant, contact, content string, at time.Time, dir models.Direction) *models.Message {
	return models.NewMessage(&models.IncomingMessage{
		TenantID:  tenant,
		ContactID: contact,
		Content:   content,
		Timestamp: at,
		Direction: dir,
		Kind:      models.KindText,
	})
}

func TestMessageRepository_CreateAndList(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	repo := repository.NewMessageRepository(db)
	ctx := context.Background()
	base := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		setup    []*models.Message
		validate func(t *testing.T)
	}{
		{
			name: "create fills generated fields",
			setup: []*models.Message{
				newMessage("t1", "5511", "hello", base, models.DirectionInbound),
			},
			validate: func(t *testing.T) {
				messages, err := repo.ListByTenant(ctx, "t1")
				require.NoError(t, err)
				require.Len(t, messages, 1)
				assert.NotZero(t, messages[0].ID)
				assert.False(t, messages[0].CreatedAt.IsZero())
				assert.Equal(t, models.StatusReceived, messages[0].DeliveryStatus)
				assert.True(t, messages[0].SentAt.Equal(base))
			},
		},
		{
			name: "tenant listing is ordered and isolated",
			setup: []*models.Message{
				newMessage("t1", "a", "second", base.Add(time.Minute), models.DirectionInbound),
				newMessage("t2", "a", "other tenant", base, models.DirectionInbound),
				newMessage("t1", "b", "first", base, models.DirectionOutbound),
			},
			validate: func(t *testing.T) {
				messages, err := repo.ListByTenant(ctx, "t1")
				require.NoError(t, err)
				require.Len(t, messages, 2)
				assert.Equal(t, "first", messages[0].Content)
				assert.Equal(t, "second", messages[1].Content)
			},
		},
		{
			name: "contact listing",
			setup: []*models.Message{
				newMessage("t1", "a", "a1", base, models.DirectionInbound),
				newMessage("t1", "b", "b1", base, models.DirectionInbound),
				newMessage("t1", "a", "a2", base.Add(time.Second), models.DirectionOutbound),
			},
			validate: func(t *testing.T) {
				messages, err := repo.ListByContact(ctx, "t1", "a")
				require.NoError(t, err)
				require.Len(t, messages, 2)
				assert.Equal(t, "a1", messages[0].Content)
				assert.Equal(t, models.DirectionOutbound, messages[1].Direction)
			},
		},
		{
			name: "duplicates are kept",
			setup: []*models.Message{
				newMessage("t1", "a", "same", base, models.DirectionInbound),
				newMessage("t1", "a", "same", base, models.DirectionInbound),
			},
			validate: func(t *testing.T) {
				messages, err := repo.ListByContact(ctx, "t1", "a")
				require.NoError(t, err)
				assert.Len(t, messages, 2)
			},
		},
		{
			name: "empty tenant yields empty slice",
			validate: func(t *testing.T) {
				messages, err := repo.ListByTenant(ctx, "nobody")
				require.NoError(t, err)
				assert.NotNil(t, messages)
				assert.Empty(t, messages)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cleanupTestData(t, db)
			for _, m := range tt.setup {
				require.NoError(t, repo.Create(ctx, m))
			}
			tt.validate(t)
		})
	}
}

func TestMessageRepository_BackfillTenant(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	messages := repository.NewMessageRepository(db)
	contacts := repository.NewContactRepository(db)
	ctx := context.Background()
	now := time.Now().UTC()

	cleanupTestData(t, db)
	require.NoError(t, messages.Create(ctx, newMessage("", "111", "orphan 1", now, models.DirectionInbound)))
	require.NoError(t, messages.Create(ctx, newMessage("", "222", "orphan 2", now, models.DirectionInbound)))
	require.NoError(t, messages.Create(ctx, newMessage("", "333", "no contact", now, models.DirectionInbound)))
	require.NoError(t, contacts.Upsert(ctx, &models.Contact{ContactID: "111", TenantID: models.NullString("t1")}))
	require.NoError(t, contacts.Upsert(ctx, &models.Contact{ContactID: "222", TenantID: models.NullString("t2")}))

	updated, err := messages.BackfillTenant(ctx, "111")
	require.NoError(t, err)
	assert.Equal(t, int64(1), updated)

	updated, err = messages.BackfillTenant(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, int64(1), updated)

	updated, err = messages.BackfillTenant(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, int64(0), updated, "re-running must be a no-op")

	t2, err := messages.ListByTenant(ctx, "t2")
	require.NoError(t, err)
	require.Len(t, t2, 1)
	assert.Equal(t, "orphan 2", t2[0].Content)
}
