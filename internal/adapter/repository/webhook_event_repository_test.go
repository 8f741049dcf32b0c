package repository_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wekeepgrowing/closerlink/internal/adapter/repository"
	"github.com/wekeepgrowing/closerlink/internal/domain/model"
	"github.com/wekeepgrowing/closerlink/internal/testutil"
	"go.uber.org/zap"
	"gorm.io/datatypes"
)

func TestWebhookEventRepository_Lifecycle(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	repo := repository.NewWebhookEventRepository(db, zap.NewNop())

	missing, err := repo.GetByMessageID(ctx, "msg_1")
	require.NoError(t, err)
	assert.Nil(t, missing)

	event := &model.WebhookEvent{
		MessageID: "msg_1",
		EventType: "payment.succeeded",
		Payload:   datatypes.JSON(`{"type":"payment.succeeded"}`),
	}
	created, err := repo.SaveIfAbsent(ctx, event)
	require.NoError(t, err)
	assert.True(t, created)

	duplicate := &model.WebhookEvent{
		MessageID: "msg_1",
		EventType: "payment.succeeded",
		Payload:   datatypes.JSON(`{"type":"payment.succeeded","retry":true}`),
	}
	created, err = repo.SaveIfAbsent(ctx, duplicate)
	require.NoError(t, err)
	assert.False(t, created)

	require.NoError(t, repo.MarkFailed(ctx, "msg_1", errors.New("database unavailable")))

	stored, err := repo.GetByMessageID(ctx, "msg_1")
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.False(t, stored.Processed())
	require.NotNil(t, stored.Error)
	assert.Equal(t, "database unavailable", *stored.Error)
	assert.Equal(t, 1, stored.ProcessingAttempts)
	assert.JSONEq(t, `{"type":"payment.succeeded"}`, string(stored.Payload))

	require.NoError(t, repo.MarkProcessed(ctx, "msg_1"))

	stored, err = repo.GetByMessageID(ctx, "msg_1")
	require.NoError(t, err)
	assert.True(t, stored.Processed())
	assert.Nil(t, stored.Error)
	assert.Equal(t, 2, stored.ProcessingAttempts)

	// terminal events ignore late failures
	require.NoError(t, repo.MarkFailed(ctx, "msg_1", errors.New("late")))
	stored, err = repo.GetByMessageID(ctx, "msg_1")
	require.NoError(t, err)
	assert.True(t, stored.Processed())
	assert.Nil(t, stored.Error)

	var count int64
	require.NoError(t, db.Model(&model.WebhookEvent{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestWebhookEventRepository_ListRecent(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	repo := repository.NewWebhookEventRepository(db, zap.NewNop())

	for _, id := range []string{"msg_1", "msg_2", "msg_3"} {
		_, err := repo.SaveIfAbsent(ctx, &model.WebhookEvent{
			MessageID: id,
			EventType: "payment.succeeded",
			Payload:   datatypes.JSON(`{}`),
		})
		require.NoError(t, err)
	}

	events, err := repo.ListRecent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "msg_3", events[0].MessageID)
}
