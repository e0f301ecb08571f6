package event

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/clinic-directory/internal/model"
	"github.com/jwalitptl/clinic-directory/internal/repository/mocks"
)

func TestEmitWritesPendingOutboxEvent(t *testing.T) {
	repo := &mocks.OutboxRepository{}
	var saved *model.OutboxEvent
	repo.On("Create", mock.Anything, mock.AnythingOfType("*model.OutboxEvent")).
		Run(func(args mock.Arguments) { saved = args.Get(1).(*model.OutboxEvent) }).
		Return(nil)

	svc := NewEventService(repo)
	err := svc.Emit(context.Background(), model.EventLeadCreated, map[string]string{"email": "a@b.c"})
	require.NoError(t, err)

	require.NotNil(t, saved)
	assert.Equal(t, model.EventLeadCreated, saved.EventType)
	assert.Equal(t, string(model.OutboxStatusPending), saved.Status)
	assert.JSONEq(t, `{"email":"a@b.c"}`, string(saved.Payload))
	repo.AssertExpectations(t)
}

func TestEmitPropagatesRepositoryError(t *testing.T) {
	repo := &mocks.OutboxRepository{}
	repo.On("Create", mock.Anything, mock.Anything).Return(errors.New("db down"))

	err := NewEventService(repo).Emit(context.Background(), model.EventLeadCreated, struct{}{})
	assert.ErrorContains(t, err, "db down")
}

func TestEmitRejectsUnmarshalablePayload(t *testing.T) {
	repo := &mocks.OutboxRepository{}
	err := NewEventService(repo).Emit(context.Background(), "X", make(chan int))
	assert.Error(t, err)
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}
