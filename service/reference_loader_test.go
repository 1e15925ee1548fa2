package service

import (
	"context"
	"errors"
	"testing"

	"scorecard/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReferenceLoader_LoadsDefaults(t *testing.T) {
	ctx := context.Background()

	refRepo := new(MockReferenceRepository)
	uow := newCommittingUoW()
	uow.ReferenceRepo = refRepo

	refRepo.On("ReplaceAll", ctx, models.DefaultReferenceData()).Return(nil)

	require.NoError(t, NewReferenceLoader(factoryFor(uow), nil).Load(ctx))
	refRepo.AssertExpectations(t)
	uow.AssertExpectations(t)
}

func TestReferenceLoader_CustomData(t *testing.T) {
	ctx := context.Background()

	refRepo := new(MockReferenceRepository)
	uow := newCommittingUoW()
	uow.ReferenceRepo = refRepo

	data := &models.ReferenceData{
		Channels: []models.Channel{{ChannelCode: "partner", ChannelName: "Partner"}},
	}
	refRepo.On("ReplaceAll", ctx, data).Return(nil)

	require.NoError(t, NewReferenceLoader(factoryFor(uow), data).Load(ctx))
	refRepo.AssertExpectations(t)
}

func TestReferenceLoader_Error(t *testing.T) {
	ctx := context.Background()

	refRepo := new(MockReferenceRepository)
	uow := newRollbackUoW()
	uow.ReferenceRepo = refRepo

	dbErr := errors.New("relation does not exist")
	refRepo.On("ReplaceAll", ctx, models.DefaultReferenceData()).Return(dbErr)

	err := NewReferenceLoader(factoryFor(uow), nil).Load(ctx)

	assert.ErrorIs(t, err, dbErr)
	uow.AssertNotCalled(t, "Commit")
}
