package miner

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/holiman/uint256"
	"github.com/screa/hook-address-miner/pkg/hooks"
	"github.com/screa/hook-address-miner/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestMinerLifecycle(t *testing.T) {
	m := NewMiner(zap.NewNop(), nil)

	id, err := m.Start(unmatchable(), Options{Workers: 2})
	require.NoError(t, err)
	assert.Contains(t, m.Sessions(), id)

	events, err := m.Events(id)
	require.NoError(t, err)
	require.NotNil(t, events)

	_, err = m.Progress(id)
	require.NoError(t, err)

	require.NoError(t, m.Stop(id))

	ctx, cancel := context.WithTimeout(context.Background(), waitTimeout)
	defer cancel()
	res, err := m.Wait(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, types.OutcomeStopped, res.Outcome)

	// Collected sessions are forgotten.
	assert.NotContains(t, m.Sessions(), id)
	_, err = m.Progress(id)
	assert.True(t, errors.Is(err, ErrSessionNotFound))
}

func TestMinerMatch(t *testing.T) {
	m := NewMiner(nil, nil)
	id, err := m.Start(testConfig("84", false, hooks.BeforeSwap|hooks.AfterSwap), Options{Workers: 1, Seed: uint256.NewInt(0)})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), waitTimeout)
	defer cancel()
	res, err := m.Wait(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, uint256.NewInt(9379).Bytes32(), res.Salt)
}

func TestMinerUnknownSession(t *testing.T) {
	m := NewMiner(nil, nil)
	id := uuid.New()

	assert.ErrorIs(t, m.Stop(id), ErrSessionNotFound)
	_, err := m.Events(id)
	assert.ErrorIs(t, err, ErrSessionNotFound)
	_, err = m.Wait(context.Background(), id)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestMinerRejectsBeforeTracking(t *testing.T) {
	m := NewMiner(nil, nil)
	id, err := m.Start(testConfig("", false, hooks.None), Options{Workers: 0})
	require.Error(t, err)
	assert.Equal(t, uuid.Nil, id)
	assert.Empty(t, m.Sessions())
}

func TestMinerStopAll(t *testing.T) {
	m := NewMiner(nil, nil)
	var ids []uuid.UUID
	for i := 0; i < 3; i++ {
		id, err := m.Start(unmatchable(), Options{Workers: 1})
		require.NoError(t, err)
		ids = append(ids, id)
	}
	m.StopAll()

	ctx, cancel := context.WithTimeout(context.Background(), waitTimeout)
	defer cancel()
	for _, id := range ids {
		res, err := m.Wait(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, types.OutcomeStopped, res.Outcome)
	}
	assert.Empty(t, m.Sessions())
}
