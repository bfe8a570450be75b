package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"boothscan/internal/domain"
	"boothscan/internal/intake"
	"boothscan/internal/service"
	"boothscan/mocks"
)

func TestSessionJanitor_EvictsIdleSessions(t *testing.T) {
	svc := service.NewSessionService(new(mocks.MockExtractionClient), nil, service.SessionConfig{
		MaxAge: 10 * time.Millisecond,
		Intake: intake.DefaultOptions(),
	})
	info, err := svc.Create(context.Background())
	require.NoError(t, err)

	janitor := service.NewSessionJanitor(svc, 20*time.Millisecond)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		janitor.Start(ctx)
		close(done)
	}()

	// Reads keep a session alive, so wait without polling it.
	time.Sleep(200 * time.Millisecond)

	_, err = svc.Get(context.Background(), info.ID)
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("janitor did not shut down")
	}
}

func TestSessionJanitor_DisabledReturnsImmediately(t *testing.T) {
	svc := service.NewSessionService(new(mocks.MockExtractionClient), nil, service.SessionConfig{})
	done := make(chan struct{})
	go func() {
		service.NewSessionJanitor(svc, 0).Start(context.Background())
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("disabled janitor kept running")
	}
}
