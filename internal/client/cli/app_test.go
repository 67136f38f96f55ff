package cli

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/dbcache/internal/client/models"
	"github.com/dmitrijs2005/dbcache/internal/common"
	"github.com/dmitrijs2005/dbcache/internal/logging"
)

func TestSetMode_ChangesAndLogsOnce(t *testing.T) {
	var buf bytes.Buffer
	app := &App{log: logging.NewTextSlogLogger(&buf, slog.LevelInfo), mode: ModeOffline}

	app.setMode(ModeOnline)
	assert.Equal(t, ModeOnline, app.Mode())
	assert.Contains(t, buf.String(), "connectivity changed")
	assert.Contains(t, buf.String(), "mode=online")

	buf.Reset()
	app.setMode(ModeOnline)
	assert.Empty(t, buf.String())

	app.setMode(ModeOffline)
	assert.Equal(t, ModeOffline, app.Mode())
	assert.Contains(t, buf.String(), "mode=offline")
}

func TestStartOnlineStatusWatcher_FollowsPing(t *testing.T) {
	sc := newStub()
	sc.setPingErr(errors.New("down"))
	a, _ := newTestApp(t, sc, "")

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		a.StartOnlineStatusWatcher(ctx, 10*time.Millisecond)
		close(done)
	}()

	require.Eventually(t, func() bool { return a.Mode() == ModeOffline }, time.Second, 5*time.Millisecond)

	sc.setPingErr(nil)
	require.Eventually(t, func() bool { return a.Mode() == ModeOnline }, time.Second, 5*time.Millisecond)

	sc.setPingErr(errors.New("down again"))
	require.Eventually(t, func() bool { return a.Mode() == ModeOffline }, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("watcher did not stop on cancel")
	}
}

func TestApp_RunReadsCommandsAndCloses(t *testing.T) {
	captureOutput(t)
	a, out := newTestApp(t, newStub(), "refresh planet\nlist planet\nexit\n")

	require.NoError(t, a.Run(context.Background()))
	assert.Contains(t, out.String(), "Dragon Ball cache")
	assert.Contains(t, out.String(), "Namek")

	outcome := a.sync.SetFavorite(context.Background(), models.KindPlanet, 3, true)
	assert.False(t, outcome.OK())
	assert.ErrorIs(t, outcome.Err, common.ErrorStoreClosed)
}
