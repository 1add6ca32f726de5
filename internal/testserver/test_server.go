// Package testserver boots a full in-process server for integration
// tests: shared-cache memory sqlite, real services, and the HTTP
// transport behind httptest.
package testserver

import (
	"fmt"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/morgantremaine/cuer-live/internal/domain/guard"
	"github.com/morgantremaine/cuer-live/internal/domain/rundown"
	"github.com/morgantremaine/cuer-live/internal/domain/session"
	"github.com/morgantremaine/cuer-live/internal/domain/showcaller"
	"github.com/morgantremaine/cuer-live/internal/mcp"
	"github.com/morgantremaine/cuer-live/internal/sqlite"
	"github.com/morgantremaine/cuer-live/internal/transport"
	"github.com/stretchr/testify/require"
)

type TestServer struct {
	Server   *httptest.Server
	DB       *sqlite.DB
	TenantID string
}

func New(t *testing.T, tenantID string) *TestServer {
	t.Helper()

	// One shared-cache memory database per test, named after the test so
	// parallel tests never see each other's data.
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := sqlite.New(dsn)
	require.NoError(t, err)
	require.NoError(t, db.RunMigrations())

	documentRepo := sqlite.NewDocumentRepository(db)
	itemRepo := sqlite.NewItemRepository(db)
	changeRepo := sqlite.NewChangeLogRepository(db)
	sessionRepo := sqlite.NewSessionRepository(db)

	rundownSvc := rundown.NewService(documentRepo, itemRepo, changeRepo, nil)
	sessionSvc := session.NewService(sessionRepo, documentRepo, changeRepo, nil)

	// Tests drive playback state explicitly, so the countdown ticker is
	// effectively parked.
	caller := showcaller.NewManager(mcp.DocumentOpener(rundownSvc, tenantID), showcaller.Options{
		TickInterval: time.Hour,
	}, nil)
	guards := guard.NewManager(mcp.RebroadcastWriter(rundownSvc), guard.Callbacks{}, guard.Options{}, nil)

	handler := mcp.NewHandler(rundownSvc, sessionSvc, caller, guards)
	server := httptest.NewServer(transport.NewServer(handler, tenantID))

	ts := &TestServer{
		Server:   server,
		DB:       db,
		TenantID: tenantID,
	}

	t.Cleanup(func() {
		server.Close()
		caller.Close()
		_ = db.Close()
	})

	return ts
}
