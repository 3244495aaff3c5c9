package main

import (
	"net/http"
	"os"
	"strconv"
	"testing"

	"github.com/indexdata/crosslink/econtent/app"
	"github.com/indexdata/crosslink/econtent/dbutil"
	"github.com/indexdata/crosslink/econtent/testutil"
	"github.com/indexdata/crosslink/econtent/vcs"
	"github.com/indexdata/go-utils/utils"
	"github.com/stretchr/testify/assert"
)

func TestMain(m *testing.M) {
	ctx, pgc, connStr, err := dbutil.StartPGContainer()
	testutil.Expect(err, "failed to start db container")

	app.ConnectionString = connStr
	app.MigrationsFolder = "file://../../migrations"
	app.HTTP_PORT = utils.Must(testutil.GetFreePort())
	app.ADMIN_TOKEN = "t0ken"

	go main()
	testutil.WaitForServiceUp(app.HTTP_PORT)

	code := m.Run()

	testutil.Expect(dbutil.TerminatePGContainer(ctx, pgc), "failed to stop db container")
	os.Exit(code)
}

func TestServerSignature(t *testing.T) {
	resp, err := http.Get("http://localhost:" + strconv.Itoa(app.HTTP_PORT) + "/healthz")
	assert.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, vcs.GetSignature(), resp.Header.Get("Server"))
}

func TestAdminToolNeedsToken(t *testing.T) {
	url := "http://localhost:" + strconv.Itoa(app.HTTP_PORT) + "/admin/Axis360Settings"
	resp, err := http.Get(url)
	assert.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	req, err := http.NewRequest(http.MethodGet, url, nil)
	assert.NoError(t, err)
	req.Header.Set("Authorization", "Bearer t0ken")
	resp, err = http.DefaultClient.Do(req)
	assert.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
