package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/indexdata/crosslink/econtent/common"
	"github.com/indexdata/crosslink/econtent/vendormock"
	"github.com/indexdata/go-utils/utils"
)

var exit = os.Exit

var HTTP_PORT = utils.Must(utils.GetEnvInt("HTTP_PORT", 8082))
var MOCK_LIBRARY_ID = utils.GetEnv("MOCK_LIBRARY_ID", "lib1")
var MOCK_ACCOUNT_ID = utils.GetEnv("MOCK_ACCOUNT_ID", "acct")
var MOCK_ACCOUNT_KEY = utils.GetEnv("MOCK_ACCOUNT_KEY", "secret")

// barcode:password pairs and itemId:copies pairs, comma separated
var MOCK_PATRONS = utils.GetEnv("MOCK_PATRONS", "21000:1234")
var MOCK_ITEMS = utils.GetEnv("MOCK_ITEMS", "0001:1,0002:2")
var ENABLE_JSON_LOG = utils.Must(utils.GetEnvBool("ENABLE_JSON_LOG", false))

func configLog() {
	if ENABLE_JSON_LOG {
		common.DefaultLogHandler = slog.NewJSONHandler(os.Stdout, nil)
		slog.SetDefault(slog.New(common.DefaultLogHandler))
	}
}

func run() error {
	configLog()
	mock := vendormock.New(MOCK_LIBRARY_ID, MOCK_ACCOUNT_ID, MOCK_ACCOUNT_KEY)
	if err := mock.Seed(MOCK_PATRONS, MOCK_ITEMS); err != nil {
		return err
	}
	server := &http.Server{
		Addr:              ":" + strconv.Itoa(HTTP_PORT),
		Handler:           mock.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	slog.Info("vendor mock started", "port", HTTP_PORT, "libraryId", MOCK_LIBRARY_ID)
	return server.ListenAndServe()
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		exit(1)
	}
}
