package app

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/indexdata/crosslink/econtent/api"
	"github.com/indexdata/crosslink/econtent/axis360"
	"github.com/indexdata/crosslink/econtent/cache"
	"github.com/indexdata/crosslink/econtent/catalog"
	"github.com/indexdata/crosslink/econtent/common"
	"github.com/indexdata/crosslink/econtent/dbutil"
	"github.com/indexdata/crosslink/econtent/editor"
	"github.com/indexdata/crosslink/econtent/httpclient"
	"github.com/indexdata/crosslink/econtent/patron"
	"github.com/indexdata/crosslink/econtent/settings"
	"github.com/indexdata/crosslink/econtent/usage"
	"github.com/indexdata/crosslink/econtent/vcs"
	"github.com/indexdata/go-utils/utils"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

const (
	CacheAdapterMemory = "memory"
	CacheAdapterRedis  = "redis"
)

var HTTP_PORT = utils.Must(utils.GetEnvInt("HTTP_PORT", 8081))
var DB_TYPE = utils.GetEnv("DB_TYPE", "postgres")
var DB_USER = utils.GetEnv("DB_USER", "econtent")
var DB_PASSWORD = utils.GetEnv("DB_PASSWORD", "econtent")
var DB_HOST = utils.GetEnv("DB_HOST", "localhost")
var DB_PORT = utils.GetEnv("DB_PORT", "25432")
var DB_DATABASE = utils.GetEnv("DB_DATABASE", "econtent")
var ConnectionString = dbutil.GetConnectionString(DB_TYPE, DB_USER, DB_PASSWORD, DB_HOST, DB_PORT, DB_DATABASE)
var MigrationsFolder = utils.GetEnv("MIGRATIONS_FOLDER", "file://migrations")
var ENABLE_JSON_LOG = utils.GetEnv("ENABLE_JSON_LOG", "false")
var LOG_LEVEL = utils.GetEnv("LOG_LEVEL", "INFO")
var CACHE_ADAPTER = utils.GetEnv("CACHE_ADAPTER", CacheAdapterMemory)
var REDIS_ADDR = utils.GetEnv("REDIS_ADDR", "localhost:6379")
var ACCOUNT_SUMMARY_TTL, _ = utils.GetEnvAny("ACCOUNT_SUMMARY_TTL", axis360.DefaultSummaryTTL, parseDuration("ACCOUNT_SUMMARY_TTL"))
var VENDOR_TIMEOUT, _ = utils.GetEnvAny("VENDOR_TIMEOUT", httpclient.DefaultTimeout, parseDuration("VENDOR_TIMEOUT"))
var MAX_RESPONSE_SIZE, _ = utils.GetEnvAny("MAX_RESPONSE_SIZE", httpclient.DefaultMaxResponseSize, func(val string) (int64, error) {
	v, err := humanize.ParseBytes(val)
	if err == nil && v > uint64(math.MaxInt64) {
		appCtx.Logger().Error("MAX_RESPONSE_SIZE value is too large, using default")
		return 0, fmt.Errorf("value %s is too large", val)
	}
	return int64(v), err
})
var DEBUG = utils.Must(utils.GetEnvBool("DEBUG", false))
var SHOW_WHILE_YOU_WAIT = utils.Must(utils.GetEnvBool("SHOW_WHILE_YOU_WAIT", true))
// bearer token for the /admin tools; the tools are closed when empty
var ADMIN_TOKEN = utils.GetEnv("ADMIN_TOKEN", "")
var SHUTDOWN_DELAY, _ = utils.GetEnvAny("SHUTDOWN_DELAY", time.Duration(15*float64(time.Second)), parseDuration("SHUTDOWN_DELAY"))

var ServeMux *http.ServeMux
var appCtx = common.CreateExtCtxWithLogArgsAndHandler(context.Background(), nil, configLog())

func parseDuration(name string) func(string) (time.Duration, error) {
	return func(val string) (time.Duration, error) {
		d, err := time.ParseDuration(val)
		if err != nil {
			return 0, fmt.Errorf("invalid %s value: %s", name, val)
		}
		return d, nil
	}
}

type Context struct {
	PatronRepo     patron.PatronRepo
	SettingsRepo   settings.SettingsRepo
	CatalogRepo    catalog.CatalogRepo
	UsageRepo      usage.UsageRepo
	Cache          cache.Cache
	ClientFactory  *axis360.ClientFactory
	SettingsEditor *editor.SettingsEditor
}

func configLog() slog.Handler {
	var level slog.Level
	switch strings.ToUpper(LOG_LEVEL) {
	case "DEBUG":
		level = slog.LevelDebug
	case "INFO":
		level = slog.LevelInfo
	case "WARN":
		level = slog.LevelWarn
	case "ERROR":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{
		Level: level,
	}
	if strings.EqualFold(ENABLE_JSON_LOG, "true") {
		jsonHandler := slog.NewJSONHandler(os.Stdout, opts)
		common.DefaultLogHandler = jsonHandler
		return jsonHandler
	} else {
		textHandler := slog.NewTextHandler(os.Stdout, opts)
		common.DefaultLogHandler = textHandler
		return textHandler
	}
}

func CreateCache(adapter string, redisAddr string) (cache.Cache, error) {
	switch strings.ToLower(adapter) {
	case CacheAdapterMemory:
		return cache.NewMemoryCache(), nil
	case CacheAdapterRedis:
		return cache.NewRedisCache(redis.NewClient(&redis.Options{Addr: redisAddr})), nil
	default:
		return nil, fmt.Errorf("bad value for CACHE_ADAPTER: %s", adapter)
	}
}

func Init(ctx context.Context) (Context, error) {
	appCtx.Logger().Info("starting " + vcs.GetSignature())
	responseCache, err := CreateCache(CACHE_ADAPTER, REDIS_ADDR)
	if err != nil {
		return Context{}, err
	}
	err = RunMigrateScripts()
	if err != nil {
		return Context{}, err
	}
	pool, err := InitDbPool()
	if err != nil {
		return Context{}, err
	}
	patronRepo := CreatePatronRepo(pool)
	settingsRepo := CreateSettingsRepo(pool)
	catalogRepo := CreateCatalogRepo(pool)
	usageRepo := CreateUsageRepo(pool)
	factory := CreateClientFactory(settingsRepo, responseCache, catalogRepo, usageRepo)
	return Context{
		PatronRepo:     patronRepo,
		SettingsRepo:   settingsRepo,
		CatalogRepo:    catalogRepo,
		UsageRepo:      usageRepo,
		Cache:          responseCache,
		ClientFactory:  factory,
		SettingsEditor: editor.NewSettingsEditor(settingsRepo),
	}, nil
}

func CreateClientFactory(settingsRepo settings.SettingsRepo, c cache.Cache, cat catalog.Catalog, usageRepo usage.UsageRepo) *axis360.ClientFactory {
	factory := axis360.NewClientFactory(&settings.RepoProvider{Repo: settingsRepo}, c, cat, usage.NewTracker(usageRepo), axis360.Config{
		SummaryTTL:       ACCOUNT_SUMMARY_TTL,
		Debug:            DEBUG,
		ShowWhileYouWait: SHOW_WHILE_YOU_WAIT,
	})
	factory.NewTransport = axis360.NewTransportFactory(VENDOR_TIMEOUT, MAX_RESPONSE_SIZE)
	factory.NewLoginTransport = axis360.NewLoginTransportFactory(VENDOR_TIMEOUT)
	return factory
}

func Run(ctx context.Context) error {
	context, err := Init(ctx)
	if err != nil {
		return err
	}
	return StartServer(context)
}

func CreateServeMux(ctx Context) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", HandleHealthz)
	api.NewPatronApiHandler(ctx.PatronRepo, func() axis360.Circulation {
		return ctx.ClientFactory.NewClient()
	}).Register(mux)
	editor.NewHandler[settings.VendorSettings](ctx.SettingsEditor, editor.TokenAccess{Token: ADMIN_TOKEN}).Register(mux)
	return mux
}

func StartServer(ctx Context) error {
	ServeMux = CreateServeMux(ctx)
	signatureHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Server", vcs.GetSignature())
		ServeMux.ServeHTTP(w, r)
	})
	server := &http.Server{
		Addr:              ":" + strconv.Itoa(HTTP_PORT),
		Handler:           signatureHandler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		// vendor calls are bounded by VENDOR_TIMEOUT
		WriteTimeout: VENDOR_TIMEOUT + 30*time.Second,
		IdleTimeout:  120 * time.Second,
	}
	// channel to listen for server errors
	serverErrors := make(chan error, 1)
	go func() {
		appCtx.Logger().Info("HTTP server started on port " + strconv.Itoa(HTTP_PORT))
		serverErrors <- server.ListenAndServe()
	}()
	// channel to listen for OS signals
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)
	// block until we receive a signal or server error
	select {
	case err := <-serverErrors:
		return fmt.Errorf("HTTP server error: %w", err)
	case sig := <-shutdown:
		appCtx.Logger().Info("HTTP server shutdown initiated", "signal", sig)
		// give outstanding requests a timeout to complete
		ctx, cancel := context.WithTimeout(appCtx, SHUTDOWN_DELAY)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			server.Close()
			return fmt.Errorf("HTTP server could not shutdown gracefully: %w", err)
		}
		appCtx.Logger().Info("HTTP server shutdown complete")
		return nil
	}
}

func RunMigrateScripts() error {
	verFrom, verTo, dirty, err := dbutil.RunMigrateScripts(MigrationsFolder, ConnectionString)
	if err != nil {
		return fmt.Errorf("DB migration failed: err=%w versionFrom=%d versionTo=%d dirty=%t", err, verFrom, verTo, dirty)
	}
	appCtx.Logger().Info("DB migration success", "versionFrom", verFrom, "versionTo", verTo, "dirty", dirty)
	return nil
}

func InitDbPool() (*pgxpool.Pool, error) {
	dbPool, err := dbutil.InitDbPool(ConnectionString)
	if err != nil {
		return nil, fmt.Errorf("unable to create pool to database: %w", err)
	}
	return dbPool, nil
}

func CreatePatronRepo(dbPool *pgxpool.Pool) patron.PatronRepo {
	patronRepo := new(patron.PgPatronRepo)
	patronRepo.Pool = dbPool
	return patronRepo
}

func CreateSettingsRepo(dbPool *pgxpool.Pool) settings.SettingsRepo {
	settingsRepo := new(settings.PgSettingsRepo)
	settingsRepo.Pool = dbPool
	return settingsRepo
}

func CreateCatalogRepo(dbPool *pgxpool.Pool) catalog.CatalogRepo {
	catalogRepo := new(catalog.PgCatalogRepo)
	catalogRepo.Pool = dbPool
	return catalogRepo
}

func CreateUsageRepo(dbPool *pgxpool.Pool) usage.UsageRepo {
	usageRepo := new(usage.PgUsageRepo)
	usageRepo.Pool = dbPool
	return usageRepo
}

func HandleHealthz(w http.ResponseWriter, r *http.Request) {
	w.Write([]byte("OK"))
}
