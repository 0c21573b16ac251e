package services

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/vvka-141/xmlload/internal/db"
	"github.com/vvka-141/xmlload/internal/loader"
	"github.com/vvka-141/xmlload/internal/logging"
	"github.com/vvka-141/xmlload/internal/schema"
	"github.com/vvka-141/xmlload/internal/source"
	"github.com/vvka-141/xmlload/pkg/xmlload"
)

// TableObserver is implemented by progress reporters that also want to
// know when each table starts and finishes.
type TableObserver interface {
	TableStarted(table string)
	TableFinished(progress xmlload.LoadProgress)
}

type connectFunc func(ctx context.Context, connConfig *xmlload.ConnectionConfig, dbName string) (xmlload.DBConnection, func(), error)

// LoadService runs a load: it prepares the target database, then streams
// each selected table's dump file into it, one table after another.
// Thread-Safety: NOT safe for concurrent Run() calls on the same instance.
type LoadService struct {
	connectorFactory func(*xmlload.ConnectionConfig) (xmlload.Connector, error)
	approver         xmlload.Approver
	logger           xmlload.Logger
	dbManager        xmlload.DatabaseManager

	connect   connectFunc
	newLoader func(xmlload.DBConnection, xmlload.Logger) xmlload.TableLoader
	openFS    func(dir string) fs.FS
	now       func() time.Time
}

// NewLoadService creates a LoadService with all dependencies injected.
// It panics on nil dependencies.
func NewLoadService(
	connectorFactory func(*xmlload.ConnectionConfig) (xmlload.Connector, error),
	approver xmlload.Approver,
	logger xmlload.Logger,
	dbManager xmlload.DatabaseManager,
) *LoadService {
	if connectorFactory == nil {
		panic("connectorFactory cannot be nil")
	}
	if approver == nil {
		panic("approver cannot be nil")
	}
	if logger == nil {
		panic("logger cannot be nil")
	}
	if dbManager == nil {
		panic("dbManager cannot be nil")
	}

	svc := &LoadService{
		connectorFactory: connectorFactory,
		approver:         approver,
		logger:           logger,
		dbManager:        dbManager,
		newLoader: func(conn xmlload.DBConnection, logger xmlload.Logger) xmlload.TableLoader {
			return loader.New(conn, logger)
		},
		openFS: os.DirFS,
		now:    time.Now,
	}
	svc.connect = svc.defaultConnect
	return svc
}

// defaultConnect opens a pool on dbName. The returned cleanup closes the
// pool and, for connectors that hold one, the dialer.
func (s *LoadService) defaultConnect(ctx context.Context, connConfig *xmlload.ConnectionConfig, dbName string) (xmlload.DBConnection, func(), error) {
	cfg := *connConfig
	cfg.Database = dbName

	connector, err := s.connectorFactory(&cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create connector: %w", err)
	}

	pool, err := connector.Connect(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to database %q: %w", dbName, err)
	}

	adapter := db.NewPoolAdapter(pool)
	cleanup := func() {
		adapter.Close()
		if closer, ok := connector.(io.Closer); ok {
			_ = closer.Close()
		}
	}
	return adapter, cleanup, nil
}

// Run executes one load. reporter receives progress after every flushed
// batch; when nil, progress goes to the logger's verbose output.
// The first failing table aborts the run; tables loaded before it stay loaded.
func (s *LoadService) Run(ctx context.Context, cfg xmlload.RunConfig, reporter xmlload.ProgressReporter) (*xmlload.RunSummary, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	tables, overrides, err := s.selectTables(cfg)
	if err != nil {
		return nil, err
	}

	summary := &xmlload.RunSummary{
		RunID:    uuid.New(),
		Mode:     cfg.Mode(),
		Database: cfg.DatabaseName,
		Tables:   make([]xmlload.LoadProgress, 0, len(tables)),
	}
	start := s.now()

	connConfig, err := s.connectionConfig(cfg, summary.RunID)
	if err != nil {
		return nil, err
	}

	s.logger.Verbose("Run %s: %s of %d table(s) into database '%s'", summary.RunID, summary.Mode, len(tables), cfg.DatabaseName)
	s.logger.Verbose("Source path: %s", cfg.SourcePath)

	maintenanceDB := cfg.MaintenanceDatabase
	if maintenanceDB == "" {
		maintenanceDB = xmlload.DefaultManagementDB
	}

	if cfg.Rebuild {
		if err := s.rebuildDatabase(ctx, connConfig, cfg.DatabaseName, maintenanceDB); err != nil {
			return nil, err
		}
	} else {
		if err := s.ensureDatabaseExists(ctx, connConfig, cfg.DatabaseName, maintenanceDB); err != nil {
			return nil, err
		}
	}

	conn, cleanup, err := s.connect(ctx, connConfig, cfg.DatabaseName)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	if reporter == nil {
		reporter = logging.NewProgressLogger(s.logger)
	}
	observer, _ := reporter.(TableObserver)

	tableLoader := s.newLoader(conn, s.logger)
	locator := source.NewLocator(s.openFS(cfg.SourcePath), overrides)

	for _, def := range tables {
		if observer != nil {
			observer.TableStarted(def.Name)
		}

		progress, err := s.loadTable(ctx, tableLoader, locator, def, cfg.BatchSize, reporter)
		if err != nil {
			// Batches flushed before the failure stay committed.
			summary.Tables = append(summary.Tables, progress)
			summary.Elapsed = s.now().Sub(start)
			return summary, err
		}

		summary.Tables = append(summary.Tables, progress)
		if observer != nil {
			observer.TableFinished(progress)
		}
		s.logger.Info("✓ %s: %d processed, %d inserted, %d skipped (%s)",
			def.Name, progress.RecordsProcessed, progress.RecordsInserted, progress.Skipped(), progress.Elapsed.Round(time.Millisecond))
	}

	summary.Elapsed = s.now().Sub(start)
	s.logger.Verbose("Run %s finished in %s", summary.RunID, summary.Elapsed.Round(time.Millisecond))
	return summary, nil
}

// selectTables returns every catalog table for a rebuild or an empty
// selection, otherwise the named tables in the order given. It also checks
// the configured source files against the catalog.
func (s *LoadService) selectTables(cfg xmlload.RunConfig) ([]xmlload.TableDefinition, map[string]string, error) {
	catalog, err := schema.Merge(schema.Builtin(), cfg.ExtraTables)
	if err != nil {
		return nil, nil, err
	}
	overrides, err := schema.SourceOverrides(catalog, cfg.SourceFiles)
	if err != nil {
		return nil, nil, err
	}
	if cfg.Rebuild || len(cfg.Tables) == 0 {
		return catalog, overrides, nil
	}
	selected, err := schema.Select(catalog, cfg.Tables)
	if err != nil {
		return nil, nil, err
	}
	return selected, overrides, nil
}

// connectionConfig parses the connection string and applies the run's
// authentication settings.
func (s *LoadService) connectionConfig(cfg xmlload.RunConfig, runID uuid.UUID) (*xmlload.ConnectionConfig, error) {
	connConfig, err := db.ParseConnectionString(cfg.ConnectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to parse connection string: %w: %w", xmlload.ErrInvalidConfig, err)
	}

	if connConfig.AppName == "" {
		connConfig.AppName = fmt.Sprintf("%s-%s", xmlload.DefaultAppName, strings.Split(runID.String(), "-")[0])
	}

	connConfig.AuthMethod = cfg.AuthMethod
	connConfig.AzureTenantID = cfg.AzureTenantID
	connConfig.AzureClientID = cfg.AzureClientID
	connConfig.AzureClientSecret = cfg.AzureClientSecret
	connConfig.AWSRegion = cfg.AWSRegion
	connConfig.GoogleInstance = cfg.GoogleInstance

	return connConfig, nil
}

// loadTable resolves and opens def's dump file, ensures the table and
// streams the file into it. The file is closed on every path.
func (s *LoadService) loadTable(
	ctx context.Context,
	tableLoader xmlload.TableLoader,
	locator *source.Locator,
	def xmlload.TableDefinition,
	batchSize int,
	reporter xmlload.ProgressReporter,
) (xmlload.LoadProgress, error) {
	src, closer, err := locator.Open(def)
	if err != nil {
		return xmlload.LoadProgress{Table: def.Name}, fmt.Errorf("table %s: %w", def.Name, err)
	}
	defer closer.Close()

	if err := tableLoader.EnsureTable(ctx, def); err != nil {
		return xmlload.LoadProgress{Table: def.Name}, err
	}

	s.logger.Verbose("Loading table '%s' in batches of %d", def.Name, batchSize)
	progress, err := tableLoader.Load(ctx, def, src, batchSize, reporter)
	if err != nil {
		return progress, fmt.Errorf("table %s: %w", def.Name, err)
	}
	return progress, nil
}

func validateRebuildTarget(targetDB, maintenanceDB string) error {
	if strings.EqualFold(targetDB, maintenanceDB) {
		return fmt.Errorf(
			"cannot rebuild database %q: it is the maintenance database xmlload connects to for server-level operations. "+
				"Load into a different target database: %w",
			targetDB, xmlload.ErrInvalidConfig,
		)
	}
	if xmlload.IsTemplateDatabase(targetDB) {
		return fmt.Errorf(
			"cannot rebuild database %q: PostgreSQL template databases cannot be dropped: %w",
			targetDB, xmlload.ErrInvalidConfig,
		)
	}
	return nil
}

// rebuildDatabase drops and recreates the target after approval. A missing
// target is simply created.
func (s *LoadService) rebuildDatabase(ctx context.Context, connConfig *xmlload.ConnectionConfig, targetDB, maintenanceDB string) error {
	if err := validateRebuildTarget(targetDB, maintenanceDB); err != nil {
		return err
	}

	s.logger.Verbose("Connecting to maintenance database '%s'", maintenanceDB)
	conn, cleanup, err := s.connect(ctx, connConfig, maintenanceDB)
	if err != nil {
		return err
	}
	defer cleanup()

	exists, err := s.dbManager.Exists(ctx, conn, targetDB)
	if err != nil {
		return err
	}

	if !exists {
		s.logger.Info("Database '%s' does not exist. Creating...", targetDB)
		return s.dbManager.Create(ctx, conn, targetDB)
	}

	s.logger.Verbose("Database '%s' exists. Requesting approval for rebuild.", targetDB)
	approved, err := s.approver.RequestApproval(ctx, targetDB)
	if err != nil {
		return fmt.Errorf("approval request failed: %w", err)
	}
	if !approved {
		return fmt.Errorf("rebuild of database %q: %w", targetDB, xmlload.ErrApprovalDenied)
	}

	s.logger.Verbose("Terminating all connections to database '%s'", targetDB)
	if err := s.dbManager.TerminateConnections(ctx, conn, targetDB); err != nil {
		return err
	}

	s.logger.Verbose("Dropping database '%s'", targetDB)
	if err := s.dbManager.Drop(ctx, conn, targetDB); err != nil {
		return err
	}

	s.logger.Verbose("Creating database '%s'", targetDB)
	if err := s.dbManager.Create(ctx, conn, targetDB); err != nil {
		return err
	}

	s.logger.Info("✓ Database '%s' rebuilt", targetDB)
	return nil
}

// ensureDatabaseExists creates the target when missing and never drops it.
func (s *LoadService) ensureDatabaseExists(ctx context.Context, connConfig *xmlload.ConnectionConfig, targetDB, maintenanceDB string) error {
	s.logger.Verbose("Connecting to maintenance database '%s' to check if target database exists", maintenanceDB)
	conn, cleanup, err := s.connect(ctx, connConfig, maintenanceDB)
	if err != nil {
		return err
	}
	defer cleanup()

	exists, err := s.dbManager.Exists(ctx, conn, targetDB)
	if err != nil {
		return err
	}
	if exists {
		s.logger.Verbose("Database '%s' already exists", targetDB)
		return nil
	}

	s.logger.Info("Database '%s' does not exist. Creating...", targetDB)
	return s.dbManager.Create(ctx, conn, targetDB)
}
