package storage

import (
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/plugin/opentelemetry/tracing"

	"github.com/lcalzada-xor/riskmap/internal/core/domain"
)

// SQLiteAdapter implements ports.BaselineStore and ports.ResultStore using
// GORM and SQLite.
type SQLiteAdapter struct {
	db *gorm.DB
}

// BaselineModel is the GORM model for drift baselines. Properties and
// signals are stored JSON-encoded; the record is replaced wholesale on
// every Put, matching the baseline lifecycle.
type BaselineModel struct {
	EntityID   string `gorm:"primaryKey"`
	Properties string
	Signals    string
	CapturedAt time.Time
}

// ResultModel is the GORM model for scoring results.
type ResultModel struct {
	ID              string `gorm:"primaryKey"`
	EngineName      string `gorm:"index"`
	EntityID        string `gorm:"index"`
	Score           float64
	Severity        string
	Timestamp       time.Time
	Details         string
	Metrics         string
	Recommendations string
}

// NewSQLiteAdapter initializes the database and migrates the schema.
func NewSQLiteAdapter(path string) (*SQLiteAdapter, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}

	// Traced DB calls
	if err := db.Use(tracing.NewPlugin(tracing.WithoutMetrics())); err != nil {
		return nil, err
	}

	if err := db.AutoMigrate(&BaselineModel{}, &ResultModel{}); err != nil {
		return nil, err
	}

	db.Exec("CREATE INDEX IF NOT EXISTS idx_results_timestamp ON result_models(timestamp)")
	db.Exec("CREATE INDEX IF NOT EXISTS idx_results_severity ON result_models(severity)")

	return &SQLiteAdapter{db: db}, nil
}

// Get returns the stored baseline for an entity.
func (a *SQLiteAdapter) Get(entityID string) (domain.Baseline, bool, error) {
	var model BaselineModel
	if err := a.db.First(&model, "entity_id = ?", entityID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return domain.Baseline{}, false, nil
		}
		return domain.Baseline{}, false, err
	}
	b, err := toBaseline(model)
	if err != nil {
		return domain.Baseline{}, false, err
	}
	return b, true, nil
}

// Put replaces the baseline for an entity wholesale.
func (a *SQLiteAdapter) Put(entityID string, b domain.Baseline) error {
	model, err := toBaselineModel(entityID, b)
	if err != nil {
		return err
	}
	return a.db.Save(&model).Error
}

// SaveResult persists one scoring result.
func (a *SQLiteAdapter) SaveResult(r domain.ScoringResult) error {
	model, err := toResultModel(r)
	if err != nil {
		return err
	}
	return a.db.Create(&model).Error
}

// GetResults returns all stored results for an entity, newest first.
func (a *SQLiteAdapter) GetResults(entityID string) ([]domain.ScoringResult, error) {
	var models []ResultModel
	if err := a.db.Where("entity_id = ?", entityID).Order("timestamp desc").Find(&models).Error; err != nil {
		return nil, err
	}
	results := make([]domain.ScoringResult, 0, len(models))
	for _, m := range models {
		r, err := toResult(m)
		if err != nil {
			return nil, err
		}
		results = append(results, r)
	}
	return results, nil
}

// Close closes the underlying database connection.
func (a *SQLiteAdapter) Close() error {
	sqlDB, err := a.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
